package llm

import (
	"strings"
	"testing"

	"github.com/openai/openai-go/v3"
)

func TestApplySampling(t *testing.T) {
	tests := []struct {
		model              string
		wantMaxTokens      int64
		wantCompletionCap  int64
		wantTemperatureSet bool
	}{
		{model: "gpt-5", wantCompletionCap: 500, wantTemperatureSet: true},
		{model: "gpt-4o", wantCompletionCap: 500, wantTemperatureSet: true},
		{model: "gpt-5-nano", wantCompletionCap: 2000},
		{model: "gpt-4o-nano", wantCompletionCap: 2000},
		{model: "gpt-3.5-turbo", wantMaxTokens: 500, wantTemperatureSet: true},
		{model: "llama3.2", wantMaxTokens: 500, wantTemperatureSet: true},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			params := openai.ChatCompletionNewParams{Model: openai.ChatModel(tt.model)}
			applySampling(&params, tt.model)

			if got := params.MaxTokens.Or(0); got != tt.wantMaxTokens {
				t.Errorf("max_tokens = %d, want %d", got, tt.wantMaxTokens)
			}
			if got := params.MaxCompletionTokens.Or(0); got != tt.wantCompletionCap {
				t.Errorf("max_completion_tokens = %d, want %d", got, tt.wantCompletionCap)
			}
			if got := params.Temperature.Valid(); got != tt.wantTemperatureSet {
				t.Errorf("temperature set = %v, want %v", got, tt.wantTemperatureSet)
			}
		})
	}
}

func TestStatusErrorMessage(t *testing.T) {
	err := &StatusError{StatusCode: 429, Message: "quota exceeded"}
	if !strings.Contains(err.Error(), "429") || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("unexpected error text: %q", err.Error())
	}
	if err.UpstreamStatus() != 429 {
		t.Fatalf("unexpected status: %d", err.UpstreamStatus())
	}
}

func TestEmptyErrorFinishReason(t *testing.T) {
	if got := (&EmptyError{}).FinishReason(); got != "unknown" {
		t.Fatalf("missing reason should report unknown, got %q", got)
	}
	if got := (&EmptyError{Reason: "length"}).FinishReason(); got != "length" {
		t.Fatalf("unexpected reason %q", got)
	}
	if got := (&EmptyError{ReasoningSpent: 1500}).ReasoningTokens(); got != 1500 {
		t.Fatalf("unexpected reasoning tokens %d", got)
	}
}
