package api

import (
	"time"

	log "github.com/sirupsen/logrus"
)

type chatRequestMetrics struct {
	logger          *log.Logger
	start           time.Time
	extractDuration time.Duration
	llmDuration     time.Duration
	actionType      string
	cacheHit        bool
	errorStage      string
}

func newChatRequestMetrics(logger *log.Logger) *chatRequestMetrics {
	return &chatRequestMetrics{
		logger: logger,
		start:  time.Now(),
	}
}

func (m *chatRequestMetrics) ObserveExtract(duration time.Duration) {
	if duration <= 0 {
		return
	}
	m.extractDuration = duration
}

func (m *chatRequestMetrics) ObserveLLM(duration time.Duration) {
	if duration <= 0 {
		return
	}
	m.llmDuration = duration
}

func (m *chatRequestMetrics) SetActionType(actionType string) {
	m.actionType = actionType
}

func (m *chatRequestMetrics) SetCacheHit(hit bool) {
	m.cacheHit = hit
}

func (m *chatRequestMetrics) SetErrorStage(stage string) {
	if stage == "" {
		return
	}
	m.errorStage = stage
}

func (m *chatRequestMetrics) Log(status int, err error) {
	if m == nil || m.logger == nil {
		return
	}

	fields := log.Fields{
		"route":     "/api/chat",
		"status":    status,
		"total_ms":  durationToMillis(time.Since(m.start)),
		"cache_hit": m.cacheHit,
	}
	if m.actionType != "" {
		fields["action"] = m.actionType
	}
	if m.extractDuration > 0 {
		fields["extract_ms"] = durationToMillis(m.extractDuration)
	}
	if m.llmDuration > 0 {
		fields["llm_ms"] = durationToMillis(m.llmDuration)
	}
	if m.errorStage != "" {
		fields["error_stage"] = m.errorStage
	}
	if err != nil {
		fields["error"] = err.Error()
	}

	m.logger.WithFields(fields).Info("chat.request.metrics")
}

func durationToMillis(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}
