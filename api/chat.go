package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"todochat-api/domain"
)

func postChat(extractor Extractor, completer Completer, limiter *FixedWindowLimiter, respCache *ResponseCache, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		ctx := c.Request().Context()
		metrics := newChatRequestMetrics(logger)
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		if !limiter.Allow(c.RealIP()) {
			metrics.SetErrorStage("rate_limit")
			err = c.JSON(http.StatusTooManyRequests, errorResponse{
				Error:   "Rate limit exceeded",
				Message: "Muitas requisições. Por favor, aguarde um momento antes de tentar novamente.",
			})
			return err
		}

		lr := io.LimitReader(c.Request().Body, maxBodySize)
		dec := sonic.ConfigStd.NewDecoder(lr)
		dec.DisallowUnknownFields()

		var req chatRequest
		if decodeErr := dec.Decode(&req); decodeErr != nil {
			metrics.SetErrorStage("decode")
			err = c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
			return err
		}

		message := strings.TrimSpace(req.Message)
		if message == "" {
			message = lastUserMessage(req.Messages)
		}
		if message == "" {
			metrics.SetErrorStage("missing_message")
			err = c.JSON(http.StatusBadRequest, errorResponse{Error: "Message is required"})
			return err
		}

		extractStart := time.Now()
		action := extractor.Process(ctx, message, req.Todos)
		metrics.ObserveExtract(time.Since(extractStart))
		metrics.SetActionType(string(action.Type))

		// A recognized intent already mutated the store; confirm without
		// consulting the model.
		if action.Type != domain.ActionNone {
			err = c.JSON(http.StatusOK, chatResponse{
				Message: action.Message,
				Action:  &chatAction{Type: action.Type, Data: action.Data},
			})
			return err
		}
		if action.Message != "" {
			// The extractor asked the user to restate; still no LLM call.
			err = c.JSON(http.StatusOK, chatResponse{Message: action.Message})
			return err
		}

		key := cacheKey(message, req.Todos)
		if payload, ok := respCache.Get(key); ok {
			metrics.SetCacheHit(true)
			err = c.JSONBlob(http.StatusOK, payload)
			return err
		}

		history := req.Messages
		if len(history) == 0 {
			history = []domain.ChatMessage{{Role: "user", Content: message}}
		}

		llmStart := time.Now()
		reply, llmErr := completer.Complete(ctx, systemPrompt(req.Todos), history)
		metrics.ObserveLLM(time.Since(llmStart))
		if llmErr != nil {
			metrics.SetErrorStage("llm")
			status, resp := chatErrorResponse(llmErr)
			err = c.JSON(status, resp)
			return err
		}

		payload, marshalErr := sonic.ConfigStd.Marshal(chatResponse{Message: reply})
		if marshalErr != nil {
			metrics.SetErrorStage("encode_response")
			err = c.JSON(http.StatusInternalServerError, errorResponse{Error: marshalErr.Error()})
			return err
		}
		respCache.Put(key, payload)
		err = c.JSONBlob(http.StatusOK, payload)
		return err
	}
}

func lastUserMessage(history []domain.ChatMessage) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == "user" {
			return strings.TrimSpace(history[i].Content)
		}
	}
	return ""
}

// cacheKey identifies a conversational request by its message and the exact
// todo snapshot it was asked against.
func cacheKey(message string, todos []domain.Todo) string {
	snapshot, err := sonic.ConfigStd.MarshalToString(todos)
	if err != nil {
		snapshot = ""
	}
	return message + "-" + snapshot
}

func systemPrompt(todos []domain.Todo) string {
	var b strings.Builder
	b.WriteString("Você é um assistente inteligente para gerenciamento de tarefas (todos).\n")
	b.WriteString("Você ajuda os usuários a criar, gerenciar e organizar suas tarefas.\n")

	if len(todos) == 0 {
		b.WriteString("\nO usuário ainda não tem todos cadastrados.\n")
	} else {
		b.WriteString("\nAqui estão os todos atuais do usuário:\n")
		for i, t := range todos {
			fmt.Fprintf(&b, "%d. %s (Quantidade: %s", i+1, t.Item, domain.FormatQuantity(t.Quantity))
			if t.Description != "" {
				b.WriteString(", Descrição: " + t.Description)
			}
			b.WriteString(")")
			if t.Checked {
				b.WriteString(" [CONCLUÍDO]")
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\nQuando o usuário pedir para criar um todo, você deve responder de forma clara e confirmar a criação.\n")
	b.WriteString("Quando o usuário pedir para listar todos, mostre a lista de forma organizada.\n")
	b.WriteString("Seja sempre amigável, útil e objetivo nas respostas.")
	return b.String()
}

// chatErrorResponse maps upstream completion failures to an HTTP status and
// remediation text for the user.
func chatErrorResponse(err error) (int, errorResponse) {
	var emptyErr EmptyCompletionError
	if errors.As(err, &emptyErr) {
		msg := fmt.Sprintf("A API retornou uma resposta vazia. Finish reason: %s", emptyErr.FinishReason())
		if emptyErr.FinishReason() == "length" {
			if n := emptyErr.ReasoningTokens(); n > 0 {
				msg = fmt.Sprintf("O modelo atingiu o limite de tokens de raciocínio (%d tokens). Tente aumentar max_completion_tokens ou usar um modelo diferente.", n)
			} else {
				msg = "O modelo atingiu o limite de tokens. A resposta foi cortada. Tente aumentar max_completion_tokens."
			}
		}
		return http.StatusInternalServerError, errorResponse{Error: err.Error(), Message: msg, Status: http.StatusInternalServerError}
	}

	status := http.StatusInternalServerError
	msg := "Desculpe, ocorreu um erro ao processar sua mensagem."

	var statusErr UpstreamStatusError
	if errors.As(err, &statusErr) {
		status = statusErr.UpstreamStatus()
		switch status {
		case http.StatusTooManyRequests:
			if isQuotaError(err) {
				msg = "❌ Créditos da API esgotados! Adicione créditos à sua conta e verifique seu uso na plataforma do provedor."
			} else {
				msg = "⏱️ Limite de requisições excedido. Aguarde um momento antes de tentar novamente."
			}
		case http.StatusUnauthorized:
			msg = "Chave da API inválida ou expirada. Verifique se a chave está correta, sem espaços extras, e se ainda tem permissões para usar a API."
		case http.StatusNotFound:
			msg = "Modelo não encontrado ou sem acesso. Verifique se você tem acesso ao modelo configurado."
		default:
			msg = "Erro: " + err.Error()
		}
	} else if isQuotaError(err) {
		status = http.StatusTooManyRequests
		msg = "❌ Créditos da API esgotados! Adicione créditos à sua conta e verifique seu uso na plataforma do provedor."
	} else {
		msg = "Erro: " + err.Error()
	}

	return status, errorResponse{Error: err.Error(), Message: msg, Status: status}
}

func isQuotaError(err error) bool {
	s := err.Error()
	return strings.Contains(s, "quota") || strings.Contains(s, "exceeded") || strings.Contains(s, "billing")
}
