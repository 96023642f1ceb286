// internal/api/handlers/insights.go
package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"crm-insights/internal/api/middleware"
	"crm-insights/internal/common/logger"
	"crm-insights/internal/models"
	askinsight "crm-insights/internal/workers/ai-insights/ask-insight"
)

const maxAskBodyBytes = 64 << 10

// Asker answers one insight question.
type Asker interface {
	Execute(ctx context.Context, input *askinsight.Input) (*models.InsightAnswer, error)
}

type InsightHandler struct {
	asker  Asker
	logger logger.Logger
}

func NewInsightHandler(asker Asker, log logger.Logger) *InsightHandler {
	return &InsightHandler{
		asker:  asker,
		logger: log.With(map[string]interface{}{"handler": "insights"}),
	}
}

// Ask handles POST /api/ai/insights/ask. An unreadable body is passed on as
// nil so the precondition order stays with the pipeline.
func (h *InsightHandler) Ask(w http.ResponseWriter, r *http.Request) {
	payload := decodeBody(http.MaxBytesReader(w, r.Body, maxAskBodyBytes))

	answer, err := h.asker.Execute(r.Context(), &askinsight.Input{
		Caller:    middleware.CallerFrom(r.Context()),
		Payload:   payload,
		RequestID: middleware.GetRequestID(r.Context()),
	})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, answer)
}

func decodeBody(body io.Reader) interface{} {
	var payload interface{}
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return nil
	}
	return payload
}
