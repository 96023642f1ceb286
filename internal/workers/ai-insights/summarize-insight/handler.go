// internal/workers/ai-insights/summarize-insight/handler.go
package summarizeinsight

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"crm-insights/internal/common/llm"
	"crm-insights/internal/common/logger"
)

const (
	TaskType = "summarize-insight"
)

var (
	ErrSummarizerUnavailable = errors.New("SUMMARIZER_UNAVAILABLE")
)

type Handler struct {
	config    *Config
	generator llm.Generator
	logger    logger.Logger
}

func NewHandler(config *Config, generator llm.Generator, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		generator: generator,
		logger:    log.With(map[string]interface{}{"taskType": TaskType}),
	}
}

// Execute turns an aggregate into prose. The answer is presentational only
// and nothing downstream reads it.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, fmt.Errorf("input cannot be nil")
	}

	prompt, err := buildPrompt(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSummarizerUnavailable, err)
	}

	if h.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := h.generator.GenerateText(ctx, systemInstruction, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSummarizerUnavailable, err)
	}

	answer := strings.TrimSpace(text)
	if answer == "" {
		return nil, fmt.Errorf("%w: %v", ErrSummarizerUnavailable, llm.ErrEmptyResponse)
	}

	h.logger.Info("insight summarized", map[string]interface{}{
		"intent":     string(input.Intent),
		"answerLen":  len([]rune(answer)),
		"durationMs": time.Since(start).Milliseconds(),
	})

	return &Output{Answer: answer}, nil
}
