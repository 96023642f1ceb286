// internal/workers/ai-insights/ask-insight/handler.go
package askinsight

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "crm-insights/internal/common/errors"
	"crm-insights/internal/common/logger"
	"crm-insights/internal/common/metrics"
	"crm-insights/internal/common/observability"
	"crm-insights/internal/models"
	planintent "crm-insights/internal/workers/ai-insights/plan-intent"
	queryopportunities "crm-insights/internal/workers/ai-insights/query-opportunities"
	resolvescope "crm-insights/internal/workers/ai-insights/resolve-scope"
	summarizeinsight "crm-insights/internal/workers/ai-insights/summarize-insight"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	TaskType = "ask-insight"

	outcomeSuccess = "success"
)

// Dependencies are the pipeline stages. Planner and Summarizer are nil when
// no text-generation credentials are configured.
type Dependencies struct {
	Scope      ScopeResolver
	Planner    Planner
	Executor   Executor
	Summarizer Summarizer
	Limiter    RateLimiter
	Telemetry  *observability.Observability
}

type Handler struct {
	config       *Config
	deps         Dependencies
	logger       logger.Logger
	tracer       trace.Tracer
	errorHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, deps Dependencies, log logger.Logger) *Handler {
	l := log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		deps:         deps,
		logger:       l,
		tracer:       observability.Tracer("crm-insights/" + TaskType),
		errorHandler: apperrors.NewErrorHandler(l),
	}
}

// Configured reports whether text generation is available.
func (h *Handler) Configured() bool {
	return h.deps.Planner != nil && h.deps.Summarizer != nil
}

// Execute answers one question. Every failure is a *errors.StandardError and
// no partial answer is ever returned.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	start := time.Now()
	ctx, span := h.tracer.Start(ctx, "insight.ask")
	defer span.End()

	answer, err := h.execute(ctx, input)

	outcome, intent := outcomeSuccess, ""
	if answer != nil {
		intent = string(answer.Intent)
	}
	if err != nil {
		stdErr := apperrors.Normalize(err)
		outcome = string(stdErr.Code)
		span.SetStatus(codes.Error, outcome)
		h.logFailure(input, stdErr)
		err = stdErr
	}
	span.SetAttributes(attribute.String("insight.outcome", outcome))
	metrics.InsightRequests.WithLabelValues(outcome, intent).Inc()
	h.deps.Telemetry.RecordAsk(ctx, outcome, time.Since(start))

	if err != nil {
		return nil, err
	}
	return answer, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if !h.Configured() {
		return nil, apperrors.NewAINotConfiguredError()
	}
	if input == nil || input.Caller == nil {
		return nil, apperrors.NewUnauthorizedError()
	}
	caller := *input.Caller

	question, err := validateQuestion(input.Payload)
	if err != nil {
		return nil, err
	}

	if err := h.checkRateLimit(ctx, caller.ID); err != nil {
		return nil, err
	}

	log := h.logger.With(map[string]interface{}{
		"requestId": input.RequestID,
		"userId":    caller.ID,
	})

	var plan models.InsightPlan
	err = h.stage(ctx, "plan", func(ctx context.Context) error {
		out, err := h.deps.Planner.Execute(ctx, &planintent.Input{Question: question})
		if err != nil {
			if errors.Is(err, planintent.ErrPlannerSchemaViolation) {
				return apperrors.NewPlannerSchemaViolationError(err)
			}
			return apperrors.NewPlannerFailedError(err)
		}
		plan = out.Plan
		return nil
	})
	if err != nil {
		return nil, err
	}

	var scope *resolvescope.Output
	err = h.stage(ctx, "scope", func(ctx context.Context) error {
		out, err := h.deps.Scope.Execute(ctx, &resolvescope.Input{Caller: caller})
		if err != nil {
			return apperrors.NewQueryFailedError(string(plan.Intent), err)
		}
		scope = out
		return nil
	})
	if err != nil {
		return nil, err
	}

	var result models.InsightResult
	err = h.stage(ctx, "query", func(ctx context.Context) error {
		out, err := h.deps.Executor.Execute(ctx, &queryopportunities.Input{Scope: scope.Scope, Plan: plan})
		if err != nil {
			if errors.Is(err, queryopportunities.ErrUnsupportedIntent) {
				return apperrors.NewUnsupportedIntentError(string(plan.Intent))
			}
			return apperrors.NewQueryFailedError(string(plan.Intent), err)
		}
		result = out.Result
		return nil
	})
	if err != nil {
		return nil, err
	}

	var answer string
	err = h.stage(ctx, "summarize", func(ctx context.Context) error {
		out, err := h.deps.Summarizer.Execute(ctx, &summarizeinsight.Input{
			Question: question,
			Intent:   plan.Intent,
			Filters:  plan.Filters,
			Result:   result,
		})
		if err != nil {
			return apperrors.NewSummarizerFailedError(err)
		}
		answer = out.Answer
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("question answered", map[string]interface{}{
		"intent": string(plan.Intent),
		"scope":  string(scope.Basis),
	})

	return &Output{
		Success: true,
		Intent:  plan.Intent,
		Filters: plan.Filters,
		Data:    result,
		Answer:  answer,
	}, nil
}

// validateQuestion accepts a body whose question is a non-blank string.
func validateQuestion(payload interface{}) (string, error) {
	result, err := requestSchema.ValidateInput(payload)
	if err != nil {
		return "", apperrors.NewInvalidQuestionError(err.Error())
	}
	if !result.Valid {
		return "", apperrors.NewInvalidQuestionError(result.Error())
	}

	body, _ := payload.(map[string]interface{})
	question, _ := body["question"].(string)
	question = strings.TrimSpace(question)
	if question == "" {
		return "", apperrors.NewInvalidQuestionError("question: blank")
	}
	return question, nil
}

// checkRateLimit fails open when the limiter's store is unreachable.
func (h *Handler) checkRateLimit(ctx context.Context, userID int64) error {
	if h.deps.Limiter == nil || !h.deps.Limiter.Enabled() {
		return nil
	}
	allowed, err := h.deps.Limiter.Allow(ctx, userID)
	if err != nil {
		h.logger.Warn("rate limiter unavailable, allowing ask", map[string]interface{}{
			"userId": userID,
			"error":  err.Error(),
		})
		return nil
	}
	if !allowed {
		metrics.RateLimitRejections.Inc()
		return apperrors.NewRateLimitedError(userID)
	}
	return nil
}

func (h *Handler) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := h.tracer.Start(ctx, "insight."+name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	metrics.ObserveStage(name, start, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, name+" failed")
	}
	return err
}

func (h *Handler) logFailure(input *Input, stdErr *apperrors.StandardError) {
	fields := map[string]interface{}{
		"errorCode":     string(stdErr.Code),
		"errorCategory": apperrors.GetErrorCategory(stdErr.Code),
		"details":       stdErr.Details,
	}
	if input != nil {
		fields["requestId"] = input.RequestID
		if input.Caller != nil {
			fields["userId"] = input.Caller.ID
		}
	}

	if apperrors.HTTPStatus(stdErr.Code) >= 500 {
		h.logger.Error("ask failed", fields)
		return
	}
	h.logger.Info("ask rejected", fields)
}
