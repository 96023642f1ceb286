// internal/workers/ai-insights/plan-intent/handler.go
package planintent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"crm-insights/internal/common/llm"
	"crm-insights/internal/common/logger"
	"crm-insights/internal/models"
)

const (
	TaskType = "plan-intent"
)

var (
	ErrPlannerUnavailable     = errors.New("PLANNER_UNAVAILABLE")
	ErrPlannerSchemaViolation = errors.New("PLANNER_SCHEMA_VIOLATION")
)

type Handler struct {
	config    *Config
	generator llm.Generator
	logger    logger.Logger
	now       func() time.Time
}

func NewHandler(config *Config, generator llm.Generator, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		generator: generator,
		logger:    log.With(map[string]interface{}{"taskType": TaskType}),
		now:       time.Now,
	}
}

// Execute asks the model for a plan and accepts it only if it validates
// against the plan schema.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, fmt.Errorf("input cannot be nil")
	}

	if h.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.Timeout)
		defer cancel()
	}

	raw, err := h.generator.GenerateStructured(ctx, buildPrompt(input.Question, h.now()), ResponseSchema())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPlannerUnavailable, err)
	}

	plan, err := parsePlan(raw)
	if err != nil {
		h.logger.Warn("planner output rejected", map[string]interface{}{
			"error": err.Error(),
			"raw":   truncate(string(raw), 512),
		})
		return nil, err
	}

	h.logger.Info("question planned", map[string]interface{}{
		"intent":       string(plan.Intent),
		"statusCount":  len(plan.Filters.Status),
		"hasTimeframe": plan.Filters.Timeframe != nil,
	})

	return &Output{Plan: *plan}, nil
}

func parsePlan(raw []byte) (*models.InsightPlan, error) {
	result, err := planSchema.ValidateJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPlannerSchemaViolation, err)
	}
	if !result.Valid {
		return nil, fmt.Errorf("%w: %s", ErrPlannerSchemaViolation, result.Error())
	}

	var wire wirePlan
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPlannerSchemaViolation, err)
	}

	plan := &models.InsightPlan{Intent: models.Intent(wire.Intent)}
	if !plan.Intent.Valid() {
		return nil, fmt.Errorf("%w: intent %q", ErrPlannerSchemaViolation, wire.Intent)
	}
	if wire.Rationale != nil {
		plan.Rationale = *wire.Rationale
	}

	if wire.Filters != nil {
		for _, s := range wire.Filters.Status {
			if s = strings.TrimSpace(s); s != "" {
				plan.Filters.Status = append(plan.Filters.Status, s)
			}
		}

		if tf := wire.Filters.Timeframe; tf != nil {
			timeframe := &models.Timeframe{Scope: models.TimeframeScope(tf.Scope)}
			if tf.LastDays != nil {
				if *tf.LastDays < 1 || *tf.LastDays > maxLastDays {
					return nil, fmt.Errorf("%w: lastDays %v out of range", ErrPlannerSchemaViolation, *tf.LastDays)
				}
				days := int(*tf.LastDays)
				timeframe.LastDays = &days
			}
			if tf.StartDate != nil {
				timeframe.StartDate = strings.TrimSpace(*tf.StartDate)
			}
			if tf.EndDate != nil {
				timeframe.EndDate = strings.TrimSpace(*tf.EndDate)
			}
			plan.Filters.Timeframe = timeframe
		}
	}

	return plan, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
