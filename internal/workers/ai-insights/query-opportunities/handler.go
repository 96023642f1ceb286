// internal/workers/ai-insights/query-opportunities/handler.go
package queryopportunities

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"crm-insights/internal/common/logger"
	"crm-insights/internal/common/predicate"
	"crm-insights/internal/models"
	"crm-insights/internal/workers/ai-insights/query-opportunities/queries"
)

const (
	TaskType = "query-opportunities"
)

var (
	ErrUnsupportedIntent = errors.New("UNSUPPORTED_INTENT")
	ErrInvalidTimeframe  = errors.New("INVALID_TIMEFRAME")
	ErrQueryFailed       = errors.New("QUERY_FAILED")
	ErrQueryTimeout      = errors.New("QUERY_TIMEOUT")
)

type Handler struct {
	config *Config
	db     *sql.DB
	logger logger.Logger
	now    func() time.Time
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	if config.Location == nil {
		config.Location = time.UTC
	}
	return &Handler{
		config: config,
		db:     db,
		logger: log.With(map[string]interface{}{"taskType": TaskType}),
		now:    time.Now,
	}
}

// SetClock replaces the time source used for relative timeframes.
func (h *Handler) SetClock(now func() time.Time) {
	h.now = now
}

// Execute runs exactly one aggregate for the plan's intent under
// scope AND status filter AND timeframe filter.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, fmt.Errorf("input cannot be nil")
	}

	intent := input.Plan.Intent
	if _, exists := queries.Registry[intent]; !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedIntent, intent)
	}

	filter, err := h.buildFilter(input)
	if err != nil {
		return nil, err
	}

	where, args, err := predicate.ToSQL(filter, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}

	if h.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := queries.Execute(ctx, h.db, intent, where, args)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%w: %v", ErrQueryTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}

	h.logger.Info("insight query executed", map[string]interface{}{
		"intent":     string(intent),
		"filter":     predicate.Describe(filter),
		"durationMs": time.Since(start).Milliseconds(),
	})

	return &Output{Result: *result, Filter: filter}, nil
}

func (h *Handler) buildFilter(input *Input) (predicate.Predicate, error) {
	scope := input.Scope
	if scope == nil {
		// callers always pass a resolved scope; refuse to widen silently
		return nil, fmt.Errorf("%w: missing scope", ErrQueryFailed)
	}

	terms := []predicate.Predicate{scope}

	if statuses := models.ExpandStatuses(input.Plan.Filters.Status); len(statuses) > 0 {
		terms = append(terms, predicate.StringSet(predicate.FieldStatus, statuses))
	}

	timeframe, err := timeframePredicate(input.Plan.Filters.Timeframe, h.now(), h.config.Location)
	if err != nil {
		return nil, err
	}
	terms = append(terms, timeframe)

	return predicate.All(terms...), nil
}
