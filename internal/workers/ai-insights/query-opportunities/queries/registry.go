// internal/workers/ai-insights/query-opportunities/queries/registry.go
package queries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"crm-insights/internal/models"
)

var (
	ErrUnknownIntent = errors.New("unknown intent")
)

// QueryFunc runs one aggregate over opportunities matching where/args.
type QueryFunc func(ctx context.Context, db *sql.DB, where string, args []interface{}) (*models.InsightResult, error)

var Registry = map[models.Intent]QueryFunc{
	models.IntentCountOpportunities: CountOpportunities,
	models.IntentSumExpectedAmount:  SumExpectedAmount,
	models.IntentStatusBreakdown:    StatusBreakdown,
}

func Execute(ctx context.Context, db *sql.DB, intent models.Intent, where string, args []interface{}) (*models.InsightResult, error) {
	fn, exists := Registry[intent]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownIntent, intent)
	}
	return fn(ctx, db, where, args)
}
