// internal/workers/ai-insights/query-opportunities/models.go
package queryopportunities

import (
	"crm-insights/internal/common/predicate"
	"crm-insights/internal/models"
)

type Input struct {
	Scope predicate.Predicate `json:"-"`
	Plan  models.InsightPlan  `json:"plan"`
}

type Output struct {
	Result models.InsightResult `json:"data"`
	// Filter is the full predicate the query ran with.
	Filter predicate.Predicate `json:"-"`
}
