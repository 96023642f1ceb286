// internal/workers/ai-insights/plan-intent/models.go
package planintent

import "crm-insights/internal/models"

type Input struct {
	Question string `json:"question"`
}

type Output struct {
	Plan models.InsightPlan `json:"plan"`
}

// wirePlan mirrors the model response. Every optional field may arrive as
// null; conversion to models.InsightPlan drops them.
type wirePlan struct {
	Intent    string       `json:"intent"`
	Filters   *wireFilters `json:"filters"`
	Rationale *string      `json:"rationale"`
}

type wireFilters struct {
	Status    []string       `json:"status"`
	Timeframe *wireTimeframe `json:"timeframe"`
}

type wireTimeframe struct {
	Scope     string   `json:"scope"`
	LastDays  *float64 `json:"lastDays"`
	StartDate *string  `json:"startDate"`
	EndDate   *string  `json:"endDate"`
}
