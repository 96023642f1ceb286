// internal/models/insight.go
package models

import "encoding/json"

// Intent is the analytic operation chosen for a question.
type Intent string

const (
	IntentCountOpportunities Intent = "count_opportunities"
	IntentSumExpectedAmount  Intent = "sum_expected_amount"
	IntentStatusBreakdown    Intent = "status_breakdown"
)

// Intents lists every supported intent in prompt order.
var Intents = []Intent{
	IntentCountOpportunities,
	IntentSumExpectedAmount,
	IntentStatusBreakdown,
}

func (i Intent) Valid() bool {
	for _, known := range Intents {
		if i == known {
			return true
		}
	}
	return false
}

type TimeframeScope string

const (
	TimeframeAllTime  TimeframeScope = "all_time"
	TimeframeLastDays TimeframeScope = "last_days"
	TimeframeBetween  TimeframeScope = "between"
)

type Timeframe struct {
	Scope     TimeframeScope `json:"scope"`
	LastDays  *int           `json:"lastDays,omitempty"`
	StartDate string         `json:"startDate,omitempty"`
	EndDate   string         `json:"endDate,omitempty"`
}

type InsightFilters struct {
	Status    []string   `json:"status,omitempty"`
	Timeframe *Timeframe `json:"timeframe,omitempty"`
}

// InsightPlan is the validated planner output for one request.
type InsightPlan struct {
	Intent    Intent         `json:"intent"`
	Filters   InsightFilters `json:"filters"`
	Rationale string         `json:"rationale,omitempty"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// InsightResult serializes as {"value": n} for count and sum intents and as
// a list of StatusCount for status_breakdown.
type InsightResult struct {
	Intent    Intent
	Value     float64
	Breakdown []StatusCount
}

func (r InsightResult) MarshalJSON() ([]byte, error) {
	if r.Intent == IntentStatusBreakdown {
		if r.Breakdown == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(r.Breakdown)
	}
	return json.Marshal(struct {
		Value float64 `json:"value"`
	}{Value: r.Value})
}

func (r *InsightResult) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '[' {
		r.Intent = IntentStatusBreakdown
		return json.Unmarshal(data, &r.Breakdown)
	}
	var v struct {
		Value float64 `json:"value"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	r.Value = v.Value
	return nil
}

// InsightAnswer is the success payload of an ask.
type InsightAnswer struct {
	Success bool           `json:"success"`
	Intent  Intent         `json:"intent"`
	Filters InsightFilters `json:"filters"`
	Data    InsightResult  `json:"data"`
	Answer  string         `json:"answer"`
}
