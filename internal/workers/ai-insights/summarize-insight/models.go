// internal/workers/ai-insights/summarize-insight/models.go
package summarizeinsight

import "crm-insights/internal/models"

type Input struct {
	Question string                `json:"question"`
	Intent   models.Intent         `json:"intent"`
	Filters  models.InsightFilters `json:"filters"`
	Result   models.InsightResult  `json:"result"`
}

type Output struct {
	Answer string `json:"answer"`
}
