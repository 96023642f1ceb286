// internal/workers/ai-insights/ask-insight/models.go
package askinsight

import (
	"context"

	"crm-insights/internal/models"
	planintent "crm-insights/internal/workers/ai-insights/plan-intent"
	queryopportunities "crm-insights/internal/workers/ai-insights/query-opportunities"
	resolvescope "crm-insights/internal/workers/ai-insights/resolve-scope"
	summarizeinsight "crm-insights/internal/workers/ai-insights/summarize-insight"
)

// Input is one ask. Payload is the decoded request body; a nil Caller means
// the request is anonymous.
type Input struct {
	Caller    *models.Caller
	Payload   interface{}
	RequestID string
}

type Output = models.InsightAnswer

// jobVariables are the process variables an ask-insight job carries.
type jobVariables struct {
	Question interface{}    `json:"question"`
	Caller   *models.Caller `json:"caller"`
}

type ScopeResolver interface {
	Execute(ctx context.Context, input *resolvescope.Input) (*resolvescope.Output, error)
}

type Planner interface {
	Execute(ctx context.Context, input *planintent.Input) (*planintent.Output, error)
}

type Executor interface {
	Execute(ctx context.Context, input *queryopportunities.Input) (*queryopportunities.Output, error)
}

type Summarizer interface {
	Execute(ctx context.Context, input *summarizeinsight.Input) (*summarizeinsight.Output, error)
}

type RateLimiter interface {
	Enabled() bool
	Allow(ctx context.Context, userID int64) (bool, error)
}
