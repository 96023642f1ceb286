// internal/workers/ai-insights/plan-intent/handler_test.go
package planintent

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"crm-insights/internal/common/logger"
	"crm-insights/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second}
}

type fakeGenerator struct {
	response   string
	err        error
	prompt     string
	schema     *genai.Schema
	structured int
}

func (f *fakeGenerator) GenerateStructured(ctx context.Context, prompt string, schema *genai.Schema) ([]byte, error) {
	f.structured++
	f.prompt = prompt
	f.schema = schema
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.response), nil
}

func (f *fakeGenerator) GenerateText(ctx context.Context, systemInstruction, prompt string) (string, error) {
	return "", errors.New("not used by the planner")
}

func newTestHandler(t *testing.T, gen *fakeGenerator) *Handler {
	h := NewHandler(createTestConfig(), gen, logger.NewTestLogger(t))
	h.now = func() time.Time { return time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC) }
	return h
}

func intPtr(v int) *int { return &v }

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_ValidPlans(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     models.InsightPlan
	}{
		{
			name:     "count with status filter",
			response: `{"intent":"count_opportunities","filters":{"status":["closed_won","closed_lost"]},"rationale":"问的是已关闭商机数量"}`,
			want: models.InsightPlan{
				Intent:    models.IntentCountOpportunities,
				Filters:   models.InsightFilters{Status: []string{"closed_won", "closed_lost"}},
				Rationale: "问的是已关闭商机数量",
			},
		},
		{
			name:     "sum over last days",
			response: `{"intent":"sum_expected_amount","filters":{"timeframe":{"scope":"last_days","lastDays":90}}}`,
			want: models.InsightPlan{
				Intent: models.IntentSumExpectedAmount,
				Filters: models.InsightFilters{Timeframe: &models.Timeframe{
					Scope:    models.TimeframeLastDays,
					LastDays: intPtr(90),
				}},
			},
		},
		{
			name:     "breakdown without filters",
			response: `{"intent":"status_breakdown"}`,
			want:     models.InsightPlan{Intent: models.IntentStatusBreakdown},
		},
		{
			name:     "nulls are dropped",
			response: `{"intent":"count_opportunities","filters":{"status":null,"timeframe":null},"rationale":null}`,
			want:     models.InsightPlan{Intent: models.IntentCountOpportunities},
		},
		{
			name:     "between bounds trimmed and blank statuses removed",
			response: `{"intent":"count_opportunities","filters":{"status":[" new ",""],"timeframe":{"scope":"between","startDate":" 2024-01-01","endDate":"2024-03-31 "}}}`,
			want: models.InsightPlan{
				Intent: models.IntentCountOpportunities,
				Filters: models.InsightFilters{
					Status: []string{"new"},
					Timeframe: &models.Timeframe{
						Scope:     models.TimeframeBetween,
						StartDate: "2024-01-01",
						EndDate:   "2024-03-31",
					},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{response: tt.response}
			output, err := newTestHandler(t, gen).Execute(context.Background(), &Input{Question: "q"})

			require.NoError(t, err)
			assert.Equal(t, tt.want, output.Plan)
			assert.Equal(t, 1, gen.structured)
		})
	}
}

func TestHandler_Execute_SchemaViolations(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"unknown intent", `{"intent":"list_opportunities"}`},
		{"missing intent", `{"filters":{}}`},
		{"intent wrong type", `{"intent":3}`},
		{"extra top-level key", `{"intent":"status_breakdown","sql":"DROP TABLE opportunities"}`},
		{"unknown timeframe scope", `{"intent":"count_opportunities","filters":{"timeframe":{"scope":"this_quarter"}}}`},
		{"timeframe without scope", `{"intent":"count_opportunities","filters":{"timeframe":{"lastDays":30}}}`},
		{"fractional lastDays", `{"intent":"count_opportunities","filters":{"timeframe":{"scope":"last_days","lastDays":7.5}}}`},
		{"zero lastDays", `{"intent":"count_opportunities","filters":{"timeframe":{"scope":"last_days","lastDays":0}}}`},
		{"negative lastDays", `{"intent":"count_opportunities","filters":{"timeframe":{"scope":"last_days","lastDays":-30}}}`},
		{"lastDays beyond int range", `{"intent":"count_opportunities","filters":{"timeframe":{"scope":"last_days","lastDays":1e19}}}`},
		{"lastDays beyond a century", `{"intent":"count_opportunities","filters":{"timeframe":{"scope":"last_days","lastDays":10000000}}}`},
		{"status not a list", `{"intent":"count_opportunities","filters":{"status":"closed"}}`},
		{"not json", `intent: count_opportunities`},
		{"json array", `["count_opportunities"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{response: tt.response}
			_, err := newTestHandler(t, gen).Execute(context.Background(), &Input{Question: "q"})

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrPlannerSchemaViolation)
		})
	}
}

func TestHandler_Execute_GeneratorFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("401 API key not valid")}
	_, err := newTestHandler(t, gen).Execute(context.Background(), &Input{Question: "q"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPlannerUnavailable)
	assert.NotErrorIs(t, err, ErrPlannerSchemaViolation)
}

func TestHandler_Execute_PromptAndSchema(t *testing.T) {
	gen := &fakeGenerator{response: `{"intent":"status_breakdown"}`}
	_, err := newTestHandler(t, gen).Execute(context.Background(), &Input{Question: "各状态的商机分别有多少？"})
	require.NoError(t, err)

	for _, intent := range models.Intents {
		assert.Contains(t, gen.prompt, string(intent))
	}
	assert.Contains(t, gen.prompt, "各状态的商机分别有多少？")
	assert.Contains(t, gen.prompt, "2024-06-15")
	assert.True(t, strings.Contains(gen.prompt, "按状态分组统计商机数量"))

	require.NotNil(t, gen.schema)
	assert.Equal(t, []string{"intent"}, gen.schema.Required)
	assert.ElementsMatch(t, []string{"count_opportunities", "sum_expected_amount", "status_breakdown"}, gen.schema.Properties["intent"].Enum)
}

func TestHandler_Execute_NilInput(t *testing.T) {
	_, err := newTestHandler(t, &fakeGenerator{}).Execute(context.Background(), nil)
	assert.Error(t, err)
}
