// internal/workers/ai-insights/ask-insight/pipeline_test.go
package askinsight

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"crm-insights/internal/common/logger"
	"crm-insights/internal/models"
	planintent "crm-insights/internal/workers/ai-insights/plan-intent"
	queryopportunities "crm-insights/internal/workers/ai-insights/query-opportunities"
	resolvescope "crm-insights/internal/workers/ai-insights/resolve-scope"
	summarizeinsight "crm-insights/internal/workers/ai-insights/summarize-insight"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// scriptedGenerator answers the planner with plan and the summarizer with answer.
type scriptedGenerator struct {
	plan       string
	answer     string
	structured int
	text       int
}

func (g *scriptedGenerator) GenerateStructured(ctx context.Context, prompt string, schema *genai.Schema) ([]byte, error) {
	g.structured++
	return []byte(g.plan), nil
}

func (g *scriptedGenerator) GenerateText(ctx context.Context, systemInstruction, prompt string) (string, error) {
	g.text++
	if g.answer == "" {
		return "", errors.New("no answer scripted")
	}
	return g.answer, nil
}

func newRealHandler(t *testing.T, gen *scriptedGenerator, now time.Time) (*Handler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := logger.NewTestLogger(t)
	executor := queryopportunities.NewHandler(&queryopportunities.Config{Timeout: time.Second}, db, log)
	executor.SetClock(func() time.Time { return now })

	deps := Dependencies{
		Scope:      resolvescope.NewHandler(&resolvescope.Config{Timeout: time.Second}, resolvescope.NewPostgresMembershipStore(db), log),
		Planner:    planintent.NewHandler(&planintent.Config{Timeout: time.Second}, gen, log),
		Executor:   executor,
		Summarizer: summarizeinsight.NewHandler(&summarizeinsight.Config{Timeout: time.Second}, gen, log),
	}
	return NewHandler(createTestConfig(), deps, log), mock
}

func TestPipeline_ScenarioA_TeamlessUserClosedCount(t *testing.T) {
	gen := &scriptedGenerator{
		plan:   `{"intent":"count_opportunities","filters":{"status":["closed_won","closed_lost"]}}`,
		answer: "您目前共有 4 个已关闭的商机。",
	}
	h, mock := newRealHandler(t, gen, time.Now())

	mock.ExpectQuery(`SELECT team_id FROM team_members WHERE user_id = $1 ORDER BY team_id`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"team_id"}))
	mock.ExpectQuery(`SELECT COUNT(*) FROM opportunities WHERE (owner_id = $1 AND status IN ($2, $3))`).
		WithArgs(int64(7), "closed_won", "closed_lost").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(4)))

	out, err := h.Execute(context.Background(), &Input{
		Caller:  &models.Caller{ID: 7, Role: models.RoleUser},
		Payload: ask("How many opportunities are currently closed?"),
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())

	body, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"success": true,
		"intent": "count_opportunities",
		"filters": {"status": ["closed_won", "closed_lost"]},
		"data": {"value": 4},
		"answer": "您目前共有 4 个已关闭的商机。"
	}`, string(body))
}

func TestPipeline_ScenarioB_CurrentTeamPipelineValue(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	gen := &scriptedGenerator{
		plan:   `{"intent":"sum_expected_amount","filters":{"timeframe":{"scope":"last_days","lastDays":90}}}`,
		answer: "本季度团队预计金额合计 350.5。",
	}
	h, mock := newRealHandler(t, gen, now)
	team := int64(3)

	// a selected team needs no membership lookup
	mock.ExpectQuery(`SELECT COALESCE(SUM(NULLIF(TRIM(expected_amount), '')::numeric), 0)::text FROM opportunities WHERE (team_id = $1 AND created_at >= $2)`).
		WithArgs(team, now.AddDate(0, 0, -90)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow("350.50"))

	out, err := h.Execute(context.Background(), &Input{
		Caller:  &models.Caller{ID: 1, Role: models.RoleAdmin, CurrentTeamID: &team},
		Payload: ask("What's our total pipeline value this quarter?"),
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, models.IntentSumExpectedAmount, out.Intent)
	assert.Equal(t, 350.5, out.Data.Value)
	assert.Equal(t, 1, gen.structured)
	assert.Equal(t, 1, gen.text)
}

func TestPipeline_SchemaViolationNeverReachesDatabase(t *testing.T) {
	gen := &scriptedGenerator{plan: `{"intent":"list_opportunities"}`, answer: "unused"}
	h, mock := newRealHandler(t, gen, time.Now())

	_, err := h.Execute(context.Background(), &Input{
		Caller:  &models.Caller{ID: 7, Role: models.RoleUser},
		Payload: ask("列出所有商机"),
	})

	assert.Equal(t, "PLANNER_SCHEMA_VIOLATION", string(errorCode(t, err)))
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Zero(t, gen.text)
}
