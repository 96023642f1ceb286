// internal/workers/ai-insights/summarize-insight/handler_test.go
package summarizeinsight

import (
	"context"
	"errors"
	"testing"
	"time"

	"crm-insights/internal/common/llm"
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
	response    string
	err         error
	system      string
	prompt      string
	calls       int
	hadDeadline bool
}

func (f *fakeGenerator) GenerateStructured(ctx context.Context, prompt string, schema *genai.Schema) ([]byte, error) {
	return nil, errors.New("not used by the summarizer")
}

func (f *fakeGenerator) GenerateText(ctx context.Context, systemInstruction, prompt string) (string, error) {
	f.calls++
	f.system = systemInstruction
	f.prompt = prompt
	_, f.hadDeadline = ctx.Deadline()
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func sampleInput() *Input {
	return &Input{
		Question: "我有多少已关闭的商机？",
		Intent:   models.IntentCountOpportunities,
		Filters:  models.InsightFilters{Status: []string{"closed_won", "closed_lost"}},
		Result:   models.InsightResult{Intent: models.IntentCountOpportunities, Value: 5},
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	gen := &fakeGenerator{response: "  您共有 5 个已关闭的商机。\n"}
	h := NewHandler(createTestConfig(), gen, logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), sampleInput())

	require.NoError(t, err)
	assert.Equal(t, "您共有 5 个已关闭的商机。", out.Answer)
	assert.Equal(t, 1, gen.calls)
	assert.True(t, gen.hadDeadline)
	assert.Contains(t, gen.system, "不得编造")
}

func TestHandler_Execute_PromptEmbedsInputs(t *testing.T) {
	gen := &fakeGenerator{response: "ok"}
	h := NewHandler(createTestConfig(), gen, logger.NewNoOpLogger())

	_, err := h.Execute(context.Background(), sampleInput())
	require.NoError(t, err)

	assert.Contains(t, gen.prompt, "我有多少已关闭的商机？")
	assert.Contains(t, gen.prompt, "count_opportunities")
	assert.Contains(t, gen.prompt, `"status":["closed_won","closed_lost"]`)
	assert.Contains(t, gen.prompt, `{"value":5}`)
}

func TestHandler_Execute_BreakdownSerializedAsList(t *testing.T) {
	gen := &fakeGenerator{response: "ok"}
	h := NewHandler(createTestConfig(), gen, logger.NewNoOpLogger())

	input := &Input{
		Question: "各状态分布？",
		Intent:   models.IntentStatusBreakdown,
		Result: models.InsightResult{
			Intent:    models.IntentStatusBreakdown,
			Breakdown: []models.StatusCount{{Status: "new", Count: 4}},
		},
	}
	_, err := h.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.Contains(t, gen.prompt, `[{"status":"new","count":4}]`)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_Failures(t *testing.T) {
	tests := []struct {
		name string
		gen  *fakeGenerator
	}{
		{"upstream error", &fakeGenerator{err: errors.New("503 from upstream")}},
		{"empty response", &fakeGenerator{err: llm.ErrEmptyResponse}},
		{"whitespace answer", &fakeGenerator{response: "   \n"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(createTestConfig(), tt.gen, logger.NewTestLogger(t))

			out, err := h.Execute(context.Background(), sampleInput())

			assert.Nil(t, out)
			assert.ErrorIs(t, err, ErrSummarizerUnavailable)
		})
	}
}

func TestHandler_Execute_NilInput(t *testing.T) {
	gen := &fakeGenerator{}
	h := NewHandler(createTestConfig(), gen, logger.NewNoOpLogger())

	_, err := h.Execute(context.Background(), nil)

	assert.Error(t, err)
	assert.Equal(t, 0, gen.calls)
}
