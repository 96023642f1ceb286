// internal/common/config/loader_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const minimalConfig = `
database:
  postgres:
    host: localhost
    database: crm
    user: crm
  redis:
    address: localhost:6379
`

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	t.Setenv("GENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := LoadFromFile(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, "gemini-2.5-flash", cfg.APIs.GenAI.Model)
	assert.Equal(t, 30000, cfg.Insights.PlannerTimeout)
	assert.Equal(t, 10000, cfg.Insights.QueryTimeout)
	assert.Equal(t, 30000, cfg.Insights.SummarizerTimeout)
	assert.Equal(t, "session:token:", cfg.Auth.SessionPrefix)
	assert.Equal(t, "crm-insights", cfg.Observability.ServiceName)
	assert.False(t, cfg.Camunda.Enabled())
	assert.False(t, cfg.APIs.GenAI.Configured())
}

func TestLoadFromFile_ExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("TEST_GENAI_KEY", "secret-key")

	cfg, err := LoadFromFile(writeConfig(t, minimalConfig+`
apis:
  genai:
    api_key: ${TEST_GENAI_KEY}
insights:
  rate_limit:
    requests: 20
`))
	require.NoError(t, err)

	assert.Equal(t, "secret-key", cfg.APIs.GenAI.APIKey)
	assert.True(t, cfg.APIs.GenAI.Configured())
	assert.Equal(t, 20, cfg.Insights.RateLimit.Requests)
	assert.Equal(t, 60, cfg.Insights.RateLimit.Window)
}

func TestLoadFromFile_EnvOverridesEmptySecrets(t *testing.T) {
	t.Setenv("GENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "gemini-key")
	t.Setenv("DB_PASSWORD", "pw")

	cfg, err := LoadFromFile(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "gemini-key", cfg.APIs.GenAI.APIKey)
	assert.Equal(t, "pw", cfg.Database.Postgres.Password)
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "missing postgres host",
			body:    "database:\n  postgres:\n    database: crm\n    user: crm\n  redis:\n    address: x:1\n",
			wantErr: "database.postgres.host is required",
		},
		{
			name:    "missing redis address",
			body:    "database:\n  postgres:\n    host: h\n    database: crm\n    user: crm\n",
			wantErr: "database.redis.address is required",
		},
		{
			name:    "negative rate limit",
			body:    minimalConfig + "insights:\n  rate_limit:\n    requests: -1\n",
			wantErr: "insights.rate_limit.requests must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DB_USER", "")
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}

func TestGetWorkerConfig(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"ask-insight": {Enabled: false, MaxJobsActive: 2, Timeout: 1000},
	}}

	assert.Equal(t, 2, GetWorkerConfig(cfg, "ask-insight").MaxJobsActive)
	assert.False(t, IsWorkerEnabled(cfg, "ask-insight"))
	assert.True(t, IsWorkerEnabled(cfg, "unknown"))
	assert.Equal(t, 5, GetWorkerConfig(cfg, "unknown").MaxJobsActive)
}
