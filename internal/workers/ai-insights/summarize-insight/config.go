// internal/workers/ai-insights/summarize-insight/config.go
package summarizeinsight

import (
	"time"

	"crm-insights/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		Timeout: config.GetDuration(cfg.Insights.SummarizerTimeout),
	}
}
