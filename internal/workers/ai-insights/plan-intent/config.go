// internal/workers/ai-insights/plan-intent/config.go
package planintent

import (
	"time"

	"crm-insights/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		Timeout: config.GetDuration(cfg.Insights.PlannerTimeout),
	}
}
