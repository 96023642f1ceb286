// internal/workers/ai-insights/resolve-scope/config.go
package resolvescope

import (
	"time"

	"crm-insights/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		Timeout: config.GetDuration(cfg.Insights.QueryTimeout),
	}
}
