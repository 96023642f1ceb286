// internal/workers/ai-insights/query-opportunities/config.go
package queryopportunities

import (
	"time"

	"crm-insights/internal/common/config"
)

type Config struct {
	Timeout time.Duration
	// Location interprets date-only timeframe bounds.
	Location *time.Location
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		Timeout:  config.GetDuration(cfg.Insights.QueryTimeout),
		Location: time.UTC,
	}
}
