// internal/workers/ai-insights/ask-insight/config.go
package askinsight

import (
	"time"

	"crm-insights/internal/common/config"
)

type Config struct {
	// JobTimeout bounds one workflow job end to end.
	JobTimeout    time.Duration
	MaxJobsActive int
}

func LoadConfig(cfg *config.Config) *Config {
	wc := config.GetWorkerConfig(cfg, TaskType)

	c := &Config{
		JobTimeout:    config.GetDuration(wc.Timeout),
		MaxJobsActive: wc.MaxJobsActive,
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = config.GetDuration(cfg.Insights.PlannerTimeout + cfg.Insights.QueryTimeout + cfg.Insights.SummarizerTimeout)
	}
	if c.MaxJobsActive <= 0 {
		c.MaxJobsActive = 5
	}
	return c
}
