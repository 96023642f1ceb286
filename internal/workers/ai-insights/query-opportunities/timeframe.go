// internal/workers/ai-insights/query-opportunities/timeframe.go
package queryopportunities

import (
	"fmt"
	"strings"
	"time"

	"crm-insights/internal/common/predicate"
	"crm-insights/internal/models"
)

const dateOnly = "2006-01-02"

// timeframePredicate converts a plan timeframe into a created_at constraint.
// last_days without a positive day count and between with a missing bound
// mean no constraint.
func timeframePredicate(tf *models.Timeframe, now time.Time, loc *time.Location) (predicate.Predicate, error) {
	if tf == nil {
		return predicate.MatchAll{}, nil
	}

	switch tf.Scope {
	case models.TimeframeAllTime, "":
		return predicate.MatchAll{}, nil

	case models.TimeframeLastDays:
		if tf.LastDays == nil || *tf.LastDays <= 0 {
			return predicate.MatchAll{}, nil
		}
		return predicate.AtLeast{
			Field: predicate.FieldCreatedAt,
			Value: now.AddDate(0, 0, -*tf.LastDays),
		}, nil

	case models.TimeframeBetween:
		if strings.TrimSpace(tf.StartDate) == "" || strings.TrimSpace(tf.EndDate) == "" {
			return predicate.MatchAll{}, nil
		}
		lo, _, err := parseBound(tf.StartDate, loc)
		if err != nil {
			return nil, fmt.Errorf("%w: startDate: %v", ErrInvalidTimeframe, err)
		}
		hi, dateOnlyHi, err := parseBound(tf.EndDate, loc)
		if err != nil {
			return nil, fmt.Errorf("%w: endDate: %v", ErrInvalidTimeframe, err)
		}
		if dateOnlyHi {
			hi = hi.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		return predicate.Between{Field: predicate.FieldCreatedAt, Lo: lo, Hi: hi}, nil

	default:
		return nil, fmt.Errorf("%w: scope %q", ErrInvalidTimeframe, tf.Scope)
	}
}

// parseBound accepts RFC 3339 timestamps and plain dates. The bool reports a
// plain date.
func parseBound(s string, loc *time.Location) (time.Time, bool, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(dateOnly, s, loc); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, false, nil
}
