// internal/workers/ai-insights/query-opportunities/queries/opportunities.go
package queries

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"crm-insights/internal/models"
)

const opportunitiesTable = "opportunities"

func CountOpportunities(ctx context.Context, db *sql.DB, where string, args []interface{}) (*models.InsightResult, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, opportunitiesTable, where)

	var count int64
	if err := db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return nil, fmt.Errorf("count opportunities: %w", err)
	}

	return &models.InsightResult{
		Intent: models.IntentCountOpportunities,
		Value:  float64(count),
	}, nil
}

// SumExpectedAmount sums the text-typed expected_amount column. Blank
// amounts count as zero and an empty match sums to zero.
func SumExpectedAmount(ctx context.Context, db *sql.DB, where string, args []interface{}) (*models.InsightResult, error) {
	query := fmt.Sprintf(
		`SELECT COALESCE(SUM(NULLIF(TRIM(expected_amount), '')::numeric), 0)::text FROM %s WHERE %s`,
		opportunitiesTable, where,
	)

	var sum sql.NullString
	if err := db.QueryRowContext(ctx, query, args...).Scan(&sum); err != nil {
		return nil, fmt.Errorf("sum expected amount: %w", err)
	}

	value := 0.0
	if sum.Valid && sum.String != "" {
		parsed, err := strconv.ParseFloat(sum.String, 64)
		if err != nil {
			return nil, fmt.Errorf("parse expected amount sum %q: %w", sum.String, err)
		}
		value = parsed
	}

	return &models.InsightResult{
		Intent: models.IntentSumExpectedAmount,
		Value:  value,
	}, nil
}

func StatusBreakdown(ctx context.Context, db *sql.DB, where string, args []interface{}) (*models.InsightResult, error) {
	query := fmt.Sprintf(
		`SELECT status, COUNT(*) FROM %s WHERE %s GROUP BY status`,
		opportunitiesTable, where,
	)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("status breakdown: %w", err)
	}
	defer rows.Close()

	breakdown := []models.StatusCount{}
	for rows.Next() {
		var (
			status sql.NullString
			count  int64
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan status breakdown: %w", err)
		}
		breakdown = append(breakdown, models.StatusCount{Status: status.String, Count: count})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status breakdown: %w", err)
	}

	return &models.InsightResult{
		Intent:    models.IntentStatusBreakdown,
		Breakdown: breakdown,
	}, nil
}
