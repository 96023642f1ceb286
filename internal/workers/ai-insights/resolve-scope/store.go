// internal/workers/ai-insights/resolve-scope/store.go
package resolvescope

import (
	"context"
	"database/sql"
	"fmt"
)

// MembershipStore lists the teams a user belongs to.
type MembershipStore interface {
	TeamIDs(ctx context.Context, userID int64) ([]int64, error)
}

type PostgresMembershipStore struct {
	db *sql.DB
}

func NewPostgresMembershipStore(db *sql.DB) *PostgresMembershipStore {
	return &PostgresMembershipStore{db: db}
}

const teamIDsQuery = `SELECT team_id FROM team_members WHERE user_id = $1 ORDER BY team_id`

func (s *PostgresMembershipStore) TeamIDs(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, teamIDsQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("query team memberships: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan team membership: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate team memberships: %w", err)
	}
	return ids, nil
}
