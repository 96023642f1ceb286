// internal/models/session.go
package models

import "time"

// Session is the server-side record behind a bearer token.
type Session struct {
	ID            string    `json:"id"`
	UserID        int64     `json:"userId"`
	Role          string    `json:"role"`
	CurrentTeamID *int64    `json:"currentTeamId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

// IsExpired checks if session has expired. A zero ExpiresAt never expires.
func (s *Session) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

func (s *Session) Caller() Caller {
	return Caller{
		ID:            s.UserID,
		Role:          s.Role,
		CurrentTeamID: s.CurrentTeamID,
	}
}
