// internal/models/user.go
package models

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleUser    = "user"
)

// Caller is the authenticated identity behind an insight request.
type Caller struct {
	ID            int64  `json:"id"`
	Role          string `json:"role"`
	CurrentTeamID *int64 `json:"currentTeamId"`
}

// SeesEverything reports whether the role grants unrestricted visibility.
func (c Caller) SeesEverything() bool {
	return c.Role == RoleAdmin || c.Role == RoleManager
}
