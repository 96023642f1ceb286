// internal/workers/ai-insights/resolve-scope/models.go
package resolvescope

import (
	"crm-insights/internal/common/predicate"
	"crm-insights/internal/models"
)

// Basis names the rule that produced a scope.
type Basis string

const (
	BasisCurrentTeam Basis = "current_team"
	BasisAll         Basis = "all"
	BasisMemberTeams Basis = "member_teams"
	BasisOwner       Basis = "owner"
)

type Input struct {
	Caller models.Caller `json:"caller"`
}

type Output struct {
	Scope predicate.Predicate `json:"-"`
	Basis Basis               `json:"basis"`
}
