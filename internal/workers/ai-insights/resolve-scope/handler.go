// internal/workers/ai-insights/resolve-scope/handler.go
package resolvescope

import (
	"context"
	"errors"
	"fmt"

	"crm-insights/internal/common/logger"
	"crm-insights/internal/common/predicate"
)

const (
	TaskType = "resolve-scope"
)

var (
	ErrMembershipLookupFailed = errors.New("MEMBERSHIP_LOOKUP_FAILED")
)

type Handler struct {
	config      *Config
	memberships MembershipStore
	logger      logger.Logger
}

func NewHandler(config *Config, memberships MembershipStore, log logger.Logger) *Handler {
	return &Handler{
		config:      config,
		memberships: memberships,
		logger:      log.With(map[string]interface{}{"taskType": TaskType}),
	}
}

// Execute derives the rows a caller may query:
//  1. a selected current team wins over everything, role included
//  2. admins and managers see all rows
//  3. otherwise the caller's teams, or only their own rows when teamless
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, fmt.Errorf("input cannot be nil")
	}
	caller := input.Caller

	if caller.CurrentTeamID != nil {
		return h.resolved(input, BasisCurrentTeam, predicate.Equals{
			Field: predicate.FieldTeamID,
			Value: *caller.CurrentTeamID,
		}), nil
	}

	if caller.SeesEverything() {
		return h.resolved(input, BasisAll, predicate.MatchAll{}), nil
	}

	if h.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.Timeout)
		defer cancel()
	}

	teamIDs, err := h.memberships.TeamIDs(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMembershipLookupFailed, err)
	}

	if len(teamIDs) > 0 {
		return h.resolved(input, BasisMemberTeams, predicate.Int64Set(predicate.FieldTeamID, teamIDs)), nil
	}

	return h.resolved(input, BasisOwner, predicate.Equals{
		Field: predicate.FieldOwnerID,
		Value: caller.ID,
	}), nil
}

func (h *Handler) resolved(input *Input, basis Basis, scope predicate.Predicate) *Output {
	h.logger.Debug("scope resolved", map[string]interface{}{
		"userId": input.Caller.ID,
		"role":   input.Caller.Role,
		"basis":  string(basis),
		"scope":  predicate.Describe(scope),
	})
	return &Output{Scope: scope, Basis: basis}
}
