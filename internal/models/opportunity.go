// internal/models/opportunity.go
package models

import "time"

// Opportunity is a sales lead or deal. The insight pipeline only reads it.
type Opportunity struct {
	ID             int64     `json:"id" db:"id"`
	Title          string    `json:"title" db:"title"`
	Status         string    `json:"status" db:"status"`
	ExpectedAmount string    `json:"expectedAmount" db:"expected_amount"`
	OwnerID        int64     `json:"ownerId" db:"owner_id"`
	TeamID         *int64    `json:"teamId,omitempty" db:"team_id"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}

const (
	StatusNew         = "new"
	StatusQualified   = "qualified"
	StatusProposition = "proposition"
	StatusNegotiation = "negotiation"
	StatusClosedWon   = "closed_won"
	StatusClosedLost  = "closed_lost"

	// legacy vocabulary still present on older rows
	StatusActive = "active"
	StatusClosed = "closed"
)

var statusAliases = map[string][]string{
	StatusClosed: {StatusClosed, StatusClosedWon, StatusClosedLost},
	StatusActive: {StatusActive, StatusNew, StatusQualified, StatusProposition, StatusNegotiation},
}

// ExpandStatuses widens legacy statuses into the stored values they cover,
// keeping first-seen order and dropping duplicates and blanks.
func ExpandStatuses(statuses []string) []string {
	if len(statuses) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(statuses))
	out := make([]string, 0, len(statuses))
	add := func(s string) {
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		out = append(out, s)
	}

	for _, s := range statuses {
		if expanded, ok := statusAliases[s]; ok {
			for _, e := range expanded {
				add(e)
			}
			continue
		}
		add(s)
	}
	return out
}
