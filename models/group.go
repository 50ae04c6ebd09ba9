package models

import "time"

type GroupStatus string

const (
	GroupStatusPending   GroupStatus = "pending"
	GroupStatusOngoing   GroupStatus = "ongoing"
	GroupStatusCompleted GroupStatus = "completed"
)

// Group is a round-scoped bucket of registrations. Membership is fixed at
// creation time; teams are never reassigned mid-round.
type Group struct {
	ID              int         `json:"id" db:"id"`
	TournamentID    int         `json:"tournament_id" db:"tournament_id"`
	RoundNumber     int         `json:"round_number" db:"round_number"`
	Name            string      `json:"name" db:"name"`
	Status          GroupStatus `json:"status" db:"status"`
	QualifyingTeams int         `json:"qualifying_teams" db:"qualifying_teams"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`

	// Optional linked entities, populated by the service layer.
	TeamIDs []int   `json:"team_ids,omitempty" db:"-"`
	Matches []Match `json:"matches,omitempty" db:"-"`
}
