package models

import "time"

// MatchScore is one team's result in one match. Rows are written once when
// the host submits scores and are the ground truth for every aggregate.
// TotalPoints = PositionPoints + KillPoints; wins feed tie-breaks only.
type MatchScore struct {
	ID             int       `json:"id" db:"id"`
	MatchID        int       `json:"match_id" db:"match_id"`
	TeamID         int       `json:"team_id" db:"team_id"` // registration ID
	Wins           int       `json:"wins" db:"wins"`
	PositionPoints int       `json:"position_points" db:"position_points"`
	KillPoints     int       `json:"kill_points" db:"kill_points"`
	TotalPoints    int       `json:"total_points" db:"total_points"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// RoundScore is a team's aggregated total for one round, recomputed from
// MatchScore rows. It is a cache of the aggregation, never hand-edited.
type RoundScore struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	RoundNumber  int       `json:"round_number" db:"round_number"`
	TeamID       int       `json:"team_id" db:"team_id"` // registration ID
	TotalPoints  int       `json:"total_points" db:"total_points"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// GroupStanding is a computed per-team row of a group's ranking table.
type GroupStanding struct {
	TeamID         int    `json:"team_id"`
	TeamName       string `json:"team_name"`
	PositionPoints int    `json:"position_points"`
	KillPoints     int    `json:"kill_points"`
	Wins           int    `json:"wins"`
	TotalPoints    int    `json:"total_points"`
}
