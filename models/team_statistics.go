package models

import "time"

// TeamStatistics is the global, cross-tournament aggregate for one team.
// Recomputed wholesale by the leaderboard service; Rank is assigned across
// all rows in a single transaction so readers never observe a partial
// ranking.
type TeamStatistics struct {
	ID                  int       `json:"id" db:"id"`
	TeamID              int       `json:"team_id" db:"team_id"`
	TournamentWins      int       `json:"tournament_wins" db:"tournament_wins"`
	TotalPositionPoints int       `json:"total_position_points" db:"total_position_points"`
	TotalKillPoints     int       `json:"total_kill_points" db:"total_kill_points"`
	TotalPoints         int       `json:"total_points" db:"total_points"`
	Rank                *int      `json:"rank,omitempty" db:"rank"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}

// UpdateTotalPoints recomputes the derived total from its components.
func (s *TeamStatistics) UpdateTotalPoints() {
	s.TotalPoints = s.TotalPositionPoints + s.TotalKillPoints
}
