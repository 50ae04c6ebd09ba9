package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// TournamentStatus mirrors the tournament_status ENUM in the database.
type TournamentStatus string

const (
	TournamentStatusUpcoming  TournamentStatus = "upcoming"
	TournamentStatusOngoing   TournamentStatus = "ongoing"
	TournamentStatusCompleted TournamentStatus = "completed"
)

// RoundConfig describes one configured round of a tournament.
// Rounds are stored as an ordered JSONB list on the tournament row,
// not as a separate table.
type RoundConfig struct {
	Round           int     `json:"round"`
	MaxTeams        int     `json:"max_teams"`
	QualifyingTeams int     `json:"qualifying_teams"`
	Name            *string `json:"name,omitempty"`
}

// RoundConfigList is the JSONB column type for Tournament.Rounds.
type RoundConfigList []RoundConfig

func (l RoundConfigList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return json.Marshal(l)
}

func (l *RoundConfigList) Scan(src interface{}) error {
	if src == nil {
		*l = RoundConfigList{}
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into RoundConfigList", src)
	}
	return json.Unmarshal(b, l)
}

// RoundQualifiers maps a round number to the registration IDs that
// qualified from it. encoding/json serializes integer map keys as strings,
// so the persisted JSONB keeps the string-keyed shape older data was
// written with while code works with int keys.
type RoundQualifiers map[int][]int

func (q RoundQualifiers) Value() (driver.Value, error) {
	if q == nil {
		return "{}", nil
	}
	return json.Marshal(q)
}

func (q *RoundQualifiers) Scan(src interface{}) error {
	if src == nil {
		*q = RoundQualifiers{}
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into RoundQualifiers", src)
	}
	return json.Unmarshal(b, q)
}

// Tournament is the root aggregate. Rounds and SelectedTeams are owned by
// the tournament row itself; groups, matches and scores hang off it.
type Tournament struct {
	ID              int              `json:"id" db:"id"`
	Title           string           `json:"title" db:"title"`
	Description     *string          `json:"description,omitempty" db:"description"`
	HostID          int              `json:"host_id" db:"host_id"`
	Status          TournamentStatus `json:"status" db:"status"`
	Rounds          RoundConfigList  `json:"rounds" db:"rounds"`
	SelectedTeams   RoundQualifiers  `json:"selected_teams" db:"selected_teams"`
	CurrentRound    int              `json:"current_round" db:"current_round"`
	MaxSlots        int              `json:"max_slots" db:"max_slots"`
	TournamentStart time.Time        `json:"tournament_start" db:"tournament_start"`
	TournamentEnd   time.Time        `json:"tournament_end" db:"tournament_end"`
	WinnerTeamID    *int             `json:"winner_team_id,omitempty" db:"winner_team_id"`
	CreatedAt       time.Time        `json:"created_at" db:"created_at"`
	BannerKey       *string          `json:"-" db:"banner_key"`
	BannerURL       *string          `json:"banner_url,omitempty" db:"-"`

	// Optional linked entities, populated by the service layer.
	Registrations []Registration `json:"registrations,omitempty" db:"-"`
	Groups        []Group        `json:"groups,omitempty" db:"-"`
}

// FinalRound returns the highest configured round number,
// or 0 when no rounds are configured.
func (t *Tournament) FinalRound() int {
	final := 0
	for _, r := range t.Rounds {
		if r.Round > final {
			final = r.Round
		}
	}
	return final
}
