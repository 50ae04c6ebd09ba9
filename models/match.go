package models

import "time"

type MatchStatus string

const (
	MatchStatusWaiting   MatchStatus = "waiting"
	MatchStatusOngoing   MatchStatus = "ongoing"
	MatchStatusCompleted MatchStatus = "completed"
)

// Match is one game instance within a group. Matches are created in a
// fixed batch when the round is configured; room credentials are filled
// in by the host when the lobby opens.
type Match struct {
	ID           int         `json:"id" db:"id"`
	GroupID      int         `json:"group_id" db:"group_id"`
	MatchNumber  int         `json:"match_number" db:"match_number"`
	Status       MatchStatus `json:"status" db:"status"`
	RoomID       *string     `json:"room_id,omitempty" db:"room_id"`
	RoomPassword *string     `json:"room_password,omitempty" db:"room_password"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
}
