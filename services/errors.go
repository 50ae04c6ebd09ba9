package services

import "errors"

// Shared service-layer errors; handlers map these onto HTTP statuses.
var (
	// Round configuration
	ErrNoTeamsForRound        = errors.New("no teams available for this round")
	ErrRoundAlreadyConfigured = errors.New("groups already exist for this round")
	ErrRoundNotConfigured     = errors.New("requested round is not configured for this tournament")

	// Scoring
	ErrNoScoresSubmitted   = errors.New("at least one score entry is required")
	ErrTeamNotInGroup      = errors.New("team is not a member of this match's group")
	ErrNegativeScoreValues = errors.New("score values cannot be negative")
	ErrMatchNotStarted     = errors.New("match room has not been opened yet")

	// Winner resolution
	ErrNoRoundsConfigured  = errors.New("tournament has no rounds configured")
	ErrNoScoresForRound    = errors.New("no scores found for round")
	ErrTournamentHasWinner = errors.New("tournament winner already decided")

	// Tournament lifecycle
	ErrTournamentTitleRequired           = errors.New("tournament title is required")
	ErrTournamentInvalidDateRange        = errors.New("tournament end must be after start")
	ErrTournamentInvalidCapacity         = errors.New("tournament max slots must be positive")
	ErrTournamentInvalidRounds           = errors.New("tournament round numbers must be positive and unique")
	ErrTournamentInvalidStatusTransition = errors.New("invalid tournament status transition")
	ErrTournamentNotEditable             = errors.New("tournament can only be edited before it starts")

	// Registration
	ErrRegistrationClosed    = errors.New("tournament registration is closed")
	ErrTournamentFull        = errors.New("tournament registration is full")
	ErrRegistrationNotActive = errors.New("registration is cancelled")
	ErrTeamNameRequired      = errors.New("team name is required")

	// Entity-specific not-found
	ErrTournamentNotFound   = errors.New("tournament not found")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrGroupNotFound        = errors.New("group not found")
	ErrMatchNotFound        = errors.New("match not found")

	// Authorization
	ErrHostActionRequired = errors.New("only the tournament host can perform this action")
)
