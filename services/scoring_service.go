package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/scrimhub/tournament-platform/live"
	"github.com/scrimhub/tournament-platform/models"
	"github.com/scrimhub/tournament-platform/repositories"
)

// MatchScoreInput is one team's submitted result for a match.
type MatchScoreInput struct {
	TeamID         int `json:"team_id"`
	Wins           int `json:"wins"`
	PositionPoints int `json:"position_points"`
	KillPoints     int `json:"kill_points"`
}

// RoundGroupResult pairs a group with its ranked standings.
type RoundGroupResult struct {
	Group     *models.Group          `json:"group"`
	Standings []models.GroupStanding `json:"standings"`
}

type ScoringService interface {
	SubmitMatchScores(ctx context.Context, matchID int, entries []MatchScoreInput) ([]*models.MatchScore, error)
	GetGroupStandings(ctx context.Context, groupID int) ([]models.GroupStanding, error)
	GetRoundResults(ctx context.Context, tournamentID, roundNumber int) ([]RoundGroupResult, error)
	SelectQualifiers(ctx context.Context, groupID, qualifyingPerGroup int) ([]int, error)
	RecordRoundQualifiers(ctx context.Context, tournamentID, roundNumber int) ([]int, error)
	CalculateRoundScores(ctx context.Context, tournamentID, roundNumber int) error
	ComputeTournamentWinner(ctx context.Context, tournamentID int) (*models.Registration, error)
	ListMatchesMissingScores(ctx context.Context, tournamentID, roundNumber int) ([]models.Match, error)
}

type scoringService struct {
	runTx            txRunner
	tournamentRepo   repositories.TournamentRepository
	registrationRepo repositories.RegistrationRepository
	groupRepo        repositories.GroupRepository
	matchRepo        repositories.MatchRepository
	scoreRepo        repositories.MatchScoreRepository
	roundScoreRepo   repositories.RoundScoreRepository
	hub              *live.Hub
	logger           *slog.Logger
}

func NewScoringService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	registrationRepo repositories.RegistrationRepository,
	groupRepo repositories.GroupRepository,
	matchRepo repositories.MatchRepository,
	scoreRepo repositories.MatchScoreRepository,
	roundScoreRepo repositories.RoundScoreRepository,
	hub *live.Hub,
	logger *slog.Logger,
) ScoringService {
	return &scoringService{
		runTx:            sqlTxRunner(db),
		tournamentRepo:   tournamentRepo,
		registrationRepo: registrationRepo,
		groupRepo:        groupRepo,
		matchRepo:        matchRepo,
		scoreRepo:        scoreRepo,
		roundScoreRepo:   roundScoreRepo,
		hub:              hub,
		logger:           logger,
	}
}

// SubmitMatchScores records one MatchScore row per entry and completes the
// match in the same transaction, so a completed match always has its
// scores. Total points are position plus kill points; wins are kept for
// tie-breaking only.
func (s *scoringService) SubmitMatchScores(ctx context.Context, matchID int, entries []MatchScoreInput) ([]*models.MatchScore, error) {
	if len(entries) == 0 {
		return nil, ErrNoScoresSubmitted
	}

	match, err := s.matchRepo.GetByID(ctx, nil, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	if match.Status == models.MatchStatusWaiting {
		return nil, ErrMatchNotStarted
	}

	group, err := s.groupRepo.GetByID(ctx, nil, match.GroupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load group %d: %w", match.GroupID, err)
	}
	memberIDs, err := s.groupRepo.ListTeamIDs(ctx, nil, group.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load members of group %d: %w", group.ID, err)
	}
	members := make(map[int]bool, len(memberIDs))
	for _, id := range memberIDs {
		members[id] = true
	}

	for _, entry := range entries {
		if entry.Wins < 0 || entry.PositionPoints < 0 || entry.KillPoints < 0 {
			return nil, ErrNegativeScoreValues
		}
		if !members[entry.TeamID] {
			return nil, fmt.Errorf("%w: team %d, group %d", ErrTeamNotInGroup, entry.TeamID, group.ID)
		}
	}

	var created []*models.MatchScore
	err = s.runTx(ctx, func(tx *sql.Tx) error {
		for _, entry := range entries {
			score := &models.MatchScore{
				MatchID:        matchID,
				TeamID:         entry.TeamID,
				Wins:           entry.Wins,
				PositionPoints: entry.PositionPoints,
				KillPoints:     entry.KillPoints,
				TotalPoints:    entry.PositionPoints + entry.KillPoints,
			}
			if createErr := s.scoreRepo.Create(ctx, tx, score); createErr != nil {
				return createErr
			}
			created = append(created, score)
		}
		if match.Status != models.MatchStatusCompleted {
			if updErr := s.matchRepo.UpdateStatus(ctx, tx, matchID, models.MatchStatusCompleted); updErr != nil {
				return updErr
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "match scores submitted",
		slog.Int("match_id", matchID),
		slog.Int("group_id", group.ID),
		slog.Int("teams", len(created)))

	s.hub.BroadcastToRoom(tournamentRoom(group.TournamentID), live.Event{
		Type: live.EventScoresSubmitted,
		Payload: map[string]interface{}{
			"match_id": matchID,
			"group_id": group.ID,
			"scores":   created,
		},
	})

	return created, nil
}

// GetGroupStandings sums every member's scores across the group's matches
// and ranks them. Order: total points, then kill points, then wins, then
// lowest registration ID, so equal-on-points groups still rank
// deterministically.
func (s *scoringService) GetGroupStandings(ctx context.Context, groupID int) ([]models.GroupStanding, error) {
	group, err := s.groupRepo.GetByID(ctx, nil, groupID)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return s.groupStandings(ctx, group)
}

func (s *scoringService) groupStandings(ctx context.Context, group *models.Group) ([]models.GroupStanding, error) {
	teamIDs, err := s.groupRepo.ListTeamIDs(ctx, nil, group.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load members of group %d: %w", group.ID, err)
	}
	registrations, err := s.registrationRepo.ListByIDs(ctx, nil, teamIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load registrations for group %d: %w", group.ID, err)
	}
	names := make(map[int]string, len(registrations))
	for _, reg := range registrations {
		names[reg.ID] = reg.TeamName
	}

	standings := make([]models.GroupStanding, 0, len(teamIDs))
	for _, teamID := range teamIDs {
		totals, sumErr := s.scoreRepo.SumByGroupAndTeam(ctx, nil, group.ID, teamID)
		if sumErr != nil {
			return nil, fmt.Errorf("failed to sum scores for team %d in group %d: %w", teamID, group.ID, sumErr)
		}
		standings = append(standings, models.GroupStanding{
			TeamID:         teamID,
			TeamName:       names[teamID],
			PositionPoints: totals.PositionPoints,
			KillPoints:     totals.KillPoints,
			Wins:           totals.Wins,
			TotalPoints:    totals.TotalPoints(),
		})
	}

	sort.SliceStable(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		if a.KillPoints != b.KillPoints {
			return a.KillPoints > b.KillPoints
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		return a.TeamID < b.TeamID
	})

	return standings, nil
}

func (s *scoringService) GetRoundResults(ctx context.Context, tournamentID, roundNumber int) ([]RoundGroupResult, error) {
	roundGroups, err := s.groupRepo.ListByTournamentRound(ctx, nil, tournamentID, roundNumber)
	if err != nil {
		return nil, err
	}
	if len(roundGroups) == 0 {
		return nil, ErrRoundNotConfigured
	}

	results := make([]RoundGroupResult, 0, len(roundGroups))
	for _, group := range roundGroups {
		standings, standErr := s.groupStandings(ctx, group)
		if standErr != nil {
			return nil, standErr
		}
		results = append(results, RoundGroupResult{Group: group, Standings: standings})
	}
	return results, nil
}

// SelectQualifiers returns the top qualifyingPerGroup team IDs of the
// group's standings. Passing a non-positive count falls back to the count
// stored on the group. A group smaller than the count qualifies entirely.
func (s *scoringService) SelectQualifiers(ctx context.Context, groupID, qualifyingPerGroup int) ([]int, error) {
	group, err := s.groupRepo.GetByID(ctx, nil, groupID)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	if qualifyingPerGroup <= 0 {
		qualifyingPerGroup = group.QualifyingTeams
	}

	standings, err := s.groupStandings(ctx, group)
	if err != nil {
		return nil, err
	}
	if qualifyingPerGroup > len(standings) {
		qualifyingPerGroup = len(standings)
	}

	qualified := make([]int, 0, qualifyingPerGroup)
	for _, standing := range standings[:qualifyingPerGroup] {
		qualified = append(qualified, standing.TeamID)
	}
	return qualified, nil
}

// RecordRoundQualifiers merges each group's qualifiers and writes them to
// the tournament's selected-teams mapping under the round number, bumping
// the current round. The next round's ConfigureRound reads this entry.
func (s *scoringService) RecordRoundQualifiers(ctx context.Context, tournamentID, roundNumber int) ([]int, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	roundGroups, err := s.groupRepo.ListByTournamentRound(ctx, nil, tournamentID, roundNumber)
	if err != nil {
		return nil, err
	}
	if len(roundGroups) == 0 {
		return nil, ErrRoundNotConfigured
	}

	merged := make([]int, 0)
	for _, group := range roundGroups {
		qualified, selErr := s.SelectQualifiers(ctx, group.ID, group.QualifyingTeams)
		if selErr != nil {
			return nil, selErr
		}
		merged = append(merged, qualified...)
	}

	selected := tournament.SelectedTeams
	if selected == nil {
		selected = models.RoundQualifiers{}
	}
	selected[roundNumber] = merged

	currentRound := tournament.CurrentRound
	if roundNumber > currentRound {
		currentRound = roundNumber
	}
	if err := s.tournamentRepo.UpdateSelectedTeams(ctx, nil, tournamentID, selected, currentRound); err != nil {
		return nil, fmt.Errorf("failed to record round %d qualifiers: %w", roundNumber, err)
	}

	s.logger.InfoContext(ctx, "round qualifiers recorded",
		slog.Int("tournament_id", tournamentID),
		slog.Int("round", roundNumber),
		slog.Int("qualified", len(merged)))

	return merged, nil
}

// CalculateRoundScores recomputes every RoundScore of the round from the
// underlying MatchScore rows. Safe to run any number of times; unchanged
// match data always produces the same totals.
func (s *scoringService) CalculateRoundScores(ctx context.Context, tournamentID, roundNumber int) error {
	roundGroups, err := s.groupRepo.ListByTournamentRound(ctx, nil, tournamentID, roundNumber)
	if err != nil {
		return err
	}
	if len(roundGroups) == 0 {
		return ErrRoundNotConfigured
	}

	err = s.runTx(ctx, func(tx *sql.Tx) error {
		for _, group := range roundGroups {
			teamIDs, listErr := s.groupRepo.ListTeamIDs(ctx, tx, group.ID)
			if listErr != nil {
				return fmt.Errorf("failed to load members of group %d: %w", group.ID, listErr)
			}
			for _, teamID := range teamIDs {
				roundScore, getErr := s.roundScoreRepo.GetOrCreate(ctx, tx, tournamentID, roundNumber, teamID)
				if getErr != nil {
					return getErr
				}
				totals, sumErr := s.scoreRepo.SumByRoundAndTeam(ctx, tx, tournamentID, roundNumber, teamID)
				if sumErr != nil {
					return fmt.Errorf("failed to sum round scores for team %d: %w", teamID, sumErr)
				}
				if updErr := s.roundScoreRepo.UpdateTotal(ctx, tx, roundScore.ID, totals.TotalPoints()); updErr != nil {
					return updErr
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.hub.BroadcastToRoom(tournamentRoom(tournamentID), live.Event{
		Type: live.EventStandingsUpdated,
		Payload: map[string]interface{}{
			"tournament_id": tournamentID,
			"round_number":  roundNumber,
		},
	})
	return nil
}

// ComputeTournamentWinner resolves the champion from the final round's
// RoundScores only. A team that dominated earlier rounds but slips in the
// final round does not win; that is the competitive format, not an
// accident.
func (s *scoringService) ComputeTournamentWinner(ctx context.Context, tournamentID int) (*models.Registration, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	if tournament.WinnerTeamID != nil {
		return nil, ErrTournamentHasWinner
	}

	finalRound := tournament.FinalRound()
	if finalRound == 0 {
		return nil, ErrNoRoundsConfigured
	}

	finalScores, err := s.roundScoreRepo.ListByRound(ctx, nil, tournamentID, finalRound)
	if err != nil {
		return nil, err
	}
	if len(finalScores) == 0 {
		return nil, ErrNoScoresForRound
	}

	winner, err := s.registrationRepo.GetByID(ctx, nil, finalScores[0].TeamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load winning registration %d: %w", finalScores[0].TeamID, err)
	}

	if err := s.tournamentRepo.UpdateWinner(ctx, nil, tournamentID, &winner.ID); err != nil {
		return nil, fmt.Errorf("failed to record tournament winner: %w", err)
	}

	s.logger.InfoContext(ctx, "tournament winner decided",
		slog.Int("tournament_id", tournamentID),
		slog.Int("winner_registration_id", winner.ID),
		slog.String("team_name", winner.TeamName),
		slog.Int("final_round", finalRound))

	s.hub.BroadcastToRoom(tournamentRoom(tournamentID), live.Event{
		Type: live.EventWinnerDecided,
		Payload: map[string]interface{}{
			"tournament_id": tournamentID,
			"winner":        winner,
			"final_round":   finalRound,
		},
	})

	return winner, nil
}

// ListMatchesMissingScores reports completed matches of a round that have
// no score rows, so hosts can chase down unrecorded results.
func (s *scoringService) ListMatchesMissingScores(ctx context.Context, tournamentID, roundNumber int) ([]models.Match, error) {
	roundGroups, err := s.groupRepo.ListByTournamentRound(ctx, nil, tournamentID, roundNumber)
	if err != nil {
		return nil, err
	}

	missing := make([]models.Match, 0)
	for _, group := range roundGroups {
		matches, listErr := s.matchRepo.ListByGroup(ctx, nil, group.ID)
		if listErr != nil {
			return nil, listErr
		}
		for _, match := range matches {
			if match.Status != models.MatchStatusCompleted {
				continue
			}
			count, countErr := s.scoreRepo.CountByMatch(ctx, nil, match.ID)
			if countErr != nil {
				return nil, countErr
			}
			if count == 0 {
				missing = append(missing, *match)
			}
		}
	}
	return missing, nil
}
