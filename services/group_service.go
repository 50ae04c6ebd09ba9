package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/scrimhub/tournament-platform/groups"
	"github.com/scrimhub/tournament-platform/live"
	"github.com/scrimhub/tournament-platform/models"
	"github.com/scrimhub/tournament-platform/repositories"
)

// ConfigureRoundInput carries the host's settings for one round.
type ConfigureRoundInput struct {
	RoundNumber        int `json:"round_number"`
	TeamsPerGroup      int `json:"teams_per_group"`
	QualifyingPerGroup int `json:"qualifying_per_group"`
	MatchesPerGroup    int `json:"matches_per_group"`
}

type GroupService interface {
	// ConfigureRound partitions the round's team pool into groups and
	// creates their match slots, all inside one transaction.
	ConfigureRound(ctx context.Context, tournamentID int, input ConfigureRoundInput) ([]*models.Group, error)
	GetGroup(ctx context.Context, groupID int) (*models.Group, error)
	ListRoundGroups(ctx context.Context, tournamentID, roundNumber int) ([]*models.Group, error)
	RefreshGroupStatuses(ctx context.Context, tournamentID, roundNumber int) (int, error)
}

type groupService struct {
	runTx            txRunner
	tournamentRepo   repositories.TournamentRepository
	registrationRepo repositories.RegistrationRepository
	groupRepo        repositories.GroupRepository
	matchRepo        repositories.MatchRepository
	scoreRepo        repositories.MatchScoreRepository
	hub              *live.Hub
	logger           *slog.Logger

	// rng is injectable so tests can seed the shuffle; nil falls back to
	// the shared non-deterministic source, which is the production
	// fairness choice (no team benefits from registration order).
	rng *rand.Rand
}

func NewGroupService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	registrationRepo repositories.RegistrationRepository,
	groupRepo repositories.GroupRepository,
	matchRepo repositories.MatchRepository,
	scoreRepo repositories.MatchScoreRepository,
	hub *live.Hub,
	logger *slog.Logger,
	rng *rand.Rand,
) GroupService {
	return &groupService{
		runTx:            sqlTxRunner(db),
		tournamentRepo:   tournamentRepo,
		registrationRepo: registrationRepo,
		groupRepo:        groupRepo,
		matchRepo:        matchRepo,
		scoreRepo:        scoreRepo,
		hub:              hub,
		logger:           logger,
		rng:              rng,
	}
}

func (s *groupService) ConfigureRound(ctx context.Context, tournamentID int, input ConfigureRoundInput) ([]*models.Group, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}

	pool, err := s.roundTeamPool(ctx, tournament, input.RoundNumber)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, ErrNoTeamsForRound
	}

	numGroups, distribution, err := groups.CalculateGroups(len(pool), input.TeamsPerGroup)
	if err != nil {
		return nil, err
	}

	s.shuffle(pool)

	var created []*models.Group
	err = s.runTx(ctx, func(tx *sql.Tx) error {
		existing, countErr := s.groupRepo.CountByTournamentRound(ctx, tx, tournamentID, input.RoundNumber)
		if countErr != nil {
			return fmt.Errorf("failed to check existing groups: %w", countErr)
		}
		if existing > 0 {
			return ErrRoundAlreadyConfigured
		}

		teamIndex := 0
		for groupNum := 0; groupNum < numGroups; groupNum++ {
			group := &models.Group{
				TournamentID:    tournamentID,
				RoundNumber:     input.RoundNumber,
				Name:            groups.GroupName(groupNum),
				Status:          models.GroupStatusPending,
				QualifyingTeams: input.QualifyingPerGroup,
			}
			if createErr := s.groupRepo.Create(ctx, tx, group); createErr != nil {
				return fmt.Errorf("failed to create %s: %w", group.Name, createErr)
			}

			size := distribution[groupNum]
			for _, reg := range pool[teamIndex : teamIndex+size] {
				group.TeamIDs = append(group.TeamIDs, reg.ID)
			}
			if setErr := s.groupRepo.SetTeams(ctx, tx, group.ID, group.TeamIDs); setErr != nil {
				return fmt.Errorf("failed to assign teams to %s: %w", group.Name, setErr)
			}

			matches, matchErr := s.createMatchesForGroup(ctx, tx, group, input.MatchesPerGroup)
			if matchErr != nil {
				return matchErr
			}
			group.Matches = matches

			created = append(created, group)
			teamIndex += size
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "round configured",
		slog.Int("tournament_id", tournamentID),
		slog.Int("round", input.RoundNumber),
		slog.Int("groups", len(created)),
		slog.Int("teams", len(pool)))

	s.hub.BroadcastToRoom(tournamentRoom(tournamentID), live.Event{
		Type: live.EventRoundConfigured,
		Payload: map[string]interface{}{
			"tournament_id": tournamentID,
			"round_number":  input.RoundNumber,
			"groups":        created,
		},
	})

	return created, nil
}

// roundTeamPool resolves which registrations play the given round: every
// confirmed registration for round one, the previous round's recorded
// qualifiers afterwards.
func (s *groupService) roundTeamPool(ctx context.Context, tournament *models.Tournament, roundNumber int) ([]*models.Registration, error) {
	if roundNumber == 1 {
		confirmed := models.RegistrationStatusConfirmed
		pool, err := s.registrationRepo.ListByTournament(ctx, nil, tournament.ID, &confirmed)
		if err != nil {
			return nil, fmt.Errorf("failed to list confirmed registrations: %w", err)
		}
		return pool, nil
	}

	qualifiedIDs := tournament.SelectedTeams[roundNumber-1]
	pool, err := s.registrationRepo.ListByIDs(ctx, nil, qualifiedIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load round %d qualifiers: %w", roundNumber-1, err)
	}
	return pool, nil
}

func (s *groupService) shuffle(pool []*models.Registration) {
	swap := func(i, j int) { pool[i], pool[j] = pool[j], pool[i] }
	if s.rng != nil {
		s.rng.Shuffle(len(pool), swap)
	} else {
		rand.Shuffle(len(pool), swap)
	}
}

func (s *groupService) createMatchesForGroup(ctx context.Context, exec repositories.SQLExecutor, group *models.Group, numMatches int) ([]models.Match, error) {
	matches := make([]models.Match, 0, numMatches)
	for matchNum := 1; matchNum <= numMatches; matchNum++ {
		match := &models.Match{
			GroupID:     group.ID,
			MatchNumber: matchNum,
			Status:      models.MatchStatusWaiting,
		}
		if err := s.matchRepo.Create(ctx, exec, match); err != nil {
			return nil, fmt.Errorf("failed to create match %d for %s: %w", matchNum, group.Name, err)
		}
		matches = append(matches, *match)
	}
	return matches, nil
}

func (s *groupService) GetGroup(ctx context.Context, groupID int) (*models.Group, error) {
	group, err := s.groupRepo.GetByID(ctx, nil, groupID)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	if err := s.populateGroup(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

func (s *groupService) ListRoundGroups(ctx context.Context, tournamentID, roundNumber int) ([]*models.Group, error) {
	roundGroups, err := s.groupRepo.ListByTournamentRound(ctx, nil, tournamentID, roundNumber)
	if err != nil {
		return nil, err
	}
	for _, group := range roundGroups {
		if err := s.populateGroup(ctx, group); err != nil {
			return nil, err
		}
	}
	return roundGroups, nil
}

func (s *groupService) populateGroup(ctx context.Context, group *models.Group) error {
	teamIDs, err := s.groupRepo.ListTeamIDs(ctx, nil, group.ID)
	if err != nil {
		return fmt.Errorf("failed to load members of group %d: %w", group.ID, err)
	}
	group.TeamIDs = teamIDs

	matches, err := s.matchRepo.ListByGroup(ctx, nil, group.ID)
	if err != nil {
		return fmt.Errorf("failed to load matches of group %d: %w", group.ID, err)
	}
	group.Matches = make([]models.Match, 0, len(matches))
	for _, m := range matches {
		group.Matches = append(group.Matches, *m)
	}
	return nil
}

// RefreshGroupStatuses infers group statuses from match progress: a group
// completes when every match is completed and has scores recorded, and is
// ongoing once any match has completed. Returns how many groups changed.
func (s *groupService) RefreshGroupStatuses(ctx context.Context, tournamentID, roundNumber int) (int, error) {
	roundGroups, err := s.groupRepo.ListByTournamentRound(ctx, nil, tournamentID, roundNumber)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, group := range roundGroups {
		matches, listErr := s.matchRepo.ListByGroup(ctx, nil, group.ID)
		if listErr != nil {
			return updated, listErr
		}

		completedMatches := 0
		completedWithScores := 0
		for _, match := range matches {
			if match.Status != models.MatchStatusCompleted {
				continue
			}
			completedMatches++
			count, countErr := s.scoreRepo.CountByMatch(ctx, nil, match.ID)
			if countErr != nil {
				return updated, countErr
			}
			if count > 0 {
				completedWithScores++
			}
		}

		next := group.Status
		switch {
		case len(matches) > 0 && completedMatches == len(matches) && completedWithScores == len(matches):
			next = models.GroupStatusCompleted
		case completedMatches > 0:
			next = models.GroupStatusOngoing
		}

		if next != group.Status {
			if updErr := s.groupRepo.UpdateStatus(ctx, nil, group.ID, next); updErr != nil {
				return updated, updErr
			}
			s.logger.InfoContext(ctx, "group status updated",
				slog.Int("group_id", group.ID),
				slog.String("name", group.Name),
				slog.String("status", string(next)))
			updated++
		}
	}
	return updated, nil
}

func tournamentRoom(tournamentID int) string {
	return fmt.Sprintf("tournament:%d", tournamentID)
}
