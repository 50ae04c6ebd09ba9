package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/scrimhub/tournament-platform/models"
	"github.com/scrimhub/tournament-platform/repositories"
)

// statsRecomputeConcurrency bounds the per-team aggregate queries run in
// parallel during a full recompute.
const statsRecomputeConcurrency = 8

// LeaderboardService maintains the cross-tournament TeamStatistics table.
// It shares the engine's score data but plays no part in qualification;
// serving and caching the leaderboard itself is out of scope here.
type LeaderboardService interface {
	// RecalculateStatistics rebuilds every team's totals and tournament
	// wins, then reassigns global ranks in one transaction so readers
	// never see a half-ranked table.
	RecalculateStatistics(ctx context.Context) error
	ListStandings(ctx context.Context) ([]*models.TeamStatistics, error)
}

type leaderboardService struct {
	runTx          txRunner
	statsRepo      repositories.TeamStatisticsRepository
	scoreRepo      repositories.MatchScoreRepository
	tournamentRepo repositories.TournamentRepository
	logger         *slog.Logger
}

func NewLeaderboardService(
	db *sql.DB,
	statsRepo repositories.TeamStatisticsRepository,
	scoreRepo repositories.MatchScoreRepository,
	tournamentRepo repositories.TournamentRepository,
	logger *slog.Logger,
) LeaderboardService {
	return &leaderboardService{
		runTx:          sqlTxRunner(db),
		statsRepo:      statsRepo,
		scoreRepo:      scoreRepo,
		tournamentRepo: tournamentRepo,
		logger:         logger,
	}
}

func (s *leaderboardService) RecalculateStatistics(ctx context.Context) error {
	teamIDs, err := s.statsRepo.ListKnownTeamIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list teams: %w", err)
	}

	winsByTeam, err := s.tournamentWinCounts(ctx)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(statsRecomputeConcurrency)
	for _, teamID := range teamIDs {
		teamID := teamID
		g.Go(func() error {
			return s.recalculateTeam(gctx, teamID, winsByTeam[teamID])
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := s.assignRanks(ctx); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "leaderboard statistics recalculated",
		slog.Int("teams", len(teamIDs)))
	return nil
}

func (s *leaderboardService) recalculateTeam(ctx context.Context, teamID, tournamentWins int) error {
	stats, err := s.statsRepo.GetOrCreate(ctx, nil, teamID)
	if err != nil {
		return err
	}

	totals, err := s.scoreRepo.SumByTeam(ctx, teamID)
	if err != nil {
		return fmt.Errorf("failed to sum scores for team %d: %w", teamID, err)
	}

	stats.TournamentWins = tournamentWins
	stats.TotalPositionPoints = totals.PositionPoints
	stats.TotalKillPoints = totals.KillPoints
	stats.UpdateTotalPoints()

	return s.statsRepo.Update(ctx, nil, stats)
}

// tournamentWinCounts counts first-place finishes per team: for every
// completed tournament, the team topping the final round's totals.
func (s *leaderboardService) tournamentWinCounts(ctx context.Context) (map[int]int, error) {
	completed := models.TournamentStatusCompleted
	tournaments, err := s.tournamentRepo.List(ctx, repositories.ListTournamentsFilter{Status: &completed})
	if err != nil {
		return nil, fmt.Errorf("failed to list completed tournaments: %w", err)
	}

	wins := make(map[int]int)
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(statsRecomputeConcurrency)

	for _, tournament := range tournaments {
		tournament := tournament
		finalRound := tournament.CurrentRound
		if finalRound == 0 {
			continue
		}
		g.Go(func() error {
			totals, listErr := s.scoreRepo.ListRoundTotalsByTeam(gctx, tournament.ID, finalRound)
			if listErr != nil {
				return fmt.Errorf("failed to total final round of tournament %d: %w", tournament.ID, listErr)
			}
			if len(totals) == 0 {
				return nil
			}
			mu.Lock()
			wins[totals[0].TeamID]++
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return wins, nil
}

// assignRanks rewrites every rank column inside a single transaction.
func (s *leaderboardService) assignRanks(ctx context.Context) error {
	return s.runTx(ctx, func(tx *sql.Tx) error {
		ranked, err := s.statsRepo.ListRanked(ctx, tx)
		if err != nil {
			return err
		}
		for i, stats := range ranked {
			if err := s.statsRepo.UpdateRank(ctx, tx, stats.ID, i+1); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *leaderboardService) ListStandings(ctx context.Context) ([]*models.TeamStatistics, error) {
	return s.statsRepo.ListRanked(ctx, nil)
}
