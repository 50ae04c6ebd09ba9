package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/scrimhub/tournament-platform/models"
)

var ErrRoundScoreNotFound = errors.New("round score not found")

type RoundScoreRepository interface {
	GetByRoundAndTeam(ctx context.Context, exec SQLExecutor, tournamentID, roundNumber, teamID int) (*models.RoundScore, error)
	GetOrCreate(ctx context.Context, exec SQLExecutor, tournamentID, roundNumber, teamID int) (*models.RoundScore, error)
	UpdateTotal(ctx context.Context, exec SQLExecutor, id, totalPoints int) error
	ListByRound(ctx context.Context, exec SQLExecutor, tournamentID, roundNumber int) ([]*models.RoundScore, error)
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresRoundScoreRepository struct {
	db *sql.DB
}

func NewPostgresRoundScoreRepository(db *sql.DB) RoundScoreRepository {
	return &postgresRoundScoreRepository{db: db}
}

func (r *postgresRoundScoreRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRoundScoreRepository) scanRoundScore(rowScanner interface{ Scan(...interface{}) error }) (*models.RoundScore, error) {
	s := &models.RoundScore{}
	err := rowScanner.Scan(&s.ID, &s.TournamentID, &s.RoundNumber, &s.TeamID, &s.TotalPoints, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoundScoreNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *postgresRoundScoreRepository) GetByRoundAndTeam(ctx context.Context, exec SQLExecutor, tournamentID, roundNumber, teamID int) (*models.RoundScore, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, tournament_id, round_number, team_id, total_points, updated_at
		FROM round_scores
		WHERE tournament_id = $1 AND round_number = $2 AND team_id = $3`
	return r.scanRoundScore(executor.QueryRowContext(ctx, query, tournamentID, roundNumber, teamID))
}

func (r *postgresRoundScoreRepository) GetOrCreate(ctx context.Context, exec SQLExecutor, tournamentID, roundNumber, teamID int) (*models.RoundScore, error) {
	executor := r.getExecutor(exec)
	score, err := r.GetByRoundAndTeam(ctx, executor, tournamentID, roundNumber, teamID)
	if err == nil {
		return score, nil
	}
	if !errors.Is(err, ErrRoundScoreNotFound) {
		return nil, fmt.Errorf("failed to get round score for t:%d r:%d team:%d: %w", tournamentID, roundNumber, teamID, err)
	}

	newScore := &models.RoundScore{
		TournamentID: tournamentID,
		RoundNumber:  roundNumber,
		TeamID:       teamID,
		UpdatedAt:    time.Now(),
	}
	query := `
		INSERT INTO round_scores (tournament_id, round_number, team_id, total_points, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	if createErr := executor.QueryRowContext(ctx, query,
		newScore.TournamentID, newScore.RoundNumber, newScore.TeamID, newScore.TotalPoints, newScore.UpdatedAt,
	).Scan(&newScore.ID); createErr != nil {
		return nil, fmt.Errorf("failed to create round score for t:%d r:%d team:%d: %w", tournamentID, roundNumber, teamID, createErr)
	}
	return newScore, nil
}

func (r *postgresRoundScoreRepository) UpdateTotal(ctx context.Context, exec SQLExecutor, id, totalPoints int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE round_scores SET total_points = $1, updated_at = NOW() WHERE id = $2`,
		totalPoints, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRoundScoreNotFound)
}

// ListByRound returns the round table ordered best-first; team_id breaks
// ties so the order is deterministic.
func (r *postgresRoundScoreRepository) ListByRound(ctx context.Context, exec SQLExecutor, tournamentID, roundNumber int) ([]*models.RoundScore, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, tournament_id, round_number, team_id, total_points, updated_at
		FROM round_scores
		WHERE tournament_id = $1 AND round_number = $2
		ORDER BY total_points DESC, team_id ASC`

	rows, err := executor.QueryContext(ctx, query, tournamentID, roundNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scores := make([]*models.RoundScore, 0)
	for rows.Next() {
		s, errScan := r.scanRoundScore(rows)
		if errScan != nil {
			return nil, errScan
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}

func (r *postgresRoundScoreRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `DELETE FROM round_scores WHERE tournament_id = $1`, tournamentID)
	return err
}
