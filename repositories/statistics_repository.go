package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/scrimhub/tournament-platform/models"
)

var ErrTeamStatisticsNotFound = errors.New("team statistics not found")

type TeamStatisticsRepository interface {
	GetOrCreate(ctx context.Context, exec SQLExecutor, teamID int) (*models.TeamStatistics, error)
	Update(ctx context.Context, exec SQLExecutor, stats *models.TeamStatistics) error
	UpdateRank(ctx context.Context, exec SQLExecutor, id, rank int) error
	ListRanked(ctx context.Context, exec SQLExecutor) ([]*models.TeamStatistics, error)
	ListKnownTeamIDs(ctx context.Context) ([]int, error)
}

type postgresTeamStatisticsRepository struct {
	db *sql.DB
}

func NewPostgresTeamStatisticsRepository(db *sql.DB) TeamStatisticsRepository {
	return &postgresTeamStatisticsRepository{db: db}
}

func (r *postgresTeamStatisticsRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTeamStatisticsRepository) scanStats(rowScanner interface{ Scan(...interface{}) error }) (*models.TeamStatistics, error) {
	s := &models.TeamStatistics{}
	err := rowScanner.Scan(
		&s.ID, &s.TeamID, &s.TournamentWins, &s.TotalPositionPoints,
		&s.TotalKillPoints, &s.TotalPoints, &s.Rank, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamStatisticsNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *postgresTeamStatisticsRepository) GetOrCreate(ctx context.Context, exec SQLExecutor, teamID int) (*models.TeamStatistics, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, team_id, tournament_wins, total_position_points,
		       total_kill_points, total_points, rank, updated_at
		FROM team_statistics
		WHERE team_id = $1`

	stats, err := r.scanStats(executor.QueryRowContext(ctx, query, teamID))
	if err == nil {
		return stats, nil
	}
	if !errors.Is(err, ErrTeamStatisticsNotFound) {
		return nil, err
	}

	newStats := &models.TeamStatistics{TeamID: teamID, UpdatedAt: time.Now()}
	insert := `
		INSERT INTO team_statistics (team_id, tournament_wins, total_position_points, total_kill_points, total_points, updated_at)
		VALUES ($1, 0, 0, 0, 0, $2)
		RETURNING id`
	if createErr := executor.QueryRowContext(ctx, insert, teamID, newStats.UpdatedAt).Scan(&newStats.ID); createErr != nil {
		return nil, fmt.Errorf("failed to create statistics for team %d: %w", teamID, createErr)
	}
	return newStats, nil
}

func (r *postgresTeamStatisticsRepository) Update(ctx context.Context, exec SQLExecutor, stats *models.TeamStatistics) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE team_statistics SET
			tournament_wins = $1, total_position_points = $2,
			total_kill_points = $3, total_points = $4, updated_at = NOW()
		WHERE id = $5`

	result, err := executor.ExecContext(ctx, query,
		stats.TournamentWins, stats.TotalPositionPoints,
		stats.TotalKillPoints, stats.TotalPoints, stats.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamStatisticsNotFound)
}

func (r *postgresTeamStatisticsRepository) UpdateRank(ctx context.Context, exec SQLExecutor, id, rank int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE team_statistics SET rank = $1 WHERE id = $2`, rank, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamStatisticsNotFound)
}

// ListRanked orders rows the way global ranks are assigned: total points,
// then tournament wins, then kill points, best first.
func (r *postgresTeamStatisticsRepository) ListRanked(ctx context.Context, exec SQLExecutor) ([]*models.TeamStatistics, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, team_id, tournament_wins, total_position_points,
		       total_kill_points, total_points, rank, updated_at
		FROM team_statistics
		ORDER BY total_points DESC, tournament_wins DESC, total_kill_points DESC, team_id ASC`

	rows, err := executor.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	statsList := make([]*models.TeamStatistics, 0)
	for rows.Next() {
		s, errScan := r.scanStats(rows)
		if errScan != nil {
			return nil, errScan
		}
		statsList = append(statsList, s)
	}
	return statsList, rows.Err()
}

// ListKnownTeamIDs returns every team that has entered at least one
// tournament. Registrations without a team reference are ad-hoc rosters
// and carry no global statistics.
func (r *postgresTeamStatisticsRepository) ListKnownTeamIDs(ctx context.Context) ([]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT team_id FROM registrations WHERE team_id IS NOT NULL ORDER BY team_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teamIDs := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		teamIDs = append(teamIDs, id)
	}
	return teamIDs, rows.Err()
}
