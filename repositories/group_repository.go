package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/scrimhub/tournament-platform/models"
)

var ErrGroupNotFound = errors.New("group not found")

type GroupRepository interface {
	Create(ctx context.Context, exec SQLExecutor, group *models.Group) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Group, error)
	ListByTournamentRound(ctx context.Context, exec SQLExecutor, tournamentID, roundNumber int) ([]*models.Group, error)
	CountByTournamentRound(ctx context.Context, exec SQLExecutor, tournamentID, roundNumber int) (int, error)
	SetTeams(ctx context.Context, exec SQLExecutor, groupID int, teamIDs []int) error
	ListTeamIDs(ctx context.Context, exec SQLExecutor, groupID int) ([]int, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.GroupStatus) error
}

type postgresGroupRepository struct {
	db *sql.DB
}

func NewPostgresGroupRepository(db *sql.DB) GroupRepository {
	return &postgresGroupRepository{db: db}
}

func (r *postgresGroupRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresGroupRepository) scanGroup(rowScanner interface{ Scan(...interface{}) error }) (*models.Group, error) {
	g := &models.Group{}
	err := rowScanner.Scan(&g.ID, &g.TournamentID, &g.RoundNumber, &g.Name, &g.Status, &g.QualifyingTeams, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return g, nil
}

func (r *postgresGroupRepository) Create(ctx context.Context, exec SQLExecutor, group *models.Group) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO groups (tournament_id, round_number, name, status, qualifying_teams)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	return executor.QueryRowContext(ctx, query,
		group.TournamentID, group.RoundNumber, group.Name, group.Status, group.QualifyingTeams,
	).Scan(&group.ID, &group.CreatedAt)
}

func (r *postgresGroupRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Group, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, tournament_id, round_number, name, status, qualifying_teams, created_at
		FROM groups
		WHERE id = $1`
	return r.scanGroup(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresGroupRepository) ListByTournamentRound(ctx context.Context, exec SQLExecutor, tournamentID, roundNumber int) ([]*models.Group, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, tournament_id, round_number, name, status, qualifying_teams, created_at
		FROM groups
		WHERE tournament_id = $1 AND round_number = $2
		ORDER BY name ASC`

	rows, err := executor.QueryContext(ctx, query, tournamentID, roundNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := make([]*models.Group, 0)
	for rows.Next() {
		g, errScan := r.scanGroup(rows)
		if errScan != nil {
			return nil, errScan
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (r *postgresGroupRepository) CountByTournamentRound(ctx context.Context, exec SQLExecutor, tournamentID, roundNumber int) (int, error) {
	executor := r.getExecutor(exec)
	var count int
	err := executor.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM groups WHERE tournament_id = $1 AND round_number = $2`,
		tournamentID, roundNumber,
	).Scan(&count)
	return count, err
}

// SetTeams writes the fixed membership of a freshly created group.
func (r *postgresGroupRepository) SetTeams(ctx context.Context, exec SQLExecutor, groupID int, teamIDs []int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx,
		`INSERT INTO group_teams (group_id, team_id) SELECT $1, unnest($2::int[])`,
		groupID, pq.Array(teamIDs),
	)
	return err
}

func (r *postgresGroupRepository) ListTeamIDs(ctx context.Context, exec SQLExecutor, groupID int) ([]int, error) {
	executor := r.getExecutor(exec)
	rows, err := executor.QueryContext(ctx,
		`SELECT team_id FROM group_teams WHERE group_id = $1 ORDER BY team_id ASC`, groupID)
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

func (r *postgresGroupRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.GroupStatus) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE groups SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrGroupNotFound)
}
