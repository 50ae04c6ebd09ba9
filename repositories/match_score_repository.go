package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/scrimhub/tournament-platform/models"
)

var (
	ErrMatchScoreNotFound = errors.New("match score not found")
	ErrMatchScoreConflict = errors.New("score already submitted for this team in this match")
)

// ScoreTotals carries summed score components for one team over some set
// of matches. Zero totals are returned when the team has no score rows.
type ScoreTotals struct {
	PositionPoints int
	KillPoints     int
	Wins           int
}

// TotalPoints is position plus kill points; wins never join the sum.
func (t ScoreTotals) TotalPoints() int {
	return t.PositionPoints + t.KillPoints
}

type MatchScoreRepository interface {
	Create(ctx context.Context, exec SQLExecutor, score *models.MatchScore) error
	ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]*models.MatchScore, error)
	CountByMatch(ctx context.Context, exec SQLExecutor, matchID int) (int, error)
	SumByGroupAndTeam(ctx context.Context, exec SQLExecutor, groupID, teamID int) (ScoreTotals, error)
	SumByRoundAndTeam(ctx context.Context, exec SQLExecutor, tournamentID, roundNumber, teamID int) (ScoreTotals, error)
	SumByTeam(ctx context.Context, teamID int) (ScoreTotals, error)
	ListRoundTotalsByTeam(ctx context.Context, tournamentID, roundNumber int) ([]TeamRoundTotal, error)
}

// TeamRoundTotal aggregates one real team's points over a round; used by
// the leaderboard recompute, which works at team (not registration) level.
type TeamRoundTotal struct {
	TeamID      int
	TotalPoints int
}

type postgresMatchScoreRepository struct {
	db *sql.DB
}

func NewPostgresMatchScoreRepository(db *sql.DB) MatchScoreRepository {
	return &postgresMatchScoreRepository{db: db}
}

func (r *postgresMatchScoreRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMatchScoreRepository) Create(ctx context.Context, exec SQLExecutor, score *models.MatchScore) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO match_scores (match_id, team_id, wins, position_points, kill_points, total_points)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		score.MatchID, score.TeamID, score.Wins, score.PositionPoints, score.KillPoints, score.TotalPoints,
	).Scan(&score.ID, &score.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrMatchScoreConflict
		}
		return err
	}
	return nil
}

func (r *postgresMatchScoreRepository) ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]*models.MatchScore, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, match_id, team_id, wins, position_points, kill_points, total_points, created_at
		FROM match_scores
		WHERE match_id = $1
		ORDER BY total_points DESC, team_id ASC`

	rows, err := executor.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scores := make([]*models.MatchScore, 0)
	for rows.Next() {
		s := &models.MatchScore{}
		if err := rows.Scan(&s.ID, &s.MatchID, &s.TeamID, &s.Wins, &s.PositionPoints, &s.KillPoints, &s.TotalPoints, &s.CreatedAt); err != nil {
			return nil, err
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}

func (r *postgresMatchScoreRepository) CountByMatch(ctx context.Context, exec SQLExecutor, matchID int) (int, error) {
	executor := r.getExecutor(exec)
	var count int
	err := executor.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM match_scores WHERE match_id = $1`, matchID).Scan(&count)
	return count, err
}

func (r *postgresMatchScoreRepository) SumByGroupAndTeam(ctx context.Context, exec SQLExecutor, groupID, teamID int) (ScoreTotals, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT COALESCE(SUM(ms.position_points), 0),
		       COALESCE(SUM(ms.kill_points), 0),
		       COALESCE(SUM(ms.wins), 0)
		FROM match_scores ms
		JOIN matches m ON ms.match_id = m.id
		WHERE m.group_id = $1 AND ms.team_id = $2`

	var totals ScoreTotals
	err := executor.QueryRowContext(ctx, query, groupID, teamID).
		Scan(&totals.PositionPoints, &totals.KillPoints, &totals.Wins)
	return totals, err
}

func (r *postgresMatchScoreRepository) SumByRoundAndTeam(ctx context.Context, exec SQLExecutor, tournamentID, roundNumber, teamID int) (ScoreTotals, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT COALESCE(SUM(ms.position_points), 0),
		       COALESCE(SUM(ms.kill_points), 0),
		       COALESCE(SUM(ms.wins), 0)
		FROM match_scores ms
		JOIN matches m ON ms.match_id = m.id
		JOIN groups g ON m.group_id = g.id
		WHERE g.tournament_id = $1 AND g.round_number = $2 AND ms.team_id = $3`

	var totals ScoreTotals
	err := executor.QueryRowContext(ctx, query, tournamentID, roundNumber, teamID).
		Scan(&totals.PositionPoints, &totals.KillPoints, &totals.Wins)
	return totals, err
}

// SumByTeam aggregates across every match the team's registrations played,
// in any tournament.
func (r *postgresMatchScoreRepository) SumByTeam(ctx context.Context, teamID int) (ScoreTotals, error) {
	query := `
		SELECT COALESCE(SUM(ms.position_points), 0),
		       COALESCE(SUM(ms.kill_points), 0),
		       COALESCE(SUM(ms.wins), 0)
		FROM match_scores ms
		JOIN registrations reg ON ms.team_id = reg.id
		WHERE reg.team_id = $1`

	var totals ScoreTotals
	err := r.db.QueryRowContext(ctx, query, teamID).
		Scan(&totals.PositionPoints, &totals.KillPoints, &totals.Wins)
	return totals, err
}

func (r *postgresMatchScoreRepository) ListRoundTotalsByTeam(ctx context.Context, tournamentID, roundNumber int) ([]TeamRoundTotal, error) {
	query := `
		SELECT reg.team_id, SUM(ms.position_points) + SUM(ms.kill_points) AS total
		FROM match_scores ms
		JOIN registrations reg ON ms.team_id = reg.id
		JOIN matches m ON ms.match_id = m.id
		JOIN groups g ON m.group_id = g.id
		WHERE g.tournament_id = $1 AND g.round_number = $2 AND reg.team_id IS NOT NULL
		GROUP BY reg.team_id
		ORDER BY total DESC, reg.team_id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID, roundNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make([]TeamRoundTotal, 0)
	for rows.Next() {
		var t TeamRoundTotal
		if err := rows.Scan(&t.TeamID, &t.TotalPoints); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}
