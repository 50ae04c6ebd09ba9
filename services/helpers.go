package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/scrimhub/tournament-platform/models"
)

// isValidStatusTransition enforces the one-directional tournament
// lifecycle: upcoming -> ongoing -> completed.
func isValidStatusTransition(current, next models.TournamentStatus) bool {
	if current == next {
		return true
	}
	allowedTransitions := map[models.TournamentStatus][]models.TournamentStatus{
		models.TournamentStatusUpcoming:  {models.TournamentStatusOngoing, models.TournamentStatusCompleted},
		models.TournamentStatusOngoing:   {models.TournamentStatusCompleted},
		models.TournamentStatusCompleted: {},
	}
	for _, allowed := range allowedTransitions[current] {
		if next == allowed {
			return true
		}
	}
	return false
}

// txRunner executes fn with transactional semantics. Services hold one
// instead of the *sql.DB itself so the transaction boundary is a seam,
// not a hard dependency.
type txRunner func(ctx context.Context, fn func(tx *sql.Tx) error) error

func sqlTxRunner(db *sql.DB) txRunner {
	return func(ctx context.Context, fn func(tx *sql.Tx) error) error {
		return runInTransaction(ctx, db, fn)
	}
}

// runInTransaction opens a transaction, runs fn, and commits; any error or
// panic rolls everything back. Services use this for every multi-row
// mutation so partial state never becomes visible.
func runInTransaction(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
			}
		} else {
			err = tx.Commit()
		}
	}()
	return fn(tx)
}
