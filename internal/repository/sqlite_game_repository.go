package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ctchen222/Gomoku/internal/game"

	"github.com/jmoiron/sqlx"
)

type gameRow struct {
	ID        string `db:"id"`
	State     string `db:"state"`
	UpdatedAt int64  `db:"updated_at"`
}

type sqliteGameRepository struct {
	db  *sqlx.DB
	ttl time.Duration
	now func() time.Time
}

// NewSQLiteGameRepository creates a new SQLite-based GameRepository on the
// games table. Rows not written for longer than ttl read as missing; a zero
// ttl disables expiry.
func NewSQLiteGameRepository(db *sqlx.DB, ttl time.Duration) GameRepository {
	return &sqliteGameRepository{db: db, ttl: ttl, now: time.Now}
}

// Create inserts a new game, replacing only a row that has already expired.
func (r *sqliteGameRepository) Create(ctx context.Context, id string, state game.State) (err error) {
	ctx, span := startSpan(ctx, "GameRepository.Create", id)
	defer func() { endSpan(span, err) }()

	data, err := encodeState(state)
	if err != nil {
		return err
	}

	query := `INSERT INTO games (id, state, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at
		WHERE games.updated_at <= ?`
	res, err := r.db.ExecContext(ctx, query, id, string(data), r.now().UnixNano(), r.expiredBefore())
	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}
	if n == 0 {
		return ErrGameExists
	}
	return nil
}

// FindByID retrieves a live game by its ID.
func (r *sqliteGameRepository) FindByID(ctx context.Context, id string) (state game.State, err error) {
	ctx, span := startSpan(ctx, "GameRepository.FindByID", id)
	defer func() { endSpan(span, err) }()

	var row gameRow
	query := `SELECT id, state, updated_at FROM games WHERE id = ? AND updated_at > ?`
	err = r.db.GetContext(ctx, &row, query, id, r.expiredBefore())
	if errors.Is(err, sql.ErrNoRows) {
		return game.State{}, ErrGameNotFound
	}
	if err != nil {
		return game.State{}, fmt.Errorf("failed to get game by id: %w", err)
	}
	return decodeState([]byte(row.State))
}

// Save overwrites a live game and refreshes its expiry.
func (r *sqliteGameRepository) Save(ctx context.Context, id string, state game.State) (err error) {
	ctx, span := startSpan(ctx, "GameRepository.Save", id)
	defer func() { endSpan(span, err) }()

	data, err := encodeState(state)
	if err != nil {
		return err
	}

	query := `UPDATE games SET state = ?, updated_at = ? WHERE id = ? AND updated_at > ?`
	res, err := r.db.ExecContext(ctx, query, string(data), r.now().UnixNano(), id, r.expiredBefore())
	if err != nil {
		return fmt.Errorf("failed to save game: %w", err)
	}
	return requireAffected(res)
}

func (r *sqliteGameRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, span := startSpan(ctx, "GameRepository.Delete", id)
	defer func() { endSpan(span, err) }()

	query := `DELETE FROM games WHERE id = ? AND updated_at > ?`
	res, err := r.db.ExecContext(ctx, query, id, r.expiredBefore())
	if err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	return requireAffected(res)
}

// expiredBefore is the updated_at cutoff at or below which a row is expired.
func (r *sqliteGameRepository) expiredBefore() int64 {
	if r.ttl <= 0 {
		return 0
	}
	return r.now().Add(-r.ttl).UnixNano()
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrGameNotFound
	}
	return nil
}
