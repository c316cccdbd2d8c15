package historian

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists final game outcomes to postgres.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore opens a connection pool against the given database URL.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to reach database: %w", err)
	}
	return &Store{pool: pool}, nil
}

// SaveResults upserts the game row as completed and records one result row
// per player, all in a single transaction.
func (s *Store) SaveResults(ctx context.Context, gameID uuid.UUID, rounds int, scores map[string]int, winner string) error {
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		upsertGame := `
			INSERT INTO games (id, rounds, status)
			VALUES ($1, $2, 'completed')
			ON CONFLICT (id) DO UPDATE SET rounds = $2, status = 'completed'
		`
		if _, err := tx.Exec(ctx, upsertGame, gameID, rounds); err != nil {
			return err
		}
		insertResult := `
			INSERT INTO game_results (game_id, player_name, score, did_win)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (game_id, player_name)
			DO UPDATE SET score = $3, did_win = $4
		`
		for name, score := range scores {
			if _, err := tx.Exec(ctx, insertResult, gameID, name, score, name == winner); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("tx upsert game or results: %w", err)
	}
	return nil
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}
