package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is a PostgreSQL implementation of the Storage interface. Blobs are
// kept in a single key/value table, for deployments where the platform hands
// the service a managed database instead of a writable disk.
type Postgres struct {
	db *pgxpool.Pool
}

// NewPostgres creates a Postgres store backed by the given pool.
func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

// EnsureSchema creates the state table if it does not exist.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := p.db.Exec(ctx, `CREATE TABLE IF NOT EXISTS model_state (
		name TEXT PRIMARY KEY,
		data BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)
	if err != nil {
		return fmt.Errorf("create model_state table: %w", err)
	}
	return nil
}

// Save writes the blob under the given name.
func (p *Postgres) Save(ctx context.Context, name string, data []byte) error {
	_, err := p.db.Exec(ctx,
		`INSERT INTO model_state (name, data, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (name) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		name, data)
	if err != nil {
		return fmt.Errorf("save state %s: %w", name, err)
	}
	return nil
}

// Load reads the blob stored under the given name.
func (p *Postgres) Load(ctx context.Context, name string) ([]byte, error) {
	var data []byte
	err := p.db.QueryRow(ctx, "SELECT data FROM model_state WHERE name = $1", name).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotExist
		}
		return nil, fmt.Errorf("load state %s: %w", name, err)
	}
	return data, nil
}

// Remove deletes the blob stored under the given name.
func (p *Postgres) Remove(ctx context.Context, name string) error {
	tag, err := p.db.Exec(ctx, "DELETE FROM model_state WHERE name = $1", name)
	if err != nil {
		return fmt.Errorf("remove state %s: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotExist
	}
	return nil
}
