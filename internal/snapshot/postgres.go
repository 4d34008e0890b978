package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/iwvelando/project-finance/internal/config"
	"github.com/iwvelando/project-finance/pkg/validation"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const createTableQuery = `
	CREATE TABLE IF NOT EXISTS project_finance_snapshots (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		version INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		configuration JSONB NOT NULL
	)
`

// PostgresStore keeps snapshots in a single Postgres table.
type PostgresStore struct {
	logger *zap.Logger
	pool   *pgxpool.Pool
}

// NewPostgresStore connects to databaseURL and creates the snapshot table
// when it does not exist.
func NewPostgresStore(ctx context.Context, logger *zap.Logger, databaseURL string) (*PostgresStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if databaseURL == "" {
		return nil, fmt.Errorf("postgres snapshot store requires a database URL")
	}

	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := pool.Exec(ctx, createTableQuery); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create snapshot table: %w", err)
	}

	return &PostgresStore{logger: logger, pool: pool}, nil
}

// Save upserts conf under name.
func (s *PostgresStore) Save(ctx context.Context, name string, conf config.Configuration) (Info, error) {
	if err := validation.ValidateSnapshotName(name); err != nil {
		return Info{}, err
	}

	payload, err := json.Marshal(storable(conf))
	if err != nil {
		return Info{}, fmt.Errorf("failed to encode snapshot %s: %w", name, err)
	}

	query := `
		INSERT INTO project_finance_snapshots (id, name, configuration)
		VALUES ($1, $2, $3)
		ON CONFLICT (name)
		DO UPDATE SET
			configuration = EXCLUDED.configuration,
			version = project_finance_snapshots.version + 1,
			updated_at = NOW()
		RETURNING id, name, version, created_at, updated_at
	`

	var info Info
	err = s.pool.QueryRow(ctx, query, uuid.NewString(), name, payload).
		Scan(&info.ID, &info.Name, &info.Version, &info.CreatedAt, &info.UpdatedAt)
	if err != nil {
		return Info{}, fmt.Errorf("failed to save snapshot %s: %w", name, err)
	}

	s.logger.Info("saved snapshot",
		zap.String("op", "snapshot.PostgresStore.Save"),
		zap.String("name", name),
		zap.Int("version", info.Version),
	)
	return info, nil
}

// List returns every snapshot, most recently updated first.
func (s *PostgresStore) List(ctx context.Context) ([]Info, error) {
	query := `
		SELECT id, name, version, created_at, updated_at
		FROM project_finance_snapshots
		ORDER BY updated_at DESC, name
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var infos []Info
	for rows.Next() {
		var info Info
		if err := rows.Scan(&info.ID, &info.Name, &info.Version, &info.CreatedAt, &info.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	return infos, nil
}

// Load returns the snapshot stored under name.
func (s *PostgresStore) Load(ctx context.Context, name string) (Snapshot, error) {
	query := `
		SELECT id, name, version, created_at, updated_at, configuration
		FROM project_finance_snapshots
		WHERE name = $1
	`

	var snap Snapshot
	var payload []byte
	err := s.pool.QueryRow(ctx, query, name).
		Scan(&snap.ID, &snap.Name, &snap.Version, &snap.CreatedAt, &snap.UpdatedAt, &payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return Snapshot{}, fmt.Errorf("failed to load snapshot %s: %w", name, err)
	}

	if err := json.Unmarshal(payload, &snap.Configuration); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot %s: %w", name, err)
	}
	return snap, nil
}

// Delete removes the snapshot stored under name.
func (s *PostgresStore) Delete(ctx context.Context, name string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM project_finance_snapshots WHERE name = $1", name)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	s.logger.Info("deleted snapshot",
		zap.String("op", "snapshot.PostgresStore.Delete"),
		zap.String("name", name),
	)
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}
