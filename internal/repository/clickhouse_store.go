package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	drepo "CoinLake/internal/domain/repository"
)

// ClickHouseStore implements ObjectStore on a ReplacingMergeTree table
// ordered by (container, key), which makes repeated inserts of the same key
// collapse to a single row.
type ClickHouseStore struct {
	db       *sql.DB
	database string
}

// NewClickHouseStore creates a ClickHouse-backed object store.
func NewClickHouseStore(db *sql.DB, database string) drepo.ObjectStore {
	return &ClickHouseStore{db: db, database: database}
}

// SchemaStatements returns the idempotent DDL for the store.
func SchemaStatements(database string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.objects (
			container String,
			key String,
			payload String,
			inserted_at DateTime DEFAULT now()
		) ENGINE = ReplacingMergeTree ORDER BY (container, key)`, database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.containers (
			name String,
			created_at DateTime DEFAULT now()
		) ENGINE = ReplacingMergeTree ORDER BY name`, database),
	}
}

// CreateContainer registers a logical namespace. Safe to call repeatedly.
func (s *ClickHouseStore) CreateContainer(ctx context.Context, name string) error {
	q := fmt.Sprintf("INSERT INTO %s.containers (name) VALUES (?)", s.database)
	if _, err := s.db.ExecContext(ctx, q, name); err != nil {
		return fmt.Errorf("create container %s: %w", name, err)
	}
	return nil
}

// Insert writes one payload under (container, key).
func (s *ClickHouseStore) Insert(ctx context.Context, container, key string, payload []byte) error {
	q := fmt.Sprintf("INSERT INTO %s.objects (container, key, payload, inserted_at) VALUES (?, ?, ?, ?)", s.database)
	if _, err := s.db.ExecContext(ctx, q, container, key, string(payload), time.Now().UTC()); err != nil {
		return fmt.Errorf("insert %s/%s: %w", container, key, err)
	}
	return nil
}

func (s *ClickHouseStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseStore) Close() error {
	return nil // pool is owned by pkg/clickhouse
}
