package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"propertychat/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS saved_properties (
	property_id BIGINT NOT NULL,
	username    TEXT NOT NULL,
	added_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (username, property_id)
);

CREATE TABLE IF NOT EXISTS comparison_entries (
	property_id BIGINT NOT NULL,
	username    TEXT NOT NULL,
	added_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (username, property_id)
);

CREATE TABLE IF NOT EXISTS search_logs (
	id               BIGSERIAL PRIMARY KEY,
	session_id       TEXT NOT NULL,
	message          TEXT NOT NULL,
	filters          JSONB,
	source           TEXT NOT NULL,
	relaxation       TEXT NOT NULL DEFAULT '',
	result_count     INTEGER NOT NULL,
	response_time_ms BIGINT NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// PostgresRepository stores saved/comparison lists and the search log
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute) // Shorter lifetime to avoid stale connections
	db.SetConnMaxIdleTime(2 * time.Minute)

	return &PostgresRepository{db: db}, nil
}

// EnsureSchema creates the tables if they are missing
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Ping checks the connection
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// Name identifies the backend
func (r *PostgresRepository) Name() string {
	return "postgres"
}

func tableFor(kind ListKind) (string, error) {
	switch kind {
	case ListSaved:
		return "saved_properties", nil
	case ListComparison:
		return "comparison_entries", nil
	default:
		return "", fmt.Errorf("unknown list kind %q", kind)
	}
}

// Add inserts an entry inside a transaction so the size check and the insert agree
func (r *PostgresRepository) Add(ctx context.Context, kind ListKind, username string, propertyID int64, limit int) (bool, error) {
	table, err := tableFor(kind)
	if err != nil {
		return false, err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	// Serialize concurrent adds for the same user
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, table+":"+username); err != nil {
		return false, fmt.Errorf("failed to lock list: %w", err)
	}

	var exists bool
	if err := tx.GetContext(ctx, &exists,
		fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE username = $1 AND property_id = $2)`, table),
		username, propertyID); err != nil {
		return false, fmt.Errorf("failed to check list entry: %w", err)
	}
	if exists {
		return false, nil
	}

	if limit > 0 {
		var count int
		if err := tx.GetContext(ctx, &count, fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE username = $1`, table), username); err != nil {
			return false, fmt.Errorf("failed to count list entries: %w", err)
		}
		if count >= limit {
			return false, ErrComparisonFull
		}
	}

	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (property_id, username) VALUES ($1, $2)`, table),
		propertyID, username); err != nil {
		return false, fmt.Errorf("failed to insert list entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return true, nil
}

// Entries returns the user's list, newest first
func (r *PostgresRepository) Entries(ctx context.Context, kind ListKind, username string) ([]model.ListEntry, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	entries := []model.ListEntry{}
	query := fmt.Sprintf(`SELECT property_id, username, added_at FROM %s WHERE username = $1 ORDER BY added_at DESC`, table)
	if err := r.db.SelectContext(ctx, &entries, query, username); err != nil {
		return nil, fmt.Errorf("failed to load %s list: %w", kind, err)
	}
	return entries, nil
}

// Remove deletes one entry
func (r *PostgresRepository) Remove(ctx context.Context, kind ListKind, username string, propertyID int64) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE username = $1 AND property_id = $2`, table),
		username, propertyID); err != nil {
		return fmt.Errorf("failed to remove list entry: %w", err)
	}
	return nil
}

// Clear deletes every entry of the user's list
func (r *PostgresRepository) Clear(ctx context.Context, kind ListKind, username string) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE username = $1`, table), username); err != nil {
		return fmt.Errorf("failed to clear %s list: %w", kind, err)
	}
	return nil
}

// LogSearch logs a resolved chat search
func (r *PostgresRepository) LogSearch(ctx context.Context, entry *model.SearchLog) error {
	filters, err := json.Marshal(entry.Filters)
	if err != nil {
		return fmt.Errorf("failed to encode filters: %w", err)
	}

	logQuery := `
		INSERT INTO search_logs (session_id, message, filters, source, relaxation, result_count, response_time_ms, created_at)
		VALUES (:session_id, :message, :filters, :source, :relaxation, :result_count, :response_time_ms, :created_at)
	`
	_, err = r.db.NamedExecContext(ctx, logQuery, map[string]interface{}{
		"session_id":       entry.SessionID,
		"message":          strings.TrimSpace(entry.Message),
		"filters":          string(filters),
		"source":           entry.Source,
		"relaxation":       entry.Relaxation,
		"result_count":     entry.ResultCount,
		"response_time_ms": entry.TookMs,
		"created_at":       entry.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to log search: %w", err)
	}
	return nil
}
