package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const foreignKeyViolation = "23503"

const schema = `
CREATE TABLE IF NOT EXISTS quote_sessions (
	session_id UUID PRIMARY KEY,
	snapshot   JSONB NOT NULL,
	version    INTEGER NOT NULL DEFAULT 1,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS quote_recommendations (
	recommendation_id UUID PRIMARY KEY,
	session_id   UUID NOT NULL REFERENCES quote_sessions(session_id) ON DELETE CASCADE,
	equipment_id TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL,
	text         TEXT NOT NULL DEFAULT '',
	vendor_name  TEXT NOT NULL DEFAULT '',
	vendor_id    TEXT NOT NULL DEFAULT '',
	error        TEXT NOT NULL DEFAULT '',
	revision     BIGINT NOT NULL DEFAULT 0,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	completed_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS quote_recommendations_session_idx
	ON quote_recommendations (session_id, created_at DESC);
`

type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects and creates the tables if they are missing.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateSession(ctx context.Context, rec *SessionRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	snapshotJSON, err := json.Marshal(rec.Snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	return s.pool.QueryRow(ctx, `
		INSERT INTO quote_sessions (session_id, snapshot)
		VALUES ($1, $2)
		RETURNING version, created_at, updated_at`,
		rec.ID, snapshotJSON,
	).Scan(&rec.Version, &rec.CreatedAt, &rec.UpdatedAt)
}

func (s *PostgresStore) GetSession(ctx context.Context, id uuid.UUID) (*SessionRecord, error) {
	rec := &SessionRecord{}
	var snapshotJSON []byte
	err := s.pool.QueryRow(ctx, `
		SELECT session_id, snapshot, version, created_at, updated_at
		FROM quote_sessions WHERE session_id = $1`, id,
	).Scan(&rec.ID, &snapshotJSON, &rec.Version, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(snapshotJSON, &rec.Snapshot); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", id, err)
	}
	return rec, nil
}

func (s *PostgresStore) UpdateSession(ctx context.Context, rec *SessionRecord) error {
	snapshotJSON, err := json.Marshal(rec.Snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	err = s.pool.QueryRow(ctx, `
		UPDATE quote_sessions
		SET snapshot = $2, version = version + 1, updated_at = now()
		WHERE session_id = $1 AND version = $3
		RETURNING version, created_at, updated_at`,
		rec.ID, snapshotJSON, rec.Version,
	).Scan(&rec.Version, &rec.CreatedAt, &rec.UpdatedAt)
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	// Nothing matched: either the row is gone or the version moved on.
	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM quote_sessions WHERE session_id = $1)`, rec.ID,
	).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrVersionConflict
}

func (s *PostgresStore) DeleteSession(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM quote_sessions WHERE session_id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) SaveRecommendation(ctx context.Context, r *Recommendation) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO quote_recommendations (recommendation_id, session_id, equipment_id,
			status, text, vendor_name, vendor_id, error, revision, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (recommendation_id) DO UPDATE SET
			status = EXCLUDED.status, text = EXCLUDED.text,
			vendor_name = EXCLUDED.vendor_name, vendor_id = EXCLUDED.vendor_id,
			error = EXCLUDED.error, completed_at = EXCLUDED.completed_at
		RETURNING created_at`,
		r.ID, r.SessionID, r.EquipmentID,
		string(r.Status), r.Text, r.VendorName, r.VendorID, r.Error,
		int64(r.Revision), r.CompletedAt,
	).Scan(&r.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return ErrNotFound
	}
	return err
}

func (s *PostgresStore) GetLatestRecommendation(ctx context.Context, sessionID uuid.UUID) (*Recommendation, error) {
	r := &Recommendation{}
	var status string
	var revision int64
	err := s.pool.QueryRow(ctx, `
		SELECT recommendation_id, session_id, equipment_id, status, text,
			vendor_name, vendor_id, error, revision, created_at, completed_at
		FROM quote_recommendations
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT 1`, sessionID,
	).Scan(
		&r.ID, &r.SessionID, &r.EquipmentID, &status, &r.Text,
		&r.VendorName, &r.VendorID, &r.Error, &revision, &r.CreatedAt, &r.CompletedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	r.Status = RecommendationStatus(status)
	r.Revision = uint64(revision)
	return r, nil
}
