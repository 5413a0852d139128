//go:build integration

package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *PostgresStore {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	s, err := NewPostgresStore(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}

	t.Cleanup(func() {
		_, _ = s.pool.Exec(ctx, "TRUNCATE quote_sessions CASCADE")
		s.Close()
	})

	return s
}

func TestPostgresSessionRoundTrip(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	rec := &SessionRecord{Snapshot: testSnapshot()}
	require.NoError(t, s.CreateSession(ctx, rec))
	assert.NotEqual(t, uuid.Nil, rec.ID)
	assert.Equal(t, 1, rec.Version)

	got, err := s.GetSession(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Snapshot, got.Snapshot)

	got.Snapshot.Quantities["E01"] = 0
	require.NoError(t, s.UpdateSession(ctx, got))
	assert.Equal(t, 2, got.Version)

	stale := *rec
	assert.ErrorIs(t, s.UpdateSession(ctx, &stale), ErrVersionConflict)

	require.NoError(t, s.DeleteSession(ctx, rec.ID))
	_, err = s.GetSession(ctx, rec.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.UpdateSession(ctx, got), ErrNotFound)
}

func TestPostgresRecommendations(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	sess := &SessionRecord{Snapshot: testSnapshot()}
	require.NoError(t, s.CreateSession(ctx, sess))

	r := &Recommendation{SessionID: sess.ID, EquipmentID: "E01", Status: RecommendationPending, Revision: 3}
	require.NoError(t, s.SaveRecommendation(ctx, r))
	assert.False(t, r.CreatedAt.IsZero())

	done := time.Now().UTC()
	r.Status = RecommendationCompleted
	r.Text = "Alpha Fitness: strongest overall"
	r.VendorName = "Alpha Fitness"
	r.CompletedAt = &done
	require.NoError(t, s.SaveRecommendation(ctx, r))

	latest, err := s.GetLatestRecommendation(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, latest.ID)
	assert.Equal(t, RecommendationCompleted, latest.Status)
	assert.Equal(t, uint64(3), latest.Revision)
	require.NotNil(t, latest.CompletedAt)

	orphan := &Recommendation{SessionID: uuid.New(), Status: RecommendationPending}
	assert.ErrorIs(t, s.SaveRecommendation(ctx, orphan), ErrNotFound)
}
