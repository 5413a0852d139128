package store

import (
	"context"
	"errors"
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Quotes/internal/session"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrVersionConflict = errors.New("session was modified concurrently")
)

// SessionRecord is a stored comparison session. Version increases on every
// update and guards against lost writes.
type SessionRecord struct {
	ID        uuid.UUID        `json:"session_id"`
	Snapshot  session.Snapshot `json:"state"`
	Version   int              `json:"version"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

type RecommendationStatus string

const (
	RecommendationPending   RecommendationStatus = "pending"
	RecommendationCompleted RecommendationStatus = "completed"
	RecommendationFailed    RecommendationStatus = "failed"
	// RecommendationStale marks a response that arrived after the session
	// moved on. Its text is never stored.
	RecommendationStale RecommendationStatus = "stale"
)

type Recommendation struct {
	ID          uuid.UUID            `json:"recommendation_id"`
	SessionID   uuid.UUID            `json:"session_id"`
	EquipmentID string               `json:"equipment_id,omitempty"`
	Status      RecommendationStatus `json:"status"`
	Text        string               `json:"text,omitempty"`
	VendorName  string               `json:"vendor,omitempty"`
	VendorID    string               `json:"vendor_id,omitempty"`
	Error       string               `json:"error,omitempty"`

	// Revision is the session revision the request was made against.
	Revision uint64 `json:"revision"`

	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type Store interface {
	CreateSession(ctx context.Context, rec *SessionRecord) error
	GetSession(ctx context.Context, id uuid.UUID) (*SessionRecord, error)
	// UpdateSession writes rec if the stored version still equals
	// rec.Version, then advances rec.Version.
	UpdateSession(ctx context.Context, rec *SessionRecord) error
	DeleteSession(ctx context.Context, id uuid.UUID) error

	// SaveRecommendation inserts or replaces a recommendation by ID.
	SaveRecommendation(ctx context.Context, r *Recommendation) error
	GetLatestRecommendation(ctx context.Context, sessionID uuid.UUID) (*Recommendation, error)

	Close() error
}

func cloneSnapshot(s session.Snapshot) session.Snapshot {
	s.CustomWeights = maps.Clone(s.CustomWeights)
	s.WeightInput = maps.Clone(s.WeightInput)
	s.Quantities = maps.Clone(s.Quantities)
	s.Selection = maps.Clone(s.Selection)
	return s
}
