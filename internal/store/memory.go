package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps sessions in process memory. Everything is lost on
// restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]SessionRecord
	recs     map[uuid.UUID][]Recommendation // by session, insertion order

	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[uuid.UUID]SessionRecord),
		recs:     make(map[uuid.UUID][]Recommendation),
		now:      time.Now,
	}
}

func (m *MemoryStore) CreateSession(_ context.Context, rec *SessionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	now := m.now().UTC()
	rec.Version = 1
	rec.CreatedAt = now
	rec.UpdatedAt = now

	stored := *rec
	stored.Snapshot = cloneSnapshot(rec.Snapshot)
	m.sessions[rec.ID] = stored
	return nil
}

func (m *MemoryStore) GetSession(_ context.Context, id uuid.UUID) (*SessionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	rec.Snapshot = cloneSnapshot(rec.Snapshot)
	return &rec, nil
}

func (m *MemoryStore) UpdateSession(_ context.Context, rec *SessionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.sessions[rec.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != rec.Version {
		return ErrVersionConflict
	}

	rec.Version++
	rec.CreatedAt = cur.CreatedAt
	rec.UpdatedAt = m.now().UTC()

	stored := *rec
	stored.Snapshot = cloneSnapshot(rec.Snapshot)
	m.sessions[rec.ID] = stored
	return nil
}

func (m *MemoryStore) DeleteSession(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	delete(m.recs, id)
	return nil
}

func (m *MemoryStore) SaveRecommendation(_ context.Context, r *Recommendation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[r.SessionID]; !ok {
		return ErrNotFound
	}
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = m.now().UTC()
	}

	list := m.recs[r.SessionID]
	for i := range list {
		if list[i].ID == r.ID {
			list[i] = *r
			return nil
		}
	}
	m.recs[r.SessionID] = append(list, *r)
	return nil
}

// GetLatestRecommendation returns the most recently created recommendation
// for the session.
func (m *MemoryStore) GetLatestRecommendation(_ context.Context, sessionID uuid.UUID) (*Recommendation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := m.recs[sessionID]
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	latest := list[0]
	for _, r := range list[1:] {
		if !r.CreatedAt.Before(latest.CreatedAt) {
			latest = r
		}
	}
	return &latest, nil
}

func (m *MemoryStore) Close() error { return nil }
