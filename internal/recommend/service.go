package recommend

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Quotes/internal/catalog"
	"github.com/MikeSquared-Agency/Quotes/internal/hermes"
	"github.com/MikeSquared-Agency/Quotes/internal/store"
)

// Request asks for a recommendation against a specific session revision.
type Request struct {
	SessionID   uuid.UUID
	EquipmentID string
	Revision    uint64
	Input       PromptInput
}

// Ticket identifies an in-flight request.
type Ticket struct {
	ID        uuid.UUID `json:"recommendation_id"`
	SessionID uuid.UUID `json:"session_id"`
	Revision  uint64    `json:"revision"`
}

// Observer is told how every request ended.
type Observer func(status store.RecommendationStatus, elapsed time.Duration)

type ServiceConfig struct {
	// Timeout bounds one model call including retries.
	Timeout  time.Duration
	Observer Observer
}

// Service runs model calls in the background. Only the latest ticket of a
// session whose revision is unchanged may publish its text; anything else is
// recorded as stale.
type Service struct {
	client  Client
	store   store.Store
	hermes  hermes.Client
	timeout time.Duration
	observe Observer
	logger  *slog.Logger

	mu      sync.Mutex
	latest  map[uuid.UUID]uuid.UUID
	cancels map[uuid.UUID]context.CancelFunc

	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewService(c Client, s store.Store, h hermes.Client, cfg ServiceConfig, logger *slog.Logger) *Service {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		client:  c,
		store:   s,
		hermes:  h,
		timeout: timeout,
		observe: cfg.Observer,
		logger:  logger,
		latest:  make(map[uuid.UUID]uuid.UUID),
		cancels: make(map[uuid.UUID]context.CancelFunc),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Submit records a pending recommendation and starts the model call. A
// previous in-flight request for the same session is cancelled.
func (s *Service) Submit(ctx context.Context, req Request) (Ticket, error) {
	if len(req.Input.Products) == 0 {
		return Ticket{}, ErrNoProducts
	}
	if s.ctx.Err() != nil {
		return Ticket{}, ErrStopped
	}
	prompt := BuildPrompt(req.Input)

	t := Ticket{ID: uuid.New(), SessionID: req.SessionID, Revision: req.Revision}
	rec := &store.Recommendation{
		ID:          t.ID,
		SessionID:   t.SessionID,
		EquipmentID: req.EquipmentID,
		Status:      store.RecommendationPending,
		Revision:    t.Revision,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.SaveRecommendation(ctx, rec); err != nil {
		return Ticket{}, err
	}

	callCtx, cancel := context.WithTimeout(s.ctx, s.timeout)
	s.mu.Lock()
	// Stop cancels under mu, so no Add can race its Wait.
	if s.ctx.Err() != nil {
		s.mu.Unlock()
		cancel()
		s.abandon(rec)
		return Ticket{}, ErrStopped
	}
	s.wg.Add(1)
	if prev, ok := s.latest[t.SessionID]; ok {
		if c, ok := s.cancels[prev]; ok {
			c()
		}
	}
	s.latest[t.SessionID] = t.ID
	s.cancels[t.ID] = cancel
	s.mu.Unlock()

	hermes.Emit(s.hermes, s.logger, hermes.SubjectRecommendationRequested(t.SessionID.String()), hermes.RecommendationEvent{
		RecommendationID: t.ID.String(),
		SessionID:        t.SessionID.String(),
		EquipmentID:      req.EquipmentID,
		Revision:         t.Revision,
		Status:           string(store.RecommendationPending),
	})

	go s.run(callCtx, t, rec, prompt, req.Input.Plain())
	return t, nil
}

func (s *Service) run(ctx context.Context, t Ticket, rec *store.Recommendation, prompt string, products []catalog.Product) {
	defer s.wg.Done()
	start := time.Now()

	text, err := s.client.Complete(ctx, prompt)

	s.mu.Lock()
	if c, ok := s.cancels[t.ID]; ok {
		c()
		delete(s.cancels, t.ID)
	}
	superseded := s.latest[t.SessionID] != t.ID
	s.mu.Unlock()

	saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	now := time.Now().UTC()
	rec.CompletedAt = &now
	switch {
	case superseded || s.revisionChanged(saveCtx, t):
		rec.Status = store.RecommendationStale
	case err != nil:
		rec.Status = store.RecommendationFailed
		rec.Error = err.Error()
	default:
		rec.Status = store.RecommendationCompleted
		rec.Text = text
		name, p := ExtractVendor(text, products)
		rec.VendorName = name
		if p != nil {
			rec.VendorName = p.VendorName
			rec.VendorID = p.VendorID
		}
	}

	elapsed := time.Since(start)
	if s.observe != nil {
		s.observe(rec.Status, elapsed)
	}

	if serr := s.store.SaveRecommendation(saveCtx, rec); serr != nil {
		if errors.Is(serr, store.ErrNotFound) {
			s.logger.Info("session gone before recommendation finished", "session_id", t.SessionID)
		} else {
			s.logger.Error("failed to save recommendation", "recommendation_id", t.ID, "error", serr)
		}
		return
	}

	ev := hermes.RecommendationEvent{
		RecommendationID: t.ID.String(),
		SessionID:        t.SessionID.String(),
		EquipmentID:      rec.EquipmentID,
		Revision:         t.Revision,
		Status:           string(rec.Status),
		VendorName:       rec.VendorName,
		Error:            rec.Error,
		DurationMs:       float64(elapsed.Microseconds()) / 1000,
	}
	sid := t.SessionID.String()
	switch rec.Status {
	case store.RecommendationCompleted:
		s.logger.Info("recommendation completed", "recommendation_id", t.ID, "session_id", t.SessionID, "vendor", rec.VendorName, "elapsed", elapsed)
		hermes.Emit(s.hermes, s.logger, hermes.SubjectRecommendationCompleted(sid), ev)
	case store.RecommendationFailed:
		s.logger.Warn("recommendation failed", "recommendation_id", t.ID, "session_id", t.SessionID, "error", err)
		hermes.Emit(s.hermes, s.logger, hermes.SubjectRecommendationFailed(sid), ev)
	default:
		s.logger.Debug("discarded stale recommendation", "recommendation_id", t.ID, "session_id", t.SessionID)
		hermes.Emit(s.hermes, s.logger, hermes.SubjectRecommendationDiscarded(sid), ev)
	}
}

func (s *Service) revisionChanged(ctx context.Context, t Ticket) bool {
	rec, err := s.store.GetSession(ctx, t.SessionID)
	if err != nil {
		return true
	}
	return rec.Snapshot.Revision != t.Revision
}

// Forget drops the bookkeeping for a deleted session and cancels its call.
func (s *Service) Forget(sessionID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.latest[sessionID]; ok {
		if c, ok := s.cancels[id]; ok {
			c()
		}
		delete(s.latest, sessionID)
	}
}

// Stop cancels in-flight calls and waits for them to be recorded.
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.cancel()
		s.mu.Unlock()
	})
	s.wg.Wait()
}

// abandon marks a pending record failed when the service stops before its
// call starts.
func (s *Service) abandon(rec *store.Recommendation) {
	rec.Status = store.RecommendationFailed
	rec.Error = ErrStopped.Error()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.store.SaveRecommendation(ctx, rec); err != nil {
		s.logger.Warn("failed to save abandoned recommendation", "recommendation_id", rec.ID, "error", err)
	}
}
