package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Quotes/internal/catalog"
	"github.com/MikeSquared-Agency/Quotes/internal/hermes"
	"github.com/MikeSquared-Agency/Quotes/internal/recommend"
	"github.com/MikeSquared-Agency/Quotes/internal/scoring"
	"github.com/MikeSquared-Agency/Quotes/internal/session"
	"github.com/MikeSquared-Agency/Quotes/internal/store"
)

type SessionsHandler struct {
	catalog   *catalog.Catalog
	store     store.Store
	hermes    hermes.Client
	recommend *recommend.Service
	weights   scoring.WeightVector
	facility  string
	logger    *slog.Logger
}

func NewSessionsHandler(d Deps, logger *slog.Logger) *SessionsHandler {
	return &SessionsHandler{
		catalog:   d.Catalog,
		store:     d.Store,
		hermes:    d.Hermes,
		recommend: d.Recommend,
		weights:   d.InitialWeights,
		facility:  d.Facility,
		logger:    logger,
	}
}

type SessionResponse struct {
	ID        uuid.UUID        `json:"session_id"`
	Version   int              `json:"version"`
	State     session.Snapshot `json:"state"`
	Summary   session.Summary  `json:"summary"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func (h *SessionsHandler) response(rec *store.SessionRecord, st session.State) SessionResponse {
	return SessionResponse{
		ID:        rec.ID,
		Version:   rec.Version,
		State:     rec.Snapshot,
		Summary:   session.Summarize(h.catalog, st),
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}

type createSessionRequest struct {
	Scenario scoring.ScenarioID `json:"scenario,omitempty"`
	VendorID string             `json:"vendor_id,omitempty"`
}

func (h *SessionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	st := session.New(h.catalog)
	var err error
	if h.weights != scoring.DefaultWeights() {
		if st, err = session.Reduce(h.catalog, st, session.ApplyWeights{Vector: h.weights}); err != nil {
			writeError(w, err)
			return
		}
	}
	if req.Scenario != "" {
		if st, err = session.Reduce(h.catalog, st, session.ChangeScenario{Scenario: req.Scenario, VendorID: req.VendorID}); err != nil {
			writeError(w, err)
			return
		}
	}
	scenarioResolutions.WithLabelValues(string(st.Scenario)).Inc()

	rec := &store.SessionRecord{ID: uuid.New(), Snapshot: st.ToSnapshot()}
	if err := h.store.CreateSession(r.Context(), rec); err != nil {
		writeError(w, err)
		return
	}

	hermes.Emit(h.hermes, h.logger, hermes.SubjectSessionCreated(rec.ID.String()), hermes.SessionEvent{
		SessionID: rec.ID.String(),
		Scenario:  string(st.Scenario),
		Revision:  st.Revision,
		Timestamp: time.Now().UTC(),
	})
	writeJSON(w, http.StatusCreated, h.response(rec, st))
}

// load reads the session named in the URL and rebuilds its state.
func (h *SessionsHandler) load(r *http.Request) (*store.SessionRecord, session.State, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return nil, session.State{}, fmt.Errorf("invalid session id: %w", store.ErrNotFound)
	}
	rec, err := h.store.GetSession(r.Context(), id)
	if err != nil {
		return nil, session.State{}, err
	}
	st, err := session.FromSnapshot(rec.Snapshot)
	if err != nil {
		return nil, session.State{}, fmt.Errorf("stored session %s: %w", id, err)
	}
	return rec, st, nil
}

func (h *SessionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, st, err := h.load(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.response(rec, st))
}

func (h *SessionsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	_, st, err := h.load(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session.Summarize(h.catalog, st))
}

func (h *SessionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	if err := h.store.DeleteSession(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	if h.recommend != nil {
		h.recommend.Forget(id)
	}
	hermes.Emit(h.hermes, h.logger, hermes.SubjectSessionDeleted(id.String()), hermes.SessionEvent{
		SessionID: id.String(),
		Timestamp: time.Now().UTC(),
	})
	w.WriteHeader(http.StatusNoContent)
}

// Event applies one user event. A "version" field in the body makes the
// update conditional on the stored version.
func (h *SessionsHandler) Event(w http.ResponseWriter, r *http.Request) {
	rec, st, err := h.load(r)
	if err != nil {
		writeError(w, err)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	var guard struct {
		Version *int `json:"version"`
	}
	if err := json.Unmarshal(body, &guard); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if guard.Version != nil && *guard.Version != rec.Version {
		writeError(w, store.ErrVersionConflict)
		return
	}

	ev, err := session.DecodeEvent(body)
	if err != nil {
		writeError(w, err)
		return
	}
	next, err := session.Reduce(h.catalog, st, ev)
	if err != nil {
		writeError(w, err)
		return
	}

	rec.Snapshot = next.ToSnapshot()
	if err := h.store.UpdateSession(r.Context(), rec); err != nil {
		writeError(w, err)
		return
	}

	h.emitEvent(rec.ID, ev, next)
	writeJSON(w, http.StatusOK, h.response(rec, next))
}

func (h *SessionsHandler) emitEvent(id uuid.UUID, ev session.Event, st session.State) {
	sid := id.String()
	hermes.Emit(h.hermes, h.logger, hermes.SubjectSessionUpdated(sid), hermes.SessionEvent{
		SessionID: sid,
		Scenario:  string(st.Scenario),
		Revision:  st.Revision,
		Event:     ev.EventType(),
		Timestamp: time.Now().UTC(),
	})

	switch ev.(type) {
	case session.ChangeScenario:
		scenarioResolutions.WithLabelValues(string(st.Scenario)).Inc()
		hermes.Emit(h.hermes, h.logger, hermes.SubjectScenarioChanged(sid), hermes.SessionEvent{
			SessionID: sid,
			Scenario:  string(st.Scenario),
			Revision:  st.Revision,
			Event:     ev.EventType(),
			Timestamp: time.Now().UTC(),
		})
	case session.ApplyWeights, session.ResetWeights:
		_, reset := ev.(session.ResetWeights)
		hermes.Emit(h.hermes, h.logger, hermes.SubjectWeightsApplied(sid), hermes.WeightsAppliedEvent{
			SessionID: sid,
			Weights:   st.WeightInput.Map(),
			Reset:     reset,
			Revision:  st.Revision,
		})
	}
}

type recommendRequest struct {
	EquipmentID string `json:"equipment_id,omitempty"`
}

// Recommend starts a model call for the session's current revision and
// answers with its ticket.
func (h *SessionsHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	if h.recommend == nil {
		writeError(w, recommend.ErrNoCredential)
		return
	}
	rec, st, err := h.load(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	var in recommend.PromptInput
	if req.EquipmentID != "" {
		in, err = recommend.ForEquipment(h.catalog, req.EquipmentID, st.Weights)
	} else {
		in, err = recommend.ForSelection(h.catalog, st.Selection, st.Weights)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	in.Facility = h.facility

	ticket, err := h.recommend.Submit(r.Context(), recommend.Request{
		SessionID:   rec.ID,
		EquipmentID: req.EquipmentID,
		Revision:    st.Revision,
		Input:       in,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, ticket)
}

func (h *SessionsHandler) LatestRecommendation(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	rec, err := h.store.GetLatestRecommendation(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
