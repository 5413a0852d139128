package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MikeSquared-Agency/Quotes/internal/catalog"
	"github.com/MikeSquared-Agency/Quotes/internal/recommend"
	"github.com/MikeSquared-Agency/Quotes/internal/scoring"
	"github.com/MikeSquared-Agency/Quotes/internal/session"
	"github.com/MikeSquared-Agency/Quotes/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error   string `json:"error"`
	Total   *int   `json:"total,omitempty"`
	Deficit *int   `json:"deficit,omitempty"`
}

// writeError maps domain errors to status codes.
func writeError(w http.ResponseWriter, err error) {
	body := errorBody{Error: err.Error()}

	var iw *scoring.InvalidWeightsError
	if errors.As(err, &iw) {
		total, deficit := iw.Total, iw.Deficit()
		body.Total, body.Deficit = &total, &deficit
		writeJSON(w, http.StatusUnprocessableEntity, body)
		return
	}

	writeJSON(w, statusFor(err), body)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrSelectionConflict), errors.Is(err, store.ErrVersionConflict):
		return http.StatusConflict
	case errors.Is(err, recommend.ErrNoCredential), errors.Is(err, recommend.ErrStopped):
		return http.StatusServiceUnavailable
	case errors.Is(err, scoring.ErrWeightInput),
		errors.Is(err, scoring.ErrUnknownScenario),
		errors.Is(err, scoring.ErrUnknownVendor),
		errors.Is(err, session.ErrUnknownEvent),
		errors.Is(err, session.ErrMalformedEvent),
		errors.Is(err, session.ErrNotFreeForm),
		errors.Is(err, session.ErrNoProduct),
		errors.Is(err, session.ErrNegativeQuantity),
		errors.Is(err, session.ErrUnknownEquipment),
		errors.Is(err, catalog.ErrUnknownReference),
		errors.Is(err, catalog.ErrUnknownCriterion),
		errors.Is(err, recommend.ErrNoProducts):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
