package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/Quotes/internal/catalog"
	"github.com/MikeSquared-Agency/Quotes/internal/scoring"
)

// CatalogHandler serves reference data and stateless scoring.
type CatalogHandler struct {
	catalog *catalog.Catalog
}

func NewCatalogHandler(c *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: c}
}

type criterionInfo struct {
	Code          string                `json:"code"`
	Label         string                `json:"label"`
	Kind          catalog.CriterionKind `json:"kind"`
	Weighted      bool                  `json:"weighted"`
	DefaultWeight int                   `json:"default_weight"`
}

func (h *CatalogHandler) Criteria(w http.ResponseWriter, _ *http.Request) {
	var out []criterionInfo
	for _, c := range catalog.Criteria() {
		out = append(out, criterionInfo{
			Code:          c.Code(),
			Label:         c.Label(),
			Kind:          c.Kind(),
			Weighted:      c.Weighted(),
			DefaultWeight: c.DefaultWeight(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *CatalogHandler) Catalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"vendors":   h.catalog.Vendors(),
		"equipment": h.catalog.Equipment(),
		"products":  h.catalog.Products(),
	})
}

func (h *CatalogHandler) Labels(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.catalog.EquipmentType(id); !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "equipment not found"})
		return
	}
	writeJSON(w, http.StatusOK, h.catalog.Labels(id))
}

func (h *CatalogHandler) Frontier(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.catalog.EquipmentType(id); !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "equipment not found"})
		return
	}
	weights, err := weightsFromQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	points := scoring.Frontier(h.catalog, id, weights)
	if points == nil {
		points = []scoring.FrontierPoint{}
	}
	writeJSON(w, http.StatusOK, points)
}

// weightsFromQuery reads custom weights given as criterion-code query
// parameters (?S01=30&S02=20...). Missing codes count as zero; no codes at
// all means the precomputed scores.
func weightsFromQuery(r *http.Request) (*scoring.Weights, error) {
	q := r.URL.Query()
	if len(q) == 0 {
		return nil, nil
	}
	raw := make(map[string]string, len(q))
	for code := range q {
		raw[code] = q.Get(code)
	}
	v, err := scoring.ParseWeightInput(raw)
	if err != nil {
		return nil, err
	}
	return v.Validate()
}

func (h *CatalogHandler) Scenarios(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, scoring.Scenarios())
}

type checkWeightsRequest struct {
	Weights map[string]string `json:"weights"`
}

// CheckWeights validates raw form input without applying it.
func (h *CatalogHandler) CheckWeights(w http.ResponseWriter, r *http.Request) {
	var req checkWeightsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	v, err := scoring.ParseWeightInput(req.Weights)
	if err != nil {
		weightChecks.WithLabelValues("malformed").Inc()
		writeError(w, err)
		return
	}
	check := v.Check()
	result := "invalid"
	if check.Valid {
		result = "valid"
	}
	weightChecks.WithLabelValues(result).Inc()
	writeJSON(w, http.StatusOK, check)
}

type scoreRequest struct {
	EquipmentID string         `json:"equipment_id"`
	VendorID    string         `json:"vendor_id,omitempty"`
	Weights     map[string]int `json:"weights,omitempty"`
}

// Score returns factor breakdowns for one equipment type, or one product
// when vendor_id is given. Omitted weights use the precomputed scores.
func (h *CatalogHandler) Score(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if _, ok := h.catalog.EquipmentType(req.EquipmentID); !ok {
		writeError(w, fmt.Errorf("equipment %q: %w", req.EquipmentID, catalog.ErrUnknownReference))
		return
	}

	var weights *scoring.Weights
	if req.Weights != nil {
		v, err := scoring.WeightsFromMap(req.Weights)
		if err != nil {
			writeError(w, err)
			return
		}
		if weights, err = v.Validate(); err != nil {
			writeError(w, err)
			return
		}
	}

	products := h.catalog.ProductsFor(req.EquipmentID)
	if req.VendorID != "" {
		p, ok := h.catalog.Product(req.EquipmentID, req.VendorID)
		if !ok {
			writeError(w, fmt.Errorf("vendor %q: %w", req.VendorID, catalog.ErrUnknownReference))
			return
		}
		products = []catalog.Product{p}
	}

	results := make([]scoring.ScoringResult, len(products))
	for i, p := range products {
		results[i] = scoring.Breakdown(h.catalog, p, weights)
	}
	writeJSON(w, http.StatusOK, results)
}
