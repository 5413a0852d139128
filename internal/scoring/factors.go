package scoring

import (
	"github.com/MikeSquared-Agency/Quotes/internal/catalog"
)

// FactorResult captures one criterion's contribution to an overall score.
type FactorResult struct {
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	Score    float64 `json:"score"`
	Weight   float64 `json:"weight"`
	Weighted float64 `json:"weighted"`
}

// ScoringResult is the explained overall score of one product.
type ScoringResult struct {
	EquipmentID string         `json:"equipment_id"`
	VendorID    string         `json:"vendor_id"`
	TotalScore  float64        `json:"total_score"`
	Precomputed bool           `json:"precomputed"`
	Factors     []FactorResult `json:"factors"`
}

// Breakdown explains OverallScore. With nil weights the factors are shown at
// default weights but the total stays the catalog's precomputed score.
func Breakdown(cat *catalog.Catalog, p catalog.Product, w *Weights) ScoringResult {
	weights := w.Vector()

	factors := make([]FactorResult, 0, catalog.NumWeighted)
	for _, c := range catalog.WeightedCriteria() {
		f := FactorResult{
			Code:   c.Code(),
			Name:   cat.Label(p.EquipmentID, c),
			Score:  p.Scores.Get(c),
			Weight: float64(weights.Get(c)) / WeightTotal,
		}
		f.Weighted = f.Score * f.Weight
		factors = append(factors, f)
	}

	return ScoringResult{
		EquipmentID: p.EquipmentID,
		VendorID:    p.VendorID,
		TotalScore:  OverallScore(p, w),
		Precomputed: w == nil,
		Factors:     factors,
	}
}
