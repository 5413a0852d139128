package scoring

import (
	"github.com/MikeSquared-Agency/Quotes/internal/catalog"
)

// OverallScore computes a product's weighted overall score. With nil weights
// the catalog's precomputed overall score is returned (0 when absent).
//
//	overall = Σ score[c] * weight[c] / 100
func OverallScore(p catalog.Product, w *Weights) float64 {
	if w == nil {
		return p.Score(catalog.Overall)
	}
	var total float64
	for _, c := range catalog.WeightedCriteria() {
		total += p.Scores.Get(c) * w.Fraction(c)
	}
	return total
}

// RankScore is the score a scenario ranks by: the overall score for Overall,
// the raw criterion score otherwise.
func RankScore(p catalog.Product, c catalog.Criterion, w *Weights) float64 {
	if c == catalog.Overall {
		return OverallScore(p, w)
	}
	return p.Score(c)
}

// VendorAverage averages RankScore over every equipment type in the catalog.
// Equipment the vendor did not quote contributes 0 and still counts in the
// divisor, which penalises partial product lines.
func VendorAverage(cat *catalog.Catalog, vendorID string, c catalog.Criterion, w *Weights) float64 {
	n := cat.EquipmentCount()
	if n == 0 {
		return 0
	}
	var total float64
	for _, e := range cat.Equipment() {
		if p, ok := cat.Product(e.ID, vendorID); ok {
			total += RankScore(p, c, w)
		}
	}
	return total / float64(n)
}

// VendorAverages returns VendorAverage for every vendor.
func VendorAverages(cat *catalog.Catalog, c catalog.Criterion, w *Weights) map[string]float64 {
	out := make(map[string]float64)
	for _, v := range cat.Vendors() {
		out[v.ID] = VendorAverage(cat, v.ID, c, w)
	}
	return out
}

// VendorTotalCost sums quantity × all-in price over equipment the vendor
// quoted. A non-nil filter restricts the sum to equipment types that have any
// vendor selected in it.
func VendorTotalCost(cat *catalog.Catalog, vendorID string, plan QuantityPlan, filter Selection) float64 {
	var total float64
	for _, e := range cat.Equipment() {
		p, ok := cat.Product(e.ID, vendorID)
		if !ok {
			continue
		}
		if filter != nil {
			if _, selected := filter[e.ID]; !selected {
				continue
			}
		}
		total += float64(plan.Quantity(cat, e.ID)) * p.AllInPrice
	}
	return total
}

// SelectionCost sums quantity × all-in price over a selection.
func SelectionCost(cat *catalog.Catalog, sel Selection, plan QuantityPlan) float64 {
	var total float64
	for _, e := range cat.Equipment() {
		vendorID, ok := sel[e.ID]
		if !ok {
			continue
		}
		if p, ok := cat.Product(e.ID, vendorID); ok {
			total += float64(plan.Quantity(cat, e.ID)) * p.AllInPrice
		}
	}
	return total
}
