package scoring

import (
	"github.com/MikeSquared-Agency/Quotes/internal/catalog"
)

// FrontierPoint is one product placed on the cost/score plane.
type FrontierPoint struct {
	VendorID   string  `json:"vendor_id"`
	VendorName string  `json:"vendor"`
	Brand      string  `json:"brand"`
	Model      string  `json:"model"`
	Cost       float64 `json:"cost"` // lower is better
	Score      float64 `json:"score"`
}

// Frontier returns the products of an equipment type that no other product
// beats on both all-in price and overall score, in catalog order.
// O(n^2) dominance check; an equipment type has a handful of quotes.
func Frontier(cat *catalog.Catalog, equipmentID string, w *Weights) []FrontierPoint {
	products := cat.ProductsFor(equipmentID)
	points := make([]FrontierPoint, len(products))
	for i, p := range products {
		points[i] = FrontierPoint{
			VendorID:   p.VendorID,
			VendorName: p.VendorName,
			Brand:      p.Brand,
			Model:      p.Model,
			Cost:       p.AllInPrice,
			Score:      OverallScore(p, w),
		}
	}
	if len(points) <= 1 {
		return points
	}

	frontier := make([]FrontierPoint, 0, len(points))
	for i := range points {
		dominated := false
		for j := range points {
			if i != j && dominates(points[j], points[i]) {
				dominated = true
				break
			}
		}
		if !dominated {
			frontier = append(frontier, points[i])
		}
	}
	return frontier
}

// dominates reports whether a is no worse than b on cost and score and
// strictly better on one of them.
func dominates(a, b FrontierPoint) bool {
	if a.Cost > b.Cost || a.Score < b.Score {
		return false
	}
	return a.Cost < b.Cost || a.Score > b.Score
}
