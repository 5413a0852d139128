package session

import (
	"github.com/MikeSquared-Agency/Quotes/internal/catalog"
	"github.com/MikeSquared-Agency/Quotes/internal/scoring"
)

// Row is one equipment type in a summary. Product fields are empty when the
// equipment has no selection.
type Row struct {
	EquipmentID   string  `json:"equipment_id"`
	EquipmentName string  `json:"equipment"`
	Quantity      int     `json:"quantity"`
	Selected      bool    `json:"selected"`
	VendorID      string  `json:"vendor_id,omitempty"`
	VendorName    string  `json:"vendor,omitempty"`
	Brand         string  `json:"brand,omitempty"`
	Model         string  `json:"model,omitempty"`
	Score         float64 `json:"score"`
	UnitPrice     float64 `json:"unit_price"`
	Cost          float64 `json:"cost"`
}

// VendorColumn holds the per-vendor aggregates shown beside the selection.
type VendorColumn struct {
	VendorID     string  `json:"vendor_id"`
	Name         string  `json:"name"`
	AverageScore float64 `json:"average_score"`
	TotalCost    float64 `json:"total_cost"`
	Highest      bool    `json:"highest"`
}

type Summary struct {
	Scenario      scoring.ScenarioID `json:"scenario"`
	Criterion     catalog.Criterion  `json:"criterion"`
	CustomWeights bool               `json:"custom_weights"`
	Revision      uint64             `json:"revision"`
	Rows          []Row              `json:"rows"`
	TotalCost     float64            `json:"total_cost"`
	AverageScore  float64            `json:"average_score"`
	SelectedCount int                `json:"selected_count"`
	Vendors       []VendorColumn     `json:"vendors"`
}

// Summarize computes the rows, totals and vendor columns for st. Scores are
// the active scenario's rank scores.
func Summarize(cat *catalog.Catalog, st State) Summary {
	crit := st.Criterion()
	sum := Summary{
		Scenario:      st.Scenario,
		Criterion:     crit,
		CustomWeights: st.CustomWeights(),
		Revision:      st.Revision,
	}

	var scoreTotal float64
	for _, e := range cat.Equipment() {
		row := Row{
			EquipmentID:   e.ID,
			EquipmentName: e.Name,
			Quantity:      st.Quantities.Quantity(cat, e.ID),
		}
		if vendorID, ok := st.Selection.Vendor(e.ID); ok {
			if p, ok := cat.Product(e.ID, vendorID); ok {
				row.Selected = true
				row.VendorID = p.VendorID
				row.VendorName = p.VendorName
				row.Brand = p.Brand
				row.Model = p.Model
				row.Score = scoring.RankScore(p, crit, st.Weights)
				row.UnitPrice = p.AllInPrice
				row.Cost = float64(row.Quantity) * p.AllInPrice

				sum.TotalCost += row.Cost
				scoreTotal += row.Score
				sum.SelectedCount++
			}
		}
		sum.Rows = append(sum.Rows, row)
	}
	if sum.SelectedCount > 0 {
		sum.AverageScore = scoreTotal / float64(sum.SelectedCount)
	}

	var filter scoring.Selection
	if st.Kind() == scoring.FreeForm {
		filter = st.Selection.Clone()
	}
	best, averages := scoring.BestVendorFor(cat, crit, st.Weights)
	for _, v := range cat.Vendors() {
		sum.Vendors = append(sum.Vendors, VendorColumn{
			VendorID:     v.ID,
			Name:         v.Name,
			AverageScore: averages[v.ID],
			TotalCost:    scoring.VendorTotalCost(cat, v.ID, st.Quantities, filter),
			Highest:      v.ID == best,
		})
	}
	return sum
}
