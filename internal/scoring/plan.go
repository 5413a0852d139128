package scoring

import (
	"maps"

	"github.com/MikeSquared-Agency/Quotes/internal/catalog"
)

// QuantityPlan maps equipment type → units to buy.
type QuantityPlan map[string]int

// Quantity returns the planned units for equipmentID. Equipment missing from
// the plan uses the catalog default; an explicit 0 means none.
func (q QuantityPlan) Quantity(cat *catalog.Catalog, equipmentID string) int {
	if n, ok := q[equipmentID]; ok {
		return n
	}
	if e, ok := cat.EquipmentType(equipmentID); ok {
		return e.DefaultQuantity
	}
	return 0
}

func (q QuantityPlan) Clone() QuantityPlan { return maps.Clone(q) }

// Selection maps equipment type → chosen vendor. Equipment without an entry
// has no selection.
type Selection map[string]string

func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	maps.Copy(out, s)
	return out
}

// Vendor returns the vendor selected for equipmentID.
func (s Selection) Vendor(equipmentID string) (string, bool) {
	v, ok := s[equipmentID]
	return v, ok
}
