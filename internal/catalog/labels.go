package catalog

// equipmentLabels rewords the equipment-specific criterion for the equipment
// types the catalog has historically carried. An equipment type's own Labels
// take precedence.
var equipmentLabels = map[string]string{
	"Dual Pulley":    "Stack Score",
	"Leg Ext/Curl":   "Stack Score",
	"Chest Press":    "Stack Score",
	"Treadmill":      "Step Up Score",
	"Elliptical":     "Step Up Score",
	"Recumbent Bike": "Step Thru Score",
	"Rower":          "Accessibility Score",
	"Bench":          "Mobility Score",
}

// Label resolves the display label of c for an equipment type. Unknown
// equipment falls back to the criterion's generic label.
func (c *Catalog) Label(equipmentID string, crit Criterion) string {
	i, ok := c.equipmentIdx[equipmentID]
	if !ok {
		return crit.Label()
	}
	return labelFor(c.equipment[i], crit)
}

// Labels returns the full code → label table for an equipment type.
func (c *Catalog) Labels(equipmentID string) map[string]string {
	out := make(map[string]string, len(criteria))
	for _, crit := range Criteria() {
		out[crit.Code()] = c.Label(equipmentID, crit)
	}
	return out
}

func labelFor(e EquipmentType, crit Criterion) string {
	if l, ok := e.Labels[crit.Code()]; ok && l != "" {
		return l
	}
	if crit == EquipmentSpecific {
		if l, ok := equipmentLabels[e.Name]; ok {
			return l
		}
	}
	return crit.Label()
}
