package session

import (
	"fmt"

	"github.com/MikeSquared-Agency/Quotes/internal/scoring"
)

// Snapshot is the serialisable form of a State.
type Snapshot struct {
	Scenario      scoring.ScenarioID `json:"scenario"`
	VendorID      string             `json:"vendor_id,omitempty"`
	CustomWeights map[string]int     `json:"custom_weights,omitempty"`
	WeightInput   map[string]int     `json:"weight_input"`
	Quantities    map[string]int     `json:"quantities"`
	Selection     map[string]string  `json:"selection"`
	Revision      uint64             `json:"revision"`
}

func (s State) ToSnapshot() Snapshot {
	snap := Snapshot{
		Scenario:    s.Scenario,
		VendorID:    s.VendorID,
		WeightInput: s.WeightInput.Map(),
		Quantities:  s.Quantities.Clone(),
		Selection:   s.Selection.Clone(),
		Revision:    s.Revision,
	}
	if s.Weights != nil {
		snap.CustomWeights = s.Weights.Vector().Map()
	}
	if snap.Quantities == nil {
		snap.Quantities = map[string]int{}
	}
	return snap
}

// FromSnapshot rebuilds a State. Stored custom weights must still validate.
func FromSnapshot(snap Snapshot) (State, error) {
	if _, ok := scoring.LookupScenario(snap.Scenario); !ok {
		return State{}, fmt.Errorf("%w: %q", scoring.ErrUnknownScenario, snap.Scenario)
	}
	input, err := scoring.WeightsFromMap(snap.WeightInput)
	if err != nil {
		return State{}, fmt.Errorf("weight input: %w", err)
	}

	st := State{
		Scenario:    snap.Scenario,
		VendorID:    snap.VendorID,
		WeightInput: input,
		Quantities:  scoring.QuantityPlan(snap.Quantities).Clone(),
		Selection:   scoring.Selection(snap.Selection).Clone(),
		Revision:    snap.Revision,
	}
	if st.Quantities == nil {
		st.Quantities = scoring.QuantityPlan{}
	}
	if snap.CustomWeights != nil {
		v, err := scoring.WeightsFromMap(snap.CustomWeights)
		if err != nil {
			return State{}, fmt.Errorf("custom weights: %w", err)
		}
		if st.Weights, err = v.Validate(); err != nil {
			return State{}, fmt.Errorf("custom weights: %w", err)
		}
	}
	return st, nil
}
