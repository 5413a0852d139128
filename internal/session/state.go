// Package session holds the per-user comparison state and the pure reducer
// that moves it from one value to the next.
package session

import (
	"github.com/MikeSquared-Agency/Quotes/internal/catalog"
	"github.com/MikeSquared-Agency/Quotes/internal/scoring"
)

// State is one user's comparison session. Values are never mutated in place;
// Reduce returns a fresh State with its own maps.
type State struct {
	Scenario scoring.ScenarioID
	// VendorID is the explicitly chosen vendor for ExplicitVendor scenarios.
	VendorID string

	// Weights are the applied custom weights, nil while the catalog's
	// precomputed overall scores are in use.
	Weights *scoring.Weights
	// WeightInput is the editable vector shown to the user. It may be
	// invalid and only reaches scoring through ApplyWeights.
	WeightInput scoring.WeightVector

	Quantities scoring.QuantityPlan
	Selection  scoring.Selection

	// Revision increases with every applied event.
	Revision uint64
}

// New returns the initial state: highest overall score at catalog weights.
func New(cat *catalog.Catalog) State {
	st := State{
		Scenario:    scoring.HighestOverall,
		WeightInput: scoring.DefaultWeights(),
		Quantities:  cat.DefaultQuantities(),
	}
	st.Selection, _ = scoring.Resolve(cat, scoring.ResolveInput{Scenario: st.Scenario})
	return st
}

// CustomWeights reports whether applied custom weights drive scoring.
func (s State) CustomWeights() bool { return s.Weights != nil }

// Kind returns the selection strategy of the active scenario.
func (s State) Kind() scoring.ScenarioKind {
	sc, _ := scoring.LookupScenario(s.Scenario)
	return sc.Kind
}

// Criterion returns the criterion the active scenario ranks by.
func (s State) Criterion() catalog.Criterion {
	sc, ok := scoring.LookupScenario(s.Scenario)
	if !ok {
		return catalog.Overall
	}
	return sc.Criterion
}

func (s State) clone() State {
	s.Quantities = s.Quantities.Clone()
	if s.Quantities == nil {
		s.Quantities = scoring.QuantityPlan{}
	}
	s.Selection = s.Selection.Clone()
	return s
}
