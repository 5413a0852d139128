package session

import (
	"errors"
	"fmt"

	"github.com/MikeSquared-Agency/Quotes/internal/catalog"
	"github.com/MikeSquared-Agency/Quotes/internal/scoring"
)

var (
	ErrNotFreeForm       = errors.New("manual selection requires the custom scenario")
	ErrSelectionConflict = errors.New("equipment already has a vendor selected; clear it first")
	ErrNoProduct         = errors.New("vendor has no product for this equipment")
	ErrNegativeQuantity  = errors.New("quantity must not be negative")
	ErrUnknownEquipment  = errors.New("unknown equipment")
)

// Reduce applies ev to st. On error the input state is returned unchanged.
func Reduce(cat *catalog.Catalog, st State, ev Event) (State, error) {
	next, err := apply(cat, st.clone(), ev)
	if err != nil {
		return st, err
	}
	next.Revision = st.Revision + 1
	return next, nil
}

func apply(cat *catalog.Catalog, st State, ev Event) (State, error) {
	switch e := ev.(type) {
	case ChangeScenario:
		return changeScenario(cat, st, e)
	case ApplyWeights:
		w, err := e.Vector.Validate()
		if err != nil {
			return st, err
		}
		st.Weights = w
		st.WeightInput = e.Vector
		return reresolve(cat, st)
	case ResetWeights:
		st.Weights = nil
		st.WeightInput = scoring.DefaultWeights()
		return reresolve(cat, st)
	case ToggleVendor:
		return toggleVendor(cat, st, e)
	case ClearSelection:
		if st.Kind() != scoring.FreeForm {
			return st, ErrNotFreeForm
		}
		if e.EquipmentID == "" {
			st.Selection = scoring.Selection{}
			return st, nil
		}
		if _, ok := cat.EquipmentType(e.EquipmentID); !ok {
			return st, fmt.Errorf("%w: %q", ErrUnknownEquipment, e.EquipmentID)
		}
		delete(st.Selection, e.EquipmentID)
		return st, nil
	case SetQuantity:
		if _, ok := cat.EquipmentType(e.EquipmentID); !ok {
			return st, fmt.Errorf("%w: %q", ErrUnknownEquipment, e.EquipmentID)
		}
		if e.Quantity < 0 {
			return st, ErrNegativeQuantity
		}
		st.Quantities[e.EquipmentID] = e.Quantity
		return st, nil
	case nil:
		return st, ErrUnknownEvent
	default:
		return st, fmt.Errorf("%w: %s", ErrUnknownEvent, ev.EventType())
	}
}

func changeScenario(cat *catalog.Catalog, st State, e ChangeScenario) (State, error) {
	sc, ok := scoring.LookupScenario(e.Scenario)
	if !ok {
		return st, fmt.Errorf("%w: %q", scoring.ErrUnknownScenario, e.Scenario)
	}

	vendorID := ""
	if sc.Kind == scoring.ExplicitVendor {
		vendorID = e.VendorID
	}
	sel, err := scoring.Resolve(cat, scoring.ResolveInput{
		Scenario: sc.ID,
		VendorID: vendorID,
		Weights:  st.Weights,
	})
	if err != nil {
		return st, err
	}

	st.Scenario = sc.ID
	st.VendorID = vendorID
	st.Selection = sel
	if sc.Kind == scoring.FreeForm {
		st.Quantities = cat.DefaultQuantities()
	}
	return st, nil
}

// reresolve recomputes the selection after a weight change. Manual free-form
// choices are kept.
func reresolve(cat *catalog.Catalog, st State) (State, error) {
	if st.Kind() == scoring.FreeForm {
		return st, nil
	}
	sel, err := scoring.Resolve(cat, scoring.ResolveInput{
		Scenario: st.Scenario,
		VendorID: st.VendorID,
		Weights:  st.Weights,
	})
	if err != nil {
		return st, err
	}
	st.Selection = sel
	return st, nil
}

func toggleVendor(cat *catalog.Catalog, st State, e ToggleVendor) (State, error) {
	if st.Kind() != scoring.FreeForm {
		return st, ErrNotFreeForm
	}
	if _, ok := cat.EquipmentType(e.EquipmentID); !ok {
		return st, fmt.Errorf("%w: %q", ErrUnknownEquipment, e.EquipmentID)
	}
	if _, ok := cat.Product(e.EquipmentID, e.VendorID); !ok {
		return st, fmt.Errorf("%w: %s/%s", ErrNoProduct, e.EquipmentID, e.VendorID)
	}

	current, selected := st.Selection.Vendor(e.EquipmentID)
	switch {
	case !selected:
		st.Selection[e.EquipmentID] = e.VendorID
	case current == e.VendorID:
		delete(st.Selection, e.EquipmentID)
	default:
		return st, fmt.Errorf("%w: %s is assigned to %s", ErrSelectionConflict, e.EquipmentID, current)
	}
	return st, nil
}
