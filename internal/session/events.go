package session

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MikeSquared-Agency/Quotes/internal/scoring"
)

var (
	ErrUnknownEvent   = errors.New("unknown event type")
	ErrMalformedEvent = errors.New("malformed event")
)

// Event is a user input that Reduce turns into a new State.
type Event interface {
	EventType() string
}

// ChangeScenario switches to another scenario and re-resolves from scratch.
type ChangeScenario struct {
	Scenario scoring.ScenarioID `json:"scenario"`
	VendorID string             `json:"vendor_id,omitempty"`
}

// ApplyWeights applies a custom weight vector. Invalid vectors are rejected.
type ApplyWeights struct {
	Vector scoring.WeightVector `json:"-"`
}

// ResetWeights restores the default weights and the catalog's precomputed
// overall scores.
type ResetWeights struct{}

// ToggleVendor assigns or unassigns a vendor in free-form mode.
type ToggleVendor struct {
	EquipmentID string `json:"equipment_id"`
	VendorID    string `json:"vendor_id"`
}

// ClearSelection drops the free-form assignment for one equipment type, or
// every assignment when EquipmentID is empty.
type ClearSelection struct {
	EquipmentID string `json:"equipment_id,omitempty"`
}

type SetQuantity struct {
	EquipmentID string `json:"equipment_id"`
	Quantity    int    `json:"quantity"`
}

func (ChangeScenario) EventType() string { return "change_scenario" }
func (ApplyWeights) EventType() string   { return "apply_weights" }
func (ResetWeights) EventType() string   { return "reset_weights" }
func (ToggleVendor) EventType() string   { return "toggle_vendor" }
func (ClearSelection) EventType() string { return "clear_selection" }
func (SetQuantity) EventType() string    { return "set_quantity" }

// DecodeEvent reads a JSON event of the form {"type": "...", ...fields}.
// apply_weights carries its vector as "weights": {"S01": "22", ...}, parsed
// the same way as form input.
func DecodeEvent(data []byte) (Event, error) {
	var env struct {
		Type    string            `json:"type"`
		Weights map[string]string `json:"weights"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	var ev Event
	switch env.Type {
	case "change_scenario":
		var e ChangeScenario
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedEvent, env.Type, err)
		}
		ev = e
	case "apply_weights":
		v, err := scoring.ParseWeightInput(env.Weights)
		if err != nil {
			return nil, err
		}
		ev = ApplyWeights{Vector: v}
	case "reset_weights":
		ev = ResetWeights{}
	case "toggle_vendor":
		var e ToggleVendor
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedEvent, env.Type, err)
		}
		ev = e
	case "clear_selection":
		var e ClearSelection
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedEvent, env.Type, err)
		}
		ev = e
	case "set_quantity":
		var e SetQuantity
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedEvent, env.Type, err)
		}
		ev = e
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Type)
	}
	return ev, nil
}
