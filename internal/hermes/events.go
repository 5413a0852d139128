package hermes

import "time"

type SessionEvent struct {
	SessionID string    `json:"session_id"`
	Scenario  string    `json:"scenario"`
	Revision  uint64    `json:"revision"`
	Event     string    `json:"event,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type WeightsAppliedEvent struct {
	SessionID string         `json:"session_id"`
	Weights   map[string]int `json:"weights,omitempty"`
	Reset     bool           `json:"reset"`
	Revision  uint64         `json:"revision"`
}

type RecommendationEvent struct {
	RecommendationID string  `json:"recommendation_id"`
	SessionID        string  `json:"session_id"`
	EquipmentID      string  `json:"equipment_id,omitempty"`
	Revision         uint64  `json:"revision"`
	Status           string  `json:"status"`
	VendorName       string  `json:"vendor,omitempty"`
	Error            string  `json:"error,omitempty"`
	DurationMs       float64 `json:"duration_ms,omitempty"`
}
