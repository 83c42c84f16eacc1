package domain

import "time"

const (
	GateEventVehicleEntry = "vehicle_entry"
	GateEventVehicleExit  = "vehicle_exit"
)

// GateEvent is the message delivered by the gate cameras through SQS.
type GateEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Plate     string    `json:"plate"`
	LotID     int       `json:"lot_id"`
	GateID    string    `json:"gate_id"`
	Timestamp time.Time `json:"timestamp"`
}

// GateNotification is broadcast to websocket clients after a gate event is
// processed.
type GateNotification struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Plate     string    `json:"plate"`
	LotID     int       `json:"lot_id"`
	GateID    string    `json:"gate_id"`
	Allowed   bool      `json:"allowed"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// OccupancyNotification is broadcast whenever a vehicle mutation changes a
// lot's occupancy.
type OccupancyNotification struct {
	LotID       int       `json:"lot_id"`
	Occupancy   int       `json:"occupancy"`
	MaxCapacity int       `json:"max_capacity"`
	Timestamp   time.Time `json:"timestamp"`
}
