package domain

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

// MaintenanceRecord is a dependent record of a vehicle. A vehicle with
// maintenance history cannot be deleted; the database enforces this with a
// restrictive foreign key.
type MaintenanceRecord struct {
	ID          int       `json:"id"`
	VehicleID   int       `json:"vehicle_id"`
	Description string    `json:"description"`
	OpenedAt    time.Time `json:"opened_at"`
	ClosedAt    null.Time `json:"closed_at"`
}

type MaintenanceRecordDTO struct {
	Description string `json:"description" binding:"required,max=255"`
}
