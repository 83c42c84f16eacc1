package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"gopkg.in/guregu/null.v4"
)

type VehicleStatus string

const (
	StatusPendingRegularization VehicleStatus = "PENDING_REGULARIZATION"
	StatusPendingMaintenance    VehicleStatus = "PENDING_MAINTENANCE"
	StatusInWorkshop            VehicleStatus = "IN_WORKSHOP"
	StatusAvailableForRent      VehicleStatus = "AVAILABLE_FOR_RENT"
)

// Valid reports whether the status is one of the known lifecycle values.
// Any status may transition to any other; there is no transition guard.
func (s VehicleStatus) Valid() bool {
	switch s {
	case StatusPendingRegularization, StatusPendingMaintenance, StatusInWorkshop, StatusAvailableForRent:
		return true
	}
	return false
}

// Plates follow either the legacy format LLLDDDD or the newer LLLDLDD.
var plateRegex = regexp.MustCompile(`^[A-Z]{3}[0-9][A-Z][0-9]{2}$|^[A-Z]{3}[0-9]{4}$`)

func ValidPlate(plate string) bool {
	return plateRegex.MatchString(plate)
}

type Vehicle struct {
	ID              int           `json:"id"`
	Model           string        `json:"model"`
	Plate           string        `json:"plate"`
	Brand           string        `json:"brand"`
	ManufactureYear int           `json:"manufacture_year"`
	Color           null.String   `json:"color"`
	Mileage         int           `json:"mileage"`
	Status          VehicleStatus `json:"status"`
	CurrentLot      Lot           `json:"current_lot"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

type VehicleDTO struct {
	Model           string `json:"model" binding:"required,max=50"`
	Plate           string `json:"plate" binding:"required"`
	Brand           string `json:"brand" binding:"required,max=30"`
	ManufactureYear int    `json:"manufacture_year" binding:"required"`
	Color           string `json:"color,omitempty"`
	Mileage         int    `json:"mileage"`
	Status          string `json:"status,omitempty"`
	CurrentLotID    int    `json:"current_lot_id" binding:"required"`
}

// ValidationError is a field-level constraint violation, detected before any
// store interaction.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate applies the field-level constraints. Binding tags cover the HTTP
// path; the service calls this so the rules hold for every caller.
func (d *VehicleDTO) Validate() error {
	if strings.TrimSpace(d.Model) == "" {
		return &ValidationError{Field: "model", Message: "must not be blank"}
	}
	if utf8.RuneCountInString(d.Model) > 50 {
		return &ValidationError{Field: "model", Message: "must be at most 50 characters"}
	}
	if !ValidPlate(d.Plate) {
		return &ValidationError{Field: "plate", Message: "invalid plate format"}
	}
	if strings.TrimSpace(d.Brand) == "" {
		return &ValidationError{Field: "brand", Message: "must not be blank"}
	}
	if utf8.RuneCountInString(d.Brand) > 30 {
		return &ValidationError{Field: "brand", Message: "must be at most 30 characters"}
	}
	if d.ManufactureYear <= 0 {
		return &ValidationError{Field: "manufacture_year", Message: "must be positive"}
	}
	if utf8.RuneCountInString(d.Color) > 20 {
		return &ValidationError{Field: "color", Message: "must be at most 20 characters"}
	}
	if d.Mileage < 0 {
		return &ValidationError{Field: "mileage", Message: "must not be negative"}
	}
	if d.Status != "" && !VehicleStatus(d.Status).Valid() {
		return &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status '%s'", d.Status)}
	}
	if d.CurrentLotID <= 0 {
		return &ValidationError{Field: "current_lot_id", Message: "is required"}
	}
	return nil
}

// StatusOrDefault returns the requested status, defaulting new vehicles to
// PENDING_REGULARIZATION.
func (d *VehicleDTO) StatusOrDefault() VehicleStatus {
	if d.Status == "" {
		return StatusPendingRegularization
	}
	return VehicleStatus(d.Status)
}
