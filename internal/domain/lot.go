package domain

import (
	"time"
	"unicode/utf8"
)

type Lot struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address,omitempty"`
	MaxCapacity int       `json:"max_capacity"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type LotDTO struct {
	Name        string `json:"name" binding:"required,max=100"`
	Address     string `json:"address"`
	MaxCapacity int    `json:"max_capacity" binding:"required,gt=0"`
}

func (d *LotDTO) Validate() error {
	if d.Name == "" {
		return &ValidationError{Field: "name", Message: "must not be blank"}
	}
	if utf8.RuneCountInString(d.Name) > 100 {
		return &ValidationError{Field: "name", Message: "must be at most 100 characters"}
	}
	if d.MaxCapacity <= 0 {
		return &ValidationError{Field: "max_capacity", Message: "must be positive"}
	}
	return nil
}

// LotOccupancy is the read model for lot listings: the lot plus its current
// vehicle count, always recomputed from the vehicle store.
type LotOccupancy struct {
	Lot
	Occupancy int `json:"occupancy"`
}
