package service

import (
	"errors"
	"fmt"
)

// ErrDuplicatePlate is returned when a plate is already registered, either by
// the pre-write check or by the store's unique index.
var ErrDuplicatePlate = errors.New("plate already registered")

// LotFullError rejects an occupancy-increasing assignment to a lot at its
// capacity ceiling. It carries the numbers for display.
type LotFullError struct {
	LotID     int
	Occupancy int
	Capacity  int
}

func (e *LotFullError) Error() string {
	return fmt.Sprintf("lot %d is at maximum capacity: %d/%d", e.LotID, e.Occupancy, e.Capacity)
}

// BusinessError wraps a store failure with a message fit for end users. It is
// only produced after the store refused an operation; rule checks happen
// before any write.
type BusinessError struct {
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}
