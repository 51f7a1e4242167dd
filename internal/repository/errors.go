// Package repository defines error types that are reused across
// multiple repositories. These sentinel values allow higher layers
// such as handlers to distinguish between different failure
// scenarios and map them to HTTP statuses: not-found errors become
// 404, ErrStaleBooking and ErrInvalidTransition become 409.
package repository

import "errors"

// ErrMedicNotFound is returned when a referenced medic does not exist.
var ErrMedicNotFound = errors.New("medic not found")

// ErrBookingNotFound is returned when a referenced booking does not exist.
var ErrBookingNotFound = errors.New("booking not found")

// ErrSwapNotFound is returned when a referenced shift swap does not exist.
var ErrSwapNotFound = errors.New("shift swap not found")

// ErrTerritoryNotFound is returned when no territory row exists for a
// resolved territory key.
var ErrTerritoryNotFound = errors.New("territory not found")

// ErrStaleBooking is returned when a compare-and-swap reassignment of
// bookings.medic_id finds the row's version changed since it was
// read, meaning a concurrent write won the race.
var ErrStaleBooking = errors.New("booking modified concurrently")

// ErrInvalidTransition is returned when a shift swap operation is
// attempted against a swap whose status does not permit it, such as
// accepting a swap that is already pending approval.
var ErrInvalidTransition = errors.New("invalid swap state transition")
