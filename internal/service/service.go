// Package service implements the decision layer of the coverage
// platform: out-of-territory cost evaluation, bulk assignment triage,
// recurring series generation, and shift swap arbitration.  Services
// depend on small store and collaborator interfaces so the decision
// logic can be tested against in-memory fakes; the repository package
// provides the MySQL implementations.
package service

import (
	"context"

	"github.com/medirota/coverage-platform/internal/client"
	"github.com/medirota/coverage-platform/internal/model"
	"github.com/medirota/coverage-platform/internal/queue"
)

// BookingStore is the booking persistence needed by the services.
type BookingStore interface {
	GetByID(ctx context.Context, id uint64) (model.Booking, error)
	ListUnassignedPending(ctx context.Context, limit int) ([]model.Booking, error)
	// AssignMedic is a compare-and-swap write: it fails with
	// repository.ErrStaleBooking when version no longer matches.
	AssignMedic(ctx context.Context, bookingID, medicID uint64, version uint32) error
}

// SeriesStore materializes a recurring series: the parent insert and
// the children bulk insert run as one unit, and children receive the
// parent's generated ID as their ParentBookingID.
type SeriesStore interface {
	CreateSeries(ctx context.Context, parent *model.Booking, children []model.Booking) error
}

// MedicStore is the medic roster lookup needed by the services.
type MedicStore interface {
	GetByID(ctx context.Context, id uint64) (model.Medic, error)
}

// TerritoryStore looks up territory ownership by resolved key.
type TerritoryStore interface {
	GetByKey(ctx context.Context, key string) (model.Territory, error)
}

// SwapStore is the shift swap persistence needed by the coordinator.
type SwapStore interface {
	Create(ctx context.Context, bookingID, requestingMedicID uint64) (uint64, error)
	GetByID(ctx context.Context, id uint64) (model.ShiftSwap, error)
	ListPendingExcluding(ctx context.Context, medicID uint64) ([]model.ShiftSwap, error)
	Accept(ctx context.Context, swapID, acceptingMedicID uint64, qualified bool, warnings *string) error
	Approve(ctx context.Context, swapID, adminID uint64) (model.ShiftSwap, error)
	Deny(ctx context.Context, swapID, adminID uint64, reason string) error
}

// Scorer is the external match-confidence scorer, consumed as a black
// box: a numeric confidence plus a rationale.
type Scorer interface {
	Score(ctx context.Context, bookingID uint64, skipOvertimeCheck bool) (client.ScoreResult, error)
}

// TravelEstimator is the external travel time service.
type TravelEstimator interface {
	Estimate(ctx context.Context, originPostcode, destinationPostcode string) (client.TravelEstimate, error)
}

// EventPublisher emits domain events.  Implementations are
// best-effort; services log-and-continue when publishing fails.
type EventPublisher interface {
	BookingAssigned(ctx context.Context, ev queue.BookingAssignedEvent) error
	SwapApproved(ctx context.Context, ev queue.SwapApprovedEvent) error
	SeriesCreated(ctx context.Context, ev queue.SeriesCreatedEvent) error
}
