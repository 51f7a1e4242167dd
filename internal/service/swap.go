package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/medirota/coverage-platform/internal/model"
	"github.com/medirota/coverage-platform/internal/queue"
)

// ErrDenialReasonRequired is returned when a swap denial carries no
// reason; the reason becomes part of the permanent audit record.
var ErrDenialReasonRequired = errors.New("denial reason is required")

// AcceptOutcome reports the qualification verdict computed when a
// medic accepts a swap.  An unqualified acceptance still proceeds;
// the warning is surfaced to the approving admin, who holds the
// override decision.
type AcceptOutcome struct {
	Qualified bool   `json:"qualified"`
	Warnings  string `json:"warnings,omitempty"`
}

// Swaps coordinates peer-to-peer shift exchanges: one medic offers a
// booking, another accepts it (with an automatic qualification
// check), and an admin approves or denies the final reassignment.
// Swap rows are never deleted; terminal swaps form the audit trail.
type Swaps struct {
	swaps    SwapStore
	bookings BookingStore
	medics   MedicStore
	events   EventPublisher
}

// NewSwaps wires the coordinator's dependencies.  events may be nil
// to disable publishing.
func NewSwaps(swaps SwapStore, bookings BookingStore, medics MedicStore, events EventPublisher) *Swaps {
	return &Swaps{swaps: swaps, bookings: bookings, medics: medics, events: events}
}

// Offer creates a swap in pending_acceptance for the given booking.
// The booking must exist; repository.ErrBookingNotFound propagates.
func (s *Swaps) Offer(ctx context.Context, bookingID, requestingMedicID uint64) (uint64, error) {
	if _, err := s.bookings.GetByID(ctx, bookingID); err != nil {
		return 0, err
	}
	return s.swaps.Create(ctx, bookingID, requestingMedicID)
}

// Accept records the accepting medic and moves the swap to
// pending_approval.  The qualification check compares the booking's
// requirement flags against the medic's certificates; failing it does
// not block the transition, it only attaches a warning for the
// approver.
func (s *Swaps) Accept(ctx context.Context, swapID, acceptingMedicID uint64) (AcceptOutcome, error) {
	swap, err := s.swaps.GetByID(ctx, swapID)
	if err != nil {
		return AcceptOutcome{}, err
	}
	medic, err := s.medics.GetByID(ctx, acceptingMedicID)
	if err != nil {
		return AcceptOutcome{}, err
	}
	booking, err := s.bookings.GetByID(ctx, swap.BookingID)
	if err != nil {
		return AcceptOutcome{}, err
	}

	outcome := qualificationCheck(booking, medic)
	var warnings *string
	if outcome.Warnings != "" {
		warnings = &outcome.Warnings
	}
	if err := s.swaps.Accept(ctx, swapID, acceptingMedicID, outcome.Qualified, warnings); err != nil {
		return AcceptOutcome{}, err
	}
	return outcome, nil
}

// qualificationCheck verifies the accepting medic holds every
// certificate the booking requires.
func qualificationCheck(b model.Booking, m model.Medic) AcceptOutcome {
	var missing []string
	if b.ConfinedSpaceRequired && !m.HasConfinedSpaceCert {
		missing = append(missing, "confined space certification")
	}
	if b.TraumaSpecialistRequired && !m.HasTraumaCert {
		missing = append(missing, "trauma specialist certification")
	}
	if len(missing) == 0 {
		return AcceptOutcome{Qualified: true}
	}
	return AcceptOutcome{
		Qualified: false,
		Warnings:  "accepting medic lacks " + strings.Join(missing, " and "),
	}
}

// Approve finalizes the swap: the booking is reassigned to the
// accepting medic and the swap is stamped with the admin identity,
// both in one transaction inside the store.  Approval authority
// overrides any qualification warning recorded at accept time.
func (s *Swaps) Approve(ctx context.Context, swapID, adminID uint64) error {
	swap, err := s.swaps.Approve(ctx, swapID, adminID)
	if err != nil {
		return err
	}
	s.publishApproved(ctx, swap)
	return nil
}

// Deny terminates the swap with an admin identity, timestamp and
// reason.  The booking is left untouched.
func (s *Swaps) Deny(ctx context.Context, swapID, adminID uint64, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return ErrDenialReasonRequired
	}
	return s.swaps.Deny(ctx, swapID, adminID, reason)
}

// Available lists swaps still awaiting acceptance, excluding those
// the calling medic raised themselves.
func (s *Swaps) Available(ctx context.Context, medicID uint64) ([]model.ShiftSwap, error) {
	return s.swaps.ListPendingExcluding(ctx, medicID)
}

func (s *Swaps) publishApproved(ctx context.Context, swap model.ShiftSwap) {
	if s.events == nil || swap.AcceptingMedicID == nil || swap.AdminApprovedBy == nil {
		return
	}
	approvedAt := time.Now().UTC()
	if swap.AdminApprovedAt != nil {
		approvedAt = *swap.AdminApprovedAt
	}
	ev := queue.SwapApprovedEvent{
		SwapID:            swap.ID,
		BookingID:         swap.BookingID,
		RequestingMedicID: swap.RequestingMedicID,
		AcceptingMedicID:  *swap.AcceptingMedicID,
		ApprovedBy:        *swap.AdminApprovedBy,
		ApprovedAt:        approvedAt.Format(time.RFC3339),
	}
	if err := s.events.SwapApproved(ctx, ev); err != nil {
		log.Printf("swaps: publish approved event failed for swap %d: %v", swap.ID, err)
	}
}
