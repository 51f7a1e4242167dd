package service

import (
	"context"
	"errors"
	"testing"

	"github.com/medirota/coverage-platform/internal/model"
	"github.com/medirota/coverage-platform/internal/repository"
)

func swapFixture(t *testing.T, booking model.Booking, medics ...model.Medic) (*Swaps, *fakeSwapStore, *fakeBookingStore, *fakeEvents) {
	t.Helper()
	bookings := newFakeBookingStore(booking)
	swaps := newFakeSwapStore(bookings)
	events := &fakeEvents{}
	svc := NewSwaps(swaps, bookings, newFakeMedicStore(medics...), events)
	return svc, swaps, bookings, events
}

func TestOffer_CreatesPendingAcceptance(t *testing.T) {
	requester := ptrU64(10)
	svc, swaps, _, _ := swapFixture(t, model.Booking{ID: 1, MedicID: requester, Status: model.BookingStatusConfirmed})

	id, err := svc.Offer(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("Offer: %v", err)
	}
	s := swaps.swaps[id]
	if s.Status != model.SwapStatusPendingAcceptance {
		t.Fatalf("status = %q, want pending_acceptance", s.Status)
	}
	if s.RequestingMedicID != 10 || s.BookingID != 1 {
		t.Fatalf("swap = %+v", s)
	}
}

func TestOffer_UnknownBooking(t *testing.T) {
	svc, _, _, _ := swapFixture(t, model.Booking{ID: 1})
	if _, err := svc.Offer(context.Background(), 99, 10); !errors.Is(err, repository.ErrBookingNotFound) {
		t.Fatalf("err = %v, want ErrBookingNotFound", err)
	}
}

func TestAccept_QualifiedMedic(t *testing.T) {
	booking := model.Booking{ID: 1, MedicID: ptrU64(10), ConfinedSpaceRequired: true}
	medic := model.Medic{ID: 20, HasConfinedSpaceCert: true, HasTraumaCert: true}
	svc, swaps, _, _ := swapFixture(t, booking, medic)
	id, _ := svc.Offer(context.Background(), 1, 10)

	out, err := svc.Accept(context.Background(), id, 20)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if !out.Qualified || out.Warnings != "" {
		t.Fatalf("outcome = %+v, want qualified with no warnings", out)
	}
	s := swaps.swaps[id]
	if s.Status != model.SwapStatusPendingApproval {
		t.Fatalf("status = %q, want pending_approval", s.Status)
	}
	if s.AcceptingMedicID == nil || *s.AcceptingMedicID != 20 {
		t.Fatalf("accepting medic = %v, want 20", s.AcceptingMedicID)
	}
	if s.AcceptingMedicQualified == nil || !*s.AcceptingMedicQualified {
		t.Fatal("qualified verdict not recorded")
	}
}

func TestAccept_UnqualifiedMedicProceedsWithWarning(t *testing.T) {
	booking := model.Booking{ID: 1, MedicID: ptrU64(10), ConfinedSpaceRequired: true, TraumaSpecialistRequired: true}
	medic := model.Medic{ID: 20} // holds neither certificate
	svc, swaps, _, _ := swapFixture(t, booking, medic)
	id, _ := svc.Offer(context.Background(), 1, 10)

	out, err := svc.Accept(context.Background(), id, 20)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if out.Qualified {
		t.Fatal("expected unqualified verdict")
	}
	want := "accepting medic lacks confined space certification and trauma specialist certification"
	if out.Warnings != want {
		t.Fatalf("warnings = %q, want %q", out.Warnings, want)
	}
	// The transition still happened; the warning travels with the swap.
	s := swaps.swaps[id]
	if s.Status != model.SwapStatusPendingApproval {
		t.Fatalf("status = %q, want pending_approval despite failed check", s.Status)
	}
	if s.QualificationWarnings == nil || *s.QualificationWarnings != want {
		t.Fatalf("stored warnings = %v, want %q", s.QualificationWarnings, want)
	}
}

func TestAccept_RejectsWrongState(t *testing.T) {
	booking := model.Booking{ID: 1, MedicID: ptrU64(10)}
	svc, _, _, _ := swapFixture(t, booking, model.Medic{ID: 20}, model.Medic{ID: 30})
	id, _ := svc.Offer(context.Background(), 1, 10)

	if _, err := svc.Accept(context.Background(), id, 20); err != nil {
		t.Fatalf("first accept: %v", err)
	}
	if _, err := svc.Accept(context.Background(), id, 30); !errors.Is(err, repository.ErrInvalidTransition) {
		t.Fatalf("second accept err = %v, want ErrInvalidTransition", err)
	}
}

func TestApprove_ReassignsBookingAndPublishes(t *testing.T) {
	booking := model.Booking{ID: 1, MedicID: ptrU64(10), Status: model.BookingStatusConfirmed, Version: 3}
	svc, swaps, bookings, events := swapFixture(t, booking, model.Medic{ID: 20, HasConfinedSpaceCert: true})
	id, _ := svc.Offer(context.Background(), 1, 10)
	if _, err := svc.Accept(context.Background(), id, 20); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	if err := svc.Approve(context.Background(), id, 99); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	s := swaps.swaps[id]
	if s.Status != model.SwapStatusApproved {
		t.Fatalf("status = %q, want approved", s.Status)
	}
	if s.AdminApprovedBy == nil || *s.AdminApprovedBy != 99 || s.AdminApprovedAt == nil {
		t.Fatalf("admin stamp missing: %+v", s)
	}

	b := bookings.bookings[1]
	if b.MedicID == nil || *b.MedicID != 20 {
		t.Fatalf("booking medic = %v, want reassigned to 20", b.MedicID)
	}
	if b.Version != 4 {
		t.Fatalf("booking version = %d, want bumped to 4", b.Version)
	}

	if len(events.approved) != 1 {
		t.Fatalf("events = %+v, want one approval event", events.approved)
	}
	ev := events.approved[0]
	if ev.SwapID != id || ev.AcceptingMedicID != 20 || ev.ApprovedBy != 99 {
		t.Fatalf("event = %+v", ev)
	}
}

func TestApprove_OverridesQualificationWarning(t *testing.T) {
	// Offer -> unqualified accept -> approve: the admin's approval
	// authority overrides the recorded warning and the booking is
	// still reassigned.
	booking := model.Booking{ID: 1, MedicID: ptrU64(10), TraumaSpecialistRequired: true}
	svc, swaps, bookings, _ := swapFixture(t, booking, model.Medic{ID: 20})
	id, _ := svc.Offer(context.Background(), 1, 10)

	out, err := svc.Accept(context.Background(), id, 20)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if out.Qualified {
		t.Fatal("fixture medic must be unqualified")
	}

	if err := svc.Approve(context.Background(), id, 99); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if swaps.swaps[id].Status != model.SwapStatusApproved {
		t.Fatalf("status = %q, want approved", swaps.swaps[id].Status)
	}
	b := bookings.bookings[1]
	if b.MedicID == nil || *b.MedicID != 20 {
		t.Fatalf("booking medic = %v, want 20 despite qualification warning", b.MedicID)
	}
}

func TestApprove_RequiresPendingApproval(t *testing.T) {
	booking := model.Booking{ID: 1, MedicID: ptrU64(10)}
	svc, _, _, _ := swapFixture(t, booking, model.Medic{ID: 20})
	id, _ := svc.Offer(context.Background(), 1, 10)

	// Nobody has accepted yet.
	if err := svc.Approve(context.Background(), id, 99); !errors.Is(err, repository.ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestDeny_RequiresReason(t *testing.T) {
	booking := model.Booking{ID: 1, MedicID: ptrU64(10)}
	svc, swaps, _, _ := swapFixture(t, booking, model.Medic{ID: 20})
	id, _ := svc.Offer(context.Background(), 1, 10)

	if err := svc.Deny(context.Background(), id, 99, "   "); !errors.Is(err, ErrDenialReasonRequired) {
		t.Fatalf("err = %v, want ErrDenialReasonRequired", err)
	}
	if swaps.swaps[id].Status != model.SwapStatusPendingAcceptance {
		t.Fatal("swap must be untouched when the reason is missing")
	}
}

func TestDeny_StampsAuditRecordAndLeavesBooking(t *testing.T) {
	booking := model.Booking{ID: 1, MedicID: ptrU64(10), Version: 2}
	svc, swaps, bookings, _ := swapFixture(t, booking, model.Medic{ID: 20})
	id, _ := svc.Offer(context.Background(), 1, 10)
	if _, err := svc.Accept(context.Background(), id, 20); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	if err := svc.Deny(context.Background(), id, 99, "coverage gap too risky"); err != nil {
		t.Fatalf("Deny: %v", err)
	}
	s := swaps.swaps[id]
	if s.Status != model.SwapStatusDenied {
		t.Fatalf("status = %q, want denied", s.Status)
	}
	if s.AdminDenialReason == nil || *s.AdminDenialReason != "coverage gap too risky" {
		t.Fatalf("denial reason = %v", s.AdminDenialReason)
	}
	b := bookings.bookings[1]
	if b.MedicID == nil || *b.MedicID != 10 || b.Version != 2 {
		t.Fatalf("booking = %+v, must be untouched by denial", b)
	}
}

func TestAvailable_ExcludesOwnOffers(t *testing.T) {
	bookings := newFakeBookingStore(
		model.Booking{ID: 1, MedicID: ptrU64(10)},
		model.Booking{ID: 2, MedicID: ptrU64(20)},
	)
	swaps := newFakeSwapStore(bookings)
	svc := NewSwaps(swaps, bookings, newFakeMedicStore(), nil)

	if _, err := svc.Offer(context.Background(), 1, 10); err != nil {
		t.Fatalf("Offer: %v", err)
	}
	if _, err := svc.Offer(context.Background(), 2, 20); err != nil {
		t.Fatalf("Offer: %v", err)
	}

	got, err := svc.Available(context.Background(), 10)
	if err != nil {
		t.Fatalf("Available: %v", err)
	}
	if len(got) != 1 || got[0].RequestingMedicID != 20 {
		t.Fatalf("available = %+v, want only medic 20's offer", got)
	}
}
