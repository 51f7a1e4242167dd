package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/medirota/coverage-platform/internal/client"
	"github.com/medirota/coverage-platform/internal/model"
)

func pendingBooking(id uint64) model.Booking {
	return model.Booking{
		ID:           id,
		ClientID:     1,
		SitePostcode: "SW1A 1AA",
		ShiftDate:    time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Status:       model.BookingStatusPending,
	}
}

func TestRun_CategorizesAndCountsEveryBooking(t *testing.T) {
	bookings := newFakeBookingStore(
		pendingBooking(1), pendingBooking(2), pendingBooking(3),
		pendingBooking(4), pendingBooking(5),
	)
	scorer := &fakeScorer{
		results: map[uint64]client.ScoreResult{
			1: {ConfidenceScore: 95, AssignedMedicID: ptrU64(11), MedicName: "A. Shah"},
			2: {ConfidenceScore: 65},
			3: {ConfidenceScore: 20},
			5: {ConfidenceScore: 85}, // high confidence, but no medic id
		},
		errs: map[uint64]error{4: errors.New("scorer timeout")},
	}
	events := &fakeEvents{}
	tr := NewTriage(bookings, scorer, events)

	summary, err := tr.Run(context.Background(), 0, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.TotalProcessed != 5 {
		t.Fatalf("total processed = %d, want 5", summary.TotalProcessed)
	}
	if got := summary.AutoAssigned + summary.FlaggedForReview + summary.RequiresManual; got != summary.TotalProcessed {
		t.Fatalf("category counts sum to %d, want %d", got, summary.TotalProcessed)
	}
	if summary.AutoAssigned != 1 || summary.FlaggedForReview != 1 || summary.RequiresManual != 3 {
		t.Fatalf("counts = %d/%d/%d, want 1/1/3",
			summary.AutoAssigned, summary.FlaggedForReview, summary.RequiresManual)
	}

	if len(bookings.assigns) != 1 || bookings.assigns[0].bookingID != 1 || bookings.assigns[0].medicID != 11 {
		t.Fatalf("assign calls = %+v, want single assign of medic 11 to booking 1", bookings.assigns)
	}
	if len(events.assigned) != 1 || events.assigned[0].Source != "triage" {
		t.Fatalf("events = %+v, want one triage-sourced assignment event", events.assigned)
	}

	byID := map[uint64]model.AssignmentResult{}
	for _, r := range summary.Results {
		byID[r.BookingID] = r
	}
	if byID[4].Category != model.CategoryRequiresManual || byID[4].Reason != "scorer timeout" {
		t.Fatalf("scorer failure result = %+v", byID[4])
	}
	if byID[5].Category != model.CategoryRequiresManual || byID[5].Reason != "scorer returned no medic id" {
		t.Fatalf("missing medic result = %+v", byID[5])
	}
}

func TestRun_ThresholdsAreInclusiveLowerBounds(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{80, model.CategoryAutoAssigned},
		{79.999, model.CategoryFlaggedForReview},
		{50, model.CategoryFlaggedForReview},
		{49.999, model.CategoryRequiresManual},
		{0, model.CategoryRequiresManual},
	}
	for _, tc := range tests {
		bookings := newFakeBookingStore(pendingBooking(1))
		scorer := &fakeScorer{results: map[uint64]client.ScoreResult{
			1: {ConfidenceScore: tc.score, AssignedMedicID: ptrU64(11)},
		}}
		tr := NewTriage(bookings, scorer, nil)
		summary, err := tr.Run(context.Background(), 0, false)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if got := summary.Results[0].Category; got != tc.want {
			t.Errorf("score %v: category = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestRun_StaleBookingFallsBackToManual(t *testing.T) {
	bookings := newFakeBookingStore(pendingBooking(1))
	scorer := &fakeScorer{
		results: map[uint64]client.ScoreResult{
			1: {ConfidenceScore: 90, AssignedMedicID: ptrU64(11)},
		},
		onScore: func(uint64) {
			// Concurrent writer lands between fetch and assign, so the
			// compare-and-swap sees a stale version.
			row := bookings.bookings[1]
			row.Version++
			bookings.bookings[1] = row
		},
	}
	tr := NewTriage(bookings, scorer, nil)

	summary, err := tr.Run(context.Background(), 0, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	res := summary.Results[0]
	if res.Category != model.CategoryRequiresManual {
		t.Fatalf("category = %q, want requires_manual after lost race", res.Category)
	}
	if !strings.HasPrefix(res.Reason, "assignment failed:") {
		t.Fatalf("reason = %q, want assignment failure reason", res.Reason)
	}
}

func TestRun_EmptyQueue(t *testing.T) {
	tr := NewTriage(newFakeBookingStore(), &fakeScorer{}, nil)
	summary, err := tr.Run(context.Background(), 0, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.TotalProcessed != 0 || len(summary.Results) != 0 {
		t.Fatalf("summary = %+v, want empty", summary)
	}
	if summary.Results == nil {
		t.Fatal("results must be an empty slice, not nil")
	}
}

func TestRun_FetchErrorFailsRun(t *testing.T) {
	bookings := newFakeBookingStore()
	bookings.listErr = errors.New("db gone")
	tr := NewTriage(bookings, &fakeScorer{}, nil)
	if _, err := tr.Run(context.Background(), 0, false); err == nil {
		t.Fatal("expected fetch error to fail the run")
	}
}

func TestRun_LimitCapsFetch(t *testing.T) {
	bookings := newFakeBookingStore(pendingBooking(1), pendingBooking(2), pendingBooking(3))
	scorer := &fakeScorer{results: map[uint64]client.ScoreResult{
		1: {ConfidenceScore: 60}, 2: {ConfidenceScore: 60}, 3: {ConfidenceScore: 60},
	}}
	tr := NewTriage(bookings, scorer, nil)
	summary, err := tr.Run(context.Background(), 2, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.TotalProcessed != 2 {
		t.Fatalf("total processed = %d, want 2", summary.TotalProcessed)
	}
}

func TestRun_CancellationStopsBetweenBookings(t *testing.T) {
	bookings := newFakeBookingStore(pendingBooking(1), pendingBooking(2), pendingBooking(3))
	ctx, cancel := context.WithCancel(context.Background())
	scorer := &fakeScorer{
		results: map[uint64]client.ScoreResult{
			1: {ConfidenceScore: 60}, 2: {ConfidenceScore: 60}, 3: {ConfidenceScore: 60},
		},
		onScore: func(id uint64) {
			if id == 1 {
				cancel()
			}
		},
	}
	tr := NewTriage(bookings, scorer, nil)

	summary, err := tr.Run(ctx, 0, false)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if summary.TotalProcessed != 1 {
		t.Fatalf("total processed = %d, want 1 before cancellation took effect", summary.TotalProcessed)
	}
	if len(scorer.calls) != 1 {
		t.Fatalf("scorer calls = %v, want only the first booking scored", scorer.calls)
	}
}
