package service

// In-memory fakes for the store and collaborator interfaces.  They
// mirror the guarded-transition and compare-and-swap semantics of the
// MySQL repositories so the decision logic can be exercised without a
// database.

import (
	"context"
	"time"

	"github.com/medirota/coverage-platform/internal/client"
	"github.com/medirota/coverage-platform/internal/model"
	"github.com/medirota/coverage-platform/internal/queue"
	"github.com/medirota/coverage-platform/internal/repository"
)

type assignCall struct {
	bookingID uint64
	medicID   uint64
	version   uint32
}

type fakeBookingStore struct {
	bookings map[uint64]model.Booking
	nextID   uint64

	listErr   error
	assignErr error

	assigns []assignCall
	series  [][]model.Booking // children of each CreateSeries call
}

func newFakeBookingStore(bs ...model.Booking) *fakeBookingStore {
	f := &fakeBookingStore{bookings: map[uint64]model.Booking{}, nextID: 1}
	for _, b := range bs {
		f.bookings[b.ID] = b
		if b.ID >= f.nextID {
			f.nextID = b.ID + 1
		}
	}
	return f
}

func (f *fakeBookingStore) GetByID(_ context.Context, id uint64) (model.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return model.Booking{}, repository.ErrBookingNotFound
	}
	return b, nil
}

func (f *fakeBookingStore) ListUnassignedPending(_ context.Context, limit int) ([]model.Booking, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []model.Booking
	for id := uint64(1); id < f.nextID; id++ {
		b, ok := f.bookings[id]
		if !ok || b.MedicID != nil || b.Status != model.BookingStatusPending {
			continue
		}
		out = append(out, b)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeBookingStore) AssignMedic(_ context.Context, bookingID, medicID uint64, version uint32) error {
	if f.assignErr != nil {
		return f.assignErr
	}
	b, ok := f.bookings[bookingID]
	if !ok {
		return repository.ErrBookingNotFound
	}
	if b.Version != version {
		return repository.ErrStaleBooking
	}
	b.MedicID = &medicID
	b.Version++
	f.bookings[bookingID] = b
	f.assigns = append(f.assigns, assignCall{bookingID, medicID, version})
	return nil
}

func (f *fakeBookingStore) CreateSeries(_ context.Context, parent *model.Booking, children []model.Booking) error {
	parent.ID = f.nextID
	f.nextID++
	f.bookings[parent.ID] = *parent
	for i := range children {
		children[i].ID = f.nextID
		children[i].ParentBookingID = &parent.ID
		f.nextID++
		f.bookings[children[i].ID] = children[i]
	}
	f.series = append(f.series, children)
	return nil
}

type fakeMedicStore struct {
	medics map[uint64]model.Medic
}

func newFakeMedicStore(ms ...model.Medic) *fakeMedicStore {
	f := &fakeMedicStore{medics: map[uint64]model.Medic{}}
	for _, m := range ms {
		f.medics[m.ID] = m
	}
	return f
}

func (f *fakeMedicStore) GetByID(_ context.Context, id uint64) (model.Medic, error) {
	m, ok := f.medics[id]
	if !ok {
		return model.Medic{}, repository.ErrMedicNotFound
	}
	return m, nil
}

type fakeTerritoryStore struct {
	territories map[string]model.Territory
}

func newFakeTerritoryStore(ts ...model.Territory) *fakeTerritoryStore {
	f := &fakeTerritoryStore{territories: map[string]model.Territory{}}
	for _, t := range ts {
		f.territories[t.TerritoryKey] = t
	}
	return f
}

func (f *fakeTerritoryStore) GetByKey(_ context.Context, key string) (model.Territory, error) {
	t, ok := f.territories[key]
	if !ok {
		return model.Territory{}, repository.ErrTerritoryNotFound
	}
	return t, nil
}

// fakeSwapStore reproduces the repository's guarded transitions.  An
// Approve performs the booking reassignment against the linked
// booking store, matching the single-transaction repository behavior.
type fakeSwapStore struct {
	swaps    map[uint64]model.ShiftSwap
	nextID   uint64
	bookings *fakeBookingStore
}

func newFakeSwapStore(bookings *fakeBookingStore) *fakeSwapStore {
	return &fakeSwapStore{swaps: map[uint64]model.ShiftSwap{}, nextID: 1, bookings: bookings}
}

func (f *fakeSwapStore) Create(_ context.Context, bookingID, requestingMedicID uint64) (uint64, error) {
	id := f.nextID
	f.nextID++
	f.swaps[id] = model.ShiftSwap{
		ID:                id,
		BookingID:         bookingID,
		RequestingMedicID: requestingMedicID,
		Status:            model.SwapStatusPendingAcceptance,
	}
	return id, nil
}

func (f *fakeSwapStore) GetByID(_ context.Context, id uint64) (model.ShiftSwap, error) {
	s, ok := f.swaps[id]
	if !ok {
		return model.ShiftSwap{}, repository.ErrSwapNotFound
	}
	return s, nil
}

func (f *fakeSwapStore) ListPendingExcluding(_ context.Context, medicID uint64) ([]model.ShiftSwap, error) {
	var out []model.ShiftSwap
	for id := uint64(1); id < f.nextID; id++ {
		s := f.swaps[id]
		if s.Status == model.SwapStatusPendingAcceptance && s.RequestingMedicID != medicID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSwapStore) Accept(_ context.Context, swapID, acceptingMedicID uint64, qualified bool, warnings *string) error {
	s, ok := f.swaps[swapID]
	if !ok {
		return repository.ErrSwapNotFound
	}
	if s.Status != model.SwapStatusPendingAcceptance {
		return repository.ErrInvalidTransition
	}
	s.AcceptingMedicID = &acceptingMedicID
	s.AcceptingMedicQualified = &qualified
	s.QualificationWarnings = warnings
	s.Status = model.SwapStatusPendingApproval
	f.swaps[swapID] = s
	return nil
}

func (f *fakeSwapStore) Approve(ctx context.Context, swapID, adminID uint64) (model.ShiftSwap, error) {
	s, ok := f.swaps[swapID]
	if !ok {
		return model.ShiftSwap{}, repository.ErrSwapNotFound
	}
	if s.Status != model.SwapStatusPendingApproval || s.AcceptingMedicID == nil {
		return model.ShiftSwap{}, repository.ErrInvalidTransition
	}
	b, err := f.bookings.GetByID(ctx, s.BookingID)
	if err != nil {
		return model.ShiftSwap{}, err
	}
	if err := f.bookings.AssignMedic(ctx, b.ID, *s.AcceptingMedicID, b.Version); err != nil {
		return model.ShiftSwap{}, err
	}
	now := time.Now().UTC()
	s.Status = model.SwapStatusApproved
	s.AdminApprovedBy = &adminID
	s.AdminApprovedAt = &now
	f.swaps[swapID] = s
	return s, nil
}

func (f *fakeSwapStore) Deny(_ context.Context, swapID, adminID uint64, reason string) error {
	s, ok := f.swaps[swapID]
	if !ok {
		return repository.ErrSwapNotFound
	}
	if s.Status != model.SwapStatusPendingApproval {
		return repository.ErrInvalidTransition
	}
	now := time.Now().UTC()
	s.Status = model.SwapStatusDenied
	s.AdminApprovedBy = &adminID
	s.AdminApprovedAt = &now
	s.AdminDenialReason = &reason
	f.swaps[swapID] = s
	return nil
}

// fakeScorer scripts one result per booking ID; score calls a hook
// first when set, which tests use to cancel contexts mid-run.
type fakeScorer struct {
	results map[uint64]client.ScoreResult
	errs    map[uint64]error
	onScore func(bookingID uint64)
	calls   []uint64
}

func (f *fakeScorer) Score(_ context.Context, bookingID uint64, _ bool) (client.ScoreResult, error) {
	if f.onScore != nil {
		f.onScore(bookingID)
	}
	f.calls = append(f.calls, bookingID)
	if err := f.errs[bookingID]; err != nil {
		return client.ScoreResult{}, err
	}
	return f.results[bookingID], nil
}

type fakeTravel struct {
	estimate client.TravelEstimate
	err      error
}

func (f *fakeTravel) Estimate(_ context.Context, _, _ string) (client.TravelEstimate, error) {
	if f.err != nil {
		return client.TravelEstimate{}, f.err
	}
	return f.estimate, nil
}

type fakeEvents struct {
	assigned []queue.BookingAssignedEvent
	approved []queue.SwapApprovedEvent
	created  []queue.SeriesCreatedEvent
	err      error
}

func (f *fakeEvents) BookingAssigned(_ context.Context, ev queue.BookingAssignedEvent) error {
	f.assigned = append(f.assigned, ev)
	return f.err
}

func (f *fakeEvents) SwapApproved(_ context.Context, ev queue.SwapApprovedEvent) error {
	f.approved = append(f.approved, ev)
	return f.err
}

func (f *fakeEvents) SeriesCreated(_ context.Context, ev queue.SeriesCreatedEvent) error {
	f.created = append(f.created, ev)
	return f.err
}

func ptrU64(v uint64) *uint64 { return &v }
