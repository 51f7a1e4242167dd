package service

import (
	"context"
	"log"
	"time"

	"github.com/medirota/coverage-platform/internal/model"
	"github.com/medirota/coverage-platform/internal/queue"
)

// Pricing policy for generated bookings.  The payout/fee split is
// applied to the subtotal only; VAT is collected on top and excluded
// from the split.
const (
	vatRate          = 0.20
	medicPayoutShare = 0.60
	platformFeeShare = 0.40
)

// SeriesInput describes one recurring booking series to materialize.
// Dates are calendar dates (time-of-day ignored); DaysOfWeek uses
// time.Weekday numbering (0 = Sunday).
type SeriesInput struct {
	ClientID                 uint64
	SiteName                 string
	SiteAddress              string
	SitePostcode             string
	StartDate                time.Time
	EndDate                  time.Time
	Pattern                  string
	DaysOfWeek               []int
	ExceptionDates           []time.Time
	StartTime                string
	EndTime                  string
	BaseRate                 float64
	ShiftHours               float64
	ConfinedSpaceRequired    bool
	TraumaSpecialistRequired bool
}

// SeriesResult reports what a generation run produced.  An empty
// date range yields a zero result rather than an error.
type SeriesResult struct {
	ParentBookingID uint64   `json:"parent_booking_id"`
	TotalBookings   int      `json:"total_bookings"`
	Dates           []string `json:"dates"`
}

// Series expands a repeat rule into concrete shift dates and
// materializes them as one parent booking plus linked children
// sharing the parent's pricing.
type Series struct {
	store  SeriesStore
	events EventPublisher
}

// NewSeries wires the generator's dependencies.  events may be nil to
// disable publishing.
func NewSeries(store SeriesStore, events EventPublisher) *Series {
	return &Series{store: store, events: events}
}

// ExpandDates walks the calendar day by day from start to end
// (inclusive of both) and collects the dates the rule selects.
// Exception dates never appear in the output.  Weekly includes every
// matching weekday; biweekly additionally requires the date's ISO
// week number to be even (absolute week parity, not an every-other
// counter, so which weeks qualify can shift across a year boundary);
// monthly includes only the first accepted occurrence of each weekday
// within its month.
func ExpandDates(start, end time.Time, pattern string, daysOfWeek []int, exceptions []time.Time) []time.Time {
	selected := make(map[time.Weekday]bool, len(daysOfWeek))
	for _, d := range daysOfWeek {
		selected[time.Weekday(d%7)] = true
	}
	excluded := make(map[string]bool, len(exceptions))
	for _, e := range exceptions {
		excluded[dateKey(e)] = true
	}
	seenInMonth := make(map[string]map[time.Weekday]bool)

	var dates []time.Time
	for d := dateOnly(start); !d.After(dateOnly(end)); d = d.AddDate(0, 0, 1) {
		if excluded[dateKey(d)] || !selected[d.Weekday()] {
			continue
		}
		switch pattern {
		case model.PatternBiweekly:
			_, week := d.ISOWeek()
			if week%2 != 0 {
				continue
			}
		case model.PatternMonthly:
			mk := d.Format("2006-01")
			if seenInMonth[mk][d.Weekday()] {
				continue
			}
			if seenInMonth[mk] == nil {
				seenInMonth[mk] = make(map[time.Weekday]bool)
			}
			seenInMonth[mk][d.Weekday()] = true
		}
		dates = append(dates, d)
	}
	return dates
}

// Create expands the input's repeat rule and persists the series.
// The first generated date becomes the parent booking; remaining
// dates become children referencing the parent's ID and copying its
// pricing.  Parent and children are written as one unit: if the
// parent insert fails, no children are created.  A rule selecting no
// dates returns an empty result without touching the store.
func (s *Series) Create(ctx context.Context, in SeriesInput) (SeriesResult, error) {
	dates := ExpandDates(in.StartDate, in.EndDate, in.Pattern, in.DaysOfWeek, in.ExceptionDates)
	if len(dates) == 0 {
		return SeriesResult{Dates: []string{}}, nil
	}

	parent := s.buildBooking(in, dates[0])
	children := make([]model.Booking, 0, len(dates)-1)
	for _, d := range dates[1:] {
		children = append(children, s.buildBooking(in, d))
	}
	if err := s.store.CreateSeries(ctx, &parent, children); err != nil {
		return SeriesResult{}, err
	}

	out := SeriesResult{
		ParentBookingID: parent.ID,
		TotalBookings:   len(dates),
		Dates:           make([]string, len(dates)),
	}
	for i, d := range dates {
		out.Dates[i] = d.Format("2006-01-02")
	}
	s.publishCreated(ctx, in, out)
	return out, nil
}

// buildBooking derives one booking row from the series template.  All
// rows in a series share the same pricing; the caller links children
// to the parent after the parent's ID is known.
func (s *Series) buildBooking(in SeriesInput, date time.Time) model.Booking {
	subtotal := in.ShiftHours * in.BaseRate
	vat := subtotal * vatRate
	pattern := in.Pattern
	until := dateOnly(in.EndDate)
	return model.Booking{
		ClientID:                 in.ClientID,
		SiteName:                 in.SiteName,
		SiteAddress:              in.SiteAddress,
		SitePostcode:             in.SitePostcode,
		ShiftDate:                date,
		StartTime:                in.StartTime,
		EndTime:                  in.EndTime,
		DurationHours:            in.ShiftHours,
		Status:                   model.BookingStatusPending,
		ConfinedSpaceRequired:    in.ConfinedSpaceRequired,
		TraumaSpecialistRequired: in.TraumaSpecialistRequired,
		BaseRate:                 in.BaseRate,
		Subtotal:                 subtotal,
		VAT:                      vat,
		Total:                    subtotal + vat,
		PlatformFee:              subtotal * platformFeeShare,
		MedicPayout:              subtotal * medicPayoutShare,
		IsRecurring:              true,
		RecurrencePattern:        &pattern,
		RecurringUntil:           &until,
	}
}

func (s *Series) publishCreated(ctx context.Context, in SeriesInput, out SeriesResult) {
	if s.events == nil {
		return
	}
	ev := queue.SeriesCreatedEvent{
		ParentBookingID: out.ParentBookingID,
		ClientID:        in.ClientID,
		Pattern:         in.Pattern,
		TotalBookings:   out.TotalBookings,
		Dates:           out.Dates,
		CreatedAt:       time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.events.SeriesCreated(ctx, ev); err != nil {
		log.Printf("series: publish created event failed for parent %d: %v", out.ParentBookingID, err)
	}
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dateKey(t time.Time) string { return t.Format("2006-01-02") }
