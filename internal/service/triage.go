package service

import (
	"context"
	"log"
	"time"

	"github.com/medirota/coverage-platform/internal/model"
	"github.com/medirota/coverage-platform/internal/queue"
)

// Confidence boundaries for triage categorization.  Both are
// inclusive lower bounds: exactly 80 auto-assigns, exactly 50 flags.
const (
	autoAssignThreshold = 80.0
	reviewThreshold     = 50.0
)

// TriageSummary is the outcome of one bulk triage run.  The category
// counters always sum to TotalProcessed; no booking is dropped or
// double-counted, including bookings whose scorer call failed.
type TriageSummary struct {
	TotalProcessed   int                      `json:"total_processed"`
	AutoAssigned     int                      `json:"auto_assigned"`
	FlaggedForReview int                      `json:"flagged_for_review"`
	RequiresManual   int                      `json:"requires_manual"`
	Results          []model.AssignmentResult `json:"results"`
}

// Triage sweeps unassigned pending bookings, scores each through the
// external matcher, and classifies the results.  Bookings are
// processed strictly sequentially so scorer calls and their side
// effects happen in deterministic order for the run summary.
type Triage struct {
	bookings BookingStore
	scorer   Scorer
	events   EventPublisher
}

// NewTriage wires the orchestrator's dependencies.  events may be nil
// to disable publishing.
func NewTriage(bookings BookingStore, scorer Scorer, events EventPublisher) *Triage {
	return &Triage{bookings: bookings, scorer: scorer, events: events}
}

// Run executes one bulk triage sweep.  limit caps how many bookings
// are fetched (zero or less means all); skipOvertimeCheck passes
// through to the scorer untouched.  A scorer failure on one booking
// does not abort the run: the booking is recorded as requires_manual
// with the error as its reason and the sweep continues.  Cancellation
// is observed between bookings, so an aborted run returns cleanly
// without half-processing an item.  Only the initial fetch can fail
// the whole run.
func (t *Triage) Run(ctx context.Context, limit int, skipOvertimeCheck bool) (TriageSummary, error) {
	var summary TriageSummary

	unassigned, err := t.bookings.ListUnassignedPending(ctx, limit)
	if err != nil {
		return summary, err
	}
	summary.Results = make([]model.AssignmentResult, 0, len(unassigned))

	for _, b := range unassigned {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Results = append(summary.Results, t.processOne(ctx, b, skipOvertimeCheck))
		summary.TotalProcessed++
		switch summary.Results[len(summary.Results)-1].Category {
		case model.CategoryAutoAssigned:
			summary.AutoAssigned++
		case model.CategoryFlaggedForReview:
			summary.FlaggedForReview++
		default:
			summary.RequiresManual++
		}
	}
	return summary, nil
}

// processOne scores and classifies a single booking, performing the
// assignment write for auto-assign verdicts.
func (t *Triage) processOne(ctx context.Context, b model.Booking, skipOvertimeCheck bool) model.AssignmentResult {
	res := model.AssignmentResult{BookingID: b.ID}

	score, err := t.scorer.Score(ctx, b.ID, skipOvertimeCheck)
	if err != nil {
		res.Category = model.CategoryRequiresManual
		res.Reason = err.Error()
		return res
	}

	res.ConfidenceScore = score.ConfidenceScore
	res.AssignedMedicID = score.AssignedMedicID
	res.MedicName = score.MedicName
	res.Reason = score.Reason

	switch {
	case score.ConfidenceScore >= autoAssignThreshold:
		res.Category = model.CategoryAutoAssigned
	case score.ConfidenceScore >= reviewThreshold:
		res.Category = model.CategoryFlaggedForReview
	default:
		res.Category = model.CategoryRequiresManual
	}

	if res.Category != model.CategoryAutoAssigned {
		return res
	}
	if score.AssignedMedicID == nil {
		// High confidence but no medic to write: surface to a human.
		res.Category = model.CategoryRequiresManual
		res.Reason = "scorer returned no medic id"
		return res
	}
	if err := t.bookings.AssignMedic(ctx, b.ID, *score.AssignedMedicID, b.Version); err != nil {
		res.Category = model.CategoryRequiresManual
		res.Reason = "assignment failed: " + err.Error()
		return res
	}
	t.publishAssigned(ctx, b, score.ConfidenceScore, *score.AssignedMedicID)
	return res
}

func (t *Triage) publishAssigned(ctx context.Context, b model.Booking, confidence float64, medicID uint64) {
	if t.events == nil {
		return
	}
	ev := queue.BookingAssignedEvent{
		BookingID:       b.ID,
		MedicID:         medicID,
		SitePostcode:    b.SitePostcode,
		ShiftDate:       b.ShiftDate.Format("2006-01-02"),
		ConfidenceScore: confidence,
		Source:          "triage",
		AssignedAt:      time.Now().UTC().Format(time.RFC3339),
	}
	if err := t.events.BookingAssigned(ctx, ev); err != nil {
		log.Printf("triage: publish assigned event failed for booking %d: %v", b.ID, err)
	}
}
