package model

// Triage categories assigned from the scorer's confidence score.
const (
	CategoryAutoAssigned     = "auto_assigned"      // score >= 80
	CategoryFlaggedForReview = "flagged_for_review" // 50 <= score < 80
	CategoryRequiresManual   = "requires_manual"    // score < 50 or scorer failure
)

// AssignmentResult is the per-booking outcome of one bulk triage run.
// It is transient: produced for the run summary and never persisted.
type AssignmentResult struct {
	BookingID       uint64  `json:"booking_id"`
	AssignedMedicID *uint64 `json:"assigned_medic_id,omitempty"`
	MedicName       string  `json:"medic_name,omitempty"`
	ConfidenceScore float64 `json:"confidence_score"`
	Category        string  `json:"category"`
	Reason          string  `json:"reason,omitempty"`
}
