package model

import "time"

// Shift swap statuses.  A swap is created in PENDING_ACCEPTANCE by the
// requesting medic, moves to PENDING_APPROVAL once another medic
// accepts it, and terminates in APPROVED or DENIED.  Rows are never
// deleted; terminal swaps remain as an audit record.
const (
	SwapStatusPendingAcceptance = "pending_acceptance"
	SwapStatusPendingApproval   = "pending_approval"
	SwapStatusApproved          = "approved"
	SwapStatusDenied            = "denied"
)

// ShiftSwap represents one exchange negotiation over exactly one
// booking, as stored in the `shift_swaps` table.
//
// Fields:
//  ID                      – primary key identifier.
//  BookingID               – booking offered for exchange.
//  RequestingMedicID       – medic who offered the booking.
//  AcceptingMedicID        – medic who accepted (null until accepted).
//  Status                  – see status constants above.
//  AcceptingMedicQualified – computed at accept time (null before).
//  QualificationWarnings   – human-readable warning for the approver.
//  AdminApprovedBy         – admin who approved or denied.
//  AdminApprovedAt         – when the admin decided.
//  AdminDenialReason       – required reason when denied.
type ShiftSwap struct {
	ID                      uint64     // shift_swaps.id
	BookingID               uint64     // shift_swaps.booking_id
	RequestingMedicID       uint64     // shift_swaps.requesting_medic_id
	AcceptingMedicID        *uint64    // shift_swaps.accepting_medic_id (nullable)
	Status                  string     // shift_swaps.status
	AcceptingMedicQualified *bool      // shift_swaps.accepting_medic_qualified (nullable)
	QualificationWarnings   *string    // shift_swaps.qualification_warnings (nullable)
	AdminApprovedBy         *uint64    // shift_swaps.admin_approved_by (nullable)
	AdminApprovedAt         *time.Time // shift_swaps.admin_approved_at (nullable)
	AdminDenialReason       *string    // shift_swaps.admin_denial_reason (nullable)
	CreatedAt               time.Time  // shift_swaps.created_at
	UpdatedAt               time.Time  // shift_swaps.updated_at
}
