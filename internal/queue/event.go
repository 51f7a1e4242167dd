// Package queue defines message payloads exchanged over the message
// broker, the publisher that emits them, and the background consumer
// that records them.  Downstream systems (notifications, analytics)
// consume these events without querying the primary database.
package queue

// BookingAssignedEvent is published when a booking gains a medic,
// whether through bulk triage, a direct admin assignment, or an
// approved shift swap.
type BookingAssignedEvent struct {
	BookingID       uint64  `json:"booking_id"`
	MedicID         uint64  `json:"medic_id"`
	SitePostcode    string  `json:"site_postcode"`
	ShiftDate       string  `json:"shift_date"`
	ConfidenceScore float64 `json:"confidence_score,omitempty"`
	Source          string  `json:"source"` // triage | admin | swap
	AssignedAt      string  `json:"assigned_at"`
}

// SwapApprovedEvent is published when an admin approves a shift swap
// and the booking has been reassigned to the accepting medic.
type SwapApprovedEvent struct {
	SwapID            uint64 `json:"swap_id"`
	BookingID         uint64 `json:"booking_id"`
	RequestingMedicID uint64 `json:"requesting_medic_id"`
	AcceptingMedicID  uint64 `json:"accepting_medic_id"`
	ApprovedBy        uint64 `json:"approved_by"`
	ApprovedAt        string `json:"approved_at"`
}

// SeriesCreatedEvent is published after a recurring series has been
// materialized as a parent booking plus its children.
type SeriesCreatedEvent struct {
	ParentBookingID uint64   `json:"parent_booking_id"`
	ClientID        uint64   `json:"client_id"`
	Pattern         string   `json:"pattern"`
	TotalBookings   int      `json:"total_bookings"`
	Dates           []string `json:"dates"`
	CreatedAt       string   `json:"created_at"`
}
