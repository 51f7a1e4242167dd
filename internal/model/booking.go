package model

import "time"

// Booking statuses stored in bookings.status.  A booking starts as
// PENDING until a medic is assigned and the client confirms.
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

// Recurrence patterns accepted for recurring series generation.
const (
	PatternWeekly   = "weekly"
	PatternBiweekly = "biweekly"
	PatternMonthly  = "monthly"
)

// Booking represents a single shift coverage request as stored in the
// `bookings` table.  Pricing columns hold pounds as decimals.  The
// Version column supports compare-and-swap medic reassignment: any
// write that changes MedicID must supply the version it read, and the
// update only applies when the row still carries that version.
//
// Fields:
//  ID                       – primary key identifier.
//  ClientID                 – client who requested the coverage.
//  SiteName                 – display name of the coverage site.
//  SiteAddress              – street address of the site.
//  SitePostcode             – postcode used for territory resolution.
//  ShiftDate                – calendar date of the shift.
//  StartTime                – shift start, "HH:MM".
//  EndTime                  – shift end, "HH:MM".
//  DurationHours            – shift length in hours.
//  MedicID                  – assigned medic (null until assigned).
//  Status                   – pending / confirmed / cancelled.
//  ConfinedSpaceRequired    – site requires a confined-space certificate.
//  TraumaSpecialistRequired – site requires a trauma certificate.
//  BaseRate                 – hourly rate in pounds.
//  Subtotal                 – base_rate × duration_hours.
//  VAT                      – 20% of subtotal.
//  Total                    – subtotal + VAT.
//  PlatformFee              – 40% of subtotal.
//  MedicPayout              – 60% of subtotal.
//  IsRecurring              – true for parents and children of a series.
//  RecurrencePattern        – weekly / biweekly / monthly (nullable).
//  RecurringUntil           – last date of the series (nullable).
//  ParentBookingID          – series parent (null for standalone/parent rows).
//  Version                  – optimistic concurrency counter.
type Booking struct {
	ID                       uint64     // bookings.id
	ClientID                 uint64     // bookings.client_id
	SiteName                 string     // bookings.site_name
	SiteAddress              string     // bookings.site_address
	SitePostcode             string     // bookings.site_postcode
	ShiftDate                time.Time  // bookings.shift_date
	StartTime                string     // bookings.start_time
	EndTime                  string     // bookings.end_time
	DurationHours            float64    // bookings.duration_hours
	MedicID                  *uint64    // bookings.medic_id (nullable)
	Status                   string     // bookings.status
	ConfinedSpaceRequired    bool       // bookings.confined_space_required
	TraumaSpecialistRequired bool       // bookings.trauma_specialist_required
	BaseRate                 float64    // bookings.base_rate
	Subtotal                 float64    // bookings.subtotal
	VAT                      float64    // bookings.vat
	Total                    float64    // bookings.total
	PlatformFee              float64    // bookings.platform_fee
	MedicPayout              float64    // bookings.medic_payout
	IsRecurring              bool       // bookings.is_recurring
	RecurrencePattern        *string    // bookings.recurrence_pattern (nullable)
	RecurringUntil           *time.Time // bookings.recurring_until (nullable)
	ParentBookingID          *uint64    // bookings.parent_booking_id (nullable)
	Version                  uint32     // bookings.version
	CreatedAt                time.Time  // bookings.created_at
	UpdatedAt                time.Time  // bookings.updated_at
}
