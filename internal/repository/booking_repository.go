package repository

import (
	"context"
	"database/sql"

	"github.com/medirota/coverage-platform/internal/model"
)

// bookingColumns is the shared SELECT column list for scanBooking.
const bookingColumns = `id, client_id, site_name, site_address, site_postcode,
shift_date, start_time, end_time, duration_hours, medic_id, status,
confined_space_required, trauma_specialist_required,
base_rate, subtotal, vat, total, platform_fee, medic_payout,
is_recurring, recurrence_pattern, recurring_until, parent_booking_id,
version, created_at, updated_at`

// BookingRepo provides persistence for coverage bookings.  Medic
// reassignment always goes through the compare-and-swap methods so a
// concurrent admin edit and a swap approval cannot silently overwrite
// each other's medic_id write.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// rowScanner abstracts *sql.Row and *sql.Rows for scanBooking.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (model.Booking, error) {
	var (
		b        model.Booking
		medicID  sql.NullInt64
		pattern  sql.NullString
		until    sql.NullTime
		parentID sql.NullInt64
	)
	err := row.Scan(
		&b.ID, &b.ClientID, &b.SiteName, &b.SiteAddress, &b.SitePostcode,
		&b.ShiftDate, &b.StartTime, &b.EndTime, &b.DurationHours, &medicID, &b.Status,
		&b.ConfinedSpaceRequired, &b.TraumaSpecialistRequired,
		&b.BaseRate, &b.Subtotal, &b.VAT, &b.Total, &b.PlatformFee, &b.MedicPayout,
		&b.IsRecurring, &pattern, &until, &parentID,
		&b.Version, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return model.Booking{}, err
	}
	if medicID.Valid {
		v := uint64(medicID.Int64)
		b.MedicID = &v
	}
	if pattern.Valid {
		p := pattern.String
		b.RecurrencePattern = &p
	}
	if until.Valid {
		u := until.Time
		b.RecurringUntil = &u
	}
	if parentID.Valid {
		v := uint64(parentID.Int64)
		b.ParentBookingID = &v
	}
	return b, nil
}

// GetByID fetches a single booking.  Returns ErrBookingNotFound when
// no row exists.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	b, err := scanBooking(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return model.Booking{}, ErrBookingNotFound
	}
	return b, err
}

// ListUnassignedPending returns bookings with no medic and status
// 'pending', ordered by soonest shift date.  A limit of zero or less
// means no cap.
func (r *BookingRepo) ListUnassignedPending(ctx context.Context, limit int) ([]model.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings
WHERE medic_id IS NULL AND status = ? ORDER BY shift_date ASC`
	args := []interface{}{model.BookingStatusPending}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// AssignMedic reassigns bookings.medic_id with a version check.  The
// update only applies when the row still carries the version the
// caller read; otherwise ErrStaleBooking is returned and nothing is
// written.  A zero affected count against an existing row means the
// version moved; against a missing row it means ErrBookingNotFound.
func (r *BookingRepo) AssignMedic(ctx context.Context, bookingID, medicID uint64, version uint32) error {
	return assignMedicExec(ctx, r.db, bookingID, medicID, version)
}

// AssignMedicTx is AssignMedic inside an existing transaction.  Used
// by the shift swap approval so the booking write and the swap stamp
// commit or roll back together.
func (r *BookingRepo) AssignMedicTx(ctx context.Context, tx *sql.Tx, bookingID, medicID uint64, version uint32) error {
	return assignMedicExec(ctx, tx, bookingID, medicID, version)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func assignMedicExec(ctx context.Context, ex execer, bookingID, medicID uint64, version uint32) error {
	const q = `UPDATE bookings SET medic_id = ?, version = version + 1 WHERE id = ? AND version = ?`
	res, err := ex.ExecContext(ctx, q, medicID, bookingID, version)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists int
		if err := ex.QueryRowContext(ctx, `SELECT 1 FROM bookings WHERE id = ?`, bookingID).Scan(&exists); err != nil {
			if err == sql.ErrNoRows {
				return ErrBookingNotFound
			}
			return err
		}
		return ErrStaleBooking
	}
	return nil
}

// CreateTx inserts a new booking within an existing transaction and
// populates the generated ID on the provided record.  The caller must
// commit or roll back the transaction.  Used by the recurring series
// generator, which inserts the parent first so children can reference
// its ID.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings
(client_id, site_name, site_address, site_postcode, shift_date, start_time, end_time,
duration_hours, status, confined_space_required, trauma_specialist_required,
base_rate, subtotal, vat, total, platform_fee, medic_payout,
is_recurring, recurrence_pattern, recurring_until, parent_booking_id)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		b.ClientID, b.SiteName, b.SiteAddress, b.SitePostcode, b.ShiftDate, b.StartTime, b.EndTime,
		b.DurationHours, b.Status, b.ConfinedSpaceRequired, b.TraumaSpecialistRequired,
		b.BaseRate, b.Subtotal, b.VAT, b.Total, b.PlatformFee, b.MedicPayout,
		b.IsRecurring, b.RecurrencePattern, b.RecurringUntil, b.ParentBookingID,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// CreateChildrenBulkTx inserts multiple child bookings in a single
// statement within the provided transaction.  Each record must carry
// its ParentBookingID.  Passing an empty slice has no effect.
func (r *BookingRepo) CreateChildrenBulkTx(ctx context.Context, tx *sql.Tx, children []model.Booking) error {
	if len(children) == 0 {
		return nil
	}
	query := `INSERT INTO bookings
(client_id, site_name, site_address, site_postcode, shift_date, start_time, end_time,
duration_hours, status, confined_space_required, trauma_specialist_required,
base_rate, subtotal, vat, total, platform_fee, medic_payout,
is_recurring, recurrence_pattern, recurring_until, parent_booking_id)
VALUES `
	args := make([]interface{}, 0, len(children)*21)
	for i, c := range children {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
		args = append(args,
			c.ClientID, c.SiteName, c.SiteAddress, c.SitePostcode, c.ShiftDate, c.StartTime, c.EndTime,
			c.DurationHours, c.Status, c.ConfinedSpaceRequired, c.TraumaSpecialistRequired,
			c.BaseRate, c.Subtotal, c.VAT, c.Total, c.PlatformFee, c.MedicPayout,
			c.IsRecurring, c.RecurrencePattern, c.RecurringUntil, c.ParentBookingID,
		)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// CreateSeries inserts a parent booking and its children as one
// transaction.  The parent's generated ID is written back onto the
// record and stamped into each child's ParentBookingID before the
// bulk insert, so a child row can never reference a parent from a
// different generation run.  If the parent insert fails, nothing is
// written.
func (r *BookingRepo) CreateSeries(ctx context.Context, parent *model.Booking, children []model.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := r.CreateTx(ctx, tx, parent); err != nil {
		return err
	}
	for i := range children {
		children[i].ParentBookingID = &parent.ID
	}
	if err := r.CreateChildrenBulkTx(ctx, tx, children); err != nil {
		return err
	}
	return tx.Commit()
}
