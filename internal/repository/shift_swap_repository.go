package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/medirota/coverage-platform/internal/model"
)

const swapColumns = `id, booking_id, requesting_medic_id, accepting_medic_id, status,
accepting_medic_qualified, qualification_warnings,
admin_approved_by, admin_approved_at, admin_denial_reason, created_at, updated_at`

// ShiftSwapRepo persists shift swap negotiations.  Swaps are never
// deleted; terminal rows remain as the audit trail of who offered,
// who accepted, and which admin decided.  The approval path runs the
// booking reassignment and the swap stamp in one transaction.
type ShiftSwapRepo struct {
	db *sql.DB
}

// NewShiftSwapRepo returns a new ShiftSwapRepo bound to the given database.
func NewShiftSwapRepo(db *sql.DB) *ShiftSwapRepo { return &ShiftSwapRepo{db: db} }

func scanSwap(row rowScanner) (model.ShiftSwap, error) {
	var (
		s         model.ShiftSwap
		accepting sql.NullInt64
		qualified sql.NullBool
		warnings  sql.NullString
		adminBy   sql.NullInt64
		adminAt   sql.NullTime
		denial    sql.NullString
	)
	err := row.Scan(
		&s.ID, &s.BookingID, &s.RequestingMedicID, &accepting, &s.Status,
		&qualified, &warnings, &adminBy, &adminAt, &denial,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return model.ShiftSwap{}, err
	}
	if accepting.Valid {
		v := uint64(accepting.Int64)
		s.AcceptingMedicID = &v
	}
	if qualified.Valid {
		q := qualified.Bool
		s.AcceptingMedicQualified = &q
	}
	if warnings.Valid {
		w := warnings.String
		s.QualificationWarnings = &w
	}
	if adminBy.Valid {
		v := uint64(adminBy.Int64)
		s.AdminApprovedBy = &v
	}
	if adminAt.Valid {
		t := adminAt.Time
		s.AdminApprovedAt = &t
	}
	if denial.Valid {
		d := denial.String
		s.AdminDenialReason = &d
	}
	return s, nil
}

// Create inserts a new swap in pending_acceptance and returns its ID.
func (r *ShiftSwapRepo) Create(ctx context.Context, bookingID, requestingMedicID uint64) (uint64, error) {
	const q = `INSERT INTO shift_swaps (booking_id, requesting_medic_id, status) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, bookingID, requestingMedicID, model.SwapStatusPendingAcceptance)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a swap.  Returns ErrSwapNotFound when no row exists.
func (r *ShiftSwapRepo) GetByID(ctx context.Context, id uint64) (model.ShiftSwap, error) {
	const q = `SELECT ` + swapColumns + ` FROM shift_swaps WHERE id = ?`
	s, err := scanSwap(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return model.ShiftSwap{}, ErrSwapNotFound
	}
	return s, err
}

// ListPendingExcluding returns all swaps still awaiting acceptance,
// excluding those raised by the given medic.  Self-exclusion is
// mandatory: a medic must not see (or accept) their own offers.
func (r *ShiftSwapRepo) ListPendingExcluding(ctx context.Context, medicID uint64) ([]model.ShiftSwap, error) {
	const q = `SELECT ` + swapColumns + ` FROM shift_swaps
WHERE status = ? AND requesting_medic_id <> ? ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, q, model.SwapStatusPendingAcceptance, medicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ShiftSwap
	for rows.Next() {
		s, err := scanSwap(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Accept records the accepting medic and the qualification verdict
// and moves the swap to pending_approval.  The status guard in the
// WHERE clause enforces the state machine: a swap that is not in
// pending_acceptance is left untouched and ErrInvalidTransition is
// returned (ErrSwapNotFound when the row does not exist at all).
func (r *ShiftSwapRepo) Accept(ctx context.Context, swapID, acceptingMedicID uint64, qualified bool, warnings *string) error {
	const q = `UPDATE shift_swaps
SET accepting_medic_id = ?, accepting_medic_qualified = ?, qualification_warnings = ?, status = ?
WHERE id = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, q,
		acceptingMedicID, qualified, warnings, model.SwapStatusPendingApproval,
		swapID, model.SwapStatusPendingAcceptance)
	if err != nil {
		return err
	}
	return r.guardResult(ctx, res, swapID)
}

// Approve finalizes a swap: the target booking is reassigned to the
// accepting medic and the swap is stamped with the admin identity and
// timestamp, both inside one transaction.  The booking write uses the
// version compare-and-swap, so a concurrent direct reassignment makes
// the whole approval fail with ErrStaleBooking instead of silently
// losing one of the writes.
func (r *ShiftSwapRepo) Approve(ctx context.Context, swapID, adminID uint64) (model.ShiftSwap, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.ShiftSwap{}, err
	}
	defer tx.Rollback()

	const sel = `SELECT ` + swapColumns + ` FROM shift_swaps WHERE id = ? FOR UPDATE`
	s, err := scanSwap(tx.QueryRowContext(ctx, sel, swapID))
	if err == sql.ErrNoRows {
		return model.ShiftSwap{}, ErrSwapNotFound
	}
	if err != nil {
		return model.ShiftSwap{}, err
	}
	if s.Status != model.SwapStatusPendingApproval || s.AcceptingMedicID == nil {
		return model.ShiftSwap{}, ErrInvalidTransition
	}

	var version uint32
	err = tx.QueryRowContext(ctx, `SELECT version FROM bookings WHERE id = ?`, s.BookingID).Scan(&version)
	if err == sql.ErrNoRows {
		return model.ShiftSwap{}, ErrBookingNotFound
	}
	if err != nil {
		return model.ShiftSwap{}, err
	}
	if err := assignMedicExec(ctx, tx, s.BookingID, *s.AcceptingMedicID, version); err != nil {
		return model.ShiftSwap{}, err
	}

	now := time.Now().UTC()
	const upd = `UPDATE shift_swaps SET status = ?, admin_approved_by = ?, admin_approved_at = ? WHERE id = ?`
	if _, err := tx.ExecContext(ctx, upd, model.SwapStatusApproved, adminID, now, swapID); err != nil {
		return model.ShiftSwap{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.ShiftSwap{}, err
	}

	s.Status = model.SwapStatusApproved
	s.AdminApprovedBy = &adminID
	s.AdminApprovedAt = &now
	return s, nil
}

// Deny stamps the swap with the admin identity, timestamp and denial
// reason.  The booking is left untouched.
func (r *ShiftSwapRepo) Deny(ctx context.Context, swapID, adminID uint64, reason string) error {
	const q = `UPDATE shift_swaps
SET status = ?, admin_approved_by = ?, admin_approved_at = ?, admin_denial_reason = ?
WHERE id = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, q,
		model.SwapStatusDenied, adminID, time.Now().UTC(), reason,
		swapID, model.SwapStatusPendingApproval)
	if err != nil {
		return err
	}
	return r.guardResult(ctx, res, swapID)
}

// guardResult interprets a zero-rows-affected guarded update: the row
// either does not exist (ErrSwapNotFound) or exists in a status the
// guard rejected (ErrInvalidTransition).
func (r *ShiftSwapRepo) guardResult(ctx context.Context, res sql.Result, swapID uint64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var exists int
	if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM shift_swaps WHERE id = ?`, swapID).Scan(&exists); err != nil {
		if err == sql.ErrNoRows {
			return ErrSwapNotFound
		}
		return err
	}
	return ErrInvalidTransition
}
