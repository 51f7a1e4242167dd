package repository

import (
	"context"
	"database/sql"

	"github.com/medirota/coverage-platform/internal/model"
)

// MedicRepo provides read access to medic records.  Medic onboarding
// and certificate management happen in a separate back-office system;
// this service only consults the roster.
type MedicRepo struct {
	db *sql.DB
}

// NewMedicRepo returns a new MedicRepo bound to the given database.
func NewMedicRepo(db *sql.DB) *MedicRepo { return &MedicRepo{db: db} }

// GetByID fetches a medic by id.  Returns ErrMedicNotFound when no
// row exists.
func (r *MedicRepo) GetByID(ctx context.Context, id uint64) (model.Medic, error) {
	const q = `SELECT id, full_name, home_postcode, has_confined_space_cert,
has_trauma_cert, is_available, created_at, updated_at
FROM medics WHERE id = ?`
	var m model.Medic
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&m.ID, &m.FullName, &m.HomePostcode, &m.HasConfinedSpaceCert,
		&m.HasTraumaCert, &m.IsAvailable, &m.CreatedAt, &m.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return model.Medic{}, ErrMedicNotFound
	}
	return m, err
}
