package repository

import (
	"context"
	"database/sql"

	"github.com/medirota/coverage-platform/internal/model"
)

// TerritoryRepo provides read access to territory ownership.  Writes
// to territory assignment happen outside this service; from here the
// table is a lookup of which medic is primary for a postcode sector.
type TerritoryRepo struct {
	db *sql.DB
}

// NewTerritoryRepo returns a new TerritoryRepo bound to the given database.
func NewTerritoryRepo(db *sql.DB) *TerritoryRepo { return &TerritoryRepo{db: db} }

// GetByKey fetches a territory by its resolved key.  Returns
// ErrTerritoryNotFound when the key maps to no region.
func (r *TerritoryRepo) GetByKey(ctx context.Context, key string) (model.Territory, error) {
	const q = `SELECT territory_key, name, primary_medic_id, secondary_medic_id,
created_at, updated_at FROM territories WHERE territory_key = ?`
	var (
		t         model.Territory
		secondary sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, q, key).Scan(
		&t.TerritoryKey, &t.Name, &t.PrimaryMedicID, &secondary,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return model.Territory{}, ErrTerritoryNotFound
	}
	if err != nil {
		return model.Territory{}, err
	}
	if secondary.Valid {
		v := uint64(secondary.Int64)
		t.SecondaryMedicID = &v
	}
	return t, nil
}
