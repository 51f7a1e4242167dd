package model

import "time"

// Territory is a coverage region in the `territories` table, keyed by
// a postcode-sector string such as "SW1A".  Each territory has one
// primary medic and optionally a secondary.  At most one row exists
// per territory key; ownership writes happen outside this service.
type Territory struct {
	TerritoryKey     string    // territories.territory_key (primary key)
	Name             string    // territories.name
	PrimaryMedicID   uint64    // territories.primary_medic_id
	SecondaryMedicID *uint64   // territories.secondary_medic_id (nullable)
	CreatedAt        time.Time // territories.created_at
	UpdatedAt        time.Time // territories.updated_at
}
