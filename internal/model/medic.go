package model

import "time"

// Medic is a staffing resource in the `medics` table.  The home
// postcode anchors territory membership and travel cost estimates;
// the certificate flags are matched against booking requirements
// during shift swap acceptance.
type Medic struct {
	ID                   uint64    // medics.id
	FullName             string    // medics.full_name
	HomePostcode         string    // medics.home_postcode
	HasConfinedSpaceCert bool      // medics.has_confined_space_cert
	HasTraumaCert        bool      // medics.has_trauma_cert
	IsAvailable          bool      // medics.is_available
	CreatedAt            time.Time // medics.created_at
	UpdatedAt            time.Time // medics.updated_at
}
