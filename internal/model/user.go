package model

import "time"

// Staff roles.  ADMIN accounts run triage, cost evaluation, series
// creation and swap arbitration; MEDIC accounts offer and accept
// swaps.  A MEDIC account links to its medics row via MedicID.
const (
	RoleAdmin = "ADMIN"
	RoleMedic = "MEDIC"
)

// User represents a staff account as stored in the `users` table.
// Only the bcrypt hash of the password is persisted.
//
// Fields:
//  ID           – primary key identifier of the account.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – ADMIN or MEDIC.
//  MedicID      – linked medics.id for MEDIC accounts (null for admins).
//  IsActive     – whether the account may log in.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	MedicID      *uint64   // users.medic_id (nullable)
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  The
// plain token is never stored; only its SHA-256 hash.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
