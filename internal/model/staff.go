package model

import "time"

// Staff is a restaurant employee account.  The role determines which
// endpoints the account may call: MANAGER administers tables, KITCHEN
// advances order statuses, WAITER does everything at the table.
type Staff struct {
	ID           uint64    // staff.id
	Email        string    // staff.email
	PasswordHash string    // staff.password_hash
	Role         string    // staff.role (MANAGER, WAITER, KITCHEN)
	IsActive     bool      // staff.is_active
	CreatedAt    time.Time // staff.created_at
	UpdatedAt    time.Time // staff.updated_at
}
