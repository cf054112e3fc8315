package tenant

import "time"

// Tenant mirrors the tenants table. A tenant row may exist before its owner
// ever authenticates (created by staff), in which case UserID is nil until
// the resolver backfills it.
type Tenant struct {
	ID        string
	FullName  string
	Email     string
	Phone     *string
	UserID    *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateParams contains write parameters for inserting tenants.
type CreateParams struct {
	FullName string
	Email    string
	Phone    *string
	UserID   *string
}

// UpdateParams carries the staff-editable tenant fields.
type UpdateParams struct {
	FullName string
	Email    string
	Phone    *string
}
