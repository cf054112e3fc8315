package contract

import "time"

// Contract mirrors the contracts table.
type Contract struct {
	ID               string
	PropertyID       string
	TenantID         string
	MonthlyRent      float64
	Charges          float64
	PaymentDay       int
	GracePeriodDays  int
	Status           Status
	SignedByTenant   bool
	SignedByLandlord bool
	StartDate        *time.Time
	EndDate          *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CreateParams enumerates the fields for a staff-created contract. Rent and
// charges default to the property's values when zero.
type CreateParams struct {
	PropertyID      string
	TenantID        string
	MonthlyRent     float64
	Charges         float64
	PaymentDay      int
	GracePeriodDays int
}

// ListFilters scopes contract listings. TenantID is mandatory for non-staff
// callers and empty for backoffice views.
type ListFilters struct {
	TenantID   string
	PropertyID string
	SortColumn string
	SortDesc   bool
	Limit      int
	Offset     int
}

const (
	defaultPaymentDay      = 1
	defaultGracePeriodDays = 5
)
