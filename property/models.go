package property

import "time"

type Status string

const (
	StatusAvailable   Status = "available"
	StatusRented      Status = "rented"
	StatusMaintenance Status = "maintenance"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusRented, StatusMaintenance:
		return true
	default:
		return false
	}
}

// Property mirrors the properties table plus the read-time occupancy
// projection. Status is the effective value: a stored 'rented' with no open
// contract reads back as 'available', and an open contract always reads as
// 'rented', regardless of what the column says.
type Property struct {
	ID                string
	Title             string
	Address           string
	City              string
	Price             float64
	Charges           float64
	Status            Status
	StoredStatus      Status
	OwnerID           *string
	PhotoURLs         []string
	HasActiveContract bool
	IsContractable    bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// CreateParams contains write parameters for inserting properties.
type CreateParams struct {
	Title   string
	Address string
	City    string
	Price   float64
	Charges float64
	OwnerID *string
}

// UpdateParams carries the staff-editable property fields.
type UpdateParams struct {
	Title   string
	Address string
	City    string
	Price   float64
	Charges float64
	Status  Status
}

// ListFilters scopes property listings.
type ListFilters struct {
	City       string
	Status     Status
	SortColumn string
	SortDesc   bool
	Limit      int
	Offset     int
}
