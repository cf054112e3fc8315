package maintenance

import "time"

type Status string

const (
	StatusReported   Status = "reported"
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusReported, StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
	UrgencyUrgent Urgency = "urgent"
)

func (u Urgency) IsValid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyUrgent:
		return true
	default:
		return false
	}
}

// Request mirrors the maintenance_requests table.
type Request struct {
	ID          string
	PropertyID  string
	TenantID    string
	Category    string
	Description string
	Urgency     Urgency
	Status      Status
	PhotoURLs   []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateParams enumerates the fields a tenant files a request with.
type CreateParams struct {
	PropertyID  string
	TenantID    string
	Category    string
	Description string
	Urgency     Urgency
}

// ListFilters scopes maintenance listings.
type ListFilters struct {
	TenantID   string
	PropertyID string
	Status     Status
	SortColumn string
	SortDesc   bool
	Limit      int
	Offset     int
}
