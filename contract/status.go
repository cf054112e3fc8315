package contract

import "strings"

type Status string

const (
	StatusDraft            Status = "draft"
	StatusPending          Status = "pending"
	StatusActive           Status = "active"
	StatusSubmitted        Status = "submitted"
	StatusAwaitingApproval Status = "awaiting_approval"
	StatusUnderReview      Status = "under_review"
	StatusSigned           Status = "signed"
	StatusRequested        Status = "requested"
	StatusTerminated       Status = "terminated"
	StatusExpired          Status = "expired"
)

// OpenStatuses is the set of statuses under which a contract still occupies
// its property. This code only ever writes draft and active, but the broader
// set is matched defensively so imported data with workflow-in-progress
// statuses is never treated as vacant.
var OpenStatuses = []Status{
	StatusDraft,
	StatusPending,
	StatusActive,
	StatusSubmitted,
	StatusAwaitingApproval,
	StatusUnderReview,
	StatusSigned,
	StatusRequested,
}

// OpenStatusSQLList renders the open set as a SQL IN-list of quoted literals,
// for embedding in availability projection queries.
func OpenStatusSQLList() string {
	quoted := make([]string, len(OpenStatuses))
	for i, s := range OpenStatuses {
		quoted[i] = "'" + string(s) + "'"
	}
	return "(" + strings.Join(quoted, ", ") + ")"
}

// IsOpen reports whether the status keeps the property occupied.
func (s Status) IsOpen() bool {
	for _, open := range OpenStatuses {
		if s == open {
			return true
		}
	}
	return false
}

// IsValid reports membership in the closed status set.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusActive, StatusSubmitted,
		StatusAwaitingApproval, StatusUnderReview, StatusSigned,
		StatusRequested, StatusTerminated, StatusExpired:
		return true
	default:
		return false
	}
}

// CanTransition validates the lifecycle edges this service produces:
// draft -> active (accept), active -> terminated/expired. Reject is a row
// delete, not a stored transition.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusDraft:
		return to == StatusActive
	case StatusActive:
		return to == StatusTerminated || to == StatusExpired
	default:
		return false
	}
}
