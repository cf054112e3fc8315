package notification

import "time"

// Notification mirrors the notifications table.
type Notification struct {
	ID         string
	UserID     string
	Title      string
	Message    string
	Type       string
	EntityType *string
	EntityID   *string
	Read       bool
	CreatedAt  time.Time
}

// CreateParams contains write parameters for inserting notifications.
type CreateParams struct {
	UserID     string
	Title      string
	Message    string
	Type       string
	EntityType string
	EntityID   string
}
