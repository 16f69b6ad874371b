package models

import "time"

// NotificationType enumerates the event kinds surfaced to users.
type NotificationType string

const (
	NotificationTypeApplicationStatus NotificationType = "application_status"
	NotificationTypeLetterStatus      NotificationType = "letter_status"
	NotificationTypeEvaluationReady   NotificationType = "evaluation_ready"
	NotificationTypeAcknowledgment    NotificationType = "acknowledgment"
	NotificationTypeReminder          NotificationType = "reminder"
)

// NotificationPriority orders notifications in client inboxes.
type NotificationPriority string

const (
	NotificationPriorityLow    NotificationPriority = "low"
	NotificationPriorityNormal NotificationPriority = "normal"
	NotificationPriorityHigh   NotificationPriority = "high"
)

// Notification is an in-app message row surfaced to a user, decoupled from
// email delivery. Rows are never mutated after insert except for is_read.
type Notification struct {
	ID        string               `db:"id" json:"id"`
	UserID    string               `db:"user_id" json:"userId"`
	Type      NotificationType     `db:"type" json:"type"`
	Title     string               `db:"title" json:"title"`
	Message   string               `db:"message" json:"message"`
	Link      *string              `db:"link" json:"link,omitempty"`
	Priority  NotificationPriority `db:"priority" json:"priority"`
	IsRead    bool                 `db:"is_read" json:"isRead"`
	RelatedID *string              `db:"related_id" json:"relatedId,omitempty"`
	CreatedAt time.Time            `db:"created_at" json:"createdAt"`
}

// NotificationFilter constrains listing queries.
type NotificationFilter struct {
	UserID     string
	UnreadOnly bool
	Page       int
	PageSize   int
}
