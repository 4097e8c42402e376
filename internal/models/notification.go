package models

import "time"

type NotificationType string

const (
	NotificationBooking  NotificationType = "BOOKING"
	NotificationReview   NotificationType = "REVIEW"
	NotificationPayment  NotificationType = "PAYMENT"
	NotificationSystem   NotificationType = "SYSTEM"
	NotificationReminder NotificationType = "REMINDER"
)

// Notification is an append-only side-effect record addressed to a user.
type Notification struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"user_id"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	RelatedID *int64           `json:"related_id"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}
