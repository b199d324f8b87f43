// ABOUTME: Notification model with kind and priority enums.
// ABOUTME: Notifications are only ever marked read, never deleted automatically.
package models

import "time"

// NotificationKind groups notifications for display.
type NotificationKind string

const (
	NotificationGoal        NotificationKind = "goal"
	NotificationReview      NotificationKind = "review"
	NotificationPerformance NotificationKind = "performance"
	NotificationAchievement NotificationKind = "achievement"
)

// Priority of a notification.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// Related entity types referenced by notifications.
const (
	RelatedGoal    = "goal"
	RelatedSubject = "discipline"
	RelatedTopic   = "topic"
	RelatedResult  = "result"
	RelatedSession = "session"
	RelatedReview  = "review"
)

// Notification is an alert derived by the rule engine.
type Notification struct {
	ID          int64            `json:"id" yaml:"id"`
	Kind        NotificationKind `json:"type" yaml:"type"`
	Title       string           `json:"title" yaml:"title"`
	Message     string           `json:"message" yaml:"message"`
	Priority    Priority         `json:"priority" yaml:"priority"`
	RelatedID   *int64           `json:"related_id" yaml:"related_id,omitempty"`
	RelatedType string           `json:"related_type,omitempty" yaml:"related_type,omitempty"`
	CreatedAt   time.Time        `json:"created_at" yaml:"created_at"`
	ReadAt      *time.Time       `json:"read_at" yaml:"read_at,omitempty"`
	Read        bool             `json:"read" yaml:"-"`
}

// NewNotification creates an unread notification.
func NewNotification(kind NotificationKind, priority Priority, title, message string) *Notification {
	return &Notification{
		Kind:      kind,
		Title:     title,
		Message:   message,
		Priority:  priority,
		CreatedAt: time.Now().UTC(),
	}
}

// WithRelated attaches the entity the notification is about.
func (n *Notification) WithRelated(relatedType string, id int64) *Notification {
	n.RelatedType = relatedType
	n.RelatedID = &id
	return n
}
