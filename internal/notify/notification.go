package notify

import (
	"time"

	"github.com/google/uuid"
)

// Type classifies a notification for presentation.
type Type string

const (
	TypeSuccess Type = "success"
	TypeError   Type = "error"
	TypeWarning Type = "warning"
	TypeInfo    Type = "info"
)

// Valid reports whether t is a known notification type.
func (t Type) Valid() bool {
	switch t {
	case TypeSuccess, TypeError, TypeWarning, TypeInfo:
		return true
	}
	return false
}

const (
	// DefaultDuration is the auto-dismiss delay for success, warning and
	// info notifications when the caller does not set one.
	DefaultDuration = 5 * time.Second
	// Persistent marks a notification that is never auto-dismissed.
	// Errors default to this so the user cannot miss them.
	Persistent = time.Duration(0)
)

// Notification is one entry in the notification history. Duration zero means
// the notification stays until explicitly dismissed.
type Notification struct {
	ID        uuid.UUID     `json:"id"`
	Type      Type          `json:"type"`
	Title     string        `json:"title"`
	Message   string        `json:"message"`
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
	Read      bool          `json:"read"`
}

// New builds an unread notification with the type's default duration:
// DefaultDuration for success, warning and info; Persistent for errors.
func New(typ Type, title, message string) Notification {
	d := DefaultDuration
	if typ == TypeError {
		d = Persistent
	}
	return Notification{
		ID:        uuid.New(),
		Type:      typ,
		Title:     title,
		Message:   message,
		Duration:  d,
		Timestamp: time.Now(),
	}
}

// WithDuration returns a copy of n with an explicit auto-dismiss delay.
func (n Notification) WithDuration(d time.Duration) Notification {
	n.Duration = d
	return n
}
