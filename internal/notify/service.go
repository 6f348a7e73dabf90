package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultMaxNotifications bounds the history; inserting past the bound
	// evicts the oldest entry.
	DefaultMaxNotifications = 50
	// MaxToasts is how many unread notifications are offered for transient
	// display at once.
	MaxToasts = 5
)

// Option configures a Service.
type Option func(*Service)

// WithMaxNotifications overrides the history bound.
func WithMaxNotifications(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.max = n
		}
	}
}

// Service owns the notification history: a bounded most-recent-first list
// with read/unread state, per-notification auto-dismiss timers, and durable
// persistence of the whole list on every mutation.
//
// Persistence failures are logged and swallowed; the in-memory list keeps
// working without history rather than surfacing a storage fault to the user.
type Service struct {
	mu     sync.Mutex
	items  []Notification // index 0 is most recent
	timers map[uuid.UUID]*time.Timer
	max    int
	store  Store
	log    *zap.Logger
}

// NewService creates a service and loads any persisted history from the
// store. A failed load starts with an empty history.
func NewService(store Store, log *zap.Logger, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		timers: make(map[uuid.UUID]*time.Timer),
		max:    DefaultMaxNotifications,
		store:  store,
		log:    log,
	}
	for _, opt := range opts {
		opt(s)
	}
	if store != nil {
		items, err := store.Load(context.Background())
		if err != nil {
			log.Warn("failed_to_load_notification_history", zap.Error(err))
		} else {
			s.items = items
		}
	}
	return s
}

// Push inserts a notification at the head of the history, evicting the
// oldest entry past the bound, and schedules auto-dismissal if the
// notification has a duration. The stored notification is returned.
func (s *Service) Push(n Notification) Notification {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now()
	}

	s.mu.Lock()
	s.items = append([]Notification{n}, s.items...)
	if len(s.items) > s.max {
		for _, old := range s.items[s.max:] {
			s.stopTimerLocked(old.ID)
		}
		s.items = s.items[:s.max]
	}
	if n.Duration > 0 {
		id := n.ID
		// Removal is idempotent, so a timer firing after an explicit
		// dismissal is a no-op; no cancellation token is needed.
		s.timers[id] = time.AfterFunc(n.Duration, func() {
			s.Remove(id)
		})
	}
	s.persistLocked()
	s.mu.Unlock()

	return n
}

// Success pushes a success notification with the default duration.
func (s *Service) Success(title, message string) Notification {
	return s.Push(New(TypeSuccess, title, message))
}

// Error pushes a persistent error notification.
func (s *Service) Error(title, message string) Notification {
	return s.Push(New(TypeError, title, message))
}

// Warning pushes a warning notification with the default duration.
func (s *Service) Warning(title, message string) Notification {
	return s.Push(New(TypeWarning, title, message))
}

// Info pushes an info notification with the default duration.
func (s *Service) Info(title, message string) Notification {
	return s.Push(New(TypeInfo, title, message))
}

// All returns the history, most recent first.
func (s *Service) All() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Notification, len(s.items))
	copy(out, s.items)
	return out
}

// Toasts returns the up-to-MaxToasts most recent unread notifications, the
// subset offered for transient display.
func (s *Service) Toasts() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Notification
	for _, n := range s.items {
		if n.Read {
			continue
		}
		out = append(out, n)
		if len(out) == MaxToasts {
			break
		}
	}
	return out
}

// UnreadCount reports how many notifications are unread.
func (s *Service) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, n := range s.items {
		if !n.Read {
			count++
		}
	}
	return count
}

// MarkRead marks one notification read. It reports whether the id was found.
func (s *Service) MarkRead(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			if !s.items[i].Read {
				s.items[i].Read = true
				s.persistLocked()
			}
			return true
		}
	}
	return false
}

// MarkAllRead marks the entire history read.
func (s *Service) MarkAllRead() {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := false
	for i := range s.items {
		if !s.items[i].Read {
			s.items[i].Read = true
			changed = true
		}
	}
	if changed {
		s.persistLocked()
	}
}

// Remove deletes a notification. It is idempotent: removing an id that is
// already gone is a no-op, which is what makes the auto-dismiss timers safe.
func (s *Service) Remove(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.stopTimerLocked(id)
			s.persistLocked()
			return true
		}
	}
	return false
}

// ClearAll empties the history and cancels all pending timers.
func (s *Service) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.timers {
		s.stopTimerLocked(id)
	}
	s.items = nil
	s.persistLocked()
}

// Close stops all pending timers. The history is left persisted as is.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.timers {
		s.stopTimerLocked(id)
	}
}

func (s *Service) stopTimerLocked(id uuid.UUID) {
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
}

// persistLocked writes the full list to the store. Callers hold s.mu.
func (s *Service) persistLocked() {
	if s.store == nil {
		return
	}
	items := make([]Notification, len(s.items))
	copy(items, s.items)
	if err := s.store.Save(context.Background(), items); err != nil {
		s.log.Warn("failed_to_persist_notifications", zap.Error(err))
	}
}
