// Package notify delivers fire-and-forget user notifications (the toast
// banner channel of the UI shell). Senders never wait for acknowledgment.
package notify

import (
	"sync"

	"go.uber.org/zap"
)

// Severity of a notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notification is a single user-facing message.
type Notification struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
}

// Notifier is the outbound notification channel.
type Notifier interface {
	Notify(n Notification)
}

// Feed keeps the most recent notifications in a ring buffer so the UI can
// poll them, and mirrors each one to the log.
type Feed struct {
	mu     sync.Mutex
	items  []Notification
	limit  int
	logger *zap.Logger
}

var _ Notifier = (*Feed)(nil)

// NewFeed creates a Feed retaining up to limit notifications.
func NewFeed(limit int, logger *zap.Logger) *Feed {
	if limit <= 0 {
		limit = 50
	}
	return &Feed{limit: limit, logger: logger}
}

// Notify records a notification.
func (f *Feed) Notify(n Notification) {
	f.mu.Lock()
	f.items = append(f.items, n)
	if len(f.items) > f.limit {
		f.items = f.items[len(f.items)-f.limit:]
	}
	f.mu.Unlock()

	if f.logger != nil {
		f.logger.Info("notification",
			zap.String("title", n.Title),
			zap.String("description", n.Description),
			zap.String("severity", string(n.Severity)))
	}
}

// Recent returns the retained notifications, newest last.
func (f *Feed) Recent() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Notification, len(f.items))
	copy(out, f.items)
	return out
}
