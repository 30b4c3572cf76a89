package services

import (
	"sort"
	"sync"
	"time"

	"tunnel-dashboard/internal/logger"
	"tunnel-dashboard/internal/models"

	"github.com/google/uuid"
)

// Notifier surfaces a transient message to the operator
type Notifier interface {
	Notify(title, message string, severity models.Severity)
}

// NotificationCenter keeps active notifications and dismisses each one after ttl.
type NotificationCenter struct {
	mu        sync.Mutex
	ttl       time.Duration
	active    map[string]*models.Notification
	timers    map[string]*time.Timer
	publisher EventPublisher
	closed    bool
}

/**
 * Create notification center
 * @param {time.Duration} ttl - Lifetime of each notification
 * @param {EventPublisher} publisher - Receives notification and dismiss events, may be nil
 */
func NewNotificationCenter(ttl time.Duration, publisher EventPublisher) *NotificationCenter {
	return &NotificationCenter{
		ttl:       ttl,
		active:    make(map[string]*models.Notification),
		timers:    make(map[string]*time.Timer),
		publisher: publisher,
	}
}

func (nc *NotificationCenter) Notify(title, message string, severity models.Severity) {
	now := time.Now()
	n := &models.Notification{
		ID:        uuid.NewString(),
		Title:     title,
		Message:   message,
		Severity:  severity,
		CreatedAt: now,
		ExpiresAt: now.Add(nc.ttl),
	}

	nc.mu.Lock()
	if nc.closed {
		nc.mu.Unlock()
		return
	}
	nc.active[n.ID] = n
	nc.timers[n.ID] = time.AfterFunc(nc.ttl, func() { nc.dismiss(n.ID) })
	nc.mu.Unlock()

	notificationsTotal.WithLabelValues(string(severity)).Inc()
	if severity == models.SeverityError {
		logger.Warnf("Notification [%s] %s: %s", severity, title, message)
	} else {
		logger.Infof("Notification [%s] %s: %s", severity, title, message)
	}
	if nc.publisher != nil {
		copied := *n
		nc.publisher.Publish(models.ViewEvent{Kind: models.EventNotification, Notification: &copied})
	}
}

func (nc *NotificationCenter) dismiss(id string) {
	nc.mu.Lock()
	n, ok := nc.active[id]
	if ok {
		delete(nc.active, id)
		delete(nc.timers, id)
	}
	closed := nc.closed
	nc.mu.Unlock()

	if ok && !closed && nc.publisher != nil {
		copied := *n
		nc.publisher.Publish(models.ViewEvent{Kind: models.EventDismiss, Notification: &copied})
	}
}

// Active lists the notifications not yet dismissed, oldest first.
func (nc *NotificationCenter) Active() []models.Notification {
	nc.mu.Lock()
	defer nc.mu.Unlock()
	out := make([]models.Notification, 0, len(nc.active))
	for _, n := range nc.active {
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Close cancels pending dismiss timers and ignores later notifications.
func (nc *NotificationCenter) Close() {
	nc.mu.Lock()
	defer nc.mu.Unlock()
	nc.closed = true
	for id, t := range nc.timers {
		t.Stop()
		delete(nc.timers, id)
	}
	nc.active = make(map[string]*models.Notification)
}
