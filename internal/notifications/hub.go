package notifications

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/stringmaster/stringmaster-backend/pkg/db/models"
	"github.com/stringmaster/stringmaster-backend/pkg/logger"
)

type backlogLister interface {
	ListUnread(ctx context.Context) ([]models.Notification, error)
}

// Hub fans persisted notifications out to connected admin observers.
// Publishing never blocks; a slow observer loses live events from its own
// feed only, and the durable rows replay on the next Subscribe.
type Hub struct {
	mu          sync.Mutex
	subscribers map[uuid.UUID]*Subscription
	backlog     backlogLister
	buffer      int
	logg        *logger.Logger
}

// Subscription is one observer's bounded live feed.
type Subscription struct {
	ID     uuid.UUID
	C      <-chan models.Notification
	ch     chan models.Notification
	hub    *Hub
	closed bool
}

// NewHub builds a hub whose observer channels hold up to buffer events.
func NewHub(backlog backlogLister, buffer int, logg *logger.Logger) (*Hub, error) {
	if backlog == nil {
		return nil, fmt.Errorf("notification backlog lister required")
	}
	if buffer <= 0 {
		return nil, fmt.Errorf("observer buffer must be positive, got %d", buffer)
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Hub{
		subscribers: make(map[uuid.UUID]*Subscription),
		backlog:     backlog,
		buffer:      buffer,
		logg:        logg,
	}, nil
}

// Subscribe registers an observer and replays the unread backlog in creation
// order before any live event is delivered. The hub lock is held from the
// backlog load through registration: publishes block for that window, so a
// notification committed while a subscriber attaches is either in its replay
// or delivered live, never lost between the two.
func (h *Hub) Subscribe(ctx context.Context) (*Subscription, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	unread, err := h.backlog.ListUnread(ctx)
	if err != nil {
		return nil, fmt.Errorf("load unread backlog: %w", err)
	}

	size := h.buffer
	if len(unread) > size {
		size = len(unread) + h.buffer
	}
	ch := make(chan models.Notification, size)
	for _, notification := range unread {
		ch <- notification
	}

	sub := &Subscription{
		ID:  uuid.New(),
		C:   ch,
		ch:  ch,
		hub: h,
	}
	h.subscribers[sub.ID] = sub

	h.logg.Info(h.logg.WithFields(ctx, map[string]any{
		"subscription_id": sub.ID.String(),
		"backlog":         len(unread),
	}), "observer subscribed")
	return sub, nil
}

// Publish fans the notification out to every observer without blocking.
// Observers whose buffers are full miss this live event; the persisted row
// is still available for replay.
func (h *Hub) Publish(ctx context.Context, notification models.Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, sub := range h.subscribers {
		select {
		case sub.ch <- notification:
		default:
			h.logg.Warn(h.logg.WithFields(ctx, map[string]any{
				"subscription_id": id.String(),
				"notification_id": notification.ID.String(),
			}), "observer buffer full, dropping live event")
		}
	}
}

// Unsubscribe removes the observer and closes its channel.
func (h *Hub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if sub.closed {
		return
	}
	sub.closed = true
	delete(h.subscribers, sub.ID)
	close(sub.ch)
}

// Close drops every observer. Used on shutdown so streaming handlers see
// their channels close and return.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, sub := range h.subscribers {
		sub.closed = true
		delete(h.subscribers, id)
		close(sub.ch)
	}
}

// Close detaches the subscription from its hub.
func (s *Subscription) Close() {
	if s == nil || s.hub == nil {
		return
	}
	s.hub.Unsubscribe(s)
}
