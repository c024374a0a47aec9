package presence

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stringmaster/stringmaster-backend/pkg/config"
	pkgerrors "github.com/stringmaster/stringmaster-backend/pkg/errors"
	"github.com/stringmaster/stringmaster-backend/pkg/logger"
)

// Entry is one online user as seen by the tracker. SessionID is the jti of
// the token that sent the heartbeat, so admins can tell sessions apart when
// a user logs in twice.
type Entry struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	SessionID string    `json:"session_id"`
	LastSeen  time.Time `json:"last_seen"`
}

// Tracker keeps an in-memory table of recent heartbeats. Entries past the
// inactivity timeout are filtered on every read, so the background sweep is
// advisory and only bounds memory.
type Tracker struct {
	mu      sync.Mutex
	entries map[uuid.UUID]Entry
	timeout time.Duration
	sweep   time.Duration
	now     func() time.Time
	logg    *logger.Logger
}

// NewTracker builds a tracker from the presence configuration.
func NewTracker(cfg config.PresenceConfig, logg *logger.Logger) (*Tracker, error) {
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("presence timeout must be positive, got %s", cfg.Timeout)
	}
	if cfg.SweepInterval <= 0 {
		return nil, fmt.Errorf("presence sweep interval must be positive, got %s", cfg.SweepInterval)
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Tracker{
		entries: make(map[uuid.UUID]Entry),
		timeout: cfg.Timeout,
		sweep:   cfg.SweepInterval,
		now:     time.Now,
		logg:    logg,
	}, nil
}

// Heartbeat upserts the user's last-seen timestamp.
func (t *Tracker) Heartbeat(userID uuid.UUID, email, sessionID string) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[userID] = Entry{
		UserID:    userID,
		Email:     email,
		SessionID: sessionID,
		LastSeen:  t.now().UTC(),
	}
	return nil
}

// ListOnline returns users whose last heartbeat is within the timeout,
// newest first.
func (t *Tracker) ListOnline() []Entry {
	cutoff := t.now().UTC().Add(-t.timeout)

	t.mu.Lock()
	defer t.mu.Unlock()

	online := make([]Entry, 0, len(t.entries))
	for _, entry := range t.entries {
		if entry.LastSeen.After(cutoff) {
			online = append(online, entry)
		}
	}
	sort.Slice(online, func(i, j int) bool {
		return online[i].LastSeen.After(online[j].LastSeen)
	})
	return online
}

// Sweep evicts entries past the timeout and reports how many were removed.
func (t *Tracker) Sweep() int {
	cutoff := t.now().UTC().Add(-t.timeout)

	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for id, entry := range t.entries {
		if !entry.LastSeen.After(cutoff) {
			delete(t.entries, id)
			removed++
		}
	}
	return removed
}

// Run sweeps on the configured interval until the context is canceled.
func (t *Tracker) Run(ctx context.Context) {
	ticker := time.NewTicker(t.sweep)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := t.Sweep(); removed > 0 {
				t.logg.Info(t.logg.WithField(ctx, "removed", removed), "swept stale presence entries")
			}
		}
	}
}
