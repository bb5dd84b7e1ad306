package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL is how long a notice stays visible before auto-dismissal.
const DefaultTTL = 4 * time.Second

// Kind classifies a notice for display.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// Notice is one transient message. The ID is the notice's identity:
// dismissal targets exactly one pushed notice and nothing else.
type Notice struct {
	ID        string
	Kind      Kind
	Message   string
	CreatedAt time.Time
}

// Center collects notices and dismisses each one after its TTL unless
// something dismissed it first.
type Center struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	notices []Notice
	timers  map[string]*time.Timer
}

// Option customizes center construction.
type Option func(*Center)

// WithTTL overrides the auto-dismiss delay.
func WithTTL(ttl time.Duration) Option {
	return func(c *Center) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// NewCenter creates an empty notification center.
func NewCenter(opts ...Option) *Center {
	c := &Center{
		ttl:    DefaultTTL,
		now:    time.Now,
		timers: map[string]*time.Timer{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Push adds a notice and schedules its auto-dismissal.
func (c *Center) Push(kind Kind, message string) Notice {
	notice := Notice{
		ID:        uuid.NewString(),
		Kind:      kind,
		Message:   message,
		CreatedAt: c.now(),
	}

	c.mu.Lock()
	c.notices = append(c.notices, notice)
	c.timers[notice.ID] = time.AfterFunc(c.ttl, func() {
		c.Dismiss(notice.ID)
	})
	c.mu.Unlock()

	return notice
}

// Success pushes a success notice.
func (c *Center) Success(message string) Notice { return c.Push(KindSuccess, message) }

// Error pushes an error notice.
func (c *Center) Error(message string) Notice { return c.Push(KindError, message) }

// Info pushes an informational notice.
func (c *Center) Info(message string) Notice { return c.Push(KindInfo, message) }

// Dismiss removes the notice with the given identity. Dismissing an
// already-gone notice is a no-op, so the auto-dismiss timer and a manual
// dismissal can race without either one removing the wrong notice.
func (c *Center) Dismiss(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if timer, ok := c.timers[id]; ok {
		timer.Stop()
		delete(c.timers, id)
	}
	for i, notice := range c.notices {
		if notice.ID == id {
			c.notices = append(c.notices[:i:i], c.notices[i+1:]...)
			return true
		}
	}
	return false
}

// Active returns a copy of the notices currently visible.
func (c *Center) Active() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Notice, len(c.notices))
	copy(out, c.notices)
	return out
}

// Drain removes and returns every active notice, stopping their timers.
func (c *Center) Drain() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := c.notices
	c.notices = nil
	for id, timer := range c.timers {
		timer.Stop()
		delete(c.timers, id)
	}
	return out
}
