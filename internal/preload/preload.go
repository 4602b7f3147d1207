// Package preload resolves and warms 3D model URLs ahead of navigation.
//
// A Cache keeps one entry per book id. Entries are written when a resolution
// starts (loading) and when it ends (resolved or failed), and are reused for
// TTL after their last write. Preloads are usually triggered through
// SchedulePreload, which debounces repeated intent signals for the same id.
package preload

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultTTL   = 5 * time.Minute
	DefaultDelay = 500 * time.Millisecond
)

// ErrNoModelURL is recorded when the resolver succeeds without a usable URL.
var ErrNoModelURL = errors.New("no model URL received")

type Status string

const (
	StatusNotStarted Status = "not-started"
	StatusLoading    Status = "loading"
	StatusReady      Status = "ready"
	StatusError      Status = "error"
)

// Entry is the last recorded outcome for one id.
type Entry struct {
	URL       string    `json:"url,omitempty"`
	Loading   bool      `json:"loading"`
	Err       string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Resolver maps a book id to the URL of its model asset.
type Resolver interface {
	ResolveModelURL(ctx context.Context, id string) (string, error)
}

// Warmer starts fetching an asset in the background. The returned error only
// reports a failure to start.
type Warmer interface {
	Warm(url string) error
}

type Option func(*Cache)

func WithClock(c Clock) Option {
	return func(p *Cache) { p.clock = c }
}

func WithTTL(ttl time.Duration) Option {
	return func(p *Cache) {
		if ttl > 0 {
			p.ttl = ttl
		}
	}
}

// WithDefaultDelay sets the debounce used when SchedulePreload gets a delay <= 0.
func WithDefaultDelay(d time.Duration) Option {
	return func(p *Cache) {
		if d > 0 {
			p.delay = d
		}
	}
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(p *Cache) { p.logger = l }
}

// WithOutcomeCounter counts resolutions by outcome: cached, resolved, failed.
func WithOutcomeCounter(c *prometheus.CounterVec) Option {
	return func(p *Cache) { p.outcomes = c }
}

// WithBaseContext sets the context used by timer-triggered resolutions.
func WithBaseContext(ctx context.Context) Option {
	return func(p *Cache) { p.baseCtx = ctx }
}

type pendingPreload struct {
	timer Timer
}

type Cache struct {
	resolver Resolver
	warmer   Warmer
	clock    Clock
	ttl      time.Duration
	delay    time.Duration
	logger   logrus.FieldLogger
	outcomes *prometheus.CounterVec
	baseCtx  context.Context

	mu      sync.Mutex
	entries map[string]Entry
	pending map[string]*pendingPreload

	inflight singleflight.Group
}

func New(resolver Resolver, warmer Warmer, opts ...Option) *Cache {
	c := &Cache{
		resolver: resolver,
		warmer:   warmer,
		clock:    realClock{},
		ttl:      DefaultTTL,
		delay:    DefaultDelay,
		logger:   logrus.StandardLogger(),
		baseCtx:  context.Background(),
		entries:  make(map[string]Entry),
		pending:  make(map[string]*pendingPreload),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SchedulePreload runs ResolveAndWarm for id once delay has passed without
// another SchedulePreload or CancelPreload for the same id. A delay <= 0
// uses the default delay.
func (c *Cache) SchedulePreload(id string, delay time.Duration) {
	if delay <= 0 {
		delay = c.delay
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if p, ok := c.pending[id]; ok {
		p.timer.Stop()
	}
	p := &pendingPreload{}
	p.timer = c.clock.AfterFunc(delay, func() { c.fire(id, p) })
	c.pending[id] = p
}

// CancelPreload drops a scheduled preload for id. A resolution that already
// started is not interrupted.
func (c *Cache) CancelPreload(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if p, ok := c.pending[id]; ok {
		p.timer.Stop()
		delete(c.pending, id)
	}
}

// Scheduled reports whether a preload for id is waiting on its timer.
func (c *Cache) Scheduled(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pending[id]
	return ok
}

func (c *Cache) fire(id string, p *pendingPreload) {
	c.mu.Lock()
	// A timer that lost the race with Stop must not act for its successor.
	if c.pending[id] != p {
		c.mu.Unlock()
		return
	}
	delete(c.pending, id)
	c.mu.Unlock()

	c.ResolveAndWarm(c.baseCtx, id)
}

// ResolveAndWarm warms the model for id, resolving its URL first unless a
// fresh resolved entry exists. Failures are logged and stored in the entry.
// Concurrent calls for the same id share one resolution, which runs detached
// from ctx cancellation: ctx only bounds how long this call waits for the
// outcome to be recorded.
func (c *Cache) ResolveAndWarm(ctx context.Context, id string) {
	if url, ok := c.freshURL(id); ok {
		c.count("cached")
		if err := c.warm(url); err != nil {
			c.logger.WithError(err).WithField("book_id", id).Warn("warm cached model failed")
		}
		return
	}

	detached := context.WithoutCancel(ctx)
	done := c.inflight.DoChan(id, func() (any, error) {
		c.resolve(detached, id)
		return nil, nil
	})
	select {
	case <-done:
	case <-ctx.Done():
	}
}

func (c *Cache) freshURL(id string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[id]
	if !ok || e.Loading || e.Err != "" || e.URL == "" {
		return "", false
	}
	if c.clock.Now().Sub(e.Timestamp) >= c.ttl {
		return "", false
	}
	return e.URL, true
}

func (c *Cache) resolve(ctx context.Context, id string) {
	defer func() {
		if r := recover(); r != nil {
			c.fail(id, fmt.Errorf("preload panicked: %v", r))
		}
	}()

	c.put(id, Entry{Loading: true})

	url, err := c.resolver.ResolveModelURL(ctx, id)
	if err != nil {
		c.fail(id, err)
		return
	}
	if url == "" {
		c.fail(id, ErrNoModelURL)
		return
	}

	c.put(id, Entry{URL: url})
	if err := c.warm(url); err != nil {
		c.fail(id, fmt.Errorf("warm model: %w", err))
		return
	}
	c.count("resolved")
}

func (c *Cache) warm(url string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("warm panicked: %v", r)
		}
	}()
	return c.warmer.Warm(url)
}

func (c *Cache) fail(id string, err error) {
	c.logger.WithError(err).WithField("book_id", id).Warn("model preload failed")
	c.put(id, Entry{Err: err.Error()})
	c.count("failed")
}

func (c *Cache) put(id string, e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e.Timestamp = c.clock.Now()
	c.entries[id] = e
}

// Status maps the entry for id to its observable state.
func (c *Cache) Status(id string) Status {
	e, ok := c.Entry(id)
	switch {
	case !ok:
		return StatusNotStarted
	case e.Loading:
		return StatusLoading
	case e.Err != "":
		return StatusError
	case e.URL != "":
		return StatusReady
	default:
		return StatusNotStarted
	}
}

// Entry returns a copy of the entry for id.
func (c *Cache) Entry(id string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	return e, ok
}

// Close stops all scheduled preloads.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, p := range c.pending {
		p.timer.Stop()
		delete(c.pending, id)
	}
}

func (c *Cache) count(outcome string) {
	if c.outcomes != nil {
		c.outcomes.WithLabelValues(outcome).Inc()
	}
}
