// Package session keeps the wizards of the HTTP API in process memory. A
// session that sees no activity for the TTL is abandoned and its draft
// discarded.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-regwizard/pkg/wizard"
)

// ErrNotFound is returned for unknown or expired session ids.
var ErrNotFound = errors.New("session: not found")

// Factory builds the controller of a new session.
type Factory func() (*wizard.Controller, error)

type entry struct {
	controller *wizard.Controller
	lastSeen   time.Time
}

// Registry maps session ids to controllers.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
	factory Factory
	ttl     time.Duration
	now     func() time.Time
	newID   func() string
	logger  zerolog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithIDGenerator overrides session id generation.
func WithIDGenerator(fn func() string) Option {
	return func(r *Registry) {
		if fn != nil {
			r.newID = fn
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry returns an empty registry. A non-positive ttl disables expiry.
func NewRegistry(factory Factory, ttl time.Duration, options ...Option) *Registry {
	r := &Registry{
		entries: make(map[string]*entry),
		factory: factory,
		ttl:     ttl,
		now:     time.Now,
		newID:   uuid.NewString,
		logger:  zerolog.Nop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

// Create starts a new session.
func (r *Registry) Create() (string, *wizard.Controller, error) {
	if r.factory == nil {
		return "", nil, errors.New("session: no controller factory")
	}
	controller, err := r.factory()
	if err != nil {
		return "", nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.newID()
	r.entries[id] = &entry{controller: controller, lastSeen: r.now()}
	r.logger.Debug().Str("session_id", id).Msg("session: created")
	return id, controller, nil
}

// Get returns the controller of id and refreshes its idle timer.
func (r *Registry) Get(id string) (*wizard.Controller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	now := r.now()
	if r.expired(e, now) {
		delete(r.entries, id)
		return nil, ErrNotFound
	}
	e.lastSeen = now
	return e.controller, nil
}

// Delete abandons a session.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[id]; !ok {
		return ErrNotFound
	}
	delete(r.entries, id)
	r.logger.Debug().Str("session_id", id).Msg("session: abandoned")
	return nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep removes idle sessions and returns how many were dropped. Sessions
// with a submission in flight are kept until it resolves.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for id, e := range r.entries {
		if !r.expired(e, now) || e.controller.Submitting() {
			continue
		}
		delete(r.entries, id)
		removed++
	}
	if removed > 0 {
		r.logger.Info().Int("removed", removed).Int("live", len(r.entries)).Msg("session: swept idle sessions")
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

func (r *Registry) expired(e *entry, now time.Time) bool {
	return r.ttl > 0 && now.Sub(e.lastSeen) > r.ttl
}
