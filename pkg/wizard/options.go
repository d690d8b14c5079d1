package wizard

import (
	"github.com/rs/zerolog"

	"github.com/goliatone/go-regwizard/pkg/attachment"
	"github.com/goliatone/go-regwizard/pkg/submission"
)

// Option configures a Controller.
type Option func(*Controller)

// WithLogger enables logging. Controllers are silent by default.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithObserver registers an event observer.
func WithObserver(observer Observer) Option {
	return func(c *Controller) {
		if observer != nil {
			c.observer = observer
		}
	}
}

// WithAssembler overrides the submission assembler.
func WithAssembler(assembler *submission.Assembler) Option {
	return func(c *Controller) {
		if assembler != nil {
			c.assembler = assembler
		}
	}
}

// WithPolicy overrides the attachment policy used by the draft.
func WithPolicy(policy attachment.Policy) Option {
	return func(c *Controller) {
		c.policy = &policy
	}
}

// WithKeyFunc overrides idempotency key generation.
func WithKeyFunc(fn func() string) Option {
	return func(c *Controller) {
		if fn != nil {
			c.newKey = fn
		}
	}
}
