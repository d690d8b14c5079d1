// Package loopback provides an in-process submission collaborator. It records
// accepted payloads and answers repeated idempotency keys with the original
// receipt, which makes it suitable for the terminal wizard and for tests.
package loopback

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-regwizard/pkg/submission"
)

// Record is an accepted submission.
type Record struct {
	Key     string
	Receipt submission.Receipt
	Payload submission.Payload
}

// Submitter keeps accepted payloads in memory.
type Submitter struct {
	mu      sync.Mutex
	records map[string]Record
	order   []string
	newID   func() string
}

// Option configures a Submitter.
type Option func(*Submitter)

// WithIDGenerator overrides confirmation id generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Submitter) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// New returns an empty loopback submitter.
func New(options ...Option) *Submitter {
	s := &Submitter{
		records: make(map[string]Record),
		newID:   func() string { return uuid.NewString() },
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

var _ submission.Submitter = (*Submitter)(nil)

// Submit stores the payload under key and returns a receipt.
func (s *Submitter) Submit(ctx context.Context, payload submission.Payload, key string) (submission.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return submission.Receipt{}, &submission.FailedError{Reason: "submission cancelled", Err: err}
	}
	if key == "" {
		return submission.Receipt{}, &submission.FailedError{Reason: "missing idempotency key", Err: errors.New("loopback: empty key")}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.records[key]; ok {
		return existing.Receipt, nil
	}
	receipt := submission.Receipt{ConfirmationID: s.newID()}
	s.records[key] = Record{Key: key, Receipt: receipt, Payload: payload.Clone()}
	s.order = append(s.order, key)
	return receipt, nil
}

// Records returns accepted submissions in arrival order.
func (s *Submitter) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.records[key])
	}
	return out
}
