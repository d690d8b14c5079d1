package submission

import (
	"errors"
	"strings"

	"github.com/goliatone/go-regwizard/pkg/model"
)

var (
	// ErrValidationFailed matches ValidationFailure values.
	ErrValidationFailed = errors.New("submission: validation failed")
	// ErrSubmissionFailed matches FailedError values.
	ErrSubmissionFailed = errors.New("submission: submission failed")
)

// ValidationFailure lists every violation found in a draft.
type ValidationFailure struct {
	Errors []model.FieldError
}

func (f *ValidationFailure) Error() string {
	if f == nil || len(f.Errors) == 0 {
		return ErrValidationFailed.Error()
	}
	parts := make([]string, 0, len(f.Errors))
	for _, fe := range f.Errors {
		parts = append(parts, fe.String())
	}
	return ErrValidationFailed.Error() + ": " + strings.Join(parts, "; ")
}

// Is matches ErrValidationFailed.
func (f *ValidationFailure) Is(target error) bool {
	return target == ErrValidationFailed
}

// Fields returns the keys that have at least one violation, in order.
func (f *ValidationFailure) Fields() []model.FieldKey {
	if f == nil {
		return nil
	}
	var out []model.FieldKey
	seen := make(map[model.FieldKey]struct{}, len(f.Errors))
	for _, fe := range f.Errors {
		if _, ok := seen[fe.Field]; ok {
			continue
		}
		seen[fe.Field] = struct{}{}
		out = append(out, fe.Field)
	}
	return out
}

// Has reports whether key has a violation.
func (f *ValidationFailure) Has(key model.FieldKey) bool {
	for _, field := range f.Fields() {
		if field == key {
			return true
		}
	}
	return false
}

// FailedError is reported when the submission collaborator refuses or cannot
// process a payload. Fields carries optional field-level remarks keyed by the
// collaborator's own paths; render.MapErrorPayload maps them onto field keys.
type FailedError struct {
	Reason string
	Fields map[string][]string
	Err    error
}

func (e *FailedError) Error() string {
	msg := ErrSubmissionFailed.Error()
	if e == nil {
		return msg
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the transport error, if any.
func (e *FailedError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches ErrSubmissionFailed.
func (e *FailedError) Is(target error) bool {
	return target == ErrSubmissionFailed
}

// AsFailed wraps err into a FailedError unless it already is one.
func AsFailed(err error) *FailedError {
	if err == nil {
		return nil
	}
	var failed *FailedError
	if errors.As(err, &failed) {
		return failed
	}
	return &FailedError{Reason: "submission collaborator error", Err: err}
}
