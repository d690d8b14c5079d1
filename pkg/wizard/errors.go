package wizard

import (
	"errors"
	"strings"

	"github.com/goliatone/go-regwizard/pkg/model"
)

var (
	// ErrGuardFailed matches GuardError values.
	ErrGuardFailed = errors.New("wizard: guard failed")
	// ErrSubmissionInFlight is returned for intents received while a
	// submission is pending.
	ErrSubmissionInFlight = errors.New("wizard: submission in flight")
	// ErrCompleted is returned once the registration has been submitted.
	ErrCompleted = errors.New("wizard: registration already submitted")
	// ErrNotAtFinalStep is returned when submit is attempted before the role
	// details page.
	ErrNotAtFinalStep = errors.New("wizard: submit is only available on the last step")
	// ErrInvalidRole is returned when selecting RoleUnset or an unknown role.
	ErrInvalidRole = errors.New("wizard: invalid role")
)

// GuardError reports unmet step preconditions. The step is left unchanged.
type GuardError struct {
	Step   model.Step
	Errors []model.FieldError
}

func (e *GuardError) Error() string {
	if e == nil || len(e.Errors) == 0 {
		return ErrGuardFailed.Error()
	}
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.String())
	}
	return ErrGuardFailed.Error() + " at " + e.Step.String() + ": " + strings.Join(parts, "; ")
}

// Is matches ErrGuardFailed.
func (e *GuardError) Is(target error) bool {
	return target == ErrGuardFailed
}
