// Package wizard implements the registration step controller. A Controller
// owns one draft, enforces the page guards, and runs the submission with a
// Submitting sub-state that refuses re-entrant submits. Intents are
// serialized by a mutex so a controller can be shared between request
// handlers; the submission collaborator is called without the lock held.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-regwizard/pkg/attachment"
	"github.com/goliatone/go-regwizard/pkg/draft"
	"github.com/goliatone/go-regwizard/pkg/model"
	"github.com/goliatone/go-regwizard/pkg/render"
	"github.com/goliatone/go-regwizard/pkg/submission"
	"github.com/goliatone/go-regwizard/pkg/visibility"
)

// Controller drives one registration.
type Controller struct {
	mu sync.Mutex

	store     *draft.Store
	assembler *submission.Assembler
	submitter submission.Submitter
	observer  Observer
	logger    zerolog.Logger
	policy    *attachment.Policy
	newKey    func() string

	step         model.Step
	errs         render.ErrorMapping
	submitting   bool
	completed    bool
	confirmation string
	attemptKey   string
}

// New returns a controller at the role selection page with an empty draft.
func New(submitter submission.Submitter, options ...Option) (*Controller, error) {
	if submitter == nil {
		return nil, errors.New("wizard: submitter is required")
	}
	c := &Controller{
		submitter: submitter,
		observer:  nopObserver{},
		logger:    zerolog.Nop(),
		newKey:    uuid.NewString,
		step:      model.StepRoleSelection,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	if c.assembler == nil {
		c.assembler = submission.NewAssembler()
	}
	var storeOpts []draft.Option
	if c.policy != nil {
		storeOpts = append(storeOpts, draft.WithPolicy(*c.policy))
	}
	c.store = draft.New(storeOpts...)
	return c, nil
}

// Step returns the current page.
func (c *Controller) Step() model.Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

// Submitting reports whether a submission is in flight.
func (c *Controller) Submitting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitting
}

// Completed reports whether the registration was accepted.
func (c *Controller) Completed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.completed
}

// editable must be called with the lock held.
func (c *Controller) editable() error {
	if c.completed {
		return ErrCompleted
	}
	if c.submitting {
		return ErrSubmissionInFlight
	}
	return nil
}

// SelectRole chooses the account role. It is only allowed on the first page.
func (c *Controller) SelectRole(role model.Role) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.editable(); err != nil {
		return err
	}
	if !role.IsSet() {
		return fmt.Errorf("%w: %s", ErrInvalidRole, role)
	}
	if c.step != model.StepRoleSelection {
		return c.guardFailed([]model.FieldError{{
			Field:   model.FieldRole,
			Message: "can only be changed on the first step",
		}})
	}
	c.store.SetRole(role)
	c.errs = c.errs.Without(model.FieldRole)
	c.errs.Form = nil
	c.logger.Debug().Stringer("role", role).Msg("wizard: role selected")
	return nil
}

// Advance moves to the next page when its guard holds.
func (c *Controller) Advance() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.editable(); err != nil {
		return err
	}

	var violations []model.FieldError
	switch c.step {
	case model.StepRoleSelection:
		if !c.store.Role().IsSet() {
			violations = append(violations, model.FieldError{Field: model.FieldRole, Message: "choose student or teacher"})
		}
	case model.StepBasicInfo:
		violations = c.basicInfoViolations()
	default:
		return c.guardFailed([]model.FieldError{{Field: "form", Message: "this is the last step, submit the registration instead"}})
	}
	if len(violations) > 0 {
		return c.guardFailed(violations)
	}

	c.transition(c.step + 1)
	return nil
}

// Retreat moves to the previous page. Retreating from the first page is a
// no-op.
func (c *Controller) Retreat() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.editable(); err != nil {
		return err
	}
	if c.step == model.StepRoleSelection {
		return nil
	}
	c.transition(c.step - 1)
	return nil
}

func (c *Controller) transition(to model.Step) {
	from := c.step
	c.step = to
	c.errs = render.ErrorMapping{}
	c.observer.OnTransition(from, to)
	c.logger.Debug().Stringer("from", from).Stringer("to", to).Msg("wizard: step transition")
}

func (c *Controller) guardFailed(violations []model.FieldError) error {
	c.errs = render.MapFieldErrors(violations)
	c.logger.Info().
		Stringer("step", c.step).
		Int("violations", len(violations)).
		Msg("wizard: guard failed")
	return &GuardError{Step: c.step, Errors: violations}
}

func (c *Controller) basicInfoViolations() []model.FieldError {
	fields, _ := visibility.Resolve(c.store.Role(), model.StepBasicInfo)

	var violations []model.FieldError
	for _, field := range fields.Required() {
		value, err := c.store.Field(field.Key)
		if err != nil || strings.TrimSpace(value) == "" {
			violations = append(violations, model.FieldError{Field: field.Key, Message: "is required"})
		}
	}

	password, _ := c.store.Field(model.FieldPassword)
	confirm, _ := c.store.Field(model.FieldConfirmPassword)
	if strings.TrimSpace(confirm) != "" && password != confirm {
		violations = append(violations, model.FieldError{Field: model.FieldConfirmPassword, Message: "must match the password"})
	}
	return violations
}

// SetField overwrites a scalar field and clears its pending errors.
func (c *Controller) SetField(key model.FieldKey, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.editable(); err != nil {
		return err
	}
	if err := c.store.SetField(key, value); err != nil {
		return err
	}
	c.errs = c.errs.Without(key)
	return nil
}

// SetFields overwrites several scalar fields as one intent. Every key is
// checked first; an unknown key rejects the whole batch and nothing changes.
func (c *Controller) SetFields(values map[model.FieldKey]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.editable(); err != nil {
		return err
	}
	for key := range values {
		if !draft.IsScalar(key) {
			return fmt.Errorf("%w: %s", draft.ErrUnknownField, key)
		}
	}
	for _, key := range model.FieldKeys {
		value, ok := values[key]
		if !ok {
			continue
		}
		if err := c.store.SetField(key, value); err != nil {
			return err
		}
		c.errs = c.errs.Without(key)
	}
	return nil
}

// ToggleMember flips value in the named selection and reports whether it is
// selected afterwards.
func (c *Controller) ToggleMember(key model.FieldKey, value string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.editable(); err != nil {
		return false, err
	}
	selected, err := c.store.ToggleMember(key, value)
	if err != nil {
		return false, err
	}
	c.errs = c.errs.Without(key)
	return selected, nil
}

// SetAgreedToTerms records the terms confirmation.
func (c *Controller) SetAgreedToTerms(agreed bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.editable(); err != nil {
		return err
	}
	c.store.SetAgreedToTerms(agreed)
	c.errs = c.errs.Without(model.FieldAgreedToTerms)
	return nil
}

// AddAttachments stages a batch of files. Accepted files are appended in
// order; rejections are returned per file and also surfaced as attachment
// field errors.
func (c *Controller) AddAttachments(files []attachment.Candidate) ([]model.Attachment, []attachment.Rejection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.editable(); err != nil {
		return nil, nil, err
	}
	accepted, rejected, err := c.store.AddAttachments(files)
	if err != nil {
		return accepted, rejected, err
	}

	c.errs = c.errs.Without(model.FieldAttachments)
	var violations []model.FieldError
	for _, rejection := range rejected {
		c.observer.OnAttachmentRejected(rejection.Reason)
		c.logger.Info().
			Str("file", rejection.Name).
			Str("reason", string(rejection.Reason)).
			Msg("wizard: attachment rejected")
		violations = append(violations, model.FieldError{
			Field:   model.FieldAttachments,
			Message: c.rejectionMessage(rejection),
		})
	}
	if len(violations) > 0 {
		c.errs = c.errs.Merge(render.MapFieldErrors(violations))
	}
	return accepted, rejected, nil
}

func (c *Controller) rejectionMessage(r attachment.Rejection) string {
	switch r.Reason {
	case attachment.ReasonUnsupportedType:
		return fmt.Sprintf("%q is not a supported file type", r.Name)
	case attachment.ReasonTooLarge:
		limit := attachment.DefaultMaxBytes
		if c.policy != nil && c.policy.MaxBytes > 0 {
			limit = c.policy.MaxBytes
		}
		return fmt.Sprintf("%q exceeds the %d MB limit", r.Name, limit/(1024*1024))
	default:
		return fmt.Sprintf("%q could not be read", r.Name)
	}
}

// RemoveAttachment removes the attachment at its current index. A stale
// index is a presentation bug; it is logged and returned, never applied.
func (c *Controller) RemoveAttachment(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.editable(); err != nil {
		return err
	}
	if err := c.store.RemoveAttachment(index); err != nil {
		if errors.Is(err, draft.ErrIndexOutOfRange) {
			c.logger.Error().Err(err).Int("index", index).Msg("wizard: contract violation: stale attachment index")
		}
		return err
	}
	c.errs = c.errs.Without(model.FieldAttachments)
	return nil
}

// Review assembles the draft without submitting it so presentation can show
// what would be sent. Validation errors are recorded like a failed submit.
func (c *Controller) Review() (submission.Payload, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.editable(); err != nil {
		return submission.Payload{}, err
	}
	if c.step != model.StepRoleDetails {
		return submission.Payload{}, ErrNotAtFinalStep
	}
	payload, err := c.assembler.Assemble(c.store.Snapshot())
	if err != nil {
		var failure *submission.ValidationFailure
		if errors.As(err, &failure) {
			c.errs = render.MapFieldErrors(failure.Errors)
		}
		return submission.Payload{}, err
	}
	c.errs = render.ErrorMapping{}
	return payload, nil
}

// Submit assembles the draft and hands it to the submission collaborator. A
// validation failure leaves the wizard on the last page with the errors
// recorded. While the collaborator is working further submits fail with
// ErrSubmissionInFlight without reaching it. A collaborator failure releases
// the guard so the same draft can be retried under the same idempotency key.
func (c *Controller) Submit(ctx context.Context) (submission.Receipt, error) {
	c.mu.Lock()
	if c.completed {
		c.mu.Unlock()
		return submission.Receipt{}, ErrCompleted
	}
	if c.submitting {
		c.observer.OnSubmission(OutcomeInFlight)
		c.mu.Unlock()
		c.logger.Info().Msg("wizard: submit rejected, submission in flight")
		return submission.Receipt{}, ErrSubmissionInFlight
	}
	if c.step != model.StepRoleDetails {
		c.mu.Unlock()
		return submission.Receipt{}, ErrNotAtFinalStep
	}

	payload, err := c.assembler.Assemble(c.store.Snapshot())
	if err != nil {
		var failure *submission.ValidationFailure
		if errors.As(err, &failure) {
			c.errs = render.MapFieldErrors(failure.Errors)
		}
		c.observer.OnSubmission(OutcomeInvalid)
		c.logger.Info().Strs("fields", fieldNames(failure)).Msg("wizard: draft failed validation")
		c.mu.Unlock()
		return submission.Receipt{}, err
	}

	if c.attemptKey == "" {
		c.attemptKey = c.newKey()
	}
	key := c.attemptKey
	c.submitting = true
	c.errs = render.ErrorMapping{}
	c.mu.Unlock()

	c.logger.Debug().Str("idempotency_key", key).Stringer("role", payload.Role).Msg("wizard: submitting")
	receipt, err := c.submitter.Submit(ctx, payload, key)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitting = false

	if err != nil {
		failed := submission.AsFailed(err)
		mapping := render.MapErrorPayload(failed.Fields)
		if failed.Reason != "" {
			mapping.Form = render.MergeFormErrors([]string{failed.Reason}, mapping.Form...)
		}
		c.errs = mapping
		c.observer.OnSubmission(OutcomeFailed)
		c.logger.Warn().Err(err).Str("idempotency_key", key).Msg("wizard: submission failed")
		return submission.Receipt{}, failed
	}

	c.completed = true
	c.confirmation = receipt.ConfirmationID
	c.attemptKey = ""
	c.store.Reset()
	c.observer.OnSubmission(OutcomeSubmitted)
	c.logger.Info().Str("confirmation_id", receipt.ConfirmationID).Msg("wizard: registration submitted")
	return receipt, nil
}

func fieldNames(failure *submission.ValidationFailure) []string {
	if failure == nil {
		return nil
	}
	keys := failure.Fields()
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		out = append(out, string(key))
	}
	return out
}
