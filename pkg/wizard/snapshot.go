package wizard

import (
	"github.com/goliatone/go-regwizard/pkg/model"
	"github.com/goliatone/go-regwizard/pkg/render"
	"github.com/goliatone/go-regwizard/pkg/visibility"
)

// Snapshot is the read-only view handed to presentation after every intent.
// Password values are never included.
type Snapshot struct {
	Step           model.Step                  `json:"step"`
	TotalSteps     int                         `json:"totalSteps"`
	Role           model.Role                  `json:"role"`
	VisibleFields  visibility.FieldSet         `json:"visibleFields"`
	Values         map[model.FieldKey]string   `json:"values"`
	Selections     map[model.FieldKey][]string `json:"selections"`
	Attachments    []model.Attachment          `json:"attachments"`
	AgreedToTerms  bool                        `json:"agreedToTerms"`
	Errors         render.ErrorMapping         `json:"errors"`
	Submitting     bool                        `json:"submitting"`
	Completed      bool                        `json:"completed"`
	ConfirmationID string                      `json:"confirmationId,omitempty"`
}

// Snapshot returns the current view. The result shares no memory with the
// controller.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Step:           c.step,
		TotalSteps:     model.TotalSteps,
		Role:           c.store.Role(),
		Values:         map[model.FieldKey]string{},
		Selections:     map[model.FieldKey][]string{},
		Attachments:    []model.Attachment{},
		Errors:         c.errs.Merge(render.ErrorMapping{}),
		Submitting:     c.submitting,
		Completed:      c.completed,
		ConfirmationID: c.confirmation,
	}
	if c.completed {
		return snap
	}

	fields, err := visibility.Resolve(snap.Role, c.step)
	if err != nil {
		// Unreachable through the guarded flow: step three needs a role.
		c.logger.Error().Err(err).Stringer("step", c.step).Msg("wizard: cannot resolve visible fields")
		return snap
	}
	snap.VisibleFields = fields

	for _, field := range fields {
		switch field.Kind {
		case visibility.KindPassword:
			continue
		case visibility.KindMultiSelect:
			members, _ := c.store.Members(field.Key)
			if members == nil {
				members = []string{}
			}
			snap.Selections[field.Key] = members
		case visibility.KindFiles:
			snap.Attachments = append(snap.Attachments, c.store.Attachments()...)
		default:
			if value, err := c.store.Field(field.Key); err == nil {
				snap.Values[field.Key] = value
			}
		}
	}
	if c.step == model.StepRoleDetails {
		snap.AgreedToTerms = c.store.AgreedToTerms()
	}
	return snap
}
