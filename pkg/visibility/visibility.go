// Package visibility resolves which fields a wizard page shows for a role.
// Resolution is a pure function of (role, step); the result also records
// whether each field is required so gating and assembly share one source of
// truth with the renderers.
package visibility

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-regwizard/pkg/model"
)

var (
	// ErrUnknownRole is returned when role details are requested without a role.
	ErrUnknownRole = errors.New("visibility: role details require a role")
	// ErrInvalidStep is returned for steps outside the wizard.
	ErrInvalidStep = errors.New("visibility: invalid step")
)

// Kind hints how a renderer should collect a field.
type Kind string

const (
	KindText        Kind = "text"
	KindEmail       Kind = "email"
	KindPassword    Kind = "password"
	KindPhone       Kind = "phone"
	KindTextArea    Kind = "textarea"
	KindMultiSelect Kind = "multiselect"
	KindSelect      Kind = "select"
	KindNumber      Kind = "number"
	KindFiles       Kind = "files"
)

// Field describes one visible field.
type Field struct {
	Key      model.FieldKey `json:"key"`
	Label    string         `json:"label"`
	Kind     Kind           `json:"kind"`
	Required bool           `json:"required"`
	// MinItems is the minimum selection size for multiselect fields.
	MinItems int `json:"minItems,omitempty"`
}

// FieldSet is the ordered list of fields for a (role, step) pair.
type FieldSet []Field

// Contains reports whether key is part of the set.
func (s FieldSet) Contains(key model.FieldKey) bool {
	_, ok := s.Lookup(key)
	return ok
}

// Lookup returns the descriptor for key.
func (s FieldSet) Lookup(key model.FieldKey) (Field, bool) {
	for _, field := range s {
		if field.Key == key {
			return field, true
		}
	}
	return Field{}, false
}

// Keys returns the field keys in display order.
func (s FieldSet) Keys() []model.FieldKey {
	if len(s) == 0 {
		return nil
	}
	out := make([]model.FieldKey, 0, len(s))
	for _, field := range s {
		out = append(out, field.Key)
	}
	return out
}

// Required returns the subset of required fields.
func (s FieldSet) Required() FieldSet {
	var out FieldSet
	for _, field := range s {
		if field.Required {
			out = append(out, field)
		}
	}
	return out
}

var basicFields = FieldSet{
	{Key: model.FieldFirstName, Label: "First name", Kind: KindText, Required: true},
	{Key: model.FieldLastName, Label: "Last name", Kind: KindText, Required: true},
	{Key: model.FieldEmail, Label: "Email address", Kind: KindEmail, Required: true},
	{Key: model.FieldPassword, Label: "Password", Kind: KindPassword, Required: true},
	{Key: model.FieldConfirmPassword, Label: "Confirm password", Kind: KindPassword, Required: true},
	{Key: model.FieldPhone, Label: "Phone number", Kind: KindPhone},
	{Key: model.FieldLocation, Label: "Location", Kind: KindText, Required: true},
}

var studentFields = FieldSet{
	{Key: model.FieldInterests, Label: "Subjects you want to learn", Kind: KindMultiSelect, Required: true, MinItems: 1},
	{Key: model.FieldLearningGoals, Label: "Learning goals", Kind: KindTextArea},
}

var teacherFields = FieldSet{
	{Key: model.FieldSubjects, Label: "Subjects you teach", Kind: KindMultiSelect, Required: true, MinItems: 1},
	{Key: model.FieldDescription, Label: "Teaching description", Kind: KindTextArea, Required: true},
	{Key: model.FieldEducation, Label: "Education", Kind: KindTextArea, Required: true},
	{Key: model.FieldTeachingExperience, Label: "Teaching experience", Kind: KindSelect, Required: true},
	{Key: model.FieldHourlyRate, Label: "Hourly rate (USD)", Kind: KindNumber, Required: true},
	{Key: model.FieldAdditionalExperience, Label: "Additional experience", Kind: KindTextArea},
	{Key: model.FieldAttachments, Label: "Certificates and documents", Kind: KindFiles},
}

// Resolve returns the fields shown for role at step. Step one has no fields
// (only the role choice); step two is identical for every role; step three
// depends on the role and fails with ErrUnknownRole when none is set. The
// returned set is a fresh copy.
func Resolve(role model.Role, step model.Step) (FieldSet, error) {
	switch step {
	case model.StepRoleSelection:
		return FieldSet{}, nil
	case model.StepBasicInfo:
		return clone(basicFields), nil
	case model.StepRoleDetails:
		switch role {
		case model.RoleStudent:
			return clone(studentFields), nil
		case model.RoleTeacher:
			return clone(teacherFields), nil
		default:
			return nil, ErrUnknownRole
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidStep, int(step))
	}
}

// RequiredFor returns the required fields a complete draft must satisfy for
// role: the basic information plus the role details.
func RequiredFor(role model.Role) (FieldSet, error) {
	details, err := Resolve(role, model.StepRoleDetails)
	if err != nil {
		return nil, err
	}
	out := basicFields.Required()
	return append(out, details.Required()...), nil
}

func clone(in FieldSet) FieldSet {
	return append(FieldSet(nil), in...)
}
