// Package draft owns the mutable registration draft. Edits are never
// validated here: SetField overwrites unconditionally so transiently invalid
// input (half-typed emails, partial rates) is always representable. Gating
// and assembly decide what is acceptable.
package draft

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-regwizard/pkg/attachment"
	"github.com/goliatone/go-regwizard/pkg/model"
)

var (
	// ErrUnknownField is returned for keys that are not scalar draft fields.
	ErrUnknownField = errors.New("draft: unknown field")
	// ErrNotASet is returned when toggling a field that is not multi-valued.
	ErrNotASet = errors.New("draft: field is not a set")
	// ErrIndexOutOfRange is returned when removing a stale attachment index.
	ErrIndexOutOfRange = errors.New("draft: attachment index out of range")
	// ErrAttachmentsNotAllowed is returned when staging files without the
	// teacher role.
	ErrAttachmentsNotAllowed = errors.New("draft: attachments require the teacher role")
)

// IndexError carries the offending index and the list length at the time of
// the call.
type IndexError struct {
	Index int
	Len   int
}

func (e IndexError) Error() string {
	return fmt.Sprintf("draft: attachment index %d out of range [0,%d)", e.Index, e.Len)
}

// Is matches ErrIndexOutOfRange.
func (e IndexError) Is(target error) bool {
	return target == ErrIndexOutOfRange
}

// Store holds one draft. It is not safe for concurrent use; the wizard
// controller serializes access.
type Store struct {
	draft  model.Draft
	policy attachment.Policy
}

// Option configures a Store.
type Option func(*Store)

// WithPolicy overrides the attachment policy.
func WithPolicy(policy attachment.Policy) Option {
	return func(s *Store) {
		s.policy = policy
	}
}

// New returns an empty draft store.
func New(options ...Option) *Store {
	s := &Store{policy: attachment.DefaultPolicy()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

// Role returns the active role.
func (s *Store) Role() model.Role {
	return s.draft.Role
}

// SetRole switches the active role. Data entered for the other role, including
// attachments, is kept but no longer visible.
func (s *Store) SetRole(role model.Role) {
	s.draft.Role = role
}

// SetField overwrites a scalar field.
func (s *Store) SetField(key model.FieldKey, value string) error {
	target := s.scalar(key)
	if target == nil {
		return fmt.Errorf("%w: %s", ErrUnknownField, key)
	}
	*target = value
	return nil
}

// Field returns the current value of a scalar field.
func (s *Store) Field(key model.FieldKey) (string, error) {
	target := s.scalar(key)
	if target == nil {
		return "", fmt.Errorf("%w: %s", ErrUnknownField, key)
	}
	return *target, nil
}

// IsScalar reports whether key names a single-valued text field accepted by
// SetField.
func IsScalar(key model.FieldKey) bool {
	var s Store
	return s.scalar(key) != nil
}

func (s *Store) scalar(key model.FieldKey) *string {
	switch key {
	case model.FieldFirstName:
		return &s.draft.Basic.FirstName
	case model.FieldLastName:
		return &s.draft.Basic.LastName
	case model.FieldEmail:
		return &s.draft.Basic.Email
	case model.FieldPassword:
		return &s.draft.Basic.Password
	case model.FieldConfirmPassword:
		return &s.draft.Basic.ConfirmPassword
	case model.FieldPhone:
		return &s.draft.Basic.Phone
	case model.FieldLocation:
		return &s.draft.Basic.Location
	case model.FieldLearningGoals:
		return &s.draft.Student.LearningGoals
	case model.FieldDescription:
		return &s.draft.Teacher.Description
	case model.FieldEducation:
		return &s.draft.Teacher.Education
	case model.FieldTeachingExperience:
		return (*string)(&s.draft.Teacher.TeachingExperience)
	case model.FieldHourlyRate:
		return &s.draft.Teacher.HourlyRate
	case model.FieldAdditionalExperience:
		return &s.draft.Teacher.AdditionalExperience
	default:
		return nil
	}
}

// ToggleMember removes value from the named set when present and inserts it
// otherwise. It reports whether value is a member after the call. Toggling the
// same value twice restores the previous set.
func (s *Store) ToggleMember(key model.FieldKey, value string) (bool, error) {
	set := s.set(key)
	if set == nil {
		return false, fmt.Errorf("%w: %s", ErrNotASet, key)
	}
	for i, member := range *set {
		if member == value {
			*set = append((*set)[:i:i], (*set)[i+1:]...)
			return false, nil
		}
	}
	*set = append(*set, value)
	return true, nil
}

// Members returns a copy of the named set.
func (s *Store) Members(key model.FieldKey) ([]string, error) {
	set := s.set(key)
	if set == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotASet, key)
	}
	return append([]string(nil), (*set)...), nil
}

func (s *Store) set(key model.FieldKey) *[]string {
	switch key {
	case model.FieldInterests:
		return &s.draft.Student.Interests
	case model.FieldSubjects:
		return &s.draft.Teacher.Subjects
	default:
		return nil
	}
}

// SetAgreedToTerms records the terms confirmation.
func (s *Store) SetAgreedToTerms(agreed bool) {
	s.draft.AgreedToTerms = agreed
}

// AgreedToTerms reports the terms confirmation.
func (s *Store) AgreedToTerms() bool {
	return s.draft.AgreedToTerms
}

// AddAttachments validates each candidate and appends the accepted ones in
// order. Rejected candidates are reported individually and do not stop the
// batch. Staging requires the teacher role.
func (s *Store) AddAttachments(files []attachment.Candidate) ([]model.Attachment, []attachment.Rejection, error) {
	if s.draft.Role != model.RoleTeacher {
		return nil, nil, ErrAttachmentsNotAllowed
	}
	var (
		accepted []model.Attachment
		rejected []attachment.Rejection
	)
	for i, file := range files {
		item, err := s.policy.Accept(file)
		if err != nil {
			var rejection attachment.Rejection
			if !errors.As(err, &rejection) {
				return accepted, rejected, err
			}
			rejection.Index = i
			rejected = append(rejected, rejection)
			continue
		}
		s.draft.Attachments = append(s.draft.Attachments, item)
		accepted = append(accepted, item)
	}
	return accepted, rejected, nil
}

// RemoveAttachment removes the attachment at index; later attachments shift
// down by one. Indexes refer to current positions of the visible list, which
// is empty unless the teacher role is active.
func (s *Store) RemoveAttachment(index int) error {
	visible := len(s.draft.Attachments)
	if s.draft.Role != model.RoleTeacher {
		visible = 0
	}
	if index < 0 || index >= visible {
		return IndexError{Index: index, Len: visible}
	}
	s.draft.Attachments = append(s.draft.Attachments[:index:index], s.draft.Attachments[index+1:]...)
	return nil
}

// Attachments returns the attachments visible for the active role.
func (s *Store) Attachments() []model.Attachment {
	return s.draft.VisibleAttachments()
}

// Snapshot returns a deep copy of the draft.
func (s *Store) Snapshot() model.Draft {
	return s.draft.Clone()
}

// Reset discards the draft.
func (s *Store) Reset() {
	s.draft = model.Draft{}
}
