// Package submission turns a complete registration draft into the payload
// handed to the submission collaborator. Assembly validates the whole draft in
// one pass and reports every violation instead of stopping at the first one.
package submission

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/goliatone/go-regwizard/pkg/model"
	"github.com/goliatone/go-regwizard/pkg/visibility"
)

const (
	// DefaultMinHourlyRate and DefaultMaxHourlyRate bound the teacher rate.
	DefaultMinHourlyRate = 10
	DefaultMaxHourlyRate = 200
)

// plainDecimal is the accepted rate notation: digits with an optional
// fractional part, no sign, exponent, base prefix or digit separators.
var plainDecimal = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// Assembler validates drafts and builds payloads. It holds no draft state and
// is safe for concurrent use once constructed.
type Assembler struct {
	validate *validator.Validate
	subjects map[string]struct{}
	rateMin  float64
	rateMax  float64
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithSubjectCatalog restricts interests and subjects to catalog. An empty
// catalog accepts any subject name.
func WithSubjectCatalog(catalog []string) Option {
	return func(a *Assembler) {
		a.subjects = make(map[string]struct{}, len(catalog))
		for _, subject := range catalog {
			if trimmed := strings.TrimSpace(subject); trimmed != "" {
				a.subjects[trimmed] = struct{}{}
			}
		}
	}
}

// WithHourlyRateRange overrides the accepted hourly rate bounds (inclusive).
func WithHourlyRateRange(minRate, maxRate float64) Option {
	return func(a *Assembler) {
		if minRate > 0 && maxRate >= minRate {
			a.rateMin, a.rateMax = minRate, maxRate
		}
	}
}

// NewAssembler returns an assembler using the default subject catalog and
// rate range.
func NewAssembler(options ...Option) *Assembler {
	a := &Assembler{
		rateMin: DefaultMinHourlyRate,
		rateMax: DefaultMaxHourlyRate,
	}
	WithSubjectCatalog(model.DefaultSubjects)(a)
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(a)
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("subject", a.offeredSubject)
	a.validate = v
	return a
}

// HourlyRateRange reports the accepted rate bounds.
func (a *Assembler) HourlyRateRange() (float64, float64) {
	return a.rateMin, a.rateMax
}

func (a *Assembler) offeredSubject(fl validator.FieldLevel) bool {
	if len(a.subjects) == 0 {
		return true
	}
	_, ok := a.subjects[fl.Field().String()]
	return ok
}

type basicRules struct {
	Email           string `json:"email" validate:"omitempty,email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword" validate:"omitempty,eqfield=Password"`
}

type studentRules struct {
	Interests []string `json:"interests" validate:"omitempty,dive,subject"`
}

type teacherRules struct {
	Subjects           []string `json:"subjects" validate:"omitempty,dive,subject"`
	TeachingExperience string   `json:"teachingExperienceBand" validate:"omitempty,oneof=0-1 1-2 3-5 5-10 10+"`
}

// Assemble validates draft against the required fields of its role and the
// format rules, returning either a payload or a *ValidationFailure listing all
// violations.
func (a *Assembler) Assemble(draft model.Draft) (Payload, error) {
	d := trimDraft(draft)
	var violations []model.FieldError
	missing := make(map[model.FieldKey]bool)

	required, err := visibility.RequiredFor(d.Role)
	if err != nil {
		violations = append(violations, model.FieldError{Field: model.FieldRole, Message: "choose student or teacher"})
		basic, _ := visibility.Resolve(d.Role, model.StepBasicInfo)
		required = basic.Required()
	}

	for _, field := range required {
		if !present(d, field) {
			missing[field.Key] = true
			violations = append(violations, model.FieldError{Field: field.Key, Message: requiredMessage(field)})
		}
	}

	violations = append(violations, a.check(basicRules{
		Email:           d.Basic.Email,
		Password:        d.Basic.Password,
		ConfirmPassword: d.Basic.ConfirmPassword,
	})...)

	var rate float64
	switch d.Role {
	case model.RoleStudent:
		violations = append(violations, a.check(studentRules{Interests: d.Student.Interests})...)
	case model.RoleTeacher:
		violations = append(violations, a.check(teacherRules{
			Subjects:           d.Teacher.Subjects,
			TeachingExperience: string(d.Teacher.TeachingExperience),
		})...)
		if !missing[model.FieldHourlyRate] {
			parsed, fe := a.parseRate(d.Teacher.HourlyRate)
			if fe != nil {
				violations = append(violations, *fe)
			}
			rate = parsed
		}
	}

	if !d.AgreedToTerms {
		violations = append(violations, model.FieldError{Field: model.FieldAgreedToTerms, Message: "must be accepted"})
	}

	if len(violations) > 0 {
		sortViolations(violations, d.Role)
		return Payload{}, &ValidationFailure{Errors: violations}
	}
	return build(d, rate), nil
}

// ParseHourlyRate parses and range-checks a raw rate.
func (a *Assembler) ParseHourlyRate(raw string) (float64, error) {
	rate, fe := a.parseRate(strings.TrimSpace(raw))
	if fe != nil {
		return 0, errors.New(fe.Message)
	}
	return rate, nil
}

func (a *Assembler) parseRate(raw string) (float64, *model.FieldError) {
	if !plainDecimal.MatchString(raw) {
		return 0, &model.FieldError{Field: model.FieldHourlyRate, Message: "must be a number"}
	}
	rate, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0, &model.FieldError{Field: model.FieldHourlyRate, Message: "must be a number"}
	}
	if rate < a.rateMin || rate > a.rateMax {
		return 0, &model.FieldError{
			Field:   model.FieldHourlyRate,
			Message: fmt.Sprintf("must be between %s and %s", formatRate(a.rateMin), formatRate(a.rateMax)),
		}
	}
	return rate, nil
}

func (a *Assembler) check(rules any) []model.FieldError {
	err := a.validate.Struct(rules)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []model.FieldError{{Field: "form", Message: err.Error()}}
	}
	out := make([]model.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, model.FieldError{Field: fieldKey(fe), Message: formatMessage(fe)})
	}
	return out
}

func fieldKey(fe validator.FieldError) model.FieldKey {
	name, _, _ := strings.Cut(fe.Field(), "[")
	return model.FieldKey(name)
}

func formatMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "email":
		return "must be a valid email address"
	case "eqfield":
		return "must match the password"
	case "oneof":
		return "must be one of " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "subject":
		return fmt.Sprintf("%q is not an offered subject", fe.Value())
	default:
		return "is invalid"
	}
}

func requiredMessage(field visibility.Field) string {
	if field.Kind == visibility.KindMultiSelect {
		if field.MinItems > 1 {
			return fmt.Sprintf("select at least %d", field.MinItems)
		}
		return "select at least one"
	}
	return "is required"
}

func present(d model.Draft, field visibility.Field) bool {
	switch field.Key {
	case model.FieldInterests:
		return len(d.Student.Interests) >= max(field.MinItems, 1)
	case model.FieldSubjects:
		return len(d.Teacher.Subjects) >= max(field.MinItems, 1)
	case model.FieldAttachments:
		return len(d.Attachments) > 0
	}
	return strings.TrimSpace(scalar(d, field.Key)) != ""
}

func scalar(d model.Draft, key model.FieldKey) string {
	switch key {
	case model.FieldFirstName:
		return d.Basic.FirstName
	case model.FieldLastName:
		return d.Basic.LastName
	case model.FieldEmail:
		return d.Basic.Email
	case model.FieldPassword:
		return d.Basic.Password
	case model.FieldConfirmPassword:
		return d.Basic.ConfirmPassword
	case model.FieldPhone:
		return d.Basic.Phone
	case model.FieldLocation:
		return d.Basic.Location
	case model.FieldLearningGoals:
		return d.Student.LearningGoals
	case model.FieldDescription:
		return d.Teacher.Description
	case model.FieldEducation:
		return d.Teacher.Education
	case model.FieldTeachingExperience:
		return string(d.Teacher.TeachingExperience)
	case model.FieldHourlyRate:
		return d.Teacher.HourlyRate
	case model.FieldAdditionalExperience:
		return d.Teacher.AdditionalExperience
	}
	return ""
}

// trimDraft normalizes whitespace and strips markup from free text so the
// required checks see the values the payload will carry. Passwords are kept
// verbatim.
func trimDraft(in model.Draft) model.Draft {
	d := in.Clone()
	d.Basic.FirstName = strings.TrimSpace(d.Basic.FirstName)
	d.Basic.LastName = strings.TrimSpace(d.Basic.LastName)
	d.Basic.Email = strings.TrimSpace(d.Basic.Email)
	d.Basic.Phone = strings.TrimSpace(d.Basic.Phone)
	d.Basic.Location = strings.TrimSpace(d.Basic.Location)
	d.Student.LearningGoals = plainText(d.Student.LearningGoals)
	d.Teacher.Description = plainText(d.Teacher.Description)
	d.Teacher.Education = plainText(d.Teacher.Education)
	d.Teacher.TeachingExperience = model.ExperienceBand(strings.TrimSpace(string(d.Teacher.TeachingExperience)))
	d.Teacher.HourlyRate = strings.TrimSpace(d.Teacher.HourlyRate)
	d.Teacher.AdditionalExperience = plainText(d.Teacher.AdditionalExperience)
	return d
}

func build(d model.Draft, rate float64) Payload {
	p := Payload{
		Role: d.Role,
		Basic: BasicInfo{
			FirstName: d.Basic.FirstName,
			LastName:  d.Basic.LastName,
			Email:     d.Basic.Email,
			Password:  d.Basic.Password,
			Phone:     d.Basic.Phone,
			Location:  d.Basic.Location,
		},
		Attachments: []AttachmentMeta{},
	}
	switch d.Role {
	case model.RoleStudent:
		p.Student = &StudentDetails{
			Interests:     sortedSet(d.Student.Interests),
			LearningGoals: d.Student.LearningGoals,
		}
	case model.RoleTeacher:
		p.Teacher = &TeacherDetails{
			Subjects:             sortedSet(d.Teacher.Subjects),
			Description:          d.Teacher.Description,
			Education:            d.Teacher.Education,
			TeachingExperience:   d.Teacher.TeachingExperience,
			HourlyRate:           rate,
			AdditionalExperience: d.Teacher.AdditionalExperience,
		}
		for _, item := range d.VisibleAttachments() {
			p.Attachments = append(p.Attachments, AttachmentMeta{
				Name:         item.DisplayName,
				SizeBytes:    item.SizeBytes,
				MimeCategory: item.MimeCategory,
				Ref:          item.Ref,
			})
		}
	}
	return p
}

func sortedSet(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}

func sortViolations(violations []model.FieldError, role model.Role) {
	order := make(map[model.FieldKey]int)
	keys := []model.FieldKey{model.FieldRole}
	if basic, err := visibility.Resolve(role, model.StepBasicInfo); err == nil {
		keys = append(keys, basic.Keys()...)
	}
	if details, err := visibility.Resolve(role, model.StepRoleDetails); err == nil {
		keys = append(keys, details.Keys()...)
	}
	keys = append(keys, model.FieldAgreedToTerms)
	for i, key := range keys {
		order[key] = i
	}
	rank := func(key model.FieldKey) int {
		if idx, ok := order[key]; ok {
			return idx
		}
		return len(order)
	}
	sort.SliceStable(violations, func(i, j int) bool {
		return rank(violations[i].Field) < rank(violations[j].Field)
	})
}

func formatRate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
