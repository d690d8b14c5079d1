package model

import (
	"fmt"
	"strings"
)

// Role is the account category chosen on the first wizard page.
type Role int

const (
	RoleUnset Role = iota
	RoleStudent
	RoleTeacher
)

// String returns the wire name of the role.
func (r Role) String() string {
	switch r {
	case RoleStudent:
		return "student"
	case RoleTeacher:
		return "teacher"
	default:
		return "unset"
	}
}

// IsSet reports whether a concrete role was chosen.
func (r Role) IsSet() bool {
	return r == RoleStudent || r == RoleTeacher
}

// ParseRole converts a wire name into a Role. Empty input yields RoleUnset.
func ParseRole(raw string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return RoleUnset, nil
	case "student":
		return RoleStudent, nil
	case "teacher":
		return RoleTeacher, nil
	default:
		return RoleUnset, fmt.Errorf("model: unknown role %q", raw)
	}
}

// MarshalText encodes the role using its wire name.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText decodes a wire name; "unset" is accepted for symmetry.
func (r *Role) UnmarshalText(text []byte) error {
	if strings.EqualFold(strings.TrimSpace(string(text)), "unset") {
		*r = RoleUnset
		return nil
	}
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Step is one page of the wizard.
type Step int

const (
	StepRoleSelection Step = 1
	StepBasicInfo     Step = 2
	StepRoleDetails   Step = 3
)

// TotalSteps is the number of pages in the wizard.
const TotalSteps = 3

// Valid reports whether the step is one of the wizard pages.
func (s Step) Valid() bool {
	return s >= StepRoleSelection && s <= StepRoleDetails
}

func (s Step) String() string {
	switch s {
	case StepRoleSelection:
		return "role_selection"
	case StepBasicInfo:
		return "basic_info"
	case StepRoleDetails:
		return "role_details"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// FieldKey identifies a value collected by the wizard.
type FieldKey string

const (
	FieldFirstName       FieldKey = "firstName"
	FieldLastName        FieldKey = "lastName"
	FieldEmail           FieldKey = "email"
	FieldPassword        FieldKey = "password"
	FieldConfirmPassword FieldKey = "confirmPassword"
	FieldPhone           FieldKey = "phone"
	FieldLocation        FieldKey = "location"

	FieldInterests     FieldKey = "interests"
	FieldLearningGoals FieldKey = "learningGoals"

	FieldSubjects             FieldKey = "subjects"
	FieldDescription          FieldKey = "description"
	FieldEducation            FieldKey = "education"
	FieldTeachingExperience   FieldKey = "teachingExperienceBand"
	FieldHourlyRate           FieldKey = "hourlyRate"
	FieldAdditionalExperience FieldKey = "additionalExperience"
	FieldAttachments          FieldKey = "attachments"

	FieldAgreedToTerms FieldKey = "agreedToTerms"

	// FieldRole names the role choice in errors. It is not a draft field.
	FieldRole FieldKey = "role"
)

// ExperienceBand is one of the fixed teaching experience ranges.
type ExperienceBand string

const (
	ExperienceUnderOne    ExperienceBand = "0-1"
	ExperienceOneToTwo    ExperienceBand = "1-2"
	ExperienceThreeToFive ExperienceBand = "3-5"
	ExperienceFiveToTen   ExperienceBand = "5-10"
	ExperienceOverTen     ExperienceBand = "10+"
)

// ExperienceBands lists the bands in display order.
var ExperienceBands = []ExperienceBand{
	ExperienceUnderOne,
	ExperienceOneToTwo,
	ExperienceThreeToFive,
	ExperienceFiveToTen,
	ExperienceOverTen,
}

// Label returns the human readable description of the band.
func (b ExperienceBand) Label() string {
	switch b {
	case ExperienceUnderOne:
		return "less than 1 year"
	case ExperienceOverTen:
		return "10+ years"
	case "":
		return ""
	default:
		return string(b) + " years"
	}
}

// Valid reports whether the band is one of ExperienceBands.
func (b ExperienceBand) Valid() bool {
	for _, band := range ExperienceBands {
		if band == b {
			return true
		}
	}
	return false
}

// MimeCategory is the coarse file classification derived from the extension.
type MimeCategory string

const (
	MimeImage    MimeCategory = "image"
	MimeDocument MimeCategory = "document"
	MimeOther    MimeCategory = "other"
)

// FieldError is a single field-level violation.
type FieldError struct {
	Field   FieldKey `json:"field"`
	Message string   `json:"message"`
}

func (e FieldError) String() string {
	return string(e.Field) + ": " + e.Message
}

// DefaultSubjects is the catalog offered for interests and subjects.
var DefaultSubjects = []string{
	"Mathematics",
	"Physics",
	"Chemistry",
	"Biology",
	"English",
	"Literature",
	"History",
	"Geography",
	"Economics",
	"Computer Science",
	"Programming",
	"Piano",
	"Guitar",
	"Violin",
	"Art",
	"Photography",
	"Languages",
	"French",
	"Spanish",
	"Mandarin",
	"Japanese",
	"Korean",
}

// FieldKeys lists every field key in wizard order, followed by the terms
// confirmation.
var FieldKeys = []FieldKey{
	FieldFirstName,
	FieldLastName,
	FieldEmail,
	FieldPassword,
	FieldConfirmPassword,
	FieldPhone,
	FieldLocation,
	FieldInterests,
	FieldLearningGoals,
	FieldSubjects,
	FieldDescription,
	FieldEducation,
	FieldTeachingExperience,
	FieldHourlyRate,
	FieldAdditionalExperience,
	FieldAttachments,
	FieldAgreedToTerms,
}
