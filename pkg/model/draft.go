package model

// BasicInfo holds the step-two fields shared by both roles.
type BasicInfo struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Phone           string `json:"phone"`
	Location        string `json:"location"`
}

// StudentInfo holds the student specific fields.
type StudentInfo struct {
	Interests     []string `json:"interests"`
	LearningGoals string   `json:"learningGoals"`
}

// TeacherInfo holds the teacher specific fields. HourlyRate keeps the raw
// text entered by the user; it is parsed when the draft is gated or assembled.
type TeacherInfo struct {
	Subjects             []string       `json:"subjects"`
	Description          string         `json:"description"`
	Education            string         `json:"education"`
	TeachingExperience   ExperienceBand `json:"teachingExperienceBand"`
	HourlyRate           string         `json:"hourlyRate"`
	AdditionalExperience string         `json:"additionalExperience"`
}

// Attachment is the metadata of a staged file. Ref is an opaque handle owned by
// the presentation layer that locates the raw bytes; the wizard never reads it.
type Attachment struct {
	DisplayName  string       `json:"displayName"`
	SizeBytes    int64        `json:"sizeBytes"`
	MimeCategory MimeCategory `json:"mimeCategory"`
	Ref          string       `json:"ref,omitempty"`
}

// Draft is the in-progress registration record.
type Draft struct {
	Role          Role         `json:"role"`
	Basic         BasicInfo    `json:"basicInfo"`
	Student       StudentInfo  `json:"studentInfo"`
	Teacher       TeacherInfo  `json:"teacherInfo"`
	Attachments   []Attachment `json:"attachments"`
	AgreedToTerms bool         `json:"agreedToTerms"`
}

// Clone returns a deep copy of the draft.
func (d Draft) Clone() Draft {
	out := d
	out.Student.Interests = cloneStrings(d.Student.Interests)
	out.Teacher.Subjects = cloneStrings(d.Teacher.Subjects)
	if d.Attachments != nil {
		out.Attachments = append([]Attachment(nil), d.Attachments...)
	}
	return out
}

// VisibleAttachments returns the attachments relevant to the active role.
// Attachments only apply to teachers; they stay in memory for other roles but
// are never exposed.
func (d Draft) VisibleAttachments() []Attachment {
	if d.Role != RoleTeacher || len(d.Attachments) == 0 {
		return nil
	}
	return append([]Attachment(nil), d.Attachments...)
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}
