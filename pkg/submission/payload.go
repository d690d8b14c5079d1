package submission

import "github.com/goliatone/go-regwizard/pkg/model"

// BasicInfo is the submitted copy of the shared fields. The password
// confirmation is a wizard concern and is not transmitted.
type BasicInfo struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Phone     string `json:"phone,omitempty"`
	Location  string `json:"location"`
}

// StudentDetails is the student info block.
type StudentDetails struct {
	Interests     []string `json:"interests"`
	LearningGoals string   `json:"learningGoals,omitempty"`
}

// TeacherDetails is the teacher info block with the parsed hourly rate.
type TeacherDetails struct {
	Subjects             []string             `json:"subjects"`
	Description          string               `json:"description"`
	Education            string               `json:"education"`
	TeachingExperience   model.ExperienceBand `json:"teachingExperienceBand"`
	HourlyRate           float64              `json:"hourlyRate"`
	AdditionalExperience string               `json:"additionalExperience,omitempty"`
}

// AttachmentMeta references a staged file. Raw bytes are located through Ref
// by the submission collaborator; they are never embedded.
type AttachmentMeta struct {
	Name         string             `json:"name"`
	SizeBytes    int64              `json:"sizeBytes"`
	MimeCategory model.MimeCategory `json:"mimeCategory"`
	Ref          string             `json:"ref,omitempty"`
}

// Payload is the validated registration handed to a Submitter. Exactly one of
// Student and Teacher is set, matching Role. Assemble returns a value that
// shares no memory with the draft; use Clone before handing a payload to code
// that may mutate it.
type Payload struct {
	Role        model.Role       `json:"role"`
	Basic       BasicInfo        `json:"basicInfo"`
	Student     *StudentDetails  `json:"studentInfo,omitempty"`
	Teacher     *TeacherDetails  `json:"teacherInfo,omitempty"`
	Attachments []AttachmentMeta `json:"attachments"`
}

// Clone returns a deep copy of the payload.
func (p Payload) Clone() Payload {
	out := p
	if p.Student != nil {
		student := *p.Student
		student.Interests = append([]string(nil), p.Student.Interests...)
		out.Student = &student
	}
	if p.Teacher != nil {
		teacher := *p.Teacher
		teacher.Subjects = append([]string(nil), p.Teacher.Subjects...)
		out.Teacher = &teacher
	}
	out.Attachments = append([]AttachmentMeta{}, p.Attachments...)
	return out
}
