package submission_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-regwizard/pkg/model"
	"github.com/goliatone/go-regwizard/pkg/submission"
)

func basicDraft(role model.Role) model.Draft {
	return model.Draft{
		Role: role,
		Basic: model.BasicInfo{
			FirstName:       "Ada",
			LastName:        "Lovelace",
			Email:           "ada@example.com",
			Password:        "s3cret!",
			ConfirmPassword: "s3cret!",
			Location:        "Jakarta, Indonesia",
		},
		AgreedToTerms: true,
	}
}

func teacherDraft() model.Draft {
	d := basicDraft(model.RoleTeacher)
	d.Teacher = model.TeacherInfo{
		Subjects:           []string{"Piano", "Mathematics"},
		Description:        "<b>Patient</b> tutor",
		Education:          "BSc Mathematics",
		TeachingExperience: model.ExperienceThreeToFive,
		HourlyRate:         " 25.5 ",
	}
	d.Attachments = []model.Attachment{
		{DisplayName: "cert.pdf", SizeBytes: 1_000_000, MimeCategory: model.MimeDocument, Ref: "blob:1"},
	}
	return d
}

func fieldErrors(t *testing.T, err error) *submission.ValidationFailure {
	t.Helper()
	if !errors.Is(err, submission.ErrValidationFailed) {
		t.Fatalf("expected validation failure, got %v", err)
	}
	var failure *submission.ValidationFailure
	if !errors.As(err, &failure) {
		t.Fatalf("expected *ValidationFailure, got %T", err)
	}
	return failure
}

func TestAssembleStudentRequiresInterest(t *testing.T) {
	a := submission.NewAssembler()
	d := basicDraft(model.RoleStudent)

	_, err := a.Assemble(d)
	failure := fieldErrors(t, err)
	if diff := cmp.Diff([]model.FieldKey{model.FieldInterests}, failure.Fields()); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}

	d.Student.Interests = []string{"Mathematics"}
	payload, err := a.Assemble(d)
	if err != nil {
		t.Fatalf("assemble after adding interest: %v", err)
	}
	if payload.Role != model.RoleStudent || payload.Student == nil || payload.Teacher != nil {
		t.Fatalf("unexpected payload shape: %+v", payload)
	}
	if diff := cmp.Diff([]string{"Mathematics"}, payload.Student.Interests); diff != "" {
		t.Fatalf("interests mismatch (-want +got):\n%s", diff)
	}
}

func TestAssembleCollectsAllViolations(t *testing.T) {
	a := submission.NewAssembler()
	d := model.Draft{
		Role: model.RoleTeacher,
		Basic: model.BasicInfo{
			FirstName:       "   ",
			Email:           "ada-at-example",
			Password:        "one",
			ConfirmPassword: "two",
		},
		Teacher: model.TeacherInfo{
			Subjects:           []string{"Alchemy"},
			TeachingExperience: "forever",
			HourlyRate:         "250",
		},
	}

	_, err := a.Assemble(d)
	failure := fieldErrors(t, err)

	want := []model.FieldError{
		{Field: model.FieldFirstName, Message: "is required"},
		{Field: model.FieldLastName, Message: "is required"},
		{Field: model.FieldEmail, Message: "must be a valid email address"},
		{Field: model.FieldConfirmPassword, Message: "must match the password"},
		{Field: model.FieldLocation, Message: "is required"},
		{Field: model.FieldSubjects, Message: `"Alchemy" is not an offered subject`},
		{Field: model.FieldDescription, Message: "is required"},
		{Field: model.FieldEducation, Message: "is required"},
		{Field: model.FieldTeachingExperience, Message: "must be one of 0-1, 1-2, 3-5, 5-10, 10+"},
		{Field: model.FieldHourlyRate, Message: "must be between 10 and 200"},
		{Field: model.FieldAgreedToTerms, Message: "must be accepted"},
	}
	if diff := cmp.Diff(want, failure.Errors); diff != "" {
		t.Fatalf("violations mismatch (-want +got):\n%s", diff)
	}
}

func TestAssembleHourlyRate(t *testing.T) {
	a := submission.NewAssembler()
	cases := []struct {
		rate    string
		wantErr string
	}{
		{rate: "10"},
		{rate: "200"},
		{rate: "9.99", wantErr: "must be between 10 and 200"},
		{rate: "200.01", wantErr: "must be between 10 and 200"},
		{rate: "twenty", wantErr: "must be a number"},
		{rate: "", wantErr: "is required"},
		{rate: "   ", wantErr: "is required"},
		{rate: "NaN", wantErr: "must be a number"},
		{rate: "nan", wantErr: "must be a number"},
		{rate: "Inf", wantErr: "must be a number"},
		{rate: "+Inf", wantErr: "must be a number"},
		{rate: "1e1", wantErr: "must be a number"},
		{rate: "2_0", wantErr: "must be a number"},
		{rate: "0x14", wantErr: "must be a number"},
		{rate: "+20", wantErr: "must be a number"},
		{rate: "20.", wantErr: "must be a number"},
		{rate: "45.50"},
	}
	for _, tc := range cases {
		d := teacherDraft()
		d.Teacher.HourlyRate = tc.rate
		_, err := a.Assemble(d)
		if tc.wantErr == "" {
			if err != nil {
				t.Fatalf("rate %q: unexpected error %v", tc.rate, err)
			}
			continue
		}
		failure := fieldErrors(t, err)
		want := []model.FieldError{{Field: model.FieldHourlyRate, Message: tc.wantErr}}
		if diff := cmp.Diff(want, failure.Errors); diff != "" {
			t.Fatalf("rate %q mismatch (-want +got):\n%s", tc.rate, diff)
		}
	}
}

func TestAssembleTeacherPayload(t *testing.T) {
	a := submission.NewAssembler()
	d := teacherDraft()
	d.Student.Interests = []string{"Art"}

	payload, err := a.Assemble(d)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	want := submission.Payload{
		Role: model.RoleTeacher,
		Basic: submission.BasicInfo{
			FirstName: "Ada",
			LastName:  "Lovelace",
			Email:     "ada@example.com",
			Password:  "s3cret!",
			Location:  "Jakarta, Indonesia",
		},
		Teacher: &submission.TeacherDetails{
			Subjects:           []string{"Mathematics", "Piano"},
			Description:        "Patient tutor",
			Education:          "BSc Mathematics",
			TeachingExperience: model.ExperienceThreeToFive,
			HourlyRate:         25.5,
		},
		Attachments: []submission.AttachmentMeta{
			{Name: "cert.pdf", SizeBytes: 1_000_000, MimeCategory: model.MimeDocument, Ref: "blob:1"},
		},
	}
	if diff := cmp.Diff(want, payload); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestAssembleIgnoresOppositeRoleFields(t *testing.T) {
	a := submission.NewAssembler()
	d := basicDraft(model.RoleStudent)
	d.Student.Interests = []string{"Physics"}
	d.Teacher.HourlyRate = "not a number"
	d.Teacher.Subjects = []string{"Alchemy"}
	d.Attachments = []model.Attachment{{DisplayName: "hidden.pdf"}}

	payload, err := a.Assemble(d)
	if err != nil {
		t.Fatalf("teacher fields must be ignored for students: %v", err)
	}
	if len(payload.Attachments) != 0 {
		t.Fatalf("student payload carries attachments: %+v", payload.Attachments)
	}
}

func TestAssembleWithoutRole(t *testing.T) {
	_, err := submission.NewAssembler().Assemble(model.Draft{})
	failure := fieldErrors(t, err)
	if !failure.Has("role") {
		t.Fatalf("expected role violation, got %v", failure.Errors)
	}
}

func TestAssembleWithoutRoleStillReportsBasicInfo(t *testing.T) {
	d := model.Draft{Basic: model.BasicInfo{
		FirstName:       "Ada",
		LastName:        "Lovelace",
		Email:           "not-an-email",
		Password:        "s3cret!",
		ConfirmPassword: "s3cret!",
	}}
	_, err := submission.NewAssembler().Assemble(d)
	failure := fieldErrors(t, err)

	want := []model.FieldError{
		{Field: model.FieldRole, Message: "choose student or teacher"},
		{Field: model.FieldEmail, Message: "must be a valid email address"},
		{Field: model.FieldLocation, Message: "is required"},
		{Field: model.FieldAgreedToTerms, Message: "must be accepted"},
	}
	if diff := cmp.Diff(want, failure.Errors); diff != "" {
		t.Fatalf("violations mismatch (-want +got):\n%s", diff)
	}
}

func TestAssembleBlankRequiredFields(t *testing.T) {
	cases := []struct {
		name  string
		apply func(*model.Draft)
		want  []model.FieldError
	}{
		{
			name:  "whitespace only name",
			apply: func(d *model.Draft) { d.Basic.LastName = " \t " },
			want:  []model.FieldError{{Field: model.FieldLastName, Message: "is required"}},
		},
		{
			name: "whitespace only password",
			apply: func(d *model.Draft) {
				d.Basic.Password = "   "
				d.Basic.ConfirmPassword = "   "
			},
			want: []model.FieldError{
				{Field: model.FieldPassword, Message: "is required"},
				{Field: model.FieldConfirmPassword, Message: "is required"},
			},
		},
		{
			name: "markup only free text",
			apply: func(d *model.Draft) {
				d.Teacher.Description = "<b></b>"
				d.Teacher.Education = "<script>x</script>"
			},
			want: []model.FieldError{
				{Field: model.FieldDescription, Message: "is required"},
				{Field: model.FieldEducation, Message: "is required"},
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := teacherDraft()
			tc.apply(&d)
			_, err := submission.NewAssembler().Assemble(d)
			failure := fieldErrors(t, err)
			if diff := cmp.Diff(tc.want, failure.Errors); diff != "" {
				t.Fatalf("violations mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAssemblePhoneIsOptional(t *testing.T) {
	d := basicDraft(model.RoleStudent)
	d.Student.Interests = []string{"Art"}
	d.Basic.Phone = ""
	if _, err := submission.NewAssembler().Assemble(d); err != nil {
		t.Fatalf("phone should be optional: %v", err)
	}
}

func TestAssembleCustomCatalogAndRange(t *testing.T) {
	a := submission.NewAssembler(
		submission.WithSubjectCatalog(nil),
		submission.WithHourlyRateRange(5, 50),
	)
	d := teacherDraft()
	d.Teacher.Subjects = []string{"Alchemy"}
	d.Teacher.HourlyRate = "5"
	if _, err := a.Assemble(d); err != nil {
		t.Fatalf("custom options not applied: %v", err)
	}
	if minRate, maxRate := a.HourlyRateRange(); minRate != 5 || maxRate != 50 {
		t.Fatalf("range = %v..%v", minRate, maxRate)
	}
}

func TestPayloadIsDetachedFromDraft(t *testing.T) {
	d := teacherDraft()
	payload, err := submission.NewAssembler().Assemble(d)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	d.Teacher.Subjects[0] = "mutated"
	d.Attachments[0].DisplayName = "mutated"
	if payload.Teacher.Subjects[0] == "mutated" || payload.Attachments[0].Name == "mutated" {
		t.Fatalf("payload shares memory with the draft")
	}

	clone := payload.Clone()
	clone.Teacher.Subjects[0] = "changed"
	if payload.Teacher.Subjects[0] == "changed" {
		t.Fatalf("Clone shares memory")
	}
}

func TestFreeTextIsStripped(t *testing.T) {
	d := teacherDraft()
	d.Teacher.Description = "I teach <script>alert(1)</script>scales & chords"
	d.Teacher.AdditionalExperience = "  <i>Orchestra</i> O'Neil  "
	payload, err := submission.NewAssembler().Assemble(d)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if got, want := payload.Teacher.Description, "I teach scales & chords"; got != want {
		t.Fatalf("description = %q, want %q", got, want)
	}
	if got, want := payload.Teacher.AdditionalExperience, "Orchestra O'Neil"; got != want {
		t.Fatalf("additional experience = %q, want %q", got, want)
	}
}

func TestFreeTextStrippedToEmptyIsRequired(t *testing.T) {
	d := basicDraft(model.RoleStudent)
	d.Student.Interests = []string{"Art"}
	d.Student.LearningGoals = "<i></i>"
	payload, err := submission.NewAssembler().Assemble(d)
	if err != nil {
		t.Fatalf("learning goals are optional: %v", err)
	}
	if payload.Student.LearningGoals != "" {
		t.Fatalf("learning goals = %q, want empty", payload.Student.LearningGoals)
	}

	teacher := teacherDraft()
	teacher.Teacher.Description = "  <p> </p>  "
	_, err = submission.NewAssembler().Assemble(teacher)
	failure := fieldErrors(t, err)
	want := []model.FieldError{{Field: model.FieldDescription, Message: "is required"}}
	if diff := cmp.Diff(want, failure.Errors); diff != "" {
		t.Fatalf("violations mismatch (-want +got):\n%s", diff)
	}
}

func TestParseHourlyRateRejectsNonFinite(t *testing.T) {
	a := submission.NewAssembler()
	for _, raw := range []string{"NaN", "Inf", "-Inf", "1e2"} {
		if _, err := a.ParseHourlyRate(raw); err == nil {
			t.Fatalf("rate %q: expected error", raw)
		}
	}
	if rate, err := a.ParseHourlyRate(" 45 "); err != nil || rate != 45 {
		t.Fatalf("rate = %v, err = %v", rate, err)
	}
}
