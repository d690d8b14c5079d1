package draft

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-regwizard/pkg/attachment"
	"github.com/goliatone/go-regwizard/pkg/model"
)

func TestSetFieldOverwritesWithoutValidation(t *testing.T) {
	s := New()

	if err := s.SetField(model.FieldEmail, "not-an-email"); err != nil {
		t.Fatalf("set email: %v", err)
	}
	if err := s.SetField(model.FieldHourlyRate, "1e"); err != nil {
		t.Fatalf("set hourly rate: %v", err)
	}
	if err := s.SetField(model.FieldEmail, "ada@example.com"); err != nil {
		t.Fatalf("overwrite email: %v", err)
	}

	snap := s.Snapshot()
	if snap.Basic.Email != "ada@example.com" {
		t.Fatalf("email = %q", snap.Basic.Email)
	}
	if snap.Teacher.HourlyRate != "1e" {
		t.Fatalf("hourly rate = %q", snap.Teacher.HourlyRate)
	}
	if got, _ := s.Field(model.FieldHourlyRate); got != "1e" {
		t.Fatalf("Field(hourlyRate) = %q", got)
	}
}

func TestSetFieldRejectsUnknownAndSetKeys(t *testing.T) {
	s := New()
	for _, key := range []model.FieldKey{"nickname", model.FieldInterests, model.FieldAttachments} {
		if err := s.SetField(key, "x"); !errors.Is(err, ErrUnknownField) {
			t.Fatalf("SetField(%s) = %v, want ErrUnknownField", key, err)
		}
	}
}

func TestSetFieldTeachingExperience(t *testing.T) {
	s := New()
	if err := s.SetField(model.FieldTeachingExperience, "3-5"); err != nil {
		t.Fatalf("set band: %v", err)
	}
	if got := s.Snapshot().Teacher.TeachingExperience; got != model.ExperienceThreeToFive {
		t.Fatalf("band = %q", got)
	}
}

func TestToggleMemberIsAnInvolution(t *testing.T) {
	s := New()
	for _, subject := range []string{"Physics", "Art"} {
		if _, err := s.ToggleMember(model.FieldInterests, subject); err != nil {
			t.Fatalf("toggle %s: %v", subject, err)
		}
	}
	before, _ := s.Members(model.FieldInterests)

	present, err := s.ToggleMember(model.FieldInterests, "Mathematics")
	if err != nil || !present {
		t.Fatalf("first toggle present=%v err=%v", present, err)
	}
	present, err = s.ToggleMember(model.FieldInterests, "Mathematics")
	if err != nil || present {
		t.Fatalf("second toggle present=%v err=%v", present, err)
	}

	after, _ := s.Members(model.FieldInterests)
	if diff := cmp.Diff(before, after); diff != "" {
		t.Fatalf("toggle twice changed the set (-before +after):\n%s", diff)
	}

	present, _ = s.ToggleMember(model.FieldInterests, "Physics")
	if present {
		t.Fatalf("expected Physics to be removed")
	}
	got, _ := s.Members(model.FieldInterests)
	if diff := cmp.Diff([]string{"Art"}, got); diff != "" {
		t.Fatalf("members mismatch (-want +got):\n%s", diff)
	}
}

func TestToggleMemberNotASet(t *testing.T) {
	s := New()
	if _, err := s.ToggleMember(model.FieldEmail, "x"); !errors.Is(err, ErrNotASet) {
		t.Fatalf("expected ErrNotASet, got %v", err)
	}
}

func TestAddAttachmentsReportsRejectionsAndKeepsOrder(t *testing.T) {
	s := New()
	s.SetRole(model.RoleTeacher)

	accepted, rejected, err := s.AddAttachments([]attachment.Candidate{
		{Name: "cert.pdf", SizeBytes: 1_000_000},
		{Name: "photo.exe", SizeBytes: 500},
	})
	if err != nil {
		t.Fatalf("add attachments: %v", err)
	}
	if len(accepted) != 1 || accepted[0].DisplayName != "cert.pdf" {
		t.Fatalf("accepted = %+v", accepted)
	}
	wantRejected := []attachment.Rejection{{Name: "photo.exe", Index: 1, Reason: attachment.ReasonUnsupportedType}}
	if diff := cmp.Diff(wantRejected, rejected); diff != "" {
		t.Fatalf("rejections mismatch (-want +got):\n%s", diff)
	}

	if _, _, err := s.AddAttachments([]attachment.Candidate{
		{Name: "huge.png", SizeBytes: attachment.DefaultMaxBytes + 1},
		{Name: "id.png", SizeBytes: 10},
	}); err != nil {
		t.Fatalf("second batch: %v", err)
	}

	names := displayNames(s.Attachments())
	if diff := cmp.Diff([]string{"cert.pdf", "id.png"}, names); diff != "" {
		t.Fatalf("attachment order mismatch (-want +got):\n%s", diff)
	}
}

func TestAddAttachmentsRequiresTeacher(t *testing.T) {
	s := New()
	s.SetRole(model.RoleStudent)
	if _, _, err := s.AddAttachments([]attachment.Candidate{{Name: "a.pdf", SizeBytes: 1}}); !errors.Is(err, ErrAttachmentsNotAllowed) {
		t.Fatalf("expected ErrAttachmentsNotAllowed, got %v", err)
	}
	if len(s.Snapshot().Attachments) != 0 {
		t.Fatalf("student draft must not hold attachments")
	}
}

func TestRemoveAttachmentShiftsIndexes(t *testing.T) {
	s := New()
	s.SetRole(model.RoleTeacher)
	if _, _, err := s.AddAttachments([]attachment.Candidate{
		{Name: "first.pdf", SizeBytes: 1},
		{Name: "second.pdf", SizeBytes: 2},
	}); err != nil {
		t.Fatalf("add: %v", err)
	}

	err := s.RemoveAttachment(5)
	if !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	var idxErr IndexError
	if !errors.As(err, &idxErr) || idxErr.Len != 2 || idxErr.Index != 5 {
		t.Fatalf("unexpected index error %+v", idxErr)
	}
	if err := s.RemoveAttachment(-1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange for -1, got %v", err)
	}

	if err := s.RemoveAttachment(0); err != nil {
		t.Fatalf("remove 0: %v", err)
	}
	if diff := cmp.Diff([]string{"second.pdf"}, displayNames(s.Attachments())); diff != "" {
		t.Fatalf("remaining mismatch (-want +got):\n%s", diff)
	}
}

func TestRemoveAttachmentAllowsDuplicates(t *testing.T) {
	s := New()
	s.SetRole(model.RoleTeacher)
	_, _, _ = s.AddAttachments([]attachment.Candidate{
		{Name: "same.pdf", SizeBytes: 1, Ref: "a"},
		{Name: "same.pdf", SizeBytes: 1, Ref: "b"},
	})
	if err := s.RemoveAttachment(1); err != nil {
		t.Fatalf("remove: %v", err)
	}
	got := s.Attachments()
	if len(got) != 1 || got[0].Ref != "a" {
		t.Fatalf("expected the first duplicate to remain, got %+v", got)
	}
}

func TestRoleSwitchPreservesHiddenData(t *testing.T) {
	s := New()
	s.SetRole(model.RoleTeacher)
	_ = s.SetField(model.FieldDescription, "Patient tutor")
	_, _ = s.ToggleMember(model.FieldSubjects, "Piano")
	_, _, _ = s.AddAttachments([]attachment.Candidate{{Name: "cert.pdf", SizeBytes: 1}})

	s.SetRole(model.RoleStudent)
	if got := s.Attachments(); len(got) != 0 {
		t.Fatalf("attachments visible for student: %+v", got)
	}
	if err := s.RemoveAttachment(0); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected hidden attachments to be unreachable, got %v", err)
	}

	s.SetRole(model.RoleTeacher)
	snap := s.Snapshot()
	if snap.Teacher.Description != "Patient tutor" {
		t.Fatalf("description lost: %q", snap.Teacher.Description)
	}
	if diff := cmp.Diff([]string{"Piano"}, snap.Teacher.Subjects); diff != "" {
		t.Fatalf("subjects lost (-want +got):\n%s", diff)
	}
	if len(s.Attachments()) != 1 {
		t.Fatalf("attachments lost after switching back")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := New()
	_, _ = s.ToggleMember(model.FieldInterests, "Art")
	snap := s.Snapshot()
	snap.Student.Interests[0] = "mutated"

	got, _ := s.Members(model.FieldInterests)
	if got[0] != "Art" {
		t.Fatalf("snapshot shares state with the store")
	}
}

func TestReset(t *testing.T) {
	s := New()
	s.SetRole(model.RoleStudent)
	_ = s.SetField(model.FieldFirstName, "Ada")
	s.Reset()
	if diff := cmp.Diff(model.Draft{}, s.Snapshot()); diff != "" {
		t.Fatalf("reset left data behind:\n%s", diff)
	}
}

func displayNames(items []model.Attachment) []string {
	var out []string
	for _, item := range items {
		out = append(out, item.DisplayName)
	}
	return out
}

func TestIsScalar(t *testing.T) {
	for _, key := range []model.FieldKey{model.FieldFirstName, model.FieldPhone, model.FieldHourlyRate, model.FieldLearningGoals} {
		if !IsScalar(key) {
			t.Fatalf("%s should be scalar", key)
		}
	}
	for _, key := range []model.FieldKey{model.FieldInterests, model.FieldSubjects, model.FieldAttachments, model.FieldAgreedToTerms, model.FieldRole, "nickname"} {
		if IsScalar(key) {
			t.Fatalf("%s should not be scalar", key)
		}
	}
}
