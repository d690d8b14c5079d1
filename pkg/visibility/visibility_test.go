package visibility

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-regwizard/pkg/model"
)

func TestResolveRoleSelectionHasNoFields(t *testing.T) {
	for _, role := range []model.Role{model.RoleUnset, model.RoleStudent, model.RoleTeacher} {
		got, err := Resolve(role, model.StepRoleSelection)
		if err != nil {
			t.Fatalf("resolve %s: %v", role, err)
		}
		if len(got) != 0 {
			t.Fatalf("expected no fields for %s at step 1, got %v", role, got.Keys())
		}
	}
}

func TestResolveBasicInfoIsRoleIndependent(t *testing.T) {
	student, err := Resolve(model.RoleStudent, model.StepBasicInfo)
	if err != nil {
		t.Fatalf("resolve student: %v", err)
	}
	teacher, err := Resolve(model.RoleTeacher, model.StepBasicInfo)
	if err != nil {
		t.Fatalf("resolve teacher: %v", err)
	}
	if diff := cmp.Diff(student, teacher); diff != "" {
		t.Fatalf("basic info differs between roles (-student +teacher):\n%s", diff)
	}

	wantKeys := []model.FieldKey{
		model.FieldFirstName, model.FieldLastName, model.FieldEmail, model.FieldPassword,
		model.FieldConfirmPassword, model.FieldPhone, model.FieldLocation,
	}
	if diff := cmp.Diff(wantKeys, student.Keys()); diff != "" {
		t.Fatalf("basic info keys mismatch (-want +got):\n%s", diff)
	}

	phone, _ := student.Lookup(model.FieldPhone)
	if phone.Required {
		t.Fatalf("phone must be optional")
	}
}

func TestResolveRoleDetails(t *testing.T) {
	student, err := Resolve(model.RoleStudent, model.StepRoleDetails)
	if err != nil {
		t.Fatalf("resolve student: %v", err)
	}
	if diff := cmp.Diff([]model.FieldKey{model.FieldInterests}, student.Required().Keys()); diff != "" {
		t.Fatalf("student required mismatch (-want +got):\n%s", diff)
	}
	if !student.Contains(model.FieldLearningGoals) || student.Contains(model.FieldSubjects) {
		t.Fatalf("unexpected student fields: %v", student.Keys())
	}

	teacher, err := Resolve(model.RoleTeacher, model.StepRoleDetails)
	if err != nil {
		t.Fatalf("resolve teacher: %v", err)
	}
	wantRequired := []model.FieldKey{
		model.FieldSubjects, model.FieldDescription, model.FieldEducation,
		model.FieldTeachingExperience, model.FieldHourlyRate,
	}
	if diff := cmp.Diff(wantRequired, teacher.Required().Keys()); diff != "" {
		t.Fatalf("teacher required mismatch (-want +got):\n%s", diff)
	}
	for _, key := range []model.FieldKey{model.FieldAdditionalExperience, model.FieldAttachments} {
		field, ok := teacher.Lookup(key)
		if !ok || field.Required {
			t.Fatalf("expected optional %s, got %+v (present=%v)", key, field, ok)
		}
	}
}

func TestResolveUnknownRoleAtDetails(t *testing.T) {
	if _, err := Resolve(model.RoleUnset, model.StepRoleDetails); !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}
}

func TestResolveInvalidStep(t *testing.T) {
	if _, err := Resolve(model.RoleStudent, model.Step(4)); !errors.Is(err, ErrInvalidStep) {
		t.Fatalf("expected ErrInvalidStep, got %v", err)
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	roles := []model.Role{model.RoleUnset, model.RoleStudent, model.RoleTeacher}
	steps := []model.Step{model.StepRoleSelection, model.StepBasicInfo, model.StepRoleDetails}
	for _, role := range roles {
		for _, step := range steps {
			first, firstErr := Resolve(role, step)
			first = append(first, Field{Key: "mutated"})
			second, secondErr := Resolve(role, step)
			third, _ := Resolve(role, step)
			if (firstErr == nil) != (secondErr == nil) {
				t.Fatalf("error instability for %s/%s", role, step)
			}
			if second.Contains("mutated") {
				t.Fatalf("resolve leaked a shared slice for %s/%s", role, step)
			}
			if diff := cmp.Diff(second, third); diff != "" {
				t.Fatalf("resolve unstable for %s/%s:\n%s", role, step, diff)
			}
		}
	}
}

func TestRequiredFor(t *testing.T) {
	got, err := RequiredFor(model.RoleStudent)
	if err != nil {
		t.Fatalf("required for student: %v", err)
	}
	want := []model.FieldKey{
		model.FieldFirstName, model.FieldLastName, model.FieldEmail, model.FieldPassword,
		model.FieldConfirmPassword, model.FieldLocation, model.FieldInterests,
	}
	if diff := cmp.Diff(want, got.Keys()); diff != "" {
		t.Fatalf("required keys mismatch (-want +got):\n%s", diff)
	}
	if _, err := RequiredFor(model.RoleUnset); !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}
}
