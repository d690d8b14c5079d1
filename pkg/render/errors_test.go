package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-regwizard/pkg/model"
	"github.com/goliatone/go-regwizard/pkg/render"
)

func TestMapErrorPayload_RemotePaths(t *testing.T) {
	payload := map[string][]string{
		"/basicInfo/email":              {"Email already registered"},
		"body.teacherInfo.hourlyRate":   {"Rate too high"},
		"$.payload.attachments[0].name": {"Unreadable file"},
		"request/studentInfo/interests": {"Pick something"},
		"non_field_errors":              {"Form level error"},
		"basicInfo/nickname":            {"Should fall back to form errors"},
		"":                              {"Unscoped form error"},
		"firstName":                     {"  ", ""},
	}

	mapped := render.MapErrorPayload(payload)

	wantFields := map[model.FieldKey][]string{
		model.FieldEmail:       {"Email already registered"},
		model.FieldHourlyRate:  {"Rate too high"},
		model.FieldAttachments: {"Unreadable file"},
		model.FieldInterests:   {"Pick something"},
	}
	if diff := cmp.Diff(wantFields, mapped.Fields); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}

	wantForm := []string{"Form level error", "Should fall back to form errors", "Unscoped form error"}
	if diff := cmp.Diff(wantForm, mapped.Form, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestMapFieldErrors(t *testing.T) {
	mapped := render.MapFieldErrors([]model.FieldError{
		{Field: model.FieldEmail, Message: "is required"},
		{Field: model.FieldEmail, Message: " is required "},
		{Field: model.FieldConfirmPassword, Message: "must match the password"},
		{Field: "role", Message: "choose student or teacher"},
		{Field: "form", Message: "try again"},
	})

	wantFields := map[model.FieldKey][]string{
		model.FieldEmail:           {"is required"},
		model.FieldConfirmPassword: {"must match the password"},
	}
	if diff := cmp.Diff(wantFields, mapped.Fields); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"role: choose student or teacher", "try again"}, mapped.Form); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestErrorMappingMergeAndWithout(t *testing.T) {
	a := render.ErrorMapping{
		Fields: map[model.FieldKey][]string{model.FieldEmail: {"taken"}},
		Form:   []string{"First"},
	}
	b := render.ErrorMapping{
		Fields: map[model.FieldKey][]string{
			model.FieldEmail:    {"taken", "invalid"},
			model.FieldLocation: {"is required"},
		},
		Form: []string{"First", "Second"},
	}

	merged := a.Merge(b)
	want := render.ErrorMapping{
		Fields: map[model.FieldKey][]string{
			model.FieldEmail:    {"taken", "invalid"},
			model.FieldLocation: {"is required"},
		},
		Form: []string{"First", "Second"},
	}
	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merge mismatch (-want +got):\n%s", diff)
	}

	trimmed := merged.Without(model.FieldEmail)
	if trimmed.For(model.FieldEmail) != nil {
		t.Fatalf("expected email errors to be removed")
	}
	if merged.For(model.FieldEmail) == nil {
		t.Fatalf("Without mutated the receiver")
	}
	if (render.ErrorMapping{}).Empty() != true || trimmed.Empty() {
		t.Fatalf("Empty reported incorrectly")
	}
}

func TestMergeFormErrors(t *testing.T) {
	merged := render.MergeFormErrors([]string{" First ", "Second"}, "Second", "third", "  ")
	want := []string{"First", "Second", "third"}

	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merged form errors mismatch (-want +got):\n%s", diff)
	}
}
