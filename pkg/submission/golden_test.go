package submission_test

import (
	"path/filepath"
	"testing"

	"github.com/goliatone/go-regwizard/pkg/submission"
	"github.com/goliatone/go-regwizard/pkg/testsupport"
)

func TestAssemblePayloadGoldens(t *testing.T) {
	cases := []struct {
		name   string
		draft  string
		golden string
	}{
		{name: "teacher", draft: "teacher_draft.json", golden: "teacher_payload.golden.json"},
		{name: "student ignores hidden teacher data", draft: "student_draft.json", golden: "student_payload.golden.json"},
	}

	a := submission.NewAssembler()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := testsupport.MustLoadDraft(t, filepath.Join("testdata", tc.draft))
			payload, err := a.Assemble(d)
			if err != nil {
				t.Fatalf("assemble: %v", err)
			}
			if diff := testsupport.CompareJSONGolden(t, filepath.Join("testdata", tc.golden), payload); diff != "" {
				t.Fatalf("payload mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
