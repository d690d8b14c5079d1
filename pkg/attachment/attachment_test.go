package attachment

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-regwizard/pkg/model"
)

func TestPolicyValidate(t *testing.T) {
	policy := DefaultPolicy()

	cases := []struct {
		name string
		file string
		size int64
		want error
	}{
		{name: "pdf", file: "cert.pdf", size: 1_000_000},
		{name: "uppercase extension", file: "PHOTO.JPG", size: 10},
		{name: "jpeg", file: "scan.jpeg", size: 0},
		{name: "exactly at limit", file: "big.png", size: DefaultMaxBytes},
		{name: "over limit", file: "big.png", size: DefaultMaxBytes + 1, want: ErrTooLarge},
		{name: "executable", file: "photo.exe", size: 500, want: ErrUnsupportedType},
		{name: "no extension", file: "README", size: 1, want: ErrUnsupportedType},
		{name: "gif is classified but not accepted", file: "anim.gif", size: 1, want: ErrUnsupportedType},
		{name: "type checked before size", file: "huge.exe", size: DefaultMaxBytes * 2, want: ErrUnsupportedType},
		{name: "negative size", file: "cert.pdf", size: -1, want: ErrInvalidSize},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := policy.Validate(tc.file, tc.size)
			if tc.want == nil {
				if err != nil {
					t.Fatalf("expected %s to be accepted, got %v", tc.file, err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			var rejection Rejection
			if !errors.As(err, &rejection) {
				t.Fatalf("expected Rejection, got %T", err)
			}
			if rejection.Name != tc.file {
				t.Fatalf("rejection name = %q, want %q", rejection.Name, tc.file)
			}
		})
	}
}

func TestPolicyCustomExtensions(t *testing.T) {
	policy := Policy{MaxBytes: 100, Extensions: []string{".DOCX"}}

	if err := policy.Validate("cv.docx", 100); err != nil {
		t.Fatalf("expected docx to be accepted: %v", err)
	}
	if err := policy.Validate("cv.pdf", 1); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected pdf to be rejected, got %v", err)
	}
	if err := policy.Validate("cv.docx", 101); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected size rejection, got %v", err)
	}
}

func TestAccept(t *testing.T) {
	got, err := DefaultPolicy().Accept(Candidate{Name: "diploma.PDF", SizeBytes: 42, Ref: "blob:1"})
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	want := model.Attachment{DisplayName: "diploma.PDF", SizeBytes: 42, MimeCategory: model.MimeDocument, Ref: "blob:1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("attachment mismatch (-want +got):\n%s", diff)
	}
}

func TestClassify(t *testing.T) {
	cases := map[string]model.MimeCategory{
		"a.png":     model.MimeImage,
		"a.JPEG":    model.MimeImage,
		"a.webp":    model.MimeImage,
		"a.pdf":     model.MimeDocument,
		"notes.txt": model.MimeDocument,
		"a.exe":     model.MimeOther,
		"archive":   model.MimeOther,
	}
	for name, want := range cases {
		if got := Classify(name); got != want {
			t.Errorf("Classify(%q) = %q, want %q", name, got, want)
		}
	}
}
