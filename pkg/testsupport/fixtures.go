// Package testsupport holds fixture and golden helpers shared by package
// tests. Goldens are rewritten when UPDATE_GOLDENS is set.
package testsupport

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-regwizard/pkg/model"
)

// MustLoadDraft reads a JSON draft fixture.
func MustLoadDraft(t *testing.T, path string) model.Draft {
	t.Helper()

	d, err := LoadDraft(path)
	if err != nil {
		t.Fatalf("load draft: %v", err)
	}
	return d
}

// LoadDraft reads a JSON draft fixture without requiring testing.T.
func LoadDraft(path string) (model.Draft, error) {
	if path == "" {
		return model.Draft{}, errors.New("testsupport: draft path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Draft{}, fmt.Errorf("testsupport: read draft: %w", err)
	}
	var out model.Draft
	if err := json.Unmarshal(data, &out); err != nil {
		return model.Draft{}, fmt.Errorf("testsupport: unmarshal draft: %w", err)
	}
	return out, nil
}

// WriteGolden writes value as indented JSON when UPDATE_GOLDENS is set and
// reports whether it did.
func WriteGolden(t *testing.T, path string, value any) bool {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, append(payload, '\n'), 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// CompareJSONGolden marshals got and diffs it against the golden at path.
// Both sides are decoded into generic values so key order and indentation
// do not matter. An empty string means they match.
func CompareJSONGolden(t *testing.T, path string, got any) string {
	t.Helper()

	if WriteGolden(t, path, got) {
		return ""
	}
	var want any
	if err := json.Unmarshal(MustReadGolden(t, path), &want); err != nil {
		t.Fatalf("decode golden %s: %v", path, err)
	}
	raw, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal value: %v", err)
	}
	var actual any
	if err := json.Unmarshal(raw, &actual); err != nil {
		t.Fatalf("decode value: %v", err)
	}
	return cmp.Diff(want, actual)
}
