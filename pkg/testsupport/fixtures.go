// Package testsupport holds golden file and fixture helpers shared by tests.
package testsupport

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-pawhealth/pkg/fields"
)

// UpdateEnv enables golden rewrites when set.
const UpdateEnv = "UPDATE_GOLDENS"

// MustLoadDeclarations reads a JSON field declaration list.
func MustLoadDeclarations(t *testing.T, path string) []fields.Declaration {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read declarations: %v", err)
	}
	decls, err := fields.DecodeDeclarations(data)
	if err != nil {
		t.Fatalf("decode declarations %s: %v", path, err)
	}
	return decls
}

// AssertGolden compares got with the golden file at path. With UPDATE_GOLDENS
// set the file is rewritten instead.
func AssertGolden(t *testing.T, path string, got []byte) {
	t.Helper()
	if os.Getenv(UpdateEnv) != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir golden dir: %v", err)
		}
		if err := os.WriteFile(path, got, 0o644); err != nil {
			t.Fatalf("write golden: %v", err)
		}
		return
	}
	want, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	if diff := cmp.Diff(string(want), string(got)); diff != "" {
		t.Fatalf("golden mismatch %s (-want +got):\n%s", path, diff)
	}
}

// CaptureTemplateOutput runs render against a buffer and returns both the
// returned string and what was written.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()
	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}
	return out, buf.String()
}
