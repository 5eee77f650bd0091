package safeio

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestResolveWithin(t *testing.T) {
	base := filepath.Join(string(filepath.Separator), "scans")

	tests := []struct {
		name     string
		input    string
		expected string
		hasError bool
	}{
		{"simple dir", "lside", filepath.Join(base, "lside"), false},
		{"dot prefix", "./rside/", filepath.Join(base, "rside"), false},
		{"inner traversal", "a/../out", filepath.Join(base, "out"), false},
		{"base itself", ".", base, false},
		{"escapes base", "../etc", "", true},
		{"double escape", "a/../../etc", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveWithin(base, tt.input)
			if tt.hasError {
				if err == nil {
					t.Fatalf("ResolveWithin(%q) expected error, got %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveWithin(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ResolveWithin(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestResolveWithin_EscapeIsTyped(t *testing.T) {
	_, err := ResolveWithin("/scans", "../x")
	if !errors.Is(err, ErrOutsideBase) {
		t.Fatalf("expected ErrOutsideBase, got %v", err)
	}
}

func TestResolveWithin_Absolute(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "x", "..", "lside")
	got, err := ResolveWithin("/elsewhere", abs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != filepath.Clean(abs) {
		t.Errorf("got %q, expected %q", got, filepath.Clean(abs))
	}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "scan0001.tif")
	dst := filepath.Join(dir, "out0001.tif")

	if err := os.WriteFile(src, []byte("image data"), 0o640); err != nil {
		t.Fatalf("write src: %v", err)
	}

	if err := CopyFile(src, dst, false); err != nil {
		t.Fatalf("CopyFile failed: %v", err)
	}

	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read dst: %v", err)
	}
	if string(data) != "image data" {
		t.Errorf("dst content = %q", data)
	}
	if _, err := os.Stat(src); err != nil {
		t.Errorf("source should remain after copy: %v", err)
	}

	if runtime.GOOS != "windows" {
		st, err := os.Stat(dst)
		if err != nil {
			t.Fatalf("stat dst: %v", err)
		}
		if st.Mode().Perm() != 0o640 {
			t.Errorf("dst mode = %v, expected 0640", st.Mode().Perm())
		}
	}
}

func TestCopyFile_ExistingDestination(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	if err := os.WriteFile(src, []byte("new"), 0o644); err != nil {
		t.Fatalf("write src: %v", err)
	}
	if err := os.WriteFile(dst, []byte("old"), 0o644); err != nil {
		t.Fatalf("write dst: %v", err)
	}

	err := CopyFile(src, dst, false)
	if !errors.Is(err, os.ErrExist) {
		t.Fatalf("expected os.ErrExist, got %v", err)
	}
	if data, _ := os.ReadFile(dst); string(data) != "old" {
		t.Errorf("existing destination was modified: %q", data)
	}

	if err := CopyFile(src, dst, true); err != nil {
		t.Fatalf("CopyFile with overwrite failed: %v", err)
	}
	if data, _ := os.ReadFile(dst); string(data) != "new" {
		t.Errorf("destination not overwritten: %q", data)
	}
}

func TestCopyFile_MissingSource(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "dst")

	if err := CopyFile(filepath.Join(dir, "absent"), dst, false); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
	if Exists(dst) {
		t.Error("destination should not be created when the source is missing")
	}
}

func TestCopyFile_DirectorySource(t *testing.T) {
	dir := t.TempDir()
	if err := CopyFile(dir, filepath.Join(dir, "dst"), false); err == nil {
		t.Fatal("expected error copying a directory")
	}
}
