package fs

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func Test_RealFS_OpenFile_Does_Not_Truncate_When_O_TRUNC_Is_Absent(t *testing.T) {
	fs := NewReal()
	path := filepath.Join(t.TempDir(), "f.txt")

	if err := os.WriteFile(path, []byte("hello world"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	f, err := fs.OpenFile(path, os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}

	if _, err := f.Write([]byte("HELLO")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if got, want := string(got), "HELLO world"; got != want {
		t.Fatalf("content=%q, want %q", got, want)
	}
}

func Test_RealFS_Truncate_Shortens_File_Through_Handle(t *testing.T) {
	fs := NewReal()
	path := filepath.Join(t.TempDir(), "f.txt")

	if err := os.WriteFile(path, []byte("0123456789"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	f, err := fs.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer f.Close()

	if err := f.Truncate(4); err != nil {
		t.Fatalf("Truncate: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}

	if got, want := info.Size(), int64(4); got != want {
		t.Fatalf("size=%d, want %d", got, want)
	}
}

func Test_RealFS_WriteFileAtomic_Replaces_Content_When_File_Exists(t *testing.T) {
	fs := NewReal()
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")

	if err := os.WriteFile(path, []byte("a much longer old content"), 0o640); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if err := fs.WriteFileAtomic(path, strings.NewReader("new")); err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if got, want := string(got), "new"; got != want {
		t.Fatalf("content=%q, want %q", got, want)
	}

	entries, err := fs.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}

	if got, want := len(entries), 1; got != want {
		t.Fatalf("entries=%d, want %d (temp file left behind?)", got, want)
	}
}

func Test_RealFS_Open_Returns_ErrNotExist_When_Path_Is_Missing(t *testing.T) {
	fs := NewReal()

	_, err := fs.Open(filepath.Join(t.TempDir(), "missing"))

	if got, want := err, os.ErrNotExist; !errors.Is(got, want) {
		t.Fatalf("err=%v, want=%v", got, want)
	}
}
