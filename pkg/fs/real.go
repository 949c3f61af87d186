package fs

import (
	"io"
	"os"

	"github.com/natefinch/atomic"
)

// Real implements [FS] using the real filesystem.
//
// All methods are passthroughs to the [os] package with identical behavior
// and error semantics, except [Real.WriteFileAtomic] which delegates to
// [atomic.WriteFile].
type Real struct{}

// NewReal returns a new [Real] filesystem.
func NewReal() *Real {
	return &Real{}
}

// A passthrough wrapper for [os.Open].
func (r *Real) Open(path string) (File, error) {
	return os.Open(path)
}

// A passthrough wrapper for [os.OpenFile].
func (r *Real) OpenFile(path string, flag int, perm os.FileMode) (File, error) {
	return os.OpenFile(path, flag, perm)
}

// WriteFileAtomic writes r to a temp file next to path and renames it over
// path. An existing file's permissions are carried over to the replacement.
func (r *Real) WriteFileAtomic(path string, reader io.Reader) error {
	return atomic.WriteFile(path, reader)
}

// A passthrough wrapper for [os.ReadDir].
func (r *Real) ReadDir(path string) ([]os.DirEntry, error) {
	return os.ReadDir(path)
}

// Compile-time interface check.
var _ FS = (*Real)(nil)
