// Package slurp reads and writes whole files in one logical step.
//
// [Slurper.ReadFile] ("slurp") opens a file, sizes its buffer from the file's
// metadata, and reads until that many bytes have arrived, retrying short
// reads. The result comes back in the representation chosen by
// [ReadOptions.Format]: a byte slice, a pointer to the buffer, a slice of
// lines, or a pointer to that slice.
//
// [Slurper.WriteFile] ("spew") writes a list of fragments, retrying short
// writes. An overwrite opens the existing file in place instead of
// truncating or recreating it, and only shortens it after the new content is
// fully written, so a concurrent reader never sees an empty file that was
// not empty before. Append and atomic temp-file-and-rename modes are
// available through [WriteOptions].
//
// Failures are surfaced according to [ErrMode]: panic with a [*FatalError]
// (the default), log one warning and return, or return silently. In every
// mode the returned [Result] of a failed read reports OK() == false, which no
// successful read produces.
//
// Example:
//
//	res, err := slurp.ReadFile("hosts", slurp.ReadOptions{
//	    Format:  slurp.FormatLines,
//	    ErrMode: slurp.ErrModeSilent,
//	})
//	if err != nil {
//	    return err
//	}
//	for _, line := range res.Lines() {
//	    ...
//	}
package slurp

import (
	"log/slog"

	"github.com/calvinalkan/slurp/pkg/fs"
)

// Slurper performs whole-file operations on an [fs.FS].
//
// A Slurper holds no per-call state and is safe for concurrent use as long as
// its [fs.FS] is.
type Slurper struct {
	fs     fs.FS
	policy policy
}

// New returns a Slurper that uses fsys for all file access and logger for
// [ErrModeLog] diagnostics. A nil logger means [slog.Default] at the time of
// the diagnostic. Panics if fsys is nil.
func New(fsys fs.FS, logger *slog.Logger) *Slurper {
	if fsys == nil {
		panic("fs is nil")
	}

	return &Slurper{
		fs:     fsys,
		policy: policy{logger: logger},
	}
}

func (s *Slurper) fail(op, path string, kind Kind, err error, mode ErrMode) error {
	return s.policy.report(&Error{Op: op, Path: path, Kind: kind, Err: err}, mode)
}

func onDisk() *Slurper {
	return New(fs.NewReal(), nil)
}

// ReadFile reads path from the real filesystem. See [Slurper.ReadFile].
func ReadFile(path string, opts ReadOptions) (Result, error) {
	return onDisk().ReadFile(path, opts)
}

// Slurp returns the whole content of path in binary mode.
func Slurp(path string) ([]byte, error) {
	res, err := onDisk().ReadFile(path, ReadOptions{Binary: true, ErrMode: ErrModeSilent})

	return res.Bytes(), err
}

// SlurpLines returns the lines of path split on "\n".
func SlurpLines(path string) ([][]byte, error) {
	res, err := onDisk().ReadFile(path, ReadOptions{Format: FormatLines, ErrMode: ErrModeSilent})

	return res.Lines(), err
}

// WriteFile writes data to path on the real filesystem. See [Slurper.WriteFile].
func WriteFile(path string, opts WriteOptions, data ...[]byte) error {
	return onDisk().WriteFile(path, opts, data...)
}

// Spew overwrites path in binary mode with the concatenation of data.
func Spew(path string, data ...[]byte) error {
	return onDisk().WriteFile(path, WriteOptions{Binary: true, ErrMode: ErrModeSilent}, data...)
}

// AppendFile appends data to path on the real filesystem. See [Slurper.AppendFile].
func AppendFile(path string, opts WriteOptions, data ...[]byte) error {
	return onDisk().AppendFile(path, opts, data...)
}

// OverwriteFile overwrites path on the real filesystem. See [Slurper.OverwriteFile].
func OverwriteFile(path string, opts WriteOptions, data ...[]byte) error {
	return onDisk().OverwriteFile(path, opts, data...)
}

// PrependFile inserts data at the start of path. See [Slurper.PrependFile].
func PrependFile(path string, opts WriteOptions, data ...[]byte) error {
	return onDisk().PrependFile(path, opts, data...)
}

// EditFile rewrites path through fn. See [Slurper.EditFile].
func EditFile(path string, opts WriteOptions, fn func([]byte) []byte) error {
	return onDisk().EditFile(path, opts, fn)
}

// EditFileLines rewrites path line by line through fn. See [Slurper.EditFileLines].
func EditFileLines(path string, opts WriteOptions, fn func(line []byte) ([]byte, bool)) error {
	return onDisk().EditFileLines(path, opts, fn)
}

// ReadDir lists the entries of path. See [Slurper.ReadDir].
func ReadDir(path string, opts DirOptions) ([]string, error) {
	return onDisk().ReadDir(path, opts)
}
