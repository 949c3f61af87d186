// Package fs provides the filesystem seam used by slurp.
//
// The main types are:
//   - [FS]: interface for the filesystem operations slurp performs
//   - [File]: interface for open files (satisfied by [os.File])
//   - [Real]: production implementation using [os] package
//   - [Chaos]: testing implementation that injects short counts and failures
//
// Example usage:
//
//	fsys := fs.NewReal()
//	f, err := fsys.Open("config.json")
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
package fs

import (
	"io"
	"os"
)

// File represents an OS-backed open file descriptor.
//
// This interface is satisfied by [os.File]. Implementations must behave like
// [os.File]: Read may return fewer bytes than requested with a nil error,
// Write may return n < len(p) together with an error, and [File.Fd] returns a
// descriptor usable with syscalls until the file is closed.
//
// Note: [File] includes [io.Writer] even for read-only handles. Like [os.File],
// implementations should return an error from Write when the file wasn't opened
// for writing.
type File interface {
	io.ReadWriteCloser

	// Fd returns the file descriptor. See [os.File.Fd].
	Fd() uintptr

	// Stat returns the [os.FileInfo] for this file. See [os.File.Stat].
	Stat() (os.FileInfo, error)

	// Sync commits the file's contents to disk. See [os.File.Sync].
	Sync() error

	// Truncate changes the size of the file. See [os.File.Truncate].
	// It does not change the I/O offset.
	Truncate(size int64) error
}

// FS defines the filesystem operations slurp needs.
//
// All methods mirror their [os] package equivalents but can be intercepted
// for testing with fault injection.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type FS interface {
	// Open opens a file for reading. See [os.Open].
	Open(path string) (File, error)

	// OpenFile opens a file with specified flags and permissions. See [os.OpenFile].
	OpenFile(path string, flag int, perm os.FileMode) (File, error)

	// WriteFileAtomic replaces path with the contents of r by writing a
	// temporary file in the same directory and renaming it over path.
	// Readers see either the old or the new file, never a mix.
	WriteFileAtomic(path string, r io.Reader) error

	// ReadDir reads a directory and returns its entries. See [os.ReadDir].
	// Entries are sorted by name.
	ReadDir(path string) ([]os.DirEntry, error)
}

// Compile-time interface checks.
var _ File = (*os.File)(nil)
