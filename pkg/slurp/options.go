package slurp

import (
	"bytes"
	"fmt"
	"os"
)

// Format selects the representation [Slurper.ReadFile] returns.
type Format uint8

const (
	// FormatScalar returns the contents as a byte slice. See [Result.Bytes].
	FormatScalar Format = iota

	// FormatScalarRef returns a pointer to the buffer holding the contents,
	// which is ReadOptions.Buffer when one was supplied. See [Result.BytesRef].
	FormatScalarRef

	// FormatLines returns the contents split by the delimiter. See [Result.Lines].
	FormatLines

	// FormatLinesRef returns a pointer to the line slice. See [Result.LinesRef].
	FormatLinesRef
)

var formatNames = [...]string{
	FormatScalar:    "scalar",
	FormatScalarRef: "scalar_ref",
	FormatLines:     "lines",
	FormatLinesRef:  "lines_ref",
}

func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}

	return fmt.Sprintf("format(%d)", uint8(f))
}

func (f Format) lines() bool {
	return f == FormatLines || f == FormatLinesRef
}

// UnmarshalText parses the names returned by [Format.String]. A dash may be
// used instead of the underscore.
func (f *Format) UnmarshalText(text []byte) error {
	name := string(bytes.ReplaceAll(bytes.ToLower(text), []byte("-"), []byte("_")))
	if name == "" {
		*f = FormatScalar

		return nil
	}

	for i, n := range formatNames {
		if n == name {
			*f = Format(i)

			return nil
		}
	}

	return fmt.Errorf("unknown format %q", text)
}

// MarshalText implements [encoding.TextMarshaler].
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

const (
	// DefaultBlockSize is the chunk size used when a file's size is not
	// known up front.
	DefaultBlockSize = 1 << 20

	// DefaultStreamThreshold is the payload size above which fragments are
	// written one by one instead of being joined first.
	DefaultStreamThreshold = 64 << 20

	// DefaultPerm is the mode used when a write creates a file (before umask).
	DefaultPerm os.FileMode = 0o666
)

// ReadOptions configures one read. The zero value reads the whole file as a
// byte slice in text mode and panics on failure.
type ReadOptions struct {
	// Binary disables newline translation. On platforms whose text files use
	// LF (everything but Windows) text and binary reads are identical.
	Binary bool

	// Buffer, when non-nil, receives the file's bytes appended after its
	// current contents, and is updated to the grown slice. No intermediate
	// buffer is allocated unless a Layer is set.
	Buffer *[]byte

	Format Format

	// Delimiter separates lines for the line formats. Empty means "\n".
	Delimiter []byte

	// KeepDelimiter keeps the delimiter at the end of each line.
	KeepDelimiter bool

	// BlockSize is the read size used when the file's size cannot be
	// trusted (zero-length stat, pipes, character devices). Zero means
	// [DefaultBlockSize].
	BlockSize int

	// Layer decodes the raw file contents before they are returned.
	Layer Layer

	ErrMode ErrMode
}

func (o ReadOptions) blockSize() int {
	if o.BlockSize > 0 {
		return o.BlockSize
	}

	return DefaultBlockSize
}

// WriteOptions configures one write. The zero value overwrites the file in
// place in text mode and panics on failure.
type WriteOptions struct {
	// Binary disables newline translation. See [ReadOptions.Binary].
	Binary bool

	// Append writes at the end of the file instead of replacing it.
	Append bool

	ErrMode ErrMode

	// Perm is the mode for a newly created file (before umask). Zero means
	// [DefaultPerm]. Existing files keep their mode.
	Perm os.FileMode

	// NoClobber fails with [KindOpen] if the file already exists.
	NoClobber bool

	// Atomic writes a temp file and renames it over the target instead of
	// overwriting in place. It cannot be combined with Append or NoClobber.
	// Perm is not applied: a replaced file keeps its mode, a new one gets the
	// temp file's.
	Atomic bool

	// Sync flushes written data to storage before the file is truncated and
	// closed.
	Sync bool

	// StreamThreshold is the total payload size above which fragments are
	// written one by one. Zero means [DefaultStreamThreshold].
	StreamThreshold int

	// Layer encodes the payload before it is written.
	Layer Layer
}

func (o WriteOptions) perm() os.FileMode {
	if o.Perm != 0 {
		return o.Perm
	}

	return DefaultPerm
}

func (o WriteOptions) streamThreshold() int {
	if o.StreamThreshold > 0 {
		return o.StreamThreshold
	}

	return DefaultStreamThreshold
}

func (o WriteOptions) validate() error {
	if o.Atomic && o.Append {
		return fmt.Errorf("atomic cannot be combined with append")
	}

	if o.Atomic && o.NoClobber {
		return fmt.Errorf("atomic cannot be combined with no_clobber")
	}

	if !o.Layer.valid() {
		return fmt.Errorf("unknown layer %d", uint8(o.Layer))
	}

	return nil
}

// DirOptions configures [Slurper.ReadDir].
type DirOptions struct {
	// KeepDotDot includes "." and ".." at the start of the listing.
	KeepDotDot bool

	// Prefix joins the directory path onto each name.
	Prefix bool

	ErrMode ErrMode
}
