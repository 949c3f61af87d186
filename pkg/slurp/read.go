package slurp

import (
	"errors"
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/calvinalkan/slurp/pkg/fs"
)

// maxConsecutiveEmptyReads bounds how many (0, nil) reads the size-unknown
// loop tolerates before giving up, as in bufio.
const maxConsecutiveEmptyReads = 100

var errFileTooLarge = errors.New("file does not fit in memory")

// ReadFile reads the whole of path and returns it in the representation
// selected by opts.Format.
//
// The expected size is taken from the open file's metadata. The read loop
// retries short reads and stops when that many bytes have arrived. A read
// that returns zero bytes earlier fails with [KindIncompleteRead]. When the
// size is zero or the file is not a regular file, the file is read in
// opts.BlockSize chunks until EOF instead.
//
// When opts.Buffer is set, the bytes are appended to *opts.Buffer and
// *opts.Buffer is updated, even if a later step fails.
//
// On failure the returned Result is the zero Result and err is an [*Error],
// surfaced according to opts.ErrMode. A failure to close the file after a
// complete read returns a valid Result together with a [KindClose] error
// whose Complete field is true.
func (s *Slurper) ReadFile(path string, opts ReadOptions) (Result, error) {
	return s.read("read_file", path, opts)
}

func (s *Slurper) read(op, path string, opts ReadOptions) (Result, error) {
	if opts.Format > FormatLinesRef {
		return Result{}, s.fail(op, path, KindOptions, fmt.Errorf("unknown format %d", uint8(opts.Format)), opts.ErrMode)
	}

	if !opts.Layer.valid() {
		return Result{}, s.fail(op, path, KindOptions, fmt.Errorf("unknown layer %d", uint8(opts.Layer)), opts.ErrMode)
	}

	file, err := s.fs.Open(path)
	if err != nil {
		return Result{}, s.fail(op, path, KindOpen, err, opts.ErrMode)
	}

	h := handle{file: file}
	defer h.release()

	var buf []byte
	if opts.Buffer != nil {
		buf = *opts.Buffer
	}

	start := len(buf)

	// A layer needs the raw bytes apart from the decoded ones.
	raw := buf
	if opts.Layer != LayerNone {
		raw = nil
	}

	raw, kind, err := readAll(file, raw, opts.blockSize())
	if opts.Layer == LayerNone {
		buf = raw
	}

	closeErr := h.close()

	if err != nil {
		s.keep(opts, buf)

		return Result{}, s.fail(op, path, kind, errors.Join(err, closeErr), opts.ErrMode)
	}

	if opts.Layer != LayerNone {
		buf, err = opts.Layer.decode(buf, raw)
		if err != nil {
			s.keep(opts, buf)

			return Result{}, s.fail(op, path, KindLayer, err, opts.ErrMode)
		}
	}

	if !opts.Binary && textCRLF {
		buf = fromCRLF(buf, start)
	}

	s.keep(opts, buf)

	res := newResult(opts, buf, start)

	if closeErr != nil {
		e := &Error{Op: op, Path: path, Kind: KindClose, Err: closeErr, Complete: true}

		return res, s.policy.report(e, opts.ErrMode)
	}

	return res, nil
}

// keep publishes buf to the caller's buffer, if any.
func (*Slurper) keep(opts ReadOptions, buf []byte) {
	if opts.Buffer != nil {
		*opts.Buffer = buf
	}
}

func newResult(opts ReadOptions, buf []byte, start int) Result {
	content := buf[start:]
	if content == nil {
		content = []byte{}
	}

	res := Result{format: opts.Format, ok: true}

	switch opts.Format {
	case FormatScalar:
		if opts.Buffer != nil {
			// Detach from the caller's buffer, which the caller may reuse.
			content = slices.Clone(content)
		}

		res.data = content

	case FormatScalarRef:
		if opts.Buffer != nil {
			res.dataRef = opts.Buffer
		} else {
			res.dataRef = &content
		}

	case FormatLines, FormatLinesRef:
		var lines [][]byte
		if opts.KeepDelimiter {
			lines = SplitLinesKeep(content, opts.Delimiter)
		} else {
			lines = SplitLines(content, opts.Delimiter)
		}

		if opts.Format == FormatLinesRef {
			res.linesRef = &lines
		} else {
			res.lines = lines
		}
	}

	return res
}

// readAll appends the rest of file to buf.
//
// It returns the grown buffer, which holds every byte that was transferred
// even on failure, and the kind of failure if any.
func readAll(file fs.File, buf []byte, blockSize int) ([]byte, Kind, error) {
	info, err := file.Stat()
	if err != nil || !info.Mode().IsRegular() || info.Size() <= 0 {
		return readUntilEOF(file, buf, blockSize)
	}

	size := info.Size()
	if size > int64(math.MaxInt-len(buf)) {
		return buf, KindRead, fmt.Errorf("%d bytes: %w", size, errFileTooLarge)
	}

	adviseSequential(file)

	return readExpected(file, buf, int(size))
}

// readExpected reads until expected more bytes have been appended to buf.
//
// Every iteration either advances the offset or ends the loop, so at most
// expected+1 reads are issued.
func readExpected(r io.Reader, buf []byte, expected int) ([]byte, Kind, error) {
	off := len(buf)
	want := off + expected
	buf = slices.Grow(buf, expected)[:want]

	for off < want {
		n, err := r.Read(buf[off:want])
		if n < 0 || n > want-off {
			return buf[:off], KindRead, fmt.Errorf("read returned invalid count %d", n)
		}

		off += n

		if err != nil && !errors.Is(err, io.EOF) {
			return buf[:off], KindRead, err
		}

		if n == 0 {
			got := off - (want - expected)

			return buf[:off], KindIncompleteRead, fmt.Errorf("got %d of %d bytes: %w", got, expected, io.ErrUnexpectedEOF)
		}
	}

	return buf, 0, nil
}

// readUntilEOF appends blockSize chunks of r to buf until EOF.
func readUntilEOF(r io.Reader, buf []byte, blockSize int) ([]byte, Kind, error) {
	empty := 0

	for {
		buf = slices.Grow(buf, blockSize)

		n, err := r.Read(buf[len(buf):cap(buf)])
		if n < 0 || n > cap(buf)-len(buf) {
			return buf, KindRead, fmt.Errorf("read returned invalid count %d", n)
		}

		buf = buf[:len(buf)+n]

		if errors.Is(err, io.EOF) {
			return buf, 0, nil
		}

		if err != nil {
			return buf, KindRead, err
		}

		if n > 0 {
			empty = 0

			continue
		}

		empty++
		if empty >= maxConsecutiveEmptyReads {
			return buf, KindIncompleteRead, io.ErrNoProgress
		}
	}
}
