package slurp

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/calvinalkan/slurp/pkg/fs"
)

// WriteFile writes the concatenation of data to path.
//
// Without opts.Append the file is overwritten in place: it is opened for
// writing at offset 0 without truncation, the new content is written over
// the old, and only then is the file truncated to the new length if it was
// longer before. A concurrent reader therefore sees old content, new content,
// or new content followed by the old tail, but never an empty file that had
// content. With opts.Append the data is written at the end of the file.
// Missing files are created with opts.Perm in both modes.
//
// Short writes are retried from the new offset. A write that accepts zero
// bytes or reports an OS error fails with [KindWrite]; how much of the
// payload reached the file is then undefined.
//
// A failure to close the file after everything was written is reported as a
// [KindClose] error with Complete set; the data is in place.
//
// WriteFile returns nil on success and an [*Error] surfaced according to
// opts.ErrMode otherwise.
func (s *Slurper) WriteFile(path string, opts WriteOptions, data ...[]byte) error {
	return s.write("write_file", path, opts, data)
}

// AppendFile is [Slurper.WriteFile] with opts.Append set.
func (s *Slurper) AppendFile(path string, opts WriteOptions, data ...[]byte) error {
	opts.Append = true

	return s.write("append_file", path, opts, data)
}

// OverwriteFile is [Slurper.WriteFile] with opts.Append cleared.
func (s *Slurper) OverwriteFile(path string, opts WriteOptions, data ...[]byte) error {
	opts.Append = false

	return s.write("overwrite_file", path, opts, data)
}

func (s *Slurper) write(op, path string, opts WriteOptions, data [][]byte) error {
	err := opts.validate()
	if err != nil {
		return s.fail(op, path, KindOptions, err, opts.ErrMode)
	}

	fragments := data

	if !opts.Binary && textCRLF {
		fragments = [][]byte{toCRLF(bytes.Join(fragments, nil))}
	}

	if opts.Layer != LayerNone {
		encoded, err := opts.Layer.encode(bytes.Join(fragments, nil))
		if err != nil {
			return s.fail(op, path, KindLayer, err, opts.ErrMode)
		}

		fragments = [][]byte{encoded}
	}

	if opts.Atomic {
		err := s.fs.WriteFileAtomic(path, bytes.NewReader(bytes.Join(fragments, nil)))
		if err != nil {
			return s.fail(op, path, KindWrite, err, opts.ErrMode)
		}

		return nil
	}

	return s.writeInPlace(op, path, opts, assemble(fragments, opts.streamThreshold()))
}

func (s *Slurper) writeInPlace(op, path string, opts WriteOptions, fragments [][]byte) error {
	flag := os.O_WRONLY | os.O_CREATE
	if opts.Append {
		flag |= os.O_APPEND
	}

	if opts.NoClobber {
		flag |= os.O_EXCL
	}

	file, err := s.fs.OpenFile(path, flag, opts.perm())
	if err != nil {
		return s.fail(op, path, KindOpen, err, opts.ErrMode)
	}

	h := handle{file: file}
	defer h.release()

	// -1: unknown, truncate unconditionally.
	prior := int64(-1)

	if !opts.Append {
		info, err := file.Stat()
		if err == nil {
			prior = info.Size()
		}
	}

	var written int64

	for _, fragment := range fragments {
		n, err := writeFull(file, fragment)
		written += int64(n)

		if err != nil {
			h.release()

			return s.fail(op, path, KindWrite, fmt.Errorf("wrote %d bytes: %w", written, err), opts.ErrMode)
		}
	}

	err = s.finish(file, opts, prior, written)
	if err != nil {
		h.release()

		return s.fail(op, path, KindWrite, err, opts.ErrMode)
	}

	closeErr := h.close()
	if closeErr != nil {
		e := &Error{Op: op, Path: path, Kind: KindClose, Err: closeErr, Complete: true}

		return s.policy.report(e, opts.ErrMode)
	}

	return nil
}

// finish runs the optional durability barrier and cuts off the old tail.
// The file is only shortened once the new content is fully written.
func (*Slurper) finish(file fs.File, opts WriteOptions, prior, written int64) error {
	if opts.Sync {
		err := datasync(file)
		if err != nil {
			return fmt.Errorf("sync: %w", err)
		}
	}

	if opts.Append || (prior >= 0 && written >= prior) {
		return nil
	}

	err := file.Truncate(written)
	if err != nil {
		return fmt.Errorf("truncate to %d: %w", written, err)
	}

	if opts.Sync {
		err := datasync(file)
		if err != nil {
			return fmt.Errorf("sync after truncate: %w", err)
		}
	}

	return nil
}

// assemble joins fragments into one buffer when their total size is at most
// threshold, so the common case is a single write call. A single fragment is
// returned as is.
func assemble(fragments [][]byte, threshold int) [][]byte {
	if len(fragments) < 2 {
		return fragments
	}

	total := 0
	for _, f := range fragments {
		total += len(f)
	}

	if total > threshold {
		return fragments
	}

	return [][]byte{bytes.Join(fragments, nil)}
}

var errZeroWrite = errors.New("write accepted zero bytes")

// writeFull writes all of p, resuming after short writes.
//
// A short write is a positive count with either a nil error or
// [io.ErrShortWrite]. Each retry advances the offset by at least one byte, so
// at most len(p) writes are issued.
func writeFull(w io.Writer, p []byte) (int, error) {
	written := 0

	for written < len(p) {
		n, err := w.Write(p[written:])
		if n < 0 || n > len(p)-written {
			return written, fmt.Errorf("write returned invalid count %d", n)
		}

		written += n

		if err != nil {
			if n > 0 && errors.Is(err, io.ErrShortWrite) {
				continue
			}

			return written, err
		}

		if n == 0 {
			return written, errZeroWrite
		}
	}

	return written, nil
}
