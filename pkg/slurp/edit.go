package slurp

import "errors"

// PrependFile rewrites path with data in front of its current content.
//
// The current content is read with the same Binary and Layer settings used
// for the write. The file must exist.
func (s *Slurper) PrependFile(path string, opts WriteOptions, data ...[]byte) error {
	const op = "prepend_file"

	old, err := s.readForEdit(op, path, opts)
	if err != nil {
		return err
	}

	opts.Append = false

	return s.write(op, path, opts, append(data[:len(data):len(data)], old))
}

// EditFile replaces the content of path with fn(content).
//
// fn may modify and return its argument.
func (s *Slurper) EditFile(path string, opts WriteOptions, fn func([]byte) []byte) error {
	const op = "edit_file"

	old, err := s.readForEdit(op, path, opts)
	if err != nil {
		return err
	}

	opts.Append = false

	return s.write(op, path, opts, [][]byte{fn(old)})
}

// EditFileLines passes each line of path, including its trailing "\n", to
// fn and writes back the returned lines. Returning false drops the line.
func (s *Slurper) EditFileLines(path string, opts WriteOptions, fn func(line []byte) ([]byte, bool)) error {
	const op = "edit_file_lines"

	old, err := s.readForEdit(op, path, opts)
	if err != nil {
		return err
	}

	lines := SplitLinesKeep(old, nil)
	out := make([][]byte, 0, len(lines))

	for _, line := range lines {
		edited, keep := fn(line)
		if keep {
			out = append(out, edited)
		}
	}

	opts.Append = false

	return s.write(op, path, opts, out)
}

// readForEdit reads path for a read-modify-write operation and surfaces a
// failure under op.
func (s *Slurper) readForEdit(op, path string, opts WriteOptions) ([]byte, error) {
	res, err := s.read(op, path, ReadOptions{
		Binary:  opts.Binary,
		Layer:   opts.Layer,
		ErrMode: ErrModeSilent,
	})
	if err == nil {
		return res.Bytes(), nil
	}

	var e *Error
	if !errors.As(err, &e) {
		return nil, err
	}

	if e.Kind == KindClose {
		// The content was read completely.
		return res.Bytes(), nil
	}

	return nil, s.policy.report(e, opts.ErrMode)
}
