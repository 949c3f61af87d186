package slurp

import "path/filepath"

// ReadDir returns the names of the entries in path, sorted by name.
//
// "." and ".." are left out unless opts.KeepDotDot is set, in which case
// they come first. With opts.Prefix each name is joined onto path.
func (s *Slurper) ReadDir(path string, opts DirOptions) ([]string, error) {
	const op = "read_dir"

	entries, err := s.fs.ReadDir(path)
	if err != nil {
		return nil, s.fail(op, path, KindOpen, err, opts.ErrMode)
	}

	names := make([]string, 0, len(entries)+2)
	if opts.KeepDotDot {
		names = append(names, ".", "..")
	}

	for _, entry := range entries {
		names = append(names, entry.Name())
	}

	if opts.Prefix {
		for i, name := range names {
			names[i] = filepath.Join(path, name)
		}
	}

	return names, nil
}
