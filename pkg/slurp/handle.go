package slurp

import "github.com/calvinalkan/slurp/pkg/fs"

// handle closes a file exactly once. close reports the error; release, meant
// for defer, closes a still-open file on early returns and panics and drops
// the error.
type handle struct {
	file   fs.File
	closed bool
}

func (h *handle) close() error {
	if h.closed {
		return nil
	}

	h.closed = true

	return h.file.Close()
}

func (h *handle) release() {
	_ = h.close()
}
