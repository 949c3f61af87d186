//go:build !linux

package slurp

import "github.com/calvinalkan/slurp/pkg/fs"

func datasync(f fs.File) error {
	return f.Sync()
}

func adviseSequential(fs.File) {}
