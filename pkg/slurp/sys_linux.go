package slurp

import (
	"os"

	"github.com/calvinalkan/slurp/pkg/fs"
	"golang.org/x/sys/unix"
)

// datasync flushes file data, skipping metadata that is not needed to read
// it back. Wrapped files fall back to a full Sync.
func datasync(f fs.File) error {
	osFile, ok := f.(*os.File)
	if !ok {
		return f.Sync()
	}

	err := unix.Fdatasync(int(osFile.Fd()))
	if err != nil {
		return &os.PathError{Op: "fdatasync", Path: osFile.Name(), Err: err}
	}

	return nil
}

// adviseSequential tells the kernel the whole file is about to be read front
// to back. Failure only loses read-ahead, so it is ignored.
func adviseSequential(f fs.File) {
	_ = unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_SEQUENTIAL)
}
