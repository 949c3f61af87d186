package slurp

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind uint8

const (
	// KindOpen: the path could not be opened (missing, permission denied,
	// missing parent, already exists with NoClobber, ...).
	KindOpen Kind = iota + 1

	// KindRead: the OS reported an error while reading.
	KindRead

	// KindIncompleteRead: a read returned zero bytes before the expected
	// size was reached. EOF and error are indistinguishable here, so it is
	// treated as an error.
	KindIncompleteRead

	// KindWrite: a write returned zero bytes or an OS error, or the
	// post-write truncate or sync failed. How much of the payload reached
	// the file is undefined.
	KindWrite

	// KindClose: releasing the handle failed. When [Error.Complete] is true
	// the data transfer itself had already finished.
	KindClose

	// KindLayer: the compression layer failed to encode or decode.
	KindLayer

	// KindOptions: the options are contradictory.
	KindOptions
)

// Sentinels matched by [errors.Is] against any [*Error] of the same kind.
var (
	ErrOpen           = errors.New("open failed")
	ErrRead           = errors.New("read failed")
	ErrIncompleteRead = errors.New("incomplete read")
	ErrWrite          = errors.New("write failed")
	ErrClose          = errors.New("close failed")
	ErrLayer          = errors.New("layer failed")
	ErrOptions        = errors.New("invalid options")
)

func (k Kind) sentinel() error {
	switch k {
	case KindOpen:
		return ErrOpen
	case KindRead:
		return ErrRead
	case KindIncompleteRead:
		return ErrIncompleteRead
	case KindWrite:
		return ErrWrite
	case KindClose:
		return ErrClose
	case KindLayer:
		return ErrLayer
	case KindOptions:
		return ErrOptions
	default:
		return nil
	}
}

func (k Kind) String() string {
	if s := k.sentinel(); s != nil {
		return s.Error()
	}

	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Error is the failure returned by every slurp operation.
//
// It unwraps to both the kind sentinel (e.g. [ErrOpen]) and the underlying
// cause, so errors.Is(err, ErrOpen) and errors.Is(err, fs.ErrNotExist) both
// work.
type Error struct {
	// Op is the operation that failed: "read_file", "write_file", ...
	Op string

	// Path is the file the operation was acting on.
	Path string

	Kind Kind

	// Err is the underlying cause. May be nil for option errors.
	Err error

	// Complete reports that every byte was transferred before the failure.
	// Only a [KindClose] error can be complete.
	Complete bool
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %q: %s", e.Op, e.Path, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := e.Kind.sentinel(); s != nil {
		errs = append(errs, s)
	}

	if e.Err != nil {
		errs = append(errs, e.Err)
	}

	return errs
}

// FatalError is the panic value raised in [ErrModeFatal].
//
// Use [Catch] to turn it back into an error at an isolation boundary.
type FatalError struct {
	Err *Error
}

func (e *FatalError) Error() string {
	return "slurp: fatal: " + e.Err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// Catch runs fn and recovers a [*FatalError] raised inside it, returning it
// as an error. Any other panic is re-raised unchanged.
//
// Catch returns nil when fn completes without a fatal failure.
func Catch(fn func()) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}

		fatal, ok := r.(*FatalError)
		if !ok {
			panic(r)
		}

		err = fatal
	}()

	fn()

	return nil
}
