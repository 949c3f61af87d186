package slurp

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
)

// ErrMode selects how a failure is surfaced.
type ErrMode uint8

const (
	// ErrModeFatal panics with a [*FatalError]. It is the zero value.
	ErrModeFatal ErrMode = iota

	// ErrModeLog emits one warning on the logger and returns the error.
	ErrModeLog

	// ErrModeSilent returns the error without any diagnostic.
	ErrModeSilent
)

var errModeNames = [...]string{
	ErrModeFatal:  "fatal",
	ErrModeLog:    "log",
	ErrModeSilent: "silent",
}

func (m ErrMode) String() string {
	if int(m) < len(errModeNames) {
		return errModeNames[m]
	}

	return fmt.Sprintf("errmode(%d)", uint8(m))
}

// UnmarshalText accepts "fatal", "log", "silent" and "croak" (alias for
// "fatal"), "carp" (alias for "log"), "quiet" (alias for "silent").
func (m *ErrMode) UnmarshalText(text []byte) error {
	switch string(bytes.ToLower(text)) {
	case "fatal", "croak", "":
		*m = ErrModeFatal
	case "log", "carp", "warn":
		*m = ErrModeLog
	case "silent", "quiet":
		*m = ErrModeSilent
	default:
		return fmt.Errorf("unknown err_mode %q", text)
	}

	return nil
}

// MarshalText implements [encoding.TextMarshaler].
func (m ErrMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// policy surfaces failures according to an [ErrMode].
type policy struct {
	logger *slog.Logger
}

// report surfaces e exactly once and returns it.
//
// In fatal mode report does not return.
func (p policy) report(e *Error, mode ErrMode) error {
	switch mode {
	case ErrModeSilent:
		return e

	case ErrModeLog:
		p.log(e)

		return e

	default:
		panic(&FatalError{Err: e})
	}
}

func (p policy) log(e *Error) {
	logger := p.logger
	if logger == nil {
		logger = slog.Default()
	}

	attrs := []slog.Attr{
		slog.String("op", e.Op),
		slog.String("path", e.Path),
		slog.String("kind", e.Kind.String()),
	}

	if e.Err != nil {
		attrs = append(attrs, slog.String("err", e.Err.Error()))
	}

	if e.Complete {
		attrs = append(attrs, slog.Bool("complete", true))
	}

	logger.LogAttrs(context.Background(), slog.LevelWarn, "slurp: "+e.Op+" failed", attrs...)
}
