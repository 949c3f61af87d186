package slurp

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
)

func Test_Error_Matches_Kind_Sentinel_And_Cause(t *testing.T) {
	err := error(&Error{Op: "read_file", Path: "/x", Kind: KindOpen, Err: fs.ErrNotExist})

	if !errors.Is(err, ErrOpen) {
		t.Fatalf("errors.Is(err, ErrOpen)=false")
	}

	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("errors.Is(err, fs.ErrNotExist)=false")
	}

	if errors.Is(err, ErrRead) {
		t.Fatalf("errors.Is(err, ErrRead)=true")
	}

	if got, want := err.Error(), `read_file "/x": open failed: file does not exist`; got != want {
		t.Fatalf("Error()=%q, want %q", got, want)
	}
}

func Test_ErrMode_Silent_Returns_Error_Without_Logging(t *testing.T) {
	s, sink := newTestSlurper(t, nil)

	_, err := s.ReadFile(tempPath(t), ReadOptions{ErrMode: ErrModeSilent})
	if err == nil {
		t.Fatalf("err=nil, want error")
	}

	if got := sink.records(); len(got) != 0 {
		t.Fatalf("records=%q, want none", got)
	}
}

func Test_ErrMode_Log_Emits_Exactly_One_Record_And_Returns_Error(t *testing.T) {
	s, sink := newTestSlurper(t, nil)
	path := tempPath(t)

	err := s.WriteFile(path, WriteOptions{Atomic: true, Append: true, ErrMode: ErrModeLog}, []byte("x"))
	if !errors.Is(err, ErrOptions) {
		t.Fatalf("err=%v, want ErrOptions", err)
	}

	records := sink.records()
	if got, want := len(records), 1; got != want {
		t.Fatalf("records=%d, want %d: %q", got, want, records)
	}

	for _, want := range []string{"level=WARN", "op=write_file", "kind=\"invalid options\""} {
		if !strings.Contains(records[0], want) {
			t.Fatalf("record %q does not contain %q", records[0], want)
		}
	}
}

func Test_ErrMode_Fatal_Panics_With_FatalError_That_Catch_Recovers(t *testing.T) {
	s, sink := newTestSlurper(t, nil)
	path := tempPath(t)

	err := Catch(func() {
		_, _ = s.ReadFile(path, ReadOptions{})
		t.Errorf("ReadFile returned in fatal mode")
	})

	var fatal *FatalError
	if !errors.As(err, &fatal) {
		t.Fatalf("err=%v, want *FatalError", err)
	}

	if got, want := fatal.Err.Kind, KindOpen; got != want {
		t.Fatalf("kind=%v, want %v", got, want)
	}

	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("err=%v, want fs.ErrNotExist in chain", err)
	}

	if got := sink.records(); len(got) != 0 {
		t.Fatalf("records=%q, want none in fatal mode", got)
	}
}

func Test_Catch_Returns_Nil_When_Fn_Completes(t *testing.T) {
	if err := Catch(func() {}); err != nil {
		t.Fatalf("Catch=%v, want nil", err)
	}
}

func Test_Catch_Repanics_When_Value_Is_Not_FatalError(t *testing.T) {
	defer func() {
		if got, want := recover(), "boom"; got != want {
			t.Fatalf("recover()=%v, want %v", got, want)
		}
	}()

	_ = Catch(func() { panic("boom") })

	t.Fatalf("Catch swallowed a foreign panic")
}

func Test_ErrMode_UnmarshalText_Accepts_Names_And_Aliases(t *testing.T) {
	tests := []struct {
		in   string
		want ErrMode
	}{
		{in: "", want: ErrModeFatal},
		{in: "fatal", want: ErrModeFatal},
		{in: "croak", want: ErrModeFatal},
		{in: "log", want: ErrModeLog},
		{in: "carp", want: ErrModeLog},
		{in: "WARN", want: ErrModeLog},
		{in: "silent", want: ErrModeSilent},
		{in: "quiet", want: ErrModeSilent},
	}

	for _, tt := range tests {
		var got ErrMode
		if err := got.UnmarshalText([]byte(tt.in)); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", tt.in, err)
		}

		if got != tt.want {
			t.Fatalf("UnmarshalText(%q)=%v, want %v", tt.in, got, tt.want)
		}
	}

	var m ErrMode
	if err := m.UnmarshalText([]byte("loud")); err == nil {
		t.Fatalf("UnmarshalText(loud)=nil, want error")
	}
}

func Test_Format_And_Layer_UnmarshalText_Round_Trip_Names(t *testing.T) {
	for _, want := range allFormats {
		text, _ := want.MarshalText()

		var got Format
		if err := got.UnmarshalText(text); err != nil || got != want {
			t.Fatalf("Format round trip %q = (%v, %v), want %v", text, got, err, want)
		}
	}

	var f Format
	if err := f.UnmarshalText([]byte("lines-ref")); err != nil || f != FormatLinesRef {
		t.Fatalf("UnmarshalText(lines-ref)=(%v, %v), want lines_ref", f, err)
	}

	for _, want := range []Layer{LayerNone, LayerGzip, LayerZstd, LayerLZ4} {
		text, _ := want.MarshalText()

		var got Layer
		if err := got.UnmarshalText(text); err != nil || got != want {
			t.Fatalf("Layer round trip %q = (%v, %v), want %v", text, got, err, want)
		}
	}

	var l Layer
	if err := l.UnmarshalText([]byte("brotli")); err == nil {
		t.Fatalf("UnmarshalText(brotli)=nil, want error")
	}
}
