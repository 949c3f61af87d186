package slurp

// Result is the outcome of [Slurper.ReadFile].
//
// A Result is tagged with the [Format] it was produced in. The zero Result is
// the failure marker: OK reports false, and every accessor returns nil. A
// successful read of an empty file reports OK() == true with Len() == 0, so
// the two can never be confused.
type Result struct {
	format   Format
	ok       bool
	data     []byte
	dataRef  *[]byte
	lines    [][]byte
	linesRef *[][]byte
}

// OK reports whether the read succeeded.
func (r Result) OK() bool { return r.ok }

// Format returns the representation the result holds.
func (r Result) Format() Format { return r.format }

// Bytes returns the contents for [FormatScalar] and [FormatScalarRef]
// results (for the latter, the whole referenced buffer). Nil otherwise.
func (r Result) Bytes() []byte {
	switch {
	case !r.ok:
		return nil
	case r.format == FormatScalar:
		return r.data
	case r.format == FormatScalarRef:
		return *r.dataRef
	default:
		return nil
	}
}

// BytesRef returns the buffer pointer of a [FormatScalarRef] result. When
// ReadOptions.Buffer was set, it is that same pointer. Nil otherwise.
func (r Result) BytesRef() *[]byte {
	if !r.ok || r.format != FormatScalarRef {
		return nil
	}

	return r.dataRef
}

// Lines returns the lines of a [FormatLines] or [FormatLinesRef] result.
// The slice is non-nil for every successful line result, even when empty.
func (r Result) Lines() [][]byte {
	switch {
	case !r.ok:
		return nil
	case r.format == FormatLines:
		return r.lines
	case r.format == FormatLinesRef:
		return *r.linesRef
	default:
		return nil
	}
}

// LinesRef returns the line slice pointer of a [FormatLinesRef] result.
func (r Result) LinesRef() *[][]byte {
	if !r.ok || r.format != FormatLinesRef {
		return nil
	}

	return r.linesRef
}

// Len returns the number of bytes for scalar results and the number of lines
// for line results.
func (r Result) Len() int {
	if r.format.lines() {
		return len(r.Lines())
	}

	return len(r.Bytes())
}
