package slurp

import "bytes"

var newline = []byte{'\n'}

// SplitLines splits buf on every occurrence of delim and returns the pieces
// in order, without the delimiter. An empty delim means "\n".
//
// Content after the last delimiter becomes the last element; a trailing
// delimiter does not produce an empty last element. An empty buf yields an
// empty, non-nil slice.
//
// The returned lines are subslices of buf.
//
//	SplitLines([]byte("a\nb\nc"), nil) // ["a" "b" "c"]
//	SplitLines([]byte("a\nb\n"), nil)  // ["a" "b"]
//	SplitLines(nil, nil)               // []
func SplitLines(buf, delim []byte) [][]byte {
	return split(buf, delim, false)
}

// SplitLinesKeep is like [SplitLines] but every element except possibly the
// last keeps its trailing delimiter, so concatenating the result gives buf.
func SplitLinesKeep(buf, delim []byte) [][]byte {
	return split(buf, delim, true)
}

func split(buf, delim []byte, keep bool) [][]byte {
	if len(delim) == 0 {
		delim = newline
	}

	lines := make([][]byte, 0, bytes.Count(buf, delim)+1)

	for len(buf) > 0 {
		i := bytes.Index(buf, delim)
		if i < 0 {
			lines = append(lines, buf[:len(buf):len(buf)])

			break
		}

		end := i
		if keep {
			end += len(delim)
		}

		lines = append(lines, buf[:end:end])
		buf = buf[i+len(delim):]
	}

	return lines
}
