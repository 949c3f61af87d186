package slurp

import (
	"bytes"
	"runtime"
)

// textCRLF reports whether text mode translates line endings on this platform.
const textCRLF = runtime.GOOS == "windows"

var crlf = []byte("\r\n")

// fromCRLF rewrites every "\r\n" in buf[from:] to "\n" in place and returns
// the shortened slice.
func fromCRLF(buf []byte, from int) []byte {
	out := from

	for i := from; i < len(buf); i++ {
		if buf[i] == '\r' && i+1 < len(buf) && buf[i+1] == '\n' {
			continue
		}

		buf[out] = buf[i]
		out++
	}

	return buf[:out]
}

// toCRLF returns p with every "\n" not already preceded by "\r" turned into
// "\r\n". p is returned unchanged when it has no bare newline.
func toCRLF(p []byte) []byte {
	n := bytes.Count(p, newline) - bytes.Count(p, crlf)
	if n == 0 {
		return p
	}

	out := make([]byte, 0, len(p)+n)

	for i, c := range p {
		if c == '\n' && (i == 0 || p[i-1] != '\r') {
			out = append(out, '\r')
		}

		out = append(out, c)
	}

	return out
}
