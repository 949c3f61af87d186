package slurp

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func toStrings(lines [][]byte) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = string(l)
	}

	return out
}

func Test_SplitLines_Splits_On_Delimiter(t *testing.T) {
	tests := []struct {
		name  string
		buf   string
		delim string
		want  []string
	}{
		{name: "three lines", buf: "a\nb\nc", delim: "\n", want: []string{"a", "b", "c"}},
		{name: "two lines", buf: "a\nb", delim: "\n", want: []string{"a", "b"}},
		{name: "empty", buf: "", delim: "\n", want: []string{}},
		{name: "trailing delimiter", buf: "a\nb\n", delim: "\n", want: []string{"a", "b"}},
		{name: "blank line kept", buf: "a\n\nb", delim: "\n", want: []string{"a", "", "b"}},
		{name: "only delimiter", buf: "\n", delim: "\n", want: []string{""}},
		{name: "no delimiter", buf: "abcdef", delim: "\n", want: []string{"abcdef"}},
		{name: "default delimiter", buf: "x\ny", delim: "", want: []string{"x", "y"}},
		{name: "multi-byte delimiter", buf: "a\r\nb\r\n", delim: "\r\n", want: []string{"a", "b"}},
		{name: "paragraph delimiter", buf: "p1\n\np2", delim: "\n\n", want: []string{"p1", "p2"}},
		{name: "null bytes", buf: "a\x00b\nc", delim: "\n", want: []string{"a\x00b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitLines([]byte(tt.buf), []byte(tt.delim))

			if diff := cmp.Diff(tt.want, toStrings(got)); diff != "" {
				t.Fatalf("SplitLines(%q, %q) mismatch (-want +got):\n%s", tt.buf, tt.delim, diff)
			}
		})
	}
}

func Test_SplitLines_Returns_NonNil_Empty_Slice_When_Buffer_Is_Empty(t *testing.T) {
	got := SplitLines(nil, nil)

	if got == nil {
		t.Fatalf("SplitLines(nil)=nil, want empty non-nil slice")
	}

	if len(got) != 0 {
		t.Fatalf("len=%d, want 0", len(got))
	}
}

func Test_SplitLinesKeep_Concatenates_Back_To_Input(t *testing.T) {
	for _, buf := range []string{"", "a", "a\n", "a\nb", "a\n\nb\n", "\n\n"} {
		lines := SplitLinesKeep([]byte(buf), nil)

		joined := ""
		for _, l := range lines {
			joined += string(l)
		}

		if joined != buf {
			t.Fatalf("join(SplitLinesKeep(%q))=%q", buf, joined)
		}
	}

	if diff := cmp.Diff([]string{"a\n", "b"}, toStrings(SplitLinesKeep([]byte("a\nb"), nil))); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func Test_SplitLinesKeep_Returns_Lines_That_Cannot_Grow_Into_Each_Other(t *testing.T) {
	lines := SplitLinesKeep([]byte("ab\ncd"), nil)

	_ = append(lines[0], 'X')

	if got, want := string(lines[1]), "cd"; got != want {
		t.Fatalf("appending to line 0 changed line 1 to %q, want %q", got, want)
	}
}
