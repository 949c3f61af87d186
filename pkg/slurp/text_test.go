package slurp

import "testing"

func Test_FromCRLF_Rewrites_Only_After_Offset(t *testing.T) {
	buf := []byte("a\r\nb\r\nc\rd\r\n")

	got := fromCRLF(buf, 3)

	if want := "a\r\nb\nc\rd\n"; string(got) != want {
		t.Fatalf("fromCRLF=%q, want %q", got, want)
	}
}

func Test_ToCRLF_Translates_Bare_Newlines_Only(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{in: "", want: ""},
		{in: "no newline", want: "no newline"},
		{in: "a\nb\n", want: "a\r\nb\r\n"},
		{in: "a\r\nb\n", want: "a\r\nb\r\n"},
		{in: "\n", want: "\r\n"},
	}

	for _, tt := range tests {
		if got := string(toCRLF([]byte(tt.in))); got != tt.want {
			t.Fatalf("toCRLF(%q)=%q, want %q", tt.in, got, tt.want)
		}
	}
}
