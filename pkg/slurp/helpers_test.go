package slurp

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/calvinalkan/slurp/pkg/fs"
)

// logSink collects slog records written by a Slurper under test.
type logSink struct {
	buf bytes.Buffer
}

func (l *logSink) records() []string {
	out := strings.TrimSpace(l.buf.String())
	if out == "" {
		return nil
	}

	return strings.Split(out, "\n")
}

func newTestSlurper(t *testing.T, fsys fs.FS) (*Slurper, *logSink) {
	t.Helper()

	if fsys == nil {
		fsys = fs.NewReal()
	}

	sink := &logSink{}
	logger := slog.New(slog.NewTextHandler(&sink.buf, nil))

	return New(fsys, logger), sink
}

func tempPath(t *testing.T) string {
	t.Helper()

	return filepath.Join(t.TempDir(), "t.tmp")
}

func writeFixture(t *testing.T, path string, content []byte) {
	t.Helper()

	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
}

func readFixture(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	return data
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
