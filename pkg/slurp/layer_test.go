package slurp

import (
	"bytes"
	"errors"
	"testing"
)

func Test_ReadFile_Decodes_What_WriteFile_Encoded_For_Every_Layer(t *testing.T) {
	payload := bytes.Repeat([]byte("compressible line of text\n"), 4096)

	for _, layer := range []Layer{LayerNone, LayerGzip, LayerZstd, LayerLZ4} {
		t.Run(layer.String(), func(t *testing.T) {
			s, _ := newTestSlurper(t, nil)
			path := tempPath(t)

			if err := s.WriteFile(path, WriteOptions{Binary: true, Layer: layer}, payload[:10], payload[10:]); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}

			onDisk := readFixture(t, path)
			if layer != LayerNone && len(onDisk) >= len(payload) {
				t.Fatalf("stored %d bytes for %d byte payload, want compression", len(onDisk), len(payload))
			}

			buf := []byte("prefix:")

			res, err := s.ReadFile(path, ReadOptions{Binary: true, Layer: layer, Buffer: &buf, Format: FormatScalarRef})
			if err != nil {
				t.Fatalf("ReadFile: %v", err)
			}

			if !bytes.Equal(res.Bytes(), append([]byte("prefix:"), payload...)) {
				t.Fatalf("decoded content mismatch: got %d bytes", len(res.Bytes()))
			}
		})
	}
}

func Test_ReadFile_Fails_With_Layer_Error_When_Content_Is_Not_Encoded(t *testing.T) {
	s, _ := newTestSlurper(t, nil)
	path := tempPath(t)
	writeFixture(t, path, []byte("plain text, not zstd"))

	res, err := s.ReadFile(path, ReadOptions{Layer: LayerZstd, ErrMode: ErrModeSilent})

	if !errors.Is(err, ErrLayer) {
		t.Fatalf("err=%v, want ErrLayer", err)
	}

	if res.OK() {
		t.Fatalf("OK()=true after layer failure")
	}
}

func Test_WriteFile_Rejects_Unknown_Layer(t *testing.T) {
	s, _ := newTestSlurper(t, nil)

	err := s.WriteFile(tempPath(t), WriteOptions{Layer: Layer(42), ErrMode: ErrModeSilent}, []byte("x"))

	if !errors.Is(err, ErrOptions) {
		t.Fatalf("err=%v, want ErrOptions", err)
	}
}
