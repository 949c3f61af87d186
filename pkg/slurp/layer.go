package slurp

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Layer is a whole-payload codec applied between the file and the caller.
type Layer uint8

const (
	// LayerNone passes bytes through unchanged.
	LayerNone Layer = iota

	// LayerGzip stores the payload as a gzip stream.
	LayerGzip

	// LayerZstd stores the payload as a zstd frame.
	LayerZstd

	// LayerLZ4 stores the payload as an LZ4 frame.
	LayerLZ4
)

var layerNames = [...]string{
	LayerNone: "none",
	LayerGzip: "gzip",
	LayerZstd: "zstd",
	LayerLZ4:  "lz4",
}

func (l Layer) String() string {
	if l.valid() {
		return layerNames[l]
	}

	return fmt.Sprintf("layer(%d)", uint8(l))
}

func (l Layer) valid() bool {
	return int(l) < len(layerNames)
}

// UnmarshalText parses the names returned by [Layer.String]. "raw" and the
// empty string mean [LayerNone].
func (l *Layer) UnmarshalText(text []byte) error {
	name := string(bytes.ToLower(text))
	if name == "" || name == "raw" {
		*l = LayerNone

		return nil
	}

	for i, n := range layerNames {
		if n == name {
			*l = Layer(i)

			return nil
		}
	}

	return fmt.Errorf("unknown layer %q", text)
}

// MarshalText implements [encoding.TextMarshaler].
func (l Layer) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder), nil
	}

	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}

	return zstd.NewReader(nil)
}

// encode returns payload encoded with l. LayerNone returns payload itself.
func (l Layer) encode(payload []byte) ([]byte, error) {
	switch l {
	case LayerNone:
		return payload, nil

	case LayerZstd:
		enc, err := getZstdEncoder()
		if err != nil {
			return nil, err
		}

		out := enc.EncodeAll(payload, make([]byte, 0, len(payload)/2))
		zstdEncoderPool.Put(enc)

		return out, nil

	case LayerGzip:
		var buf bytes.Buffer

		zw := gzip.NewWriter(&buf)

		_, err := zw.Write(payload)
		if err != nil {
			return nil, err
		}

		err = zw.Close()
		if err != nil {
			return nil, err
		}

		return buf.Bytes(), nil

	case LayerLZ4:
		var buf bytes.Buffer

		zw := lz4.NewWriter(&buf)

		_, err := zw.Write(payload)
		if err != nil {
			return nil, err
		}

		err = zw.Close()
		if err != nil {
			return nil, err
		}

		return buf.Bytes(), nil

	default:
		return nil, fmt.Errorf("unknown layer %d", uint8(l))
	}
}

// decode appends the decoded form of raw to dst.
func (l Layer) decode(dst, raw []byte) ([]byte, error) {
	switch l {
	case LayerNone:
		return append(dst, raw...), nil

	case LayerZstd:
		dec, err := getZstdDecoder()
		if err != nil {
			return dst, err
		}

		out, err := dec.DecodeAll(raw, dst)
		zstdDecoderPool.Put(dec)

		return out, err

	case LayerGzip:
		zr, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return dst, err
		}

		out, err := readAllInto(dst, zr)
		if err != nil {
			return out, err
		}

		return out, zr.Close()

	case LayerLZ4:
		return readAllInto(dst, lz4.NewReader(bytes.NewReader(raw)))

	default:
		return dst, fmt.Errorf("unknown layer %d", uint8(l))
	}
}

func readAllInto(dst []byte, r io.Reader) ([]byte, error) {
	buf := bytes.NewBuffer(dst)

	_, err := buf.ReadFrom(r)

	return buf.Bytes(), err
}
