package slurp

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/tailscale/hujson"
)

// ErrConfigInvalid is returned for config files that cannot be parsed or
// hold invalid values.
var ErrConfigInvalid = errors.New("invalid config")

// Config holds default options loaded from a JSONC file:
//
//	{
//	  // comments and trailing commas are fine
//	  "read": {"format": "lines", "delimiter": "\r\n", "err_mode": "log"},
//	  "write": {"perm": "0644", "sync": true, "layer": "zstd"},
//	}
//
// Options are always passed explicitly per call; Config only builds them.
type Config struct {
	Read  ReadConfig  `json:"read"`
	Write WriteConfig `json:"write"`
}

// ReadConfig is the file form of [ReadOptions].
type ReadConfig struct {
	Binary        bool    `json:"binary,omitempty"`
	Format        Format  `json:"format,omitempty"`
	Delimiter     string  `json:"delimiter,omitempty"`
	KeepDelimiter bool    `json:"keep_delimiter,omitempty"` //nolint:tagliatelle // snake_case for config file
	BlockSize     int     `json:"block_size,omitempty"`     //nolint:tagliatelle // snake_case for config file
	Layer         Layer   `json:"layer,omitempty"`
	ErrMode       ErrMode `json:"err_mode,omitempty"` //nolint:tagliatelle // snake_case for config file
}

// WriteConfig is the file form of [WriteOptions]. Perm is an octal string.
type WriteConfig struct {
	Binary          bool    `json:"binary,omitempty"`
	Append          bool    `json:"append,omitempty"`
	ErrMode         ErrMode `json:"err_mode,omitempty"` //nolint:tagliatelle // snake_case for config file
	Perm            string  `json:"perm,omitempty"`
	NoClobber       bool    `json:"no_clobber,omitempty"` //nolint:tagliatelle // snake_case for config file
	Atomic          bool    `json:"atomic,omitempty"`
	Sync            bool    `json:"sync,omitempty"`
	StreamThreshold int     `json:"stream_threshold,omitempty"` //nolint:tagliatelle // snake_case for config file
	Layer           Layer   `json:"layer,omitempty"`
}

// ReadOptions returns the options described by c. Buffer is always nil.
func (c Config) ReadOptions() ReadOptions {
	opts := ReadOptions{
		Binary:        c.Read.Binary,
		Format:        c.Read.Format,
		KeepDelimiter: c.Read.KeepDelimiter,
		BlockSize:     c.Read.BlockSize,
		Layer:         c.Read.Layer,
		ErrMode:       c.Read.ErrMode,
	}

	if c.Read.Delimiter != "" {
		opts.Delimiter = []byte(c.Read.Delimiter)
	}

	return opts
}

// WriteOptions returns the options described by c. c must have come from
// [ParseConfig], which validates Perm.
func (c Config) WriteOptions() WriteOptions {
	perm, _ := parsePerm(c.Write.Perm)

	return WriteOptions{
		Binary:          c.Write.Binary,
		Append:          c.Write.Append,
		ErrMode:         c.Write.ErrMode,
		Perm:            perm,
		NoClobber:       c.Write.NoClobber,
		Atomic:          c.Write.Atomic,
		Sync:            c.Write.Sync,
		StreamThreshold: c.Write.StreamThreshold,
		Layer:           c.Write.Layer,
	}
}

// ParseConfig parses JSONC config data. Unknown fields are rejected.
func ParseConfig(data []byte) (Config, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("%w: invalid JSONC: %w", ErrConfigInvalid, err)
	}

	dec := json.NewDecoder(bytes.NewReader(standardized))
	dec.DisallowUnknownFields()

	var cfg Config

	err = dec.Decode(&cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrConfigInvalid, err)
	}

	err = validateConfig(cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrConfigInvalid, err)
	}

	return cfg, nil
}

// LoadConfig reads and parses the config file at path.
func (s *Slurper) LoadConfig(path string) (Config, error) {
	res, err := s.read("load_config", path, ReadOptions{Binary: true, ErrMode: ErrModeSilent})
	if err != nil && !errors.Is(err, ErrClose) {
		return Config{}, err
	}

	cfg, err := ParseConfig(res.Bytes())
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// LoadConfig reads a config file from the real filesystem. See [Slurper.LoadConfig].
func LoadConfig(path string) (Config, error) {
	return onDisk().LoadConfig(path)
}

func validateConfig(cfg Config) error {
	if cfg.Read.BlockSize < 0 {
		return fmt.Errorf("read.block_size must not be negative, got %d", cfg.Read.BlockSize)
	}

	if cfg.Write.StreamThreshold < 0 {
		return fmt.Errorf("write.stream_threshold must not be negative, got %d", cfg.Write.StreamThreshold)
	}

	_, err := parsePerm(cfg.Write.Perm)
	if err != nil {
		return err
	}

	return cfg.WriteOptions().validate()
}

func parsePerm(s string) (os.FileMode, error) {
	if s == "" {
		return 0, nil
	}

	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil || v > 0o777 {
		return 0, fmt.Errorf("write.perm must be an octal mode like \"0644\", got %q", s)
	}

	return os.FileMode(v), nil
}
