package fs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
)

// ChaosConfig controls fault injection probabilities.
// Each rate is a float64 from 0.0 (never) to 1.0 (always).
//
// The zero value disables all fault injection. Partially initialized configs
// only inject faults for the specified rates; unset fields default to 0.0.
type ChaosConfig struct {
	// OpenFailRate controls how often FS.Open and FS.OpenFile fail to open a
	// file. For read-only opens: EACCES, EIO, EMFILE, ENFILE, ENOTDIR.
	// For write opens: adds ENOSPC, EDQUOT, EROFS.
	OpenFailRate float64

	// ReadFailRate controls how often File.Read fails entirely, returning
	// zero bytes and EIO.
	ReadFailRate float64

	// ShortReadRate controls how often File.Read returns a short read
	// (n < len(buf), err==nil) by limiting the underlying read size. This is
	// valid io.Reader behavior and tests that callers loop until done.
	ShortReadRate float64

	// WriteFailRate controls how often File.Write fails entirely, writing zero
	// bytes and returning an error (EIO, ENOSPC, EDQUOT, or EROFS).
	WriteFailRate float64

	// PartialWriteRate controls how often File.Write writes only some bytes
	// before returning an error. The error type is controlled by ShortWriteRate.
	PartialWriteRate float64

	// ShortWriteRate controls the error type for partial writes. This fraction
	// of partial writes return io.ErrShortWrite (a write that stopped early
	// without a syscall error). The remainder return *fs.PathError with an
	// errno (EIO, ENOSPC, EDQUOT, or EROFS).
	ShortWriteRate float64

	// FileStatFailRate controls how often File.Stat fails on an open handle,
	// returning EIO.
	FileStatFailRate float64

	// SyncFailRate controls how often File.Sync fails. Returns EIO, ENOSPC,
	// EDQUOT, or EROFS.
	SyncFailRate float64

	// TruncateFailRate controls how often File.Truncate fails. Returns EIO,
	// EROFS, or EPERM.
	TruncateFailRate float64

	// CloseFailRate controls how often File.Close reports an error. The
	// underlying file descriptor is always closed even when an error is
	// returned. Returns EIO.
	CloseFailRate float64

	// AtomicFailRate controls how often FS.WriteFileAtomic fails before
	// touching the target. Returns EIO, ENOSPC, or EROFS.
	AtomicFailRate float64

	// MaxChunk, when positive, caps every File.Read and File.Write at MaxChunk
	// bytes. Reads return a short count with err==nil. Writes return a short
	// count with io.ErrShortWrite. This models a device that always transfers
	// in small pieces and is applied even when every rate is zero.
	MaxChunk int

	// StatSizeSkew is added to the size reported by File.Stat. A positive
	// skew models a file that shrank between stat and read.
	StatSizeSkew int64

	// TraceCapacity is the max number of operations to keep in the trace log.
	// Set to 0 (default) to disable tracing.
	TraceCapacity int
}

// ChaosMode controls how [Chaos] behaves.
type ChaosMode uint8

const (
	// ChaosModeActive enables fault injection.
	// This is the default mode for a new [Chaos].
	ChaosModeActive ChaosMode = iota

	// ChaosModeNoOp passes every operation directly to the underlying FS.
	ChaosModeNoOp
)

// ChaosStats contains call and fault counts.
type ChaosStats struct {
	Reads  int64
	Writes int64

	OpenFails     int64
	ReadFails     int64
	ShortReads    int64
	WriteFails    int64
	PartialWrites int64
	ShortWrites   int64
	FileStatFails int64
	SyncFails     int64
	TruncateFails int64
	CloseFails    int64
	AtomicFails   int64
}

// chaosError marks an error as intentionally injected by [Chaos].
//
// It wraps the underlying error so errors.Is/As continue to work.
type chaosError struct {
	Err error
}

func (e *chaosError) Error() string {
	return "chaos: " + e.Err.Error()
}

func (e *chaosError) Unwrap() error {
	return e.Err
}

// IsChaosErr reports whether err (or any wrapped error) was injected by [Chaos].
// Returns false if err is nil.
func IsChaosErr(err error) bool {
	var injected *chaosError

	return errors.As(err, &injected)
}

// Chaos wraps an [FS] and injects short counts and failures for testing.
//
// Error model:
//   - Injected filesystem errors are an [*fs.PathError] with a real
//     [syscall.Errno], so [errors.Is] and [os.IsPermission] behave like real
//     OS errors. Injected errors are marked so [IsChaosErr] can tell them
//     apart.
//   - Chaos never injects ENOENT; missing-path errors come from the wrapped FS.
//
// Return-shape constraints:
//   - File.Read injected failures return n==0 with a non-nil error.
//   - File.Read short reads limit the underlying read; no bytes are skipped.
//   - File.Write may return n>0 with a non-nil error (partial progress).
//   - File.Close injected failures still close the underlying file.
//   - EOF is never injected; it comes from the wrapped filesystem.
type Chaos struct {
	fs     FS
	rng    *rand.Rand
	config ChaosConfig
	mode   atomic.Uint32
	trace  *chaosTrace

	rngMu sync.Mutex

	reads         atomic.Int64
	writes        atomic.Int64
	openFails     atomic.Int64
	readFails     atomic.Int64
	shortReads    atomic.Int64
	writeFails    atomic.Int64
	partialWrites atomic.Int64
	shortWrites   atomic.Int64
	fileStatFails atomic.Int64
	syncFails     atomic.Int64
	truncateFails atomic.Int64
	closeFails    atomic.Int64
	atomicFails   atomic.Int64
}

// NewChaos creates a new [Chaos] filesystem wrapping the given [FS].
// The seed controls random fault injection for reproducibility.
// Panics if underlying is nil.
func NewChaos(underlying FS, seed int64, config ChaosConfig) *Chaos {
	if underlying == nil {
		panic("underlying fs is nil")
	}

	return &Chaos{
		fs:     underlying,
		rng:    rand.New(rand.NewPCG(uint64(seed), uint64(seed))),
		config: config,
		trace:  newChaosTrace(config.TraceCapacity),
	}
}

// SetMode updates [Chaos] behavior. Safe to call concurrently.
func (c *Chaos) SetMode(m ChaosMode) { c.mode.Store(uint32(m)) }

// Trace returns a formatted string of recent operations.
// Returns an empty string if tracing is disabled.
func (c *Chaos) Trace() string {
	return c.trace.String()
}

// TraceEvents returns a snapshot of the trace buffer.
func (c *Chaos) TraceEvents() []TraceEvent {
	return c.trace.snapshot()
}

// Stats returns the current call and fault counts.
func (c *Chaos) Stats() ChaosStats {
	return ChaosStats{
		Reads:         c.reads.Load(),
		Writes:        c.writes.Load(),
		OpenFails:     c.openFails.Load(),
		ReadFails:     c.readFails.Load(),
		ShortReads:    c.shortReads.Load(),
		WriteFails:    c.writeFails.Load(),
		PartialWrites: c.partialWrites.Load(),
		ShortWrites:   c.shortWrites.Load(),
		FileStatFails: c.fileStatFails.Load(),
		SyncFails:     c.syncFails.Load(),
		TruncateFails: c.truncateFails.Load(),
		CloseFails:    c.closeFails.Load(),
		AtomicFails:   c.atomicFails.Load(),
	}
}

// Open opens a file for reading with fault injection.
func (c *Chaos) Open(path string) (File, error) {
	return c.openWithChaos(path, chaosOpOpen, func() (File, error) {
		return c.fs.Open(path)
	})
}

// OpenFile opens a file with the specified flags and permissions with fault injection.
func (c *Chaos) OpenFile(path string, flag int, perm os.FileMode) (File, error) {
	op := chaosOpOpen
	if flag&(os.O_WRONLY|os.O_RDWR|os.O_APPEND|os.O_CREATE|os.O_TRUNC) != 0 {
		op = chaosOpCreate
	}

	return c.openWithChaos(path, op, func() (File, error) {
		return c.fs.OpenFile(path, flag, perm)
	})
}

// WriteFileAtomic replaces path atomically with fault injection. An injected
// failure leaves the target untouched.
func (c *Chaos) WriteFileAtomic(path string, r io.Reader) error {
	mode := c.getMode()

	if c.should(mode, c.config.AtomicFailRate) {
		c.atomicFails.Add(1)

		errno := c.pickRandom([]syscall.Errno{syscall.EIO, syscall.ENOSPC, syscall.EROFS})
		err := pathError("writeatomic", path, errno)

		c.trace.add("writeatomic", path, "fail", err, true, TraceAttr{"errno", errno.Error()})

		return err
	}

	err := c.fs.WriteFileAtomic(path, r)

	c.trace.add("writeatomic", path, boolKind(err == nil), err, false)

	return err
}

// ReadDir is a passthrough; directory faults are not modelled.
func (c *Chaos) ReadDir(path string) ([]os.DirEntry, error) {
	entries, err := c.fs.ReadDir(path)

	c.trace.add("readdir", path, boolKind(err == nil), err, false,
		TraceAttr{"n", strconv.Itoa(len(entries))})

	return entries, err
}

func (c *Chaos) getMode() ChaosMode {
	v := c.mode.Load()
	if v > uint32(ChaosModeNoOp) {
		return ChaosModeActive
	}

	return ChaosMode(v)
}

func (c *Chaos) openWithChaos(path, op string, openFn func() (File, error)) (File, error) {
	mode := c.getMode()

	if c.should(mode, c.config.OpenFailRate) {
		errno := c.pickError(op)
		c.openFails.Add(1)

		err := pathError("open", path, errno)

		c.trace.add(op, path, "fail", err, true, TraceAttr{"errno", errno.Error()})

		return nil, err
	}

	file, err := openFn()
	if err != nil {
		c.trace.add(op, path, "fail", err, false)

		return nil, err
	}

	c.trace.add(op, path, "ok", nil, false)

	return &chaosFile{f: file, chaos: c, path: path}, nil
}

const (
	chaosOpOpen   = "open"
	chaosOpCreate = "create"
)

// should returns true with the given probability when chaos is injecting.
func (c *Chaos) should(mode ChaosMode, rate float64) bool {
	if mode != ChaosModeActive || rate <= 0 {
		return false
	}

	return c.randFloat() < rate
}

func (c *Chaos) randFloat() float64 {
	c.rngMu.Lock()
	result := c.rng.Float64()
	c.rngMu.Unlock()

	return result
}

func (c *Chaos) randIntn(n int) int {
	c.rngMu.Lock()
	result := c.rng.IntN(n)
	c.rngMu.Unlock()

	return result
}

// pathError creates an injected [*fs.PathError] with the given operation, path, and errno.
func pathError(op, path string, errno syscall.Errno) error {
	pe := &fs.PathError{Op: op, Path: path, Err: errno}

	return &chaosError{Err: pe}
}

func (c *Chaos) pickRandom(errs []syscall.Errno) syscall.Errno {
	return errs[c.randIntn(len(errs))]
}

// pickError selects an injected errno for the given operation.
//
// Operation → injected errnos:
//   - open: EACCES, EIO, EMFILE, ENFILE, ENOTDIR
//   - create: EACCES, EIO, ENOSPC, EDQUOT, EROFS, EMFILE, ENFILE, ENOTDIR
//   - fdwrite, fdsync: EIO, ENOSPC, EDQUOT, EROFS
//   - fdtruncate: EIO, EROFS, EPERM
//   - fdread, fdclose, fdstat: EIO only
func (c *Chaos) pickError(op string) syscall.Errno {
	switch op {
	case chaosOpOpen:
		return c.pickRandom([]syscall.Errno{
			syscall.EACCES,
			syscall.EIO,
			syscall.EMFILE,
			syscall.ENFILE,
			syscall.ENOTDIR,
		})

	case chaosOpCreate:
		return c.pickRandom([]syscall.Errno{
			syscall.EACCES,
			syscall.EIO,
			syscall.ENOSPC,
			syscall.EDQUOT,
			syscall.EROFS,
			syscall.EMFILE,
			syscall.ENFILE,
			syscall.ENOTDIR,
		})

	case "fdwrite", "fdsync":
		return c.pickRandom([]syscall.Errno{
			syscall.EIO,
			syscall.ENOSPC,
			syscall.EDQUOT,
			syscall.EROFS,
		})

	case "fdtruncate":
		return c.pickRandom([]syscall.Errno{
			syscall.EIO,
			syscall.EROFS,
			syscall.EPERM,
		})

	default:
		return syscall.EIO
	}
}

// chaosFile wraps a [File] and injects faults on its methods.
type chaosFile struct {
	f     File
	chaos *Chaos
	path  string
}

var _ File = (*chaosFile)(nil)

func (cf *chaosFile) Read(buf []byte) (int, error) {
	c := cf.chaos
	c.reads.Add(1)

	mode := c.getMode()
	if mode == ChaosModeNoOp {
		n, err := cf.f.Read(buf)

		c.trace.add("file.read", cf.path, boolKind(err == nil), err, false,
			TraceAttr{"n", strconv.Itoa(n)})

		return n, err
	}

	if c.should(mode, c.config.ReadFailRate) {
		c.readFails.Add(1)
		err := pathError("read", cf.path, c.pickError("fdread"))

		c.trace.add("file.read", cf.path, "fail", err, true)

		return 0, err
	}

	// Limit the underlying read, never shrink the returned count, otherwise
	// the offset advances past bytes the caller never saw.
	limit := len(buf)
	if c.config.MaxChunk > 0 && limit > c.config.MaxChunk {
		limit = c.config.MaxChunk
	}

	if c.should(mode, c.config.ShortReadRate) && limit > 1 {
		limit = c.randIntn(limit-1) + 1
	}

	if limit < len(buf) {
		c.shortReads.Add(1)

		n, err := cf.f.Read(buf[:limit])

		c.trace.add("file.read", cf.path, "short_read", err, true,
			TraceAttr{"n", strconv.Itoa(n)},
			TraceAttr{"requested", strconv.Itoa(len(buf))})

		return n, err
	}

	n, err := cf.f.Read(buf)

	c.trace.add("file.read", cf.path, boolKind(err == nil), err, false,
		TraceAttr{"n", strconv.Itoa(n)})

	return n, err
}

func (cf *chaosFile) Write(data []byte) (int, error) {
	c := cf.chaos
	c.writes.Add(1)

	mode := c.getMode()
	if mode == ChaosModeNoOp {
		n, err := cf.f.Write(data)

		c.trace.add("file.write", cf.path, boolKind(err == nil), err, false,
			TraceAttr{"n", strconv.Itoa(n)})

		return n, err
	}

	if c.should(mode, c.config.WriteFailRate) {
		c.writeFails.Add(1)
		errno := c.pickError("fdwrite")
		err := pathError("write", cf.path, errno)

		c.trace.add("file.write", cf.path, "fail", err, true,
			TraceAttr{"errno", errno.Error()})

		return 0, err
	}

	if c.should(mode, c.config.PartialWriteRate) && len(data) > 1 {
		c.partialWrites.Add(1)
		cutoff := c.randIntn(len(data)-1) + 1

		wrote, err := cf.f.Write(data[:cutoff])
		if err != nil {
			return wrote, err
		}

		if c.randFloat() < c.config.ShortWriteRate {
			c.shortWrites.Add(1)
			err := &chaosError{Err: io.ErrShortWrite}

			c.trace.add("file.write", cf.path, "short_write", err, true,
				TraceAttr{"n", strconv.Itoa(wrote)},
				TraceAttr{"requested", strconv.Itoa(len(data))})

			return wrote, err
		}

		errno := c.pickError("fdwrite")
		err = pathError("write", cf.path, errno)

		c.trace.add("file.write", cf.path, "partial_write", err, true,
			TraceAttr{"n", strconv.Itoa(wrote)},
			TraceAttr{"errno", errno.Error()})

		return wrote, err
	}

	if c.config.MaxChunk > 0 && len(data) > c.config.MaxChunk {
		c.shortWrites.Add(1)

		wrote, err := cf.f.Write(data[:c.config.MaxChunk])
		if err != nil {
			return wrote, err
		}

		err = &chaosError{Err: io.ErrShortWrite}

		c.trace.add("file.write", cf.path, "short_write", err, true,
			TraceAttr{"n", strconv.Itoa(wrote)},
			TraceAttr{"requested", strconv.Itoa(len(data))})

		return wrote, err
	}

	n, err := cf.f.Write(data)

	c.trace.add("file.write", cf.path, boolKind(err == nil), err, false,
		TraceAttr{"n", strconv.Itoa(n)})

	return n, err
}

func (cf *chaosFile) Close() error {
	c := cf.chaos
	inject := c.should(c.getMode(), c.config.CloseFailRate)

	// Always close the underlying file to avoid descriptor leaks.
	err := cf.f.Close()
	if err != nil {
		c.trace.add("file.close", cf.path, "fail", err, false)

		return err
	}

	if inject {
		c.closeFails.Add(1)
		err := pathError("close", cf.path, c.pickError("fdclose"))

		c.trace.add("file.close", cf.path, "fail", err, true)

		return err
	}

	c.trace.add("file.close", cf.path, "ok", nil, false)

	return nil
}

func (cf *chaosFile) Fd() uintptr {
	return cf.f.Fd()
}

func (cf *chaosFile) Stat() (os.FileInfo, error) {
	c := cf.chaos
	if c.should(c.getMode(), c.config.FileStatFailRate) {
		c.fileStatFails.Add(1)
		err := pathError("stat", cf.path, syscall.EIO)

		c.trace.add("file.stat", cf.path, "fail", err, true)

		return nil, err
	}

	info, err := cf.f.Stat()
	if err != nil {
		return nil, err
	}

	if c.getMode() == ChaosModeActive && c.config.StatSizeSkew != 0 {
		c.trace.add("file.stat", cf.path, "skewed", nil, true,
			TraceAttr{"size", strconv.FormatInt(info.Size(), 10)},
			TraceAttr{"skew", strconv.FormatInt(c.config.StatSizeSkew, 10)})

		return skewedInfo{FileInfo: info, skew: c.config.StatSizeSkew}, nil
	}

	c.trace.add("file.stat", cf.path, "ok", nil, false)

	return info, nil
}

func (cf *chaosFile) Sync() error {
	c := cf.chaos
	if c.should(c.getMode(), c.config.SyncFailRate) {
		c.syncFails.Add(1)
		errno := c.pickError("fdsync")
		err := pathError("sync", cf.path, errno)

		c.trace.add("file.sync", cf.path, "fail", err, true, TraceAttr{"errno", errno.Error()})

		return err
	}

	err := cf.f.Sync()

	c.trace.add("file.sync", cf.path, boolKind(err == nil), err, false)

	return err
}

func (cf *chaosFile) Truncate(size int64) error {
	c := cf.chaos
	if c.should(c.getMode(), c.config.TruncateFailRate) {
		c.truncateFails.Add(1)
		errno := c.pickError("fdtruncate")
		err := pathError("truncate", cf.path, errno)

		c.trace.add("file.truncate", cf.path, "fail", err, true, TraceAttr{"errno", errno.Error()})

		return err
	}

	err := cf.f.Truncate(size)

	c.trace.add("file.truncate", cf.path, boolKind(err == nil), err, false,
		TraceAttr{"size", strconv.FormatInt(size, 10)})

	return err
}

// skewedInfo reports a size offset from the real one.
type skewedInfo struct {
	os.FileInfo
	skew int64
}

func (s skewedInfo) Size() int64 {
	size := s.FileInfo.Size() + s.skew
	if size < 0 {
		return 0
	}

	return size
}

var _ FS = (*Chaos)(nil)

// TraceEvent records a single Chaos operation with injection details.
//
// Unlike external tracing (which can only observe errors), TraceEvent captures
// operations that Chaos altered but returned successfully, such as short reads
// that returned fewer bytes with err==nil.
type TraceEvent struct {
	// Seq is the monotonically increasing sequence number.
	Seq uint64
	// Op is the operation name (e.g., "open", "file.read", "file.write").
	Op string
	// Path is the filesystem path involved.
	Path string
	// Err is the error returned by the operation (nil for success).
	Err error
	// Injected is true if Chaos modified the operation's behavior.
	Injected bool
	// Kind is a short label for what happened: "ok", "fail", "short_read",
	// "short_write", "partial_write", "skewed".
	Kind string
	// Attrs contains additional key-value details.
	Attrs []TraceAttr
}

// TraceAttr is a key-value pair for trace event context.
type TraceAttr struct {
	Key   string
	Value string
}

func (e TraceEvent) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "#%d", e.Seq)

	if e.Injected {
		fmt.Fprintf(&sb, " [CHAOS:%s]", e.Kind)
	}

	fmt.Fprintf(&sb, " %s", e.Op)

	if e.Path != "" {
		fmt.Fprintf(&sb, " path=%q", e.Path)
	}

	for _, a := range e.Attrs {
		fmt.Fprintf(&sb, " %s=%s", a.Key, a.Value)
	}

	if !e.Injected {
		sb.WriteString(" ")
		sb.WriteString(e.Kind)
	}

	if e.Err != nil {
		fmt.Fprintf(&sb, " err=%v", e.Err)
	}

	return sb.String()
}

// chaosTrace is a bounded circular buffer of [TraceEvent].
type chaosTrace struct {
	mu       sync.Mutex
	capacity int
	events   []TraceEvent
	next     int
	full     bool
	seq      uint64
}

func newChaosTrace(capacity int) *chaosTrace {
	if capacity <= 0 {
		return nil
	}

	return &chaosTrace{
		capacity: capacity,
		events:   make([]TraceEvent, 0, capacity),
	}
}

func (t *chaosTrace) String() string {
	events := t.snapshot()
	if len(events) == 0 {
		return ""
	}

	lines := make([]string, len(events))
	for i, e := range events {
		lines[i] = e.String()
	}

	return strings.Join(lines, "\n")
}

func (t *chaosTrace) add(op, path, kind string, err error, injected bool, attrs ...TraceAttr) {
	if t == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.seq++

	event := TraceEvent{
		Seq:      t.seq,
		Op:       op,
		Path:     path,
		Err:      err,
		Injected: injected,
		Kind:     kind,
		Attrs:    attrs,
	}

	if len(t.events) < t.capacity {
		t.events = append(t.events, event)

		return
	}

	t.events[t.next] = event
	t.next = (t.next + 1) % t.capacity
	t.full = true
}

func (t *chaosTrace) snapshot() []TraceEvent {
	if t == nil {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.full {
		return append([]TraceEvent(nil), t.events...)
	}

	out := make([]TraceEvent, 0, len(t.events))
	out = append(out, t.events[t.next:]...)
	out = append(out, t.events[:t.next]...)

	return out
}

func boolKind(ok bool) string {
	if ok {
		return "ok"
	}

	return "fail"
}
