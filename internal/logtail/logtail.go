// Package logtail follows log files across rotations and remembers the most
// recent lines matching their error patterns.
package logtail

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/Guliveer/overwatch-agents/internal/config"
	"github.com/Guliveer/overwatch-agents/internal/report"
	"github.com/Guliveer/overwatch-agents/internal/threshold"
)

// RingCapacity is the number of error lines kept per file.
const RingCapacity = 10

const readChunkSize = 32 * 1024

// identity is the (device, inode) pair of a physical file.
type identity struct {
	dev uint64
	ino uint64
}

func (i identity) String() string {
	return fmt.Sprintf("%d:%d", i.dev, i.ino)
}

// ErrorLine is one matched line.
type ErrorLine struct {
	Time time.Time
	Seq  uint64
	Text string
}

// Key returns the "timestamp:sequence" key used in reports.
func (e ErrorLine) Key() string {
	return fmt.Sprintf("%d.%06d:%d", e.Time.Unix(), e.Time.Nanosecond()/1000, e.Seq)
}

// WatchedFile tails one configured log file. It is closed until the first
// Poll and again after a rotation is detected; the error ring survives both.
type WatchedFile struct {
	conf   config.LogFile
	logger *zap.Logger

	f        *os.File
	id       identity
	fullPath string
	offset   int64
	size     int64
	pending  []byte
	opened   bool

	lines uint64
	ring  []ErrorLine
	err   error
}

// NewWatchedFile creates the state for one log file. Nothing is opened yet.
func NewWatchedFile(conf config.LogFile, logger *zap.Logger) *WatchedFile {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WatchedFile{
		conf:   conf,
		logger: logger.With(zap.String("path", conf.Path)),
		ring:   make([]ErrorLine, 0, RingCapacity),
	}
}

// IsOpen reports whether a handle is currently held.
func (w *WatchedFile) IsOpen() bool { return w.f != nil }

// ErrorLines returns a copy of the ring, oldest first.
func (w *WatchedFile) ErrorLines() []ErrorLine {
	out := make([]ErrorLine, len(w.ring))
	copy(out, w.ring)
	return out
}

// Err returns the error of the last poll, if any.
func (w *WatchedFile) Err() error { return w.err }

// Poll opens the file if needed, processes every complete line appended since
// the last poll and then checks whether the path still points to the open
// file. A replaced file is closed and reopened on the next poll.
func (w *WatchedFile) Poll(ts time.Time) {
	w.err = nil
	if w.f == nil {
		if err := w.open(); err != nil {
			w.err = err
			w.logger.Error("Failed to open log file", zap.Error(err))
			return
		}
	}

	if err := w.drain(ts); err != nil {
		w.err = err
		w.logger.Error("Failed to read log file", zap.Error(err))
		w.close()
		return
	}
	w.checkRotation()
}

func (w *WatchedFile) open() error {
	w.logger.Debug("Opening log file")
	resolved, err := filepath.EvalSymlinks(w.conf.Path)
	if err != nil {
		return err
	}
	resolved, err = filepath.Abs(resolved)
	if err != nil {
		return err
	}
	f, err := os.Open(resolved)
	if err != nil {
		return err
	}
	id, err := handleIdentity(f)
	if err != nil {
		f.Close()
		return err
	}
	w.f = f
	w.id = id
	w.fullPath = resolved
	w.offset = 0
	w.size = 0
	w.pending = nil
	w.opened = true
	return nil
}

func (w *WatchedFile) close() {
	if w.f == nil {
		return
	}
	w.logger.Debug("Closing log file", zap.String("resolved", w.fullPath))
	w.f.Close()
	w.f = nil
	w.pending = nil
}

func (w *WatchedFile) drain(ts time.Time) error {
	buf := make([]byte, readChunkSize)
	for {
		n, err := w.f.Read(buf)
		if n > 0 {
			w.offset += int64(n)
			w.pending = append(w.pending, buf[:n]...)
			w.processComplete(ts)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
	}
	if info, err := w.f.Stat(); err == nil {
		w.size = info.Size()
	}
	return nil
}

// processComplete consumes every newline-terminated line in the pending
// buffer. A trailing partial line stays buffered.
func (w *WatchedFile) processComplete(ts time.Time) {
	for {
		i := bytes.IndexByte(w.pending, '\n')
		if i < 0 {
			break
		}
		w.processLine(w.pending[:i], ts)
		w.pending = w.pending[i+1:]
	}
	if len(w.pending) == 0 {
		w.pending = nil
	}
}

func (w *WatchedFile) processLine(raw []byte, ts time.Time) {
	w.lines++
	var line string
	if utf8.Valid(raw) {
		line = string(raw)
	} else {
		line = fmt.Sprintf("%q", raw)
		w.logger.Warn("Failed to decode line", zap.String("line", truncate(line, 200)))
	}
	line = strings.TrimRightFunc(line, unicode.IsSpace)

	if !w.conf.Matches(line) {
		return
	}
	if len(w.ring) == RingCapacity {
		copy(w.ring, w.ring[1:])
		w.ring = w.ring[:RingCapacity-1]
	}
	w.ring = append(w.ring, ErrorLine{Time: ts, Seq: w.lines, Text: line})
}

// checkRotation compares the configured path with the open handle. A
// different identity or a missing path closes the handle. A file truncated
// in place is read again from the start.
func (w *WatchedFile) checkRotation() {
	current, err := pathIdentity(w.conf.Path)
	if err != nil || current != w.id {
		w.logger.Debug("Log file rotated",
			zap.Stringer("old", w.id),
			zap.Error(err))
		w.close()
		return
	}
	info, err := w.f.Stat()
	if err != nil {
		return
	}
	if info.Size() < w.offset {
		w.logger.Debug("Log file truncated, rewinding",
			zap.Int64("size", info.Size()),
			zap.Int64("offset", w.offset))
		if _, err := w.f.Seek(0, io.SeekStart); err != nil {
			w.logger.Warn("Failed to rewind log file", zap.Error(err))
			w.close()
			return
		}
		w.offset = 0
		w.pending = nil
	}
	w.size = info.Size()
}

// Key returns the report key of the file: its name if set, else its path.
func (w *WatchedFile) Key() string {
	if w.conf.Name != "" {
		return w.conf.Name
	}
	if w.fullPath != "" {
		return w.fullPath
	}
	return w.conf.Path
}

// Report builds the state of the file as of now.
func (w *WatchedFile) Report(now time.Time) *report.Map {
	path := w.fullPath
	if path == "" {
		path = w.conf.Path
	}
	m := report.NewMap().Set("path", report.String(path))
	if w.opened {
		m.Set("size_bytes", report.Encode(report.Int(w.size), report.Unit("bytes")))
		m.Set("inode", report.String(w.id.String()))
	} else {
		m.Set("size_bytes", report.Null())
		m.Set("inode", report.Null())
	}

	lines := report.NewMap()
	var last time.Time
	for _, e := range w.ring {
		lines.Set(e.Key(), report.NewMap().
			Set("date", report.String(report.FormatDate(e.Time))).
			Set("line", report.String(e.Text)))
		if e.Time.After(last) {
			last = e.Time
		}
	}
	m.Set("last_error_lines", lines)

	lastDate := report.Null()
	if !last.IsZero() {
		lastDate = report.String(report.FormatDate(last))
	}
	m.Set("last_error_date", report.Encode(lastDate,
		report.Checked(threshold.LastErrorRecency(last, now))))

	if w.err != nil {
		m.Set("error", report.Encode(report.String(w.err.Error()), report.Checked(report.Red)))
	} else {
		m.Set("error", report.Encode(report.Null(), report.Checked(report.Green)))
	}
	return m
}

// Close releases the handle.
func (w *WatchedFile) Close() error {
	if w.f == nil {
		return nil
	}
	err := w.f.Close()
	w.f = nil
	return err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
