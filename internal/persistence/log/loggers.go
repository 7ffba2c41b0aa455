// Package log persists the per-tick event stream as zstd-compressed JSONL,
// one file per UTC day under <worldDir>/events. Only ticks with events are
// written, so the stream stays sparse.
package log

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"tilecolony/internal/sim/world"
)

// TickLogger appends TickLogEntry lines to daily-rotated zstd files. Safe
// for use from the snapshot writer goroutine and the tick loop.
type TickLogger struct {
	dir string

	mu  sync.Mutex
	day string
	f   *os.File
	zw  *zstd.Encoder
	bw  *bufio.Writer
}

func NewTickLogger(worldDir string) *TickLogger {
	return &TickLogger{dir: filepath.Join(worldDir, "events")}
}

func (l *TickLogger) WriteTick(e world.TickLogEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	day := time.Now().UTC().Format("2006-01-02")
	if day != l.day {
		if err := l.rotateLocked(day); err != nil {
			return err
		}
	}

	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if _, err := l.bw.Write(append(b, '\n')); err != nil {
		return err
	}
	return l.bw.Flush()
}

func (l *TickLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closeLocked()
}

// rotateLocked opens the segment for day, appending when the process
// restarts within the same day. Concatenated zstd frames decode as one
// stream.
func (l *TickLogger) rotateLocked(day string) error {
	if err := l.closeLocked(); err != nil {
		return err
	}
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join(l.dir, "events-"+day+".jsonl.zst"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	l.f = f
	l.zw = zw
	l.bw = bufio.NewWriterSize(zw, 64*1024)
	l.day = day
	return nil
}

func (l *TickLogger) closeLocked() error {
	var errClose error
	if l.bw != nil {
		_ = l.bw.Flush()
	}
	if l.zw != nil {
		errClose = l.zw.Close()
		l.zw = nil
	}
	if l.f != nil {
		_ = l.f.Close()
		l.f = nil
	}
	l.bw = nil
	return errClose
}
