package log

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/Da-Krause/settlers-remake/internal/ai/construction"
	"github.com/Da-Krause/settlers-remake/internal/sim/validation"
)

// JSONLZstdWriter appends JSON lines to zstd-compressed files, one file per
// UTC hour.
type JSONLZstdWriter struct {
	baseDir string
	prefix  string
	now     func() time.Time

	mu      sync.Mutex
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

func NewJSONLZstdWriter(baseDir, prefix string) *JSONLZstdWriter {
	return &JSONLZstdWriter{
		baseDir: baseDir,
		prefix:  prefix,
		now:     time.Now,
	}
}

func (w *JSONLZstdWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

func (w *JSONLZstdWriter) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	hour := w.now().UTC().Format("2006-01-02-15")
	if hour != w.curHour {
		if err := w.rotateLocked(hour); err != nil {
			return err
		}
	}

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *JSONLZstdWriter) rotateLocked(hour string) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	if err := os.MkdirAll(w.baseDir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(w.pathForHour(hour), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, 128*1024)
	w.curHour = hour
	return nil
}

func (w *JSONLZstdWriter) closeLocked() error {
	var err1 error
	if w.w != nil {
		_ = w.w.Flush()
	}
	if w.enc != nil {
		err1 = w.enc.Close()
		w.enc = nil
	}
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	w.w = nil
	w.curHour = ""
	return err1
}

func (w *JSONLZstdWriter) pathForHour(hour string) string {
	return filepath.Join(w.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", w.prefix, hour))
}

// Files lists the rotated files of prefix under dir, oldest first.
func Files(dir, prefix string) ([]string, error) {
	out, err := filepath.Glob(filepath.Join(dir, prefix+"-*.jsonl.zst"))
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

// ReadLines decodes every JSON line of one rotated file into fn.
// Appending to a file after reopening produces concatenated zstd frames,
// which the decoder reads as one stream.
func ReadLines(path string, fn func(line []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		return err
	}
	defer dec.Close()

	br := bufio.NewReader(dec)
	for {
		line, err := br.ReadBytes('\n')
		line = bytes.TrimSuffix(line, []byte{'\n'})
		if len(line) > 0 {
			if ferr := fn(line); ferr != nil {
				return ferr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

type PlacementEntry struct {
	RecordedAt string                 `json:"recorded_at"`
	Placement  construction.Placement `json:"placement"`
}

// DecisionLogger writes one JSONL entry per successful placement
// (compressed). It satisfies construction.DecisionSink.
type DecisionLogger struct {
	w      *JSONLZstdWriter
	errors atomic.Uint64
}

func NewDecisionLogger(dataDir string) *DecisionLogger {
	return &DecisionLogger{w: NewJSONLZstdWriter(filepath.Join(dataDir, "decisions"), "placements")}
}

func (l *DecisionLogger) WritePlacement(p construction.Placement) error {
	return l.w.Write(PlacementEntry{
		RecordedAt: l.w.now().UTC().Format(time.RFC3339Nano),
		Placement:  p,
	})
}

// RecordPlacement counts write failures instead of returning them.
func (l *DecisionLogger) RecordPlacement(p construction.Placement) {
	if err := l.WritePlacement(p); err != nil {
		l.errors.Add(1)
	}
}

func (l *DecisionLogger) Errors() uint64 { return l.errors.Load() }
func (l *DecisionLogger) Close() error   { return l.w.Close() }

type ValidationEntry struct {
	RecordedAt string            `json:"recorded_at"`
	Digest     string            `json:"digest"`
	Report     validation.Report `json:"report"`
}

// AuditLogger writes catalog validation runs (compressed).
type AuditLogger struct{ w *JSONLZstdWriter }

func NewAuditLogger(dataDir string) *AuditLogger {
	return &AuditLogger{w: NewJSONLZstdWriter(filepath.Join(dataDir, "audit"), "validation")}
}

func (l *AuditLogger) WriteValidation(digest string, rep validation.Report) error {
	return l.w.Write(ValidationEntry{
		RecordedAt: l.w.now().UTC().Format(time.RFC3339Nano),
		Digest:     digest,
		Report:     rep,
	})
}

func (l *AuditLogger) Close() error { return l.w.Close() }

// MultiSink fans a placement out to several sinks.
type MultiSink []construction.DecisionSink

func (m MultiSink) RecordPlacement(p construction.Placement) {
	for _, s := range m {
		if s != nil {
			s.RecordPlacement(p)
		}
	}
}
