package file

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/copperpitch/youthrank/internal/usecase"
)

type errorLineModel struct {
	TS         string `json:"ts"`
	Division   string `json:"division"`
	TeamKey    string `json:"team_key"`
	Attempt    int    `json:"attempt"`
	StatusCode int    `json:"status_code,omitempty"`
	Reason     string `json:"reason"`
}

// ErrorLog is the append-only JSONL scrape error log for one division.
// Pool workers append concurrently; one mutex serializes the writes and
// the file stays in O_APPEND mode so lines never interleave.
type ErrorLog struct {
	path string

	mu   sync.Mutex
	file *os.File
}

func NewErrorLog(dir, divisionKey string) *ErrorLog {
	return &ErrorLog{path: filepath.Join(dir, "scrape_errors_"+divisionKey+".log")}
}

func (l *ErrorLog) Path() string { return l.path }

func (l *ErrorLog) Append(failure usecase.ScrapeFailure) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	line, err := sonic.Marshal(errorLineModel{
		TS:         failure.TS.UTC().Format(time.RFC3339),
		Division:   failure.Division,
		TeamKey:    failure.TeamKey,
		Attempt:    failure.Attempt,
		StatusCode: failure.StatusCode,
		Reason:     failure.Reason,
	})
	if err != nil {
		return crerr.Wrap(err, "marshal error line")
	}
	_, _ = buf.Write(line)
	_ = buf.WriteByte('\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
			return crerr.Wrapf(err, "create directory %s", filepath.Dir(l.path))
		}
		file, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return crerr.Wrapf(err, "open error log %s", l.path)
		}
		l.file = file
	}

	if _, err := l.file.Write(buf.B); err != nil {
		return crerr.Wrapf(err, "append to error log %s", l.path)
	}
	return nil
}

// Close releases the log file. Appending after Close reopens it.
func (l *ErrorLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
