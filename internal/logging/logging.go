package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

const TimeFormat = "2006-01-02 15:04:05"

// Session is a logger backed by a per-run log file.
type Session struct {
	*log.Logger
	Path string
	file *os.File
}

// Setup creates conversion_<timestamp>.log in dir and returns a debug level
// logger writing to it. With verbose set the log is mirrored to stderr.
func Setup(dir string, verbose bool) (*Session, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, fmt.Sprintf("conversion_%s.log", time.Now().Format("20060102_150405")))
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	var w io.Writer = f
	if verbose {
		w = io.MultiWriter(f, os.Stderr)
	}
	return &Session{Logger: New(w), Path: path, file: f}, nil
}

func (s *Session) Close() error {
	if s.file == nil {
		return nil
	}
	return s.file.Close()
}

// New returns a debug level logger with timestamps writing to w
func New(w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      TimeFormat,
		Level:           log.DebugLevel,
	})
}

// Discard returns a logger that drops everything
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}
