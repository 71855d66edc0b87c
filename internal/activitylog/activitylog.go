// Package activitylog sets up console logging and the append-only error log.
//
// Every entry at error level is mirrored to the error log file as a single
// line of the form
//
//	2006-01-02 15:04:05 | ERROR: message
//
// Writing the error log never fails the caller: problems are reported once
// on the console and otherwise ignored.
package activitylog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// TimeLayout is the timestamp layout used in the error log.
const TimeLayout = "2006-01-02 15:04:05"

// DefaultFile is the error log file name used when none is configured.
const DefaultFile = "quiz_generator.log"

// Options configures New.
type Options struct {
	Dir     string
	File    string
	Console io.Writer
	Debug   bool
}

// New returns a logger writing human-readable entries to the console and
// error entries to Dir/File.
func New(opts Options) *logrus.Logger {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	file := opts.File
	if file == "" {
		file = DefaultFile
	}
	l := logrus.New()
	l.SetOutput(console)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if opts.Debug {
		l.SetLevel(logrus.DebugLevel)
	}
	l.AddHook(&FileHook{
		Dir:      opts.Dir,
		Path:     filepath.Join(opts.Dir, file),
		Fallback: console,
	})
	return l
}

// Discard returns a logger that drops everything. Useful for tests.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// LineFormatter renders an entry as one error log line.
type LineFormatter struct{}

func (LineFormatter) Format(e *logrus.Entry) ([]byte, error) {
	msg := e.Message
	if err, ok := e.Data[logrus.ErrorKey].(error); ok && err != nil {
		msg += ": " + err.Error()
	}
	msg = strings.ReplaceAll(strings.TrimSpace(msg), "\n", " ")
	line := fmt.Sprintf("%s | %s: %s\n", e.Time.Format(TimeLayout), strings.ToUpper(e.Level.String()), msg)
	return []byte(line), nil
}

// FileHook appends error entries to Path, creating Dir first. The file is
// opened and closed for every entry.
type FileHook struct {
	Dir      string
	Path     string
	Fallback io.Writer

	once sync.Once
}

func (h *FileHook) Levels() []logrus.Level {
	return []logrus.Level{logrus.ErrorLevel}
}

func (h *FileHook) Fire(e *logrus.Entry) error {
	line, _ := LineFormatter{}.Format(e)
	if err := appendLine(h.Dir, h.Path, line); err != nil {
		h.once.Do(func() {
			if h.Fallback != nil {
				fmt.Fprintf(h.Fallback, "⚠ Warning: cannot write error log %s: %v\n", h.Path, err)
			}
		})
	}
	return nil
}

func appendLine(dir, path string, line []byte) error {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(line); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
