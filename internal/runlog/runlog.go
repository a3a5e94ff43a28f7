// Package runlog maintains the per-run log files: an informational log
// and an error log, both timestamped per entry and truncated at the
// start of each run. Every user-facing message is mirrored into the
// informational log; errors additionally into the error log.
package runlog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	InfoName  = "wrfup.log"
	ErrorName = "wrfup-error.log"
)

// Logger writes timestamped entries to the run's log files and echoes
// them to an optional writer (normally the terminal).
type Logger struct {
	mu   sync.Mutex
	info *os.File
	errs *os.File
	echo io.Writer
}

// New truncates and opens the log files under dir. Echoed output goes to
// echo; nil disables echoing.
func New(dir string, echo io.Writer) (*Logger, error) {
	info, err := os.Create(filepath.Join(dir, InfoName))
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", InfoName, err)
	}
	errs, err := os.Create(filepath.Join(dir, ErrorName))
	if err != nil {
		info.Close()
		return nil, fmt.Errorf("opening %s: %w", ErrorName, err)
	}
	return &Logger{info: info, errs: errs, echo: echo}, nil
}

// Infof writes an informational entry and echoes it.
func (l *Logger) Infof(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.write(l.info, msg)
	if l.echo != nil {
		fmt.Fprintln(l.echo, msg)
	}
}

// Errorf writes an entry to both log files and echoes it.
func (l *Logger) Errorf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.write(l.info, msg)
	l.write(l.errs, msg)
	if l.echo != nil {
		fmt.Fprintln(l.echo, "ERROR: "+msg)
	}
}

func (l *Logger) write(f *os.File, msg string) {
	fmt.Fprintf(f, "[%s] %s\n", time.Now().Format("2006-01-02 15:04:05"), msg) //nolint:errcheck
}

// Raw returns a writer that appends untimestamped text to the
// informational log. Used for external command output.
func (l *Logger) Raw() io.Writer {
	return rawWriter{l}
}

type rawWriter struct{ l *Logger }

func (w rawWriter) Write(p []byte) (int, error) {
	w.l.mu.Lock()
	defer w.l.mu.Unlock()
	return w.l.info.Write(p)
}

// InfoPath returns the informational log's path.
func (l *Logger) InfoPath() string { return l.info.Name() }

// ErrorPath returns the error log's path.
func (l *Logger) ErrorPath() string { return l.errs.Name() }

// Close flushes and closes both log files.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	err1 := l.info.Close()
	err2 := l.errs.Close()
	if err1 != nil {
		return err1
	}
	return err2
}
