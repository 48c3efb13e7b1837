package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Logger is what the application logs through. Every method except
// StatusMessage also records the message in the debug log when it is on.
type Logger interface {
	// Info records a message in the debug log only.
	Info(format string, args ...interface{})

	// Warning is printed on stdout when verbose.
	Warning(format string, args ...interface{})

	// Error is always printed on stderr.
	Error(format string, args ...interface{})

	InfoToUser(format string, args ...interface{})
	WarningToUser(format string, args ...interface{})
	Success(format string, args ...interface{})

	// StatusMessage prints a bare line on stdout and is never logged.
	StatusMessage(format string, args ...interface{})

	// Structured returns the debug log as a zerolog.Logger, disabled when
	// debug logging is off.
	Structured() zerolog.Logger

	Close() error
}

type console int

const (
	noConsole console = iota
	toStdout
	toStderr
)

// route describes where one kind of message ends up.
type route struct {
	logged      bool
	level       zerolog.Level
	console     console
	prefix      string
	verboseOnly bool
}

var (
	routeInfo          = route{logged: true, level: zerolog.InfoLevel}
	routeWarning       = route{logged: true, level: zerolog.WarnLevel, console: toStdout, prefix: "⚠️  ", verboseOnly: true}
	routeError         = route{logged: true, level: zerolog.ErrorLevel, console: toStderr, prefix: "❌ "}
	routeInfoToUser    = route{logged: true, level: zerolog.InfoLevel, console: toStdout, prefix: "ℹ️  "}
	routeWarningToUser = route{logged: true, level: zerolog.WarnLevel, console: toStdout, prefix: "⚠️  "}
	routeSuccess       = route{logged: true, level: zerolog.InfoLevel, console: toStdout, prefix: "✅ "}
	routeStatus        = route{console: toStdout}
)

// DefaultLogger sends messages to a zerolog debug log and to the console
// according to their route. It is safe for concurrent use.
type DefaultLogger struct {
	mu      sync.Mutex
	events  zerolog.Logger
	file    *os.File
	verbose bool
	stdout  io.Writer
	stderr  io.Writer
}

// New creates a Logger printing to os.Stdout and os.Stderr. With debug set,
// events are appended to logFile as JSON lines.
func New(debug bool, logFile string, verbose bool) Logger {
	return NewWithOutput(debug, logFile, verbose, os.Stdout, os.Stderr)
}

// NewWithOutput is New with explicit console writers.
func NewWithOutput(debug bool, logFile string, verbose bool, stdout, stderr io.Writer) *DefaultLogger {
	l := &DefaultLogger{
		events:  zerolog.Nop(),
		verbose: verbose,
		stdout:  stdout,
		stderr:  stderr,
	}

	if debug {
		l.events, l.file = openDebugLog(logFile, stdout, stderr)
		l.events.Info().Msg("sharelock debug logging started")
	}

	return l
}

// openDebugLog opens path for appending. When that fails the debug log is
// rendered on stderr instead, so debug output is never silently lost.
func openDebugLog(path string, stdout, stderr io.Writer) (zerolog.Logger, *os.File) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			_, _ = fmt.Fprintf(stderr, "⚠️ Failed to create log directory: %v\n", err)
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "⚠️ Failed to open log file: %v, using stderr instead\n", err)
		cw := zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.RFC3339}
		return zerolog.New(cw).With().Timestamp().Logger().Level(zerolog.DebugLevel), nil
	}

	_, _ = fmt.Fprintf(stdout, "🔍 Debug logging enabled. Logs will be written to: %s\n", path)
	return zerolog.New(f).With().Timestamp().Logger().Level(zerolog.DebugLevel), f
}

func (l *DefaultLogger) send(r route, format string, args []interface{}) {
	msg := fmt.Sprintf(format, args...)

	l.mu.Lock()
	defer l.mu.Unlock()

	if r.logged {
		l.events.WithLevel(r.level).Msg(msg)
	}

	if r.console == noConsole || (r.verboseOnly && !l.verbose) {
		return
	}
	w := l.stdout
	if r.console == toStderr {
		w = l.stderr
	}
	_, _ = fmt.Fprintf(w, "%s%s\n", r.prefix, msg)
}

func (l *DefaultLogger) Info(format string, args ...interface{}) {
	l.send(routeInfo, format, args)
}

func (l *DefaultLogger) Warning(format string, args ...interface{}) {
	l.send(routeWarning, format, args)
}

func (l *DefaultLogger) Error(format string, args ...interface{}) {
	l.send(routeError, format, args)
}

func (l *DefaultLogger) InfoToUser(format string, args ...interface{}) {
	l.send(routeInfoToUser, format, args)
}

func (l *DefaultLogger) WarningToUser(format string, args ...interface{}) {
	l.send(routeWarningToUser, format, args)
}

func (l *DefaultLogger) Success(format string, args ...interface{}) {
	l.send(routeSuccess, format, args)
}

func (l *DefaultLogger) StatusMessage(format string, args ...interface{}) {
	l.send(routeStatus, format, args)
}

func (l *DefaultLogger) Structured() zerolog.Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.events
}

// Close syncs and closes the log file. Later messages only reach the console.
func (l *DefaultLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}

	syncErr := l.file.Sync()
	closeErr := l.file.Close()
	l.file = nil
	l.events = zerolog.Nop()

	if syncErr != nil {
		return syncErr
	}
	return closeErr
}

// SetStdout replaces the writer used for stdout messages.
func (l *DefaultLogger) SetStdout(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stdout = w
}

// SetStderr replaces the writer used for stderr messages.
func (l *DefaultLogger) SetStderr(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stderr = w
}
