package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/spf13/cobra"

	"github.com/bashhack/sharelock/internal/config"
	sharelockErrors "github.com/bashhack/sharelock/internal/errors"
	"github.com/bashhack/sharelock/internal/logger"
	"github.com/bashhack/sharelock/pkg/lock"
)

// exitInterrupted is the status used when a signal stopped sharelock.
const exitInterrupted = 130

// Locker is the part of a lock handle the commands use
type Locker interface {
	AcquireTimeout(timeout time.Duration) (bool, error)
	AcquireContext(ctx context.Context) (bool, error)
	Release() error
	Dispose(removeBackingFile bool) error
	Locked() bool
}

// LockerFactory opens, or with create set exclusively creates, a lock file.
type LockerFactory func(path string, create bool) (Locker, error)

// CommandRunner runs argv to completion and reports its exit status.
type CommandRunner func(ctx context.Context, argv []string) (int, error)

// AppOptions contains app configuration and dependencies.
// This struct allows injection of both required and optional dependencies,
// enabling flexible configuration and easier testing.
type AppOptions struct {
	// Config holds the application configuration settings (required).
	// The application will panic if this field is nil.
	Config *config.Config

	// Optional components

	// Logger provides logging functionality (optional, a default will be created if nil).
	// Used for both internal logging and user-facing messages.
	Logger logger.Logger

	// NewLocker opens lock files (optional, defaults to pkg/lock handles
	// labelled and logged according to Config).
	NewLocker LockerFactory

	// RunCommand runs the guarded command (optional, defaults to running
	// it as a child process wired to Stdin, Stdout and Stderr).
	RunCommand CommandRunner

	// I/O dependencies

	// Stdin is passed to the guarded command (optional, defaults to os.Stdin).
	Stdin io.Reader

	// Stdout is the writer for standard output (optional, defaults to os.Stdout).
	Stdout io.Writer

	// Stderr is the writer for error output (optional, defaults to os.Stderr).
	Stderr io.Writer

	// System dependencies

	// Exit is the function to terminate the application (optional, defaults to os.Exit).
	// Allows customization of the exit behavior, particularly useful in tests.
	Exit func(code int)

	// ExecLookPath is used to find executables in PATH (optional, defaults to exec.LookPath).
	// Used to locate the guarded command.
	ExecLookPath func(file string) (string, error)
}

// App is the main sharelock application.
// It wires configuration, logging and lock handles together and owns the
// handle opened by a command until Close.
type App struct {
	// Config holds the application configuration and settings.
	Config *config.Config

	// Logger provides logging functionality for both internal and user-facing messages.
	Logger logger.Logger

	// Locker is the handle opened by the running command, if any.
	Locker Locker

	// I/O streams

	// Stdin is passed to the guarded command.
	Stdin io.Reader

	// Stdout is the writer for standard output messages.
	Stdout io.Writer

	// Stderr is the writer for error messages and warnings.
	Stderr io.Writer

	// System dependencies

	// exit is the function to terminate the application with a status code.
	exit func(code int)

	// execLookPath is used to find the guarded command in the system PATH.
	execLookPath func(file string) (string, error)

	newLocker  LockerFactory
	runCommand CommandRunner

	// removeOnClose deletes the lock file when Close disposes the handle.
	removeOnClose bool
}

// NewDefaultApp creates an App with standard dependencies.
// It initializes a new Config with the provided version information and
// sets up standard OS dependencies. Files, environment and flags are applied
// once a command runs.
func NewDefaultApp(versionInfo config.VersionInfo) *App {
	cfg := config.New()
	cfg.VersionInfo = versionInfo

	opts := AppOptions{
		Config:       cfg,
		Stdin:        os.Stdin,
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
		Exit:         os.Exit,
		ExecLookPath: exec.LookPath,
	}

	return NewApp(opts)
}

// NewApp creates an App with custom dependencies specified in opts.
// It panics if Config is nil. Nil optional dependencies get defaults here
// or during Initialize.
func NewApp(opts AppOptions) *App {
	if opts.Config == nil {
		panic("Config is required in AppOptions")
	}

	app := &App{
		Config:       opts.Config,
		Logger:       opts.Logger,
		Stdin:        opts.Stdin,
		Stdout:       opts.Stdout,
		Stderr:       opts.Stderr,
		exit:         opts.Exit,
		execLookPath: opts.ExecLookPath,
		newLocker:    opts.NewLocker,
		runCommand:   opts.RunCommand,
	}

	// Set defaults for nil dependencies
	if app.Stdin == nil {
		app.Stdin = os.Stdin
	}
	if app.Stdout == nil {
		app.Stdout = os.Stdout
	}
	if app.Stderr == nil {
		app.Stderr = os.Stderr
	}
	if app.exit == nil {
		app.exit = os.Exit
	}
	if app.execLookPath == nil {
		app.execLookPath = exec.LookPath
	}
	if app.runCommand == nil {
		app.runCommand = app.execCommand
	}

	return app
}

// Initialize finalizes the configuration and sets up components not
// provided during construction
func (a *App) Initialize() error {
	if err := a.Config.Finalize(); err != nil {
		// Config.Finalize() already returns a properly wrapped error
		if sharelockErrors.Is(err, sharelockErrors.ErrInvalidConfiguration) {
			return err
		}
		return sharelockErrors.Wrap(sharelockErrors.ErrInvalidConfiguration, err.Error())
	}

	if a.Logger == nil {
		a.Logger = logger.New(a.Config.Debug, a.Config.LogFile, a.Config.Verbose)
	}

	if a.newLocker == nil {
		a.newLocker = a.openHandle
	}

	a.Logger.Info("sharelock %s, lock %s, label %s", a.Config.VersionInfo.Version, a.Config.LockPath, a.Config.Label)
	return nil
}

// openHandle is the default LockerFactory.
func (a *App) openHandle(path string, create bool) (Locker, error) {
	h, err := lock.New(path, create,
		lock.WithLabel(a.Config.Label),
		lock.WithLogger(a.Logger.Structured()),
	)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// Execute runs the command line in args and returns the process exit status.
func (a *App) Execute(ctx context.Context, args []string) int {
	root := a.NewRootCommand()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if closeErr := a.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	return a.exitCode(err)
}

// setup resolves configuration for cmd, with lockPath (when not empty)
// taking precedence over every other source, and initializes the app.
func (a *App) setup(cmd *cobra.Command, lockPath string) error {
	if err := a.Config.Resolve(cmd.Flags()); err != nil {
		return err
	}
	if lockPath != "" {
		a.Config.LockPath = lockPath
	}
	return a.Initialize()
}

// openLock opens the configured lock file and hands it to the app, which
// disposes it on Close.
func (a *App) openLock(create bool) (Locker, error) {
	h, err := a.newLocker(a.Config.LockPath, create)
	if err != nil {
		var lockErr *lock.Error
		if sharelockErrors.As(err, &lockErr) {
			a.Logger.Info("lock %s on %s failed: %v", lockErr.Op, lockErr.LockFile, lockErr.Err)
		}
		return nil, err
	}
	a.Locker = h
	return h, nil
}

// acquire waits for the lock as configured: a single attempt in
// non-blocking mode, up to the timeout when one is set, otherwise until the
// lock is free or ctx is cancelled.
func (a *App) acquire(ctx context.Context, h Locker) (bool, error) {
	timeout, bounded := a.Config.Deadline()
	if !bounded {
		return h.AcquireContext(ctx)
	}
	if timeout == 0 {
		return h.AcquireTimeout(0)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return h.AcquireContext(ctx)
}

// Close releases resources held by the App
func (a *App) Close() error {
	var errs []error

	if a.Locker != nil {
		// When removing, the lock is dropped by closing the descriptor right
		// before the unlink instead of by an earlier Release.
		if a.Locker.Locked() && !a.removeOnClose {
			if err := a.Locker.Release(); err != nil {
				a.reportCleanupError("Failed to release lock during cleanup: %v", err)
				errs = append(errs, err)
			}
		}
		if err := a.Locker.Dispose(a.removeOnClose); err != nil {
			a.reportCleanupError("Failed to dispose lock during cleanup: %v", err)
			errs = append(errs, err)
		}
		a.Locker = nil
	}

	if a.Logger != nil {
		if err := a.Logger.Close(); err != nil {
			_, _ = fmt.Fprintf(a.Stderr, "❌ Failed to close logger: %v\n", err)
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return sharelockErrors.Join(errs...)
	}
	return nil
}

func (a *App) reportCleanupError(format string, err error) {
	if a.Logger != nil {
		a.Logger.Error(format, err)
		return
	}
	_, _ = fmt.Fprintf(a.Stderr, "❌ "+format+"\n", err)
}

// exitError carries a specific exit status out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return fmt.Sprintf("exit status %d", e.code)
}

func (e *exitError) Unwrap() error {
	return e.err
}

// exitCode maps the outcome of a command to a process exit status,
// reporting unexpected errors on stderr.
func (a *App) exitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *exitError
	if sharelockErrors.As(err, &exitErr) {
		if exitErr.err != nil {
			_, _ = fmt.Fprintf(a.Stderr, "❌ Error: %v\n", exitErr.err)
		}
		return exitErr.code
	}

	if sharelockErrors.Is(err, context.Canceled) {
		_, _ = fmt.Fprintln(a.Stderr, "Interrupted, stopping sharelock...")
		return exitInterrupted
	}

	_, _ = fmt.Fprintf(a.Stderr, "❌ Error: %v\n", err)
	return 1
}
