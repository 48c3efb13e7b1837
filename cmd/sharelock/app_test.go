package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/bashhack/sharelock/internal/config"
	sharelockErrors "github.com/bashhack/sharelock/internal/errors"
	"github.com/bashhack/sharelock/internal/logger"
	"github.com/bashhack/sharelock/pkg/lock"
)

// Environment variables that turn the test binary into a guarded command.
const (
	childExitEnv  = "SHARELOCK_TEST_CHILD_EXIT"
	childEchoEnv  = "SHARELOCK_TEST_CHILD_ECHO"
	childSleepEnv = "SHARELOCK_TEST_CHILD_SLEEP"
)

func TestMain(m *testing.M) {
	if msg, ok := os.LookupEnv(childEchoEnv); ok {
		_, _ = os.Stdout.WriteString(msg + "\n")
	}
	if d, ok := os.LookupEnv(childSleepEnv); ok {
		pause, _ := time.ParseDuration(d)
		time.Sleep(pause)
	}
	if code, ok := os.LookupEnv(childExitEnv); ok {
		n, _ := strconv.Atoi(code)
		os.Exit(n)
	}
	os.Exit(m.Run())
}

// newTestApp builds an App writing to buffers, with a real logger.
func newTestApp(t *testing.T) (*App, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	app := NewApp(AppOptions{
		Config: config.New(),
		Logger: logger.NewWithOutput(false, "", true, &stdout, &stderr),
		Stdin:  strings.NewReader(""),
		Stdout: &stdout,
		Stderr: &stderr,
		Exit:   func(int) {},
	})
	return app, &stdout, &stderr
}

func TestNewAppRequiresConfig(t *testing.T) {
	defer func() {
		r := recover()
		assert.Check(t, r != nil, "expected panic for nil Config")
	}()
	NewApp(AppOptions{})
}

func TestNewAppDefaults(t *testing.T) {
	app := NewApp(AppOptions{Config: config.New()})

	assert.Check(t, app.Stdin == os.Stdin)
	assert.Check(t, app.Stdout == os.Stdout)
	assert.Check(t, app.Stderr == os.Stderr)
	assert.Check(t, app.exit != nil)
	assert.Check(t, app.execLookPath != nil)
	assert.Check(t, app.runCommand != nil)
	assert.Check(t, app.Logger == nil, "logger is created by Initialize")
}

func TestNewDefaultApp(t *testing.T) {
	app := NewDefaultApp(config.VersionInfo{Version: "v1.0.0", Commit: "abc", Date: "today"})

	assert.Equal(t, app.Config.VersionInfo.Version, "v1.0.0")
	assert.Equal(t, app.Config.ConflictExitCode, config.DefaultConflictExitCode)
}

func TestInitialize(t *testing.T) {
	tests := map[string]struct {
		setup       func(c *config.Config)
		expectError bool
	}{
		"valid":              {setup: func(c *config.Config) { c.LockPath = "/tmp/jobs.lock" }},
		"negative timeout":   {setup: func(c *config.Config) { c.Timeout = -time.Second }, expectError: true},
		"exit code too high": {setup: func(c *config.Config) { c.ConflictExitCode = 256 }, expectError: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			app, _, _ := newTestApp(t)
			tc.setup(app.Config)

			err := app.Initialize()
			if tc.expectError {
				assert.Assert(t, sharelockErrors.Is(err, sharelockErrors.ErrInvalidConfiguration))
				return
			}

			assert.NilError(t, err)
			assert.Check(t, app.newLocker != nil)
			assert.Check(t, app.Config.Label != "")
		})
	}
}

func TestInitializeCreatesLogger(t *testing.T) {
	app := NewApp(AppOptions{Config: config.New(), Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}})

	assert.NilError(t, app.Initialize())
	assert.Check(t, app.Logger != nil)
	assert.NilError(t, app.Close())
}

func TestOpenLockLogsFailedOperation(t *testing.T) {
	app, _, _ := newTestApp(t)
	mockLogger := &MockLogger{}
	app.Logger = mockLogger
	app.Config.LockPath = "/tmp/jobs.lock"

	cause := sharelockErrors.NewLockError("/tmp/jobs.lock", "nightly", "create", lock.ErrAlreadyExists)
	app.newLocker = func(path string, create bool) (Locker, error) {
		return nil, sharelockErrors.Wrap(cause, "opening lock")
	}

	h, err := app.openLock(true)

	assert.Assert(t, h == nil)
	assert.ErrorIs(t, err, lock.ErrAlreadyExists)
	assert.Check(t, app.Locker == nil)
	assert.Check(t, mockLogger.InfoCalled)
	assert.Equal(t, mockLogger.LastMessage, "lock create on /tmp/jobs.lock failed: lock file already exists")
}

func TestAcquireStrategy(t *testing.T) {
	tests := map[string]struct {
		timeout       time.Duration
		nonblock      bool
		expectTimeout bool
		expectDead    bool
	}{
		"unbounded waits on the command context": {},
		"nonblock makes a single attempt":        {nonblock: true, expectTimeout: true},
		"timeout bounds the context":             {timeout: time.Minute, expectDead: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			app, _, _ := newTestApp(t)
			app.Config.Timeout = tc.timeout
			app.Config.NonBlocking = tc.nonblock

			locker := &MockLocker{AcquireResult: true}
			acquired, err := app.acquire(context.Background(), locker)

			assert.NilError(t, err)
			assert.Check(t, acquired)
			assert.Equal(t, locker.TimeoutCalled, tc.expectTimeout)
			assert.Equal(t, locker.ContextCalled, !tc.expectTimeout)
			assert.Equal(t, locker.ContextHasDeadline, tc.expectDead)
			if tc.expectTimeout {
				assert.Equal(t, locker.LastTimeout, time.Duration(0))
			}
		})
	}
}

func TestCloseScenarios(t *testing.T) {
	tests := map[string]struct {
		locker        *MockLocker
		locked        bool
		removeOnClose bool
		loggerErr     error
		expectError   bool
		validate      func(t *testing.T, app *App, locker *MockLocker, log *MockLogger)
	}{
		"no locker": {
			validate: func(t *testing.T, app *App, locker *MockLocker, log *MockLogger) {
				assert.Check(t, log.CloseCalled)
			},
		},
		"held lock is released then disposed": {
			locker: &MockLocker{},
			locked: true,
			validate: func(t *testing.T, app *App, locker *MockLocker, log *MockLogger) {
				assert.Check(t, locker.ReleaseCalled)
				assert.Check(t, locker.DisposeCalled)
				assert.Check(t, !locker.RemovedFile)
				assert.Check(t, app.Locker == nil)
			},
		},
		"free lock is only disposed": {
			locker: &MockLocker{},
			validate: func(t *testing.T, app *App, locker *MockLocker, log *MockLogger) {
				assert.Check(t, !locker.ReleaseCalled)
				assert.Check(t, locker.DisposeCalled)
			},
		},
		"remove on close": {
			locker:        &MockLocker{},
			removeOnClose: true,
			validate: func(t *testing.T, app *App, locker *MockLocker, log *MockLogger) {
				assert.Check(t, locker.RemovedFile)
			},
		},
		"held lock is dropped by dispose when removing": {
			locker:        &MockLocker{},
			locked:        true,
			removeOnClose: true,
			validate: func(t *testing.T, app *App, locker *MockLocker, log *MockLogger) {
				assert.Check(t, !locker.ReleaseCalled, "no unlock before the unlink")
				assert.Check(t, locker.DisposeCalled)
				assert.Check(t, locker.RemovedFile)
				assert.Check(t, !locker.Locked())
			},
		},
		"release failure is reported": {
			locker:      &MockLocker{ReleaseErr: sharelockErrors.ErrReleaseFailed},
			locked:      true,
			expectError: true,
			validate: func(t *testing.T, app *App, locker *MockLocker, log *MockLogger) {
				assert.Check(t, log.ErrorCalled)
				assert.Check(t, locker.DisposeCalled, "dispose still runs after a failed release")
			},
		},
		"logger close failure": {
			loggerErr:   errors.New("disk full"),
			expectError: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			log := &MockLogger{CloseErr: tc.loggerErr}
			app := NewApp(AppOptions{Config: config.New(), Logger: log, Stderr: &bytes.Buffer{}})
			app.removeOnClose = tc.removeOnClose
			if tc.locker != nil {
				tc.locker.locked = tc.locked
				app.Locker = tc.locker
			}

			err := app.Close()
			if tc.expectError {
				assert.Check(t, err != nil)
			} else {
				assert.NilError(t, err)
			}

			if tc.validate != nil {
				tc.validate(t, app, tc.locker, log)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := map[string]struct {
		err        error
		want       int
		wantStderr string
	}{
		"success":            {err: nil, want: 0},
		"plain exit status":  {err: &exitError{code: 75}, want: 75},
		"exit with message":  {err: &exitError{code: 127, err: errors.New("cannot run nope")}, want: 127, wantStderr: "cannot run nope"},
		"wrapped exit error": {err: sharelockErrors.Wrap(&exitError{code: 3}, "run"), want: 3},
		"interrupted":        {err: sharelockErrors.WithStack(context.Canceled), want: exitInterrupted, wantStderr: "Interrupted"},
		"other error":        {err: sharelockErrors.ErrNotFound, want: 1, wantStderr: "❌ Error: lock file not found"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			var stderr bytes.Buffer
			app := NewApp(AppOptions{Config: config.New(), Stderr: &stderr})

			assert.Equal(t, app.exitCode(tc.err), tc.want)
			if tc.wantStderr != "" {
				assert.Check(t, is.Contains(stderr.String(), tc.wantStderr))
			} else {
				assert.Equal(t, stderr.String(), "")
			}
		})
	}
}
