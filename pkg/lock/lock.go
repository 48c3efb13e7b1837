package lock

import (
	"context"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	sharelockErrors "github.com/bashhack/sharelock/internal/errors"
	"github.com/bashhack/sharelock/pkg/deadline"
)

const (
	// DefaultPath is the lock file used when no path is given.
	DefaultPath = "lock.lock"

	// DefaultPollInterval caps the wait between two attempts of a bounded acquire.
	DefaultPollInterval = 100 * time.Millisecond

	// DefaultFileMode is the permission of lock files created by Create.
	DefaultFileMode os.FileMode = 0644

	initialPollInterval = 5 * time.Millisecond
)

var errContended = sharelockErrors.New("lock held by another descriptor")

// Handle owns one descriptor on a lock file and the exclusive advisory lock
// taken through it.
//
// A Handle must not be used from several goroutines at once. Two Handles on
// the same path contend with each other exactly like two processes do.
type Handle struct {
	path     string
	label    string
	file     *os.File
	created  bool
	locked   bool
	disposed bool

	pollInterval  time.Duration
	strictRelease bool
	fileMode      os.FileMode
	log           zerolog.Logger
}

// Create creates the lock file at path and returns a Handle on it.
// It fails with ErrAlreadyExists if the file is already there.
func Create(path string, opts ...Option) (*Handle, error) {
	h := newHandle(path, true, opts)

	f, err := os.OpenFile(h.path, os.O_CREATE|os.O_EXCL|os.O_RDWR, h.fileMode)
	if err != nil {
		if os.IsExist(err) {
			return nil, h.lockError("create", sharelockErrors.Mark(err, ErrAlreadyExists))
		}
		return nil, h.lockError("create", sharelockErrors.Wrap(err, "failed to create lock file"))
	}
	h.file = f

	h.log.Debug().Msg("created lock file")
	return h, nil
}

// Open returns a Handle on the existing regular file at path.
// It fails with ErrNotFound if there is no such file.
func Open(path string, opts ...Option) (*Handle, error) {
	h := newHandle(path, false, opts)

	info, err := os.Stat(h.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, h.lockError("open", sharelockErrors.Mark(err, ErrNotFound))
		}
		return nil, h.lockError("open", sharelockErrors.Wrap(err, "failed to stat lock file"))
	}
	if !info.Mode().IsRegular() {
		return nil, h.lockError("open", sharelockErrors.Wrapf(ErrNotFound, "%s is not a regular file", info.Mode().Type()))
	}

	f, err := os.OpenFile(h.path, os.O_RDONLY, 0)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, h.lockError("open", sharelockErrors.Mark(err, ErrNotFound))
		}
		return nil, h.lockError("open", sharelockErrors.Wrap(err, "failed to open lock file"))
	}
	h.file = f

	h.log.Debug().Msg("opened lock file")
	return h, nil
}

// New calls Create when create is true and Open otherwise.
func New(path string, create bool, opts ...Option) (*Handle, error) {
	if create {
		return Create(path, opts...)
	}
	return Open(path, opts...)
}

func newHandle(path string, create bool, opts []Option) *Handle {
	if path == "" {
		path = DefaultPath
	}

	h := &Handle{
		path:         path,
		created:      create,
		pollInterval: DefaultPollInterval,
		fileMode:     DefaultFileMode,
		log:          zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}

	logCtx := h.log.With().Str("path", h.path)
	if h.label != "" {
		logCtx = logCtx.Str("label", h.label)
	}
	h.log = logCtx.Logger()

	return h
}

// Acquire blocks until the exclusive lock is granted.
func (h *Handle) Acquire() error {
	if err := h.checkAcquire(); err != nil {
		return err
	}

	h.log.Debug().Msg("waiting for lock")
	if err := lockBlocking(h.file); err != nil {
		return h.lockError("acquire", sharelockErrors.Mark(err, ErrAcquisitionFailed))
	}

	h.locked = true
	h.log.Info().Msg("acquired lock")
	return nil
}

// AcquireTimeout tries to get the exclusive lock for at most timeout.
//
// It reports false with a nil error when the timeout elapsed first; that is
// an expected outcome callers retry or give up on. A zero timeout makes a
// single attempt.
func (h *Handle) AcquireTimeout(timeout time.Duration) (bool, error) {
	if err := h.checkAcquire(); err != nil {
		return false, err
	}

	h.log.Debug().Dur("timeout", timeout).Msg("waiting for lock")
	err := deadline.Run(context.Background(), timeout, h.poll)
	if err != nil {
		if deadline.IsTimeout(err) {
			h.log.Info().Dur("timeout", timeout).Msg("lock timed out")
			return false, nil
		}
		return false, err
	}

	h.locked = true
	h.log.Info().Msg("acquired lock")
	return true, nil
}

// AcquireContext tries to get the exclusive lock until ctx is done.
//
// It reports false with a nil error when the deadline of ctx passed, and
// false with the context's error when ctx was cancelled.
func (h *Handle) AcquireContext(ctx context.Context) (bool, error) {
	if err := h.checkAcquire(); err != nil {
		return false, err
	}

	h.log.Debug().Msg("waiting for lock")
	err := h.poll(ctx)
	if err != nil {
		switch {
		case sharelockErrors.Is(err, context.DeadlineExceeded):
			h.log.Info().Msg("lock timed out")
			return false, nil
		case sharelockErrors.Is(err, context.Canceled):
			return false, h.lockError("acquire", sharelockErrors.WithStack(err))
		}
		return false, err
	}

	h.locked = true
	h.log.Info().Msg("acquired lock")
	return true, nil
}

// poll retries a non-blocking lock attempt until it succeeds, fails for a
// reason other than contention, or ctx is done.
func (h *Handle) poll(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = min(initialPollInterval, h.pollInterval)
	b.MaxInterval = h.pollInterval
	b.MaxElapsedTime = 0

	attempt := func() error {
		ok, err := tryLock(h.file)
		if err != nil {
			return backoff.Permanent(h.lockError("acquire", sharelockErrors.Mark(err, ErrAcquisitionFailed)))
		}
		if !ok {
			return errContended
		}
		return nil
	}

	notify := func(err error, next time.Duration) {
		h.log.Debug().Dur("retry_in", next).Msg("lock busy")
	}

	return backoff.RetryNotify(attempt, backoff.WithContext(b, ctx), notify)
}

func (h *Handle) checkAcquire() error {
	if h.disposed {
		return h.lockError("acquire", sharelockErrors.WithStack(ErrDisposed))
	}
	if h.locked {
		return h.lockError("acquire", sharelockErrors.WithStack(ErrAlreadyLocked))
	}
	return nil
}

// Release gives up the exclusive lock.
//
// Releasing a lock that is not held fails with ErrStateViolation, or panics
// when the handle was built WithStrictRelease. If the unlock itself fails the
// error matches ErrReleaseFailed and the handle still reports Locked.
func (h *Handle) Release() error {
	if h.disposed {
		return h.lockError("release", sharelockErrors.WithStack(ErrDisposed))
	}
	if !h.locked {
		err := h.lockError("release", sharelockErrors.WithStack(ErrStateViolation))
		if h.strictRelease {
			panic(err)
		}
		return err
	}

	if err := unlock(h.file); err != nil {
		h.log.Error().Err(err).Msg("failed to release lock")
		return h.lockError("release", sharelockErrors.Mark(err, ErrReleaseFailed))
	}

	h.locked = false
	h.log.Info().Msg("released lock")
	return nil
}

// Dispose closes the descriptor and, if removeBackingFile is set, deletes
// the lock file. The handle cannot be used afterwards.
//
// Disposing a handle that still holds the lock drops the lock along with the
// descriptor. Callers should Release first.
func (h *Handle) Dispose(removeBackingFile bool) error {
	if h.disposed {
		return h.lockError("dispose", sharelockErrors.WithStack(ErrDisposed))
	}

	if h.locked {
		h.log.Warn().Msg("disposing a handle that still holds the lock")
	}

	var errs []error
	if err := h.file.Close(); err != nil {
		errs = append(errs, h.lockError("dispose", sharelockErrors.Wrap(err, "failed to close lock file")))
	}
	h.disposed = true
	h.locked = false

	if removeBackingFile {
		if err := os.Remove(h.path); err != nil && !os.IsNotExist(err) {
			errs = append(errs, h.lockError("dispose", sharelockErrors.Wrap(err, "failed to remove lock file")))
		} else if err == nil {
			h.log.Debug().Msg("removed lock file")
		}
	}

	return sharelockErrors.Join(errs...)
}

// Path returns the lock file path.
func (h *Handle) Path() string { return h.path }

// Label returns the diagnostic label, possibly empty.
func (h *Handle) Label() string { return h.label }

// Locked reports whether the handle holds the exclusive lock.
func (h *Handle) Locked() bool { return h.locked }

// Created reports whether the handle created the lock file.
func (h *Handle) Created() bool { return h.created }

// Disposed reports whether Dispose was called.
func (h *Handle) Disposed() bool { return h.disposed }

func (h *Handle) lockError(op string, err error) error {
	return sharelockErrors.NewLockError(h.path, h.label, op, err)
}
