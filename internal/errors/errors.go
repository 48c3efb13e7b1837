package errors

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Sentinel errors that can be used with errors.Is() for error type checking
var (
	// ErrNotFound indicates the lock file does not exist or is not a regular file
	ErrNotFound = errors.New("lock file not found")

	// ErrAlreadyExists indicates exclusive creation found an existing lock file
	ErrAlreadyExists = errors.New("lock file already exists")

	// ErrAcquisitionFailed indicates the locking primitive failed for a reason other than contention
	ErrAcquisitionFailed = errors.New("failed to acquire lock")

	// ErrTimedOut indicates a deadline elapsed before the operation completed
	ErrTimedOut = errors.New("timed out")

	// ErrStateViolation indicates a release was attempted without holding the lock
	ErrStateViolation = errors.New("releasing a lock that has not been acquired")

	// ErrReleaseFailed indicates the unlock primitive failed and the lock may still be held
	ErrReleaseFailed = errors.New("failed to release lock")

	// ErrAlreadyLocked indicates an acquire was attempted while the lock is already held
	ErrAlreadyLocked = errors.New("lock already acquired by this handle")

	// ErrDisposed indicates an operation on a handle whose descriptor was closed
	ErrDisposed = errors.New("lock handle already disposed")

	// ErrUnsupportedPlatform indicates the OS offers no advisory lock primitive we know how to use
	ErrUnsupportedPlatform = errors.New("advisory file locks are not supported on this platform")

	// ErrInvalidConfiguration indicates an invalid or conflicting user configuration
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// New creates a new error with the given message.
// The returned error records the stack trace at the point it was called.
func New(message string) error {
	return pkgerrors.New(message)
}

// Wrap wraps an error with a message for better context.
// If err is nil, Wrap returns nil.
func Wrap(err error, message string) error {
	return pkgerrors.Wrap(err, message)
}

// Wrapf wraps an error with a formatted message for better context.
// If err is nil, Wrapf returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	return pkgerrors.Wrapf(err, format, args...)
}

// WithStack annotates err with a stack trace without changing its message.
func WithStack(err error) error {
	return pkgerrors.WithStack(err)
}

// Mark returns an error that matches both sentinel and cause with errors.Is,
// annotated with a stack trace. If cause is nil, Mark returns nil.
func Mark(cause, sentinel error) error {
	if cause == nil {
		return nil
	}
	return pkgerrors.WithStack(fmt.Errorf("%w: %w", sentinel, cause))
}

// Is reports whether target is in err's chain.
// This is a convenience function that wraps errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience function that wraps errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Join returns an error wrapping every non-nil error passed in, or nil.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// LockError represents an error that occurred when interacting with a lock file.
// It includes the lock file path, the diagnostic label of the handle if any,
// the operation that failed and the underlying error.
type LockError struct {
	LockFile string
	Label    string
	Op       string
	Err      error
}

// Error implements the error interface with details about the lock file and handle.
func (e *LockError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("lock %s error with file %s (label: %s): %v", e.Op, e.LockFile, e.Label, e.Err)
	}
	return fmt.Sprintf("lock %s error with file %s: %v", e.Op, e.LockFile, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *LockError) Unwrap() error {
	return e.Err
}

// NewLockError creates a new LockError with the given parameters.
func NewLockError(lockFile, label, op string, err error) *LockError {
	return &LockError{
		LockFile: lockFile,
		Label:    label,
		Op:       op,
		Err:      err,
	}
}

// ConfigError represents an error in the application configuration.
// It includes the parameter name, its value if available, and the underlying error.
type ConfigError struct {
	Parameter string
	Value     interface{}
	Err       error
}

// Error implements the error interface with details about the invalid configuration.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("configuration error for %s = %v: %v", e.Parameter, e.Value, e.Err)
	}
	return fmt.Sprintf("configuration error for %s: %v", e.Parameter, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError with the given parameters.
func NewConfigError(parameter string, value interface{}, err error) *ConfigError {
	return &ConfigError{
		Parameter: parameter,
		Value:     value,
		Err:       err,
	}
}
