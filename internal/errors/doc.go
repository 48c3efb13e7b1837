// Package errors provides error handling utilities for sharelock.
//
// It defines the sentinel errors of the lock taxonomy, typed errors that carry
// context (LockError, ConfigError) and thin wrappers over github.com/pkg/errors
// so that wrapped errors record a stack trace.
//
// # Sentinels
//
//   - ErrNotFound, ErrAlreadyExists: construction failures
//   - ErrAcquisitionFailed, ErrReleaseFailed: the OS lock primitive failed
//   - ErrStateViolation, ErrAlreadyLocked, ErrDisposed: misuse of a handle
//   - ErrTimedOut: a deadline scope expired
//   - ErrInvalidConfiguration: CLI configuration problems
//
// # Usage
//
//	if err != nil {
//	    return errors.NewLockError(path, label, "acquire",
//	        errors.Wrap(errors.ErrAcquisitionFailed, err.Error()))
//	}
//
//	if errors.Is(err, errors.ErrNotFound) {
//	    // create the lock file first
//	}
package errors
