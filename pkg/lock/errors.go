package lock

import sharelockErrors "github.com/bashhack/sharelock/internal/errors"

// Errors returned by Handle, for use with errors.Is.
var (
	ErrNotFound            = sharelockErrors.ErrNotFound
	ErrAlreadyExists       = sharelockErrors.ErrAlreadyExists
	ErrAcquisitionFailed   = sharelockErrors.ErrAcquisitionFailed
	ErrStateViolation      = sharelockErrors.ErrStateViolation
	ErrReleaseFailed       = sharelockErrors.ErrReleaseFailed
	ErrAlreadyLocked       = sharelockErrors.ErrAlreadyLocked
	ErrDisposed            = sharelockErrors.ErrDisposed
	ErrUnsupportedPlatform = sharelockErrors.ErrUnsupportedPlatform
)

// Error is the type of every error returned by Handle. It names the lock
// file, the handle's label and the operation that failed.
type Error = sharelockErrors.LockError
