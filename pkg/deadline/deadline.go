package deadline

import (
	"context"
	"time"

	sharelockErrors "github.com/bashhack/sharelock/internal/errors"
)

// ErrTimedOut is returned by Run when the scope's own deadline elapsed
// before the operation completed.
var ErrTimedOut = sharelockErrors.ErrTimedOut

// Scope bounds operations by a fixed timeout.
// A Scope holds no mutable state and may be shared between goroutines.
type Scope struct {
	timeout time.Duration
}

// New creates a Scope. Negative timeouts are treated as zero.
func New(timeout time.Duration) *Scope {
	if timeout < 0 {
		timeout = 0
	}
	return &Scope{timeout: timeout}
}

// Timeout returns the duration the scope allows an operation to run.
func (s *Scope) Timeout() time.Duration {
	return s.timeout
}

// Run calls op with a context that expires after the scope's timeout.
//
// op must return once its context is done. When the scope's deadline is what
// stopped op, Run returns an error matching ErrTimedOut. When the parent
// context ended first, its error is returned as is. Any other error from op
// is returned unchanged.
func (s *Scope) Run(ctx context.Context, op func(ctx context.Context) error) error {
	scoped, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := op(scoped)
	if err == nil {
		return nil
	}

	if !isContextErr(err) {
		return err
	}

	if parentErr := ctx.Err(); parentErr != nil {
		return sharelockErrors.WithStack(parentErr)
	}

	if scoped.Err() == context.DeadlineExceeded {
		return sharelockErrors.Wrapf(ErrTimedOut, "operation exceeded %s", s.timeout)
	}

	return err
}

// Run is shorthand for New(timeout).Run(ctx, op).
func Run(ctx context.Context, timeout time.Duration, op func(ctx context.Context) error) error {
	return New(timeout).Run(ctx, op)
}

// IsTimeout reports whether err was produced by an expired Scope.
func IsTimeout(err error) bool {
	return sharelockErrors.Is(err, ErrTimedOut)
}

func isContextErr(err error) bool {
	return sharelockErrors.Is(err, context.DeadlineExceeded) || sharelockErrors.Is(err, context.Canceled)
}
