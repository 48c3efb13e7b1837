package lock

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Option configures a Handle.
type Option func(*Handle)

// WithLabel sets an identifier used only in log output and errors.
func WithLabel(label string) Option {
	return func(h *Handle) {
		h.label = label
	}
}

// WithLogger sets the logger the handle reports lock activity to.
func WithLogger(logger zerolog.Logger) Option {
	return func(h *Handle) {
		h.log = logger
	}
}

// WithPollInterval caps the wait between two attempts of a bounded acquire.
// Non-positive values are ignored.
func WithPollInterval(interval time.Duration) Option {
	return func(h *Handle) {
		if interval > 0 {
			h.pollInterval = interval
		}
	}
}

// WithStrictRelease makes Release panic instead of returning
// ErrStateViolation when the lock is not held.
func WithStrictRelease() Option {
	return func(h *Handle) {
		h.strictRelease = true
	}
}

// WithFileMode sets the permission bits of a lock file made by Create.
func WithFileMode(mode os.FileMode) Option {
	return func(h *Handle) {
		h.fileMode = mode
	}
}
