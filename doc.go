// Package sharelock is a cross-process advisory file lock
//
// sharelock lets independent processes on one host take turns on a shared
// resource. Each process opens the same lock file and asks the operating
// system for an exclusive advisory lock on it (flock on Unix, LockFileEx on
// Windows). Only one descriptor holds the lock at a time, and the lock goes
// away with the descriptor, so a crashed holder never blocks the others.
//
// # Quick Start
//
//	h, err := lock.Open("/tmp/backup.lock", lock.WithLabel("nightly"))
//	if err != nil {
//	    return err
//	}
//	defer h.Dispose(false)
//
//	ok, err := h.AcquireTimeout(30 * time.Second)
//	if err != nil {
//	    return err
//	}
//	if !ok {
//	    return errors.New("another backup is running")
//	}
//	defer h.Release()
//
// From the shell:
//
//	sharelock run --timeout 30s /tmp/backup.lock -- ./backup.sh
//
// # Key Features
//
//   - Bounded Waits: Acquire blocks, AcquireTimeout and AcquireContext give up
//   - Typed Errors: every failure matches a sentinel usable with errors.Is
//   - Lifecycle Checks: double acquire, release without lock and use after
//     dispose are reported instead of silently ignored
//   - Deadline Scopes: pkg/deadline bounds any context-aware operation
//
// # Module Structure
//
// The module is organized into these packages:
//
//   - cmd/sharelock: Command-line interface
//   - pkg/lock: Lock handles over a shared file
//   - pkg/deadline: Per-call timeouts for blocking operations
//   - internal/config: Configuration files, environment and flags
//   - internal/logger: Debug log file and user-facing messages
//   - internal/errors: Sentinel errors and typed lock/config errors
//
// # Platform Support
//
// sharelock is available for:
//
//   - Linux, macOS and the BSDs (flock)
//   - Windows (LockFileEx)
//
// Other platforms build but every lock operation fails with
// ErrUnsupportedPlatform.
//
// # Implementation Notes
//
// Locks are advisory: they only exclude processes that use the same lock
// file through sharelock or the same primitive. Locks taken on the same file
// through two handles of one process contend with each other exactly like
// two processes do.
//
// Bounded acquisition polls a non-blocking attempt with exponential backoff
// capped at the handle's poll interval, so the lock may be granted up to one
// interval after it was freed.
package sharelock
