// Package lock provides cross-process mutual exclusion through advisory
// locks on a lock file.
//
// A Handle owns one descriptor on a lock file and takes an exclusive advisory
// lock through it (flock(2) on Unix, LockFileEx on Windows). The path is the
// shared resource: every process, or every Handle within one process, that
// opens the same path contends for the same lock. The lock is advisory, it
// only constrains code that asks for it, and the file's content is never
// read or written.
//
// # Lifecycle
//
//	Create/Open ──Acquire──▶ locked ──Release──▶ unlocked ──Dispose──▶ disposed
//
// A handle may be acquired and released any number of times before Dispose.
// Disposing a locked handle drops the lock with the descriptor; release first.
//
// # Usage
//
//	h, err := lock.Open("/var/run/jobs/slot.lock", lock.WithLabel("nightly"))
//	if err != nil {
//	    // errors.Is(err, lock.ErrNotFound) when the file does not exist
//	}
//	defer h.Dispose(false)
//
//	ok, err := h.AcquireTimeout(5 * time.Second)
//	if err != nil {
//	    // the lock primitive failed, see lock.ErrAcquisitionFailed
//	}
//	if !ok {
//	    // somebody else holds the lock, try again later
//	}
//	defer h.Release()
//
// # Deadlines
//
// Acquire waits in the blocking system call. AcquireTimeout and
// AcquireContext instead retry a non-blocking attempt with exponential backoff
// (capped by WithPollInterval) inside a deadline.Scope, so a free lock is
// taken on the first attempt and an expired deadline is reported as false
// rather than as an error.
//
// # Errors
//
// Every error is a *lock.Error naming the file, the label and the operation,
// and matches one of the package's sentinels with errors.Is:
//
//   - ErrNotFound, ErrAlreadyExists: Open and Create
//   - ErrAcquisitionFailed: the lock primitive failed, not retried
//   - ErrAlreadyLocked: acquiring a handle that already holds the lock
//   - ErrStateViolation: releasing a lock that is not held
//   - ErrReleaseFailed: the unlock primitive failed, the handle stays locked
//   - ErrDisposed: any call after Dispose
//
// # Thread Safety
//
// A Handle is not safe for concurrent use. Give each goroutine its own Handle;
// they exclude each other through the OS.
package lock
