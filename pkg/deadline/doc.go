// Package deadline bounds blocking operations by a per-call deadline.
//
// A Scope derives a context with a timeout for each operation it runs and
// translates the expiry of that context into ErrTimedOut, so callers can tell
// "the operation took too long" apart from "the operation failed" and from
// "the caller's own context ended". There is no process-wide timer: scopes
// nest, and any number of them may run concurrently.
//
// Operations have to honour the context they receive. A primitive without a
// native timeout is expressed as a cancellable wait, for example a
// non-blocking attempt retried until the context is done.
//
//	err := deadline.Run(ctx, 2*time.Second, func(ctx context.Context) error {
//	    return waitForSlot(ctx)
//	})
//	if deadline.IsTimeout(err) {
//	    // back off and retry later
//	}
package deadline
