// Package async runs functions on background goroutines and exposes their
// outcome as a Future.
//
// Async starts a function bound to the caller's context. Detached starts one
// that outlives the caller's request: it keeps the context values (request
// id, logger attributes) but drops the cancellation and applies its own
// timeout. The account service uses Detached for post-registration hooks
// such as the welcome e-mail.
//
// A panic inside the function is recovered and reported as ErrPanic.
//
//	fut := async.Detached(ctx, 10*time.Second, func(ctx context.Context) error {
//		return mailer.Send(ctx, msg)
//	})
//	if _, err := fut.AwaitWithTimeout(time.Second); err != nil {
//		...
//	}
package async
