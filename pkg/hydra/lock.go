package hydra

import (
	"context"
	"sync"
)

type dispatchLockKey struct{}

// WithDispatchLock returns a context telling heads which lock the host holds
// while it dispatches. Heads release it around blocking I/O with Unlocked.
func WithDispatchLock(ctx context.Context, l sync.Locker) context.Context {
	return context.WithValue(ctx, dispatchLockKey{}, l)
}

// Unlocked runs fn with the host's dispatch lock released and takes it back
// before returning. Without a lock in ctx fn just runs.
//
// fn must not touch the registry, the session or the recorder. It may write
// to the head's own response.
func Unlocked(ctx context.Context, fn func()) {
	l, ok := ctx.Value(dispatchLockKey{}).(sync.Locker)
	if !ok || l == nil {
		fn()
		return
	}
	l.Unlock()
	defer l.Lock()
	fn()
}
