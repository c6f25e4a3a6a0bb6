// Package lock guards the sweep job against overlapping runs. The
// default locker is in-process; a Consul session lock (build tag
// consul) covers multi-instance deployments.
package lock

import "sync"

// Locker grants exclusive access to a named job. TryAcquire never
// blocks; a false return means another run holds the lock.
type Locker interface {
	TryAcquire() (release func(), ok bool)
}

// LocalLocker serializes runs within a single process.
type LocalLocker struct {
	mu sync.Mutex
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{}
}

func (l *LocalLocker) TryAcquire() (func(), bool) {
	if !l.mu.TryLock() {
		return nil, false
	}
	return l.mu.Unlock, true
}
