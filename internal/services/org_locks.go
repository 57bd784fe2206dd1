package services

import "sync"

// orgLocks serializes work per organization. Entries are dropped once no
// goroutine holds or waits on them.
type orgLocks struct {
	mu    sync.Mutex
	locks map[string]*orgLock
}

type orgLock struct {
	mu   sync.Mutex
	refs int
}

func newOrgLocks() *orgLocks {
	return &orgLocks{locks: make(map[string]*orgLock)}
}

// Lock blocks until the organization is free and returns its unlock func.
func (l *orgLocks) Lock(organizationID string) func() {
	l.mu.Lock()
	lock, ok := l.locks[organizationID]
	if !ok {
		lock = &orgLock{}
		l.locks[organizationID] = lock
	}
	lock.refs++
	l.mu.Unlock()

	lock.mu.Lock()

	return func() {
		lock.mu.Unlock()

		l.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(l.locks, organizationID)
		}
		l.mu.Unlock()
	}
}

// held reports the number of organizations with an active or pending lock.
func (l *orgLocks) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
