package iam

import "sync"

// subjectLocks hands out one mutex per subject. Entries are dropped when no caller holds
// or waits for them.
type subjectLocks struct {
	mu    sync.Mutex
	locks map[string]*subjectLock
}

type subjectLock struct {
	mu   sync.Mutex
	refs int
}

func newSubjectLocks() *subjectLocks {
	return &subjectLocks{locks: make(map[string]*subjectLock)}
}

// lock blocks until the caller owns subject and returns the matching unlock.
func (l *subjectLocks) lock(subject string) func() {
	l.mu.Lock()
	entry, ok := l.locks[subject]
	if !ok {
		entry = &subjectLock{}
		l.locks[subject] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, subject)
		}
		l.mu.Unlock()
	}
}

func (l *subjectLocks) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
