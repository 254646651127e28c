package application

import "sync"

// sessionLocks serializes mutating operations per session id. The aggregate
// mutations are read-modify-write sequences against the repository, so two
// writers on the same session must not interleave; writers on different
// sessions proceed in parallel. Entries are reference counted and removed once
// the last holder releases, keeping the map bounded by concurrent sessions
// rather than total sessions.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sessionLock)}
}

// acquire blocks until the caller holds the session's exclusive lock and
// returns the release function.
func (l *sessionLocks) acquire(id string) func() {
	l.mu.Lock()
	entry, ok := l.locks[id]
	if !ok {
		entry = &sessionLock{}
		l.locks[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
