package review

import "sync"

// keyedMutex serializes callers sharing a key without blocking other keys.
// Entries are dropped once nobody holds or waits on them.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refMutex)}
}

// Lock blocks until `key` is free and returns its unlock func.
func (km *keyedMutex) Lock(key string) (unlock func()) {
	km.mu.Lock()
	l, ok := km.locks[key]
	if !ok {
		l = new(refMutex)
		km.locks[key] = l
	}
	l.refs++
	km.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		km.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(km.locks, key)
		}
		km.mu.Unlock()
	}
}

func (km *keyedMutex) len() int {
	km.mu.Lock()
	defer km.mu.Unlock()
	return len(km.locks)
}
