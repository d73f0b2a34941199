package forum

import "sync"

// keyedMutex hands out one mutex per entity ID.  The engine uses one
// instance keyed by user ID to serialize the counter + XP + achievement
// sequence per user, and one keyed by topic ID to serialize reply
// counting and solution marking per topic.
//
// Entries are never released; the population is bounded by the number
// of distinct users and topics seen by this process.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[uint64]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[uint64]*sync.Mutex)}
}

// Lock acquires the mutex for id and returns its unlock function.
func (k *keyedMutex) Lock(id uint64) func() {
	k.mu.Lock()
	m, ok := k.locks[id]
	if !ok {
		m = &sync.Mutex{}
		k.locks[id] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
