package application

import "sync"

// FloorLocks provides keyed mutual exclusion over floor plan aggregates.
// Writers that touch the same aggregate (booking creation, structural
// updates, deletion) serialize on the per-floor lock so that the read of the
// committed snapshot, the conflict check, and the write commit form one
// atomic unit relative to other writers. Writers of different floors never
// contend.
type FloorLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewFloorLocks constructs an empty lock table.
func NewFloorLocks() *FloorLocks {
	return &FloorLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the exclusive section for the given floor id and returns the
// release function. A nil receiver degrades to a no-op for tests that wire
// services without concurrency concerns.
func (f *FloorLocks) Lock(floorID string) func() {
	if f == nil {
		return func() {}
	}

	f.mu.Lock()
	lock, ok := f.locks[floorID]
	if !ok {
		lock = &sync.Mutex{}
		f.locks[floorID] = lock
	}
	f.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
