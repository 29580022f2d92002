package services

import "sync"

// RFQLocks hands out one mutex per RFQ so every mutation of an aggregate (bid
// submission, withdrawal, award, cancellation, close) runs as a critical
// section. Operations on different RFQs proceed in parallel. Locks are never
// released back; an RFQ's mutex is a few dozen bytes and the set of aggregates
// a process touches is bounded by its working set.
type RFQLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewRFQLocks creates an empty lock registry.
func NewRFQLocks() *RFQLocks {
	return &RFQLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for one RFQ, creating it on first use.
func (l *RFQLocks) Lock(rfqID string) {
	l.mutexFor(rfqID).Lock()
}

// Unlock releases the mutex for one RFQ.
func (l *RFQLocks) Unlock(rfqID string) {
	l.mutexFor(rfqID).Unlock()
}

func (l *RFQLocks) mutexFor(rfqID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[rfqID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[rfqID] = m
	}
	return m
}
