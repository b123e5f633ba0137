// Package status records the outcome of every configured action, one slot per
// (category, item index).
package status

import (
	"sync"

	"buildhook/internal/events"
)

// Status is the outcome held by one slot.
type Status int

const (
	None Status = iota
	Success
	Fail
	Deferred
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case Fail:
		return "fail"
	case Deferred:
		return "deferred"
	}
	return "none"
}

// Tracker is safe for concurrent use.
type Tracker struct {
	mu    sync.RWMutex
	slots map[events.Category][]Status
}

func NewTracker() *Tracker {
	return &Tracker{slots: make(map[events.Category][]Status)}
}

// Set records st for item idx of category c, growing the category as needed.
func (t *Tracker) Set(c events.Category, idx int, st Status) {
	if idx < 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.slots[c]
	if idx >= len(s) {
		grown := make([]Status, idx+1)
		copy(grown, s)
		s = grown
	}
	s[idx] = st
	t.slots[c] = s
}

// Get returns the status of item idx; None when never recorded.
func (t *Tracker) Get(c events.Category, idx int) Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s := t.slots[c]
	if idx < 0 || idx >= len(s) {
		return None
	}
	return s[idx]
}

// Contains reports whether any slot of c holds st.
func (t *Tracker) Contains(c events.Category, st Status) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, v := range t.slots[c] {
		if v == st {
			return true
		}
	}
	return false
}

// Count returns how many slots of c hold st.
func (t *Tracker) Count(c events.Category, st Status) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n := 0
	for _, v := range t.slots[c] {
		if v == st {
			n++
		}
	}
	return n
}

// Slots returns a copy of the slots recorded for c.
func (t *Tracker) Slots(c events.Category) []Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]Status(nil), t.slots[c]...)
}

// Flush clears every category.
func (t *Tracker) Flush() {
	t.mu.Lock()
	t.slots = make(map[events.Category][]Status)
	t.mu.Unlock()
}
