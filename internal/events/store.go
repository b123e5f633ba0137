package events

import (
	"fmt"
	"sync"
)

// Store holds the configured events and the global enable switch. Readers get
// copies; mutation goes through Update, Replace and SetEnabled.
type Store struct {
	mu      sync.RWMutex
	set     Set
	enabled bool
}

// NewStore takes ownership of set.
func NewStore(set Set, enabled bool) *Store {
	return &Store{set: set, enabled: enabled}
}

// Enabled reports the global switch.
func (s *Store) Enabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled
}

// SetEnabled flips the global switch.
func (s *Store) SetEnabled(v bool) {
	s.mu.Lock()
	s.enabled = v
	s.mu.Unlock()
}

// Events returns a copy of the events configured for c.
func (s *Store) Events(c Category) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.set.List(c)
	if list == nil {
		return nil
	}
	out := make([]Event, len(*list))
	for i, e := range *list {
		out[i] = e.Clone()
	}
	return out
}

// Len returns the number of events configured for c.
func (s *Store) Len(c Category) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if list := s.set.List(c); list != nil {
		return len(*list)
	}
	return 0
}

// Update applies fn to the event at index idx (0-based) of category c.
func (s *Store) Update(c Category, idx int, fn func(*Event)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.set.List(c)
	if list == nil {
		return fmt.Errorf("unknown category %q", c)
	}
	if idx < 0 || idx >= len(*list) {
		return fmt.Errorf("%s: index %d out of range", c, idx)
	}
	fn(&(*list)[idx])
	return nil
}

// Replace swaps the whole configured set, e.g. after a config reload.
func (s *Store) Replace(set Set) {
	s.mu.Lock()
	s.set = set
	s.mu.Unlock()
}
