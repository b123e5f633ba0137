// Package uvars stores user-defined variables, optionally scoped to a project,
// with lazy evaluation.
package uvars

import (
	"fmt"
	"sort"
	"sync"
)

// Evaluator turns text into its evaluated form.
type Evaluator interface {
	Evaluate(data string) (string, error)
}

// EvaluatorFunc adapts a plain function to Evaluator.
type EvaluatorFunc func(string) (string, error)

func (f EvaluatorFunc) Evaluate(data string) (string, error) { return f(data) }

type key struct {
	name    string
	project string
}

func (k key) String() string {
	if k.project == "" {
		return k.name
	}
	return k.name + ":" + k.project
}

type entry struct {
	raw         string
	value       string
	unevaluated bool
}

// notFoundError is returned when a (name, project) pair was never defined.
type notFoundError struct{ ident string }

func (e notFoundError) Error() string { return "variable not found: " + e.ident }

// IsNotFound reports whether err indicates an undefined variable.
func IsNotFound(err error) bool {
	_, ok := err.(notFoundError)
	return ok
}

// Store is safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	vars map[key]*entry
}

func New() *Store { return &Store{vars: make(map[key]*entry)} }

// Set stores the raw definition and marks it unevaluated.
func (s *Store) Set(name, project, raw string) {
	s.mu.Lock()
	s.vars[key{name, project}] = &entry{raw: raw, value: raw, unevaluated: true}
	s.mu.Unlock()
}

// Exists reports whether (name, project) is defined.
func (s *Store) Exists(name, project string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.vars[key{name, project}]
	return ok
}

// IsUnevaluated reports whether the variable still needs evaluation. Undefined
// variables report false.
func (s *Store) IsUnevaluated(name, project string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.vars[key{name, project}]
	return ok && e.unevaluated
}

// Get returns the current value.
func (s *Store) Get(name, project string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.vars[key{name, project}]
	if !ok {
		return "", notFoundError{ident: key{name, project}.String()}
	}
	return e.value, nil
}

// Evaluate runs ev over the variable. With fromRaw the evaluator receives the
// raw definition, otherwise the current value, so chained evaluators only see
// the output of the previous stage. The unevaluated flag is cleared on success.
func (s *Store) Evaluate(name, project string, ev Evaluator, fromRaw bool) error {
	k := key{name, project}
	s.mu.RLock()
	e, ok := s.vars[k]
	var in string
	if ok {
		in = e.value
		if fromRaw {
			in = e.raw
		}
	}
	s.mu.RUnlock()
	if !ok {
		return notFoundError{ident: k.String()}
	}
	// Evaluators may read other variables, so the lock is not held while evaluating.
	out, err := ev.Evaluate(in)
	if err != nil {
		return fmt.Errorf("evaluate %s: %w", k, err)
	}
	s.mu.Lock()
	if cur, ok := s.vars[k]; ok && cur == e {
		cur.value = out
		cur.unevaluated = false
	}
	s.mu.Unlock()
	return nil
}

// Unset removes one variable.
func (s *Store) Unset(name, project string) {
	s.mu.Lock()
	delete(s.vars, key{name, project})
	s.mu.Unlock()
}

// UnsetAll removes every variable.
func (s *Store) UnsetAll() {
	s.mu.Lock()
	s.vars = make(map[key]*entry)
	s.mu.Unlock()
}

// Definitions lists defined variables as "name" or "name:project", sorted.
func (s *Store) Definitions() []string {
	s.mu.RLock()
	out := make([]string, 0, len(s.vars))
	for k := range s.vars {
		out = append(out, k.String())
	}
	s.mu.RUnlock()
	sort.Strings(out)
	return out
}

// Variable is a point-in-time copy of one definition.
type Variable struct {
	Name        string
	Project     string
	Value       string
	Unevaluated bool
}

// Ident returns "name" or "name:project".
func (v Variable) Ident() string { return key{v.Name, v.Project}.String() }

// List returns every variable ordered by identity.
func (s *Store) List() []Variable {
	s.mu.RLock()
	out := make([]Variable, 0, len(s.vars))
	for k, e := range s.vars {
		out = append(out, Variable{Name: k.name, Project: k.project, Value: e.value, Unevaluated: e.unevaluated})
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Ident() < out[j].Ident() })
	return out
}
