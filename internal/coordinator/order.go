package coordinator

import "buildhook/internal/events"

// isReached reports whether any requirement of evt names the exact state its
// project is in. Items without requirements are always reached. Caller holds
// c.mu.
func (c *Coordinator) isReached(evt events.Event) bool {
	if !evt.HasExecutionOrder() {
		return true
	}
	for _, req := range evt.ExecutionOrder {
		got, ok := c.projects[req.Project]
		if !ok {
			continue
		}
		if got == req.Order {
			return true
		}
	}
	return false
}

// isExecute reports whether evt may run right now. The first requirement whose
// project has been observed decides: Before holds while the project is still
// in Before; After needs the project finished and, when the current transition
// belongs to the same project, that transition to be the After itself.
// Caller holds c.mu.
func (c *Coordinator) isExecute(evt events.Event) bool {
	if !evt.HasExecutionOrder() {
		return true
	}
	for _, req := range evt.ExecutionOrder {
		got, ok := c.projects[req.Project]
		if !ok {
			continue
		}
		if req.Order == events.Before {
			return got == events.Before
		}
		return got == events.After && (c.current.Project != req.Project || c.current.Order == events.After)
	}
	return false
}

// isCurrent reports whether the requirement list of evt contains exactly the
// given transition.
func isCurrent(evt events.Event, project string, order events.Order) bool {
	for _, req := range evt.ExecutionOrder {
		if req.Project == project && req.Order == order {
			return true
		}
	}
	return false
}
