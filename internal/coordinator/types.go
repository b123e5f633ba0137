package coordinator

import (
	"context"

	"buildhook/internal/events"
	"buildhook/internal/output"
)

// Executor runs one event's action. The bool reports whether the action had a
// visible effect and only affects logging.
type Executor interface {
	Exec(ctx context.Context, evt events.Event, cat events.Category) (bool, error)
}

// Provider exposes the configured events and the global enable switch.
type Provider interface {
	Events(c events.Category) []events.Event
	Enabled() bool
}

// Environment adapts the build host.
type Environment interface {
	ProjectName(handle string) string
	AllowActions() bool
}

// OutputMatcher captures raw build text and evaluates content rules against
// the diagnostic codes accumulated during the session.
type OutputMatcher interface {
	UpdateRaw(text string)
	Raw() string
	// Reset forgets captured text and diagnostic codes at a new session.
	Reset()
	Match(pattern string, t output.MatchType, text string) bool
	CheckRule(kind output.Kind, whitelist bool, codes []string) bool
}

// Incoming is the most recently observed project transition.
type Incoming struct {
	Project string
	Order   events.Order
}

// Outcome is the category-level result of a bind call.
type Outcome int

const (
	Success Outcome = iota
	Failed
)

func (o Outcome) String() string {
	if o == Failed {
		return "failed"
	}
	return "success"
}

// Command describes one host command occurrence.
type Command struct {
	GUID      string
	ID        int
	CustomIn  *string
	CustomOut *string
	// Pre is true before the host runs the command, false after.
	Pre bool
}
