package coordinator

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"buildhook/internal/env"
	"buildhook/internal/events"
	"buildhook/internal/logsink"
)

// recordingExec records every executed event name and fails or panics on demand.
type recordingExec struct {
	mu     sync.Mutex
	calls  []string
	fail   map[string]bool
	panics map[string]bool
	// during is invoked inside Exec with the action context.
	during func(ctx context.Context)
}

func (x *recordingExec) Exec(ctx context.Context, evt events.Event, _ events.Category) (bool, error) {
	x.mu.Lock()
	x.calls = append(x.calls, evt.Name)
	during := x.during
	x.mu.Unlock()
	if during != nil {
		during(ctx)
	}
	if x.panics[evt.Name] {
		panic("boom")
	}
	if x.fail[evt.Name] {
		return false, errors.New("exit status 1")
	}
	return true, nil
}

func (x *recordingExec) Calls() []string {
	x.mu.Lock()
	defer x.mu.Unlock()
	return append([]string(nil), x.calls...)
}

func (x *recordingExec) count(name string) int {
	n := 0
	for _, c := range x.Calls() {
		if c == name {
			n++
		}
	}
	return n
}

type fixture struct {
	c     *Coordinator
	store *events.Store
	host  *env.Host
	exec  *recordingExec
	pub   *MemoryPublisher
}

func newFixture(t *testing.T, set events.Set) *fixture {
	t.Helper()
	if err := set.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	f := &fixture{
		store: events.NewStore(set, true),
		host:  env.NewHost(nil),
		exec:  &recordingExec{fail: map[string]bool{}, panics: map[string]bool{}},
		pub:   NewMemoryPublisher(),
	}
	f.c = New(Config{
		Provider:    f.store,
		Executor:    f.exec,
		Environment: f.host,
		Publisher:   f.pub,
		Logger:      zerolog.New(io.Discard),
	})
	return f
}

func item(name string, reqs ...events.Requirement) events.Event {
	return events.Event{
		Name:           name,
		Enabled:        true,
		ExecutionOrder: reqs,
		Mode:           events.Mode{Type: events.ModeScript, Command: name},
	}
}

func req(project string, order events.Order) events.Requirement {
	return events.Requirement{Project: project, Order: order}
}

func newSink() *logsink.Sink { return logsink.New(zerolog.InfoLevel) }

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
