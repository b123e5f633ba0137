package coordinator

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"buildhook/internal/events"
	"buildhook/internal/logsink"
	"buildhook/internal/status"
)

// Coordinator owns the project map, the current transition pointer and the
// per-category status slots of one build session.
type Coordinator struct {
	mu       sync.Mutex
	projects map[string]events.Order
	current  Incoming
	session  string
	started  time.Time
	lastLog  logsink.Message

	provider  Provider
	exec      Executor
	env       Environment
	output    OutputMatcher
	status    *status.Tracker
	publisher EventPublisher

	log         zerolog.Logger
	logDispatch zerolog.Logger
	unregister  func()

	qmu   sync.Mutex
	queue []logsink.Message
	wake  chan struct{}
}

func newSessionID() string { return uuid.NewString() }

// Close detaches the coordinator from its log sink.
func (c *Coordinator) Close() {
	if c.unregister != nil {
		c.unregister()
	}
}

// OnProject records a project transition and runs deferred Pre actions that
// were waiting for exactly this (project, order).
func (c *Coordinator) OnProject(ctx context.Context, project string, order events.Order, success bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onProject(ctx, project, order, success)
}

func (c *Coordinator) onProject(ctx context.Context, project string, order events.Order, success bool) {
	c.projects[project] = order
	c.current = Incoming{Project: project, Order: order}
	projectNoticesTotal.WithLabelValues(string(order)).Inc()
	c.publish("project", "", "", map[string]any{"project": project, "order": string(order), "success": success})
	if c.status.Contains(events.Pre, status.Deferred) {
		c.sweepDeferred(ctx, project, order, success)
		deferredGauge.Set(float64(c.status.Count(events.Pre, status.Deferred)))
	}
}

// Reset starts a new build session. It does nothing and returns false when
// the host disallows actions.
func (c *Coordinator) Reset() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.env.AllowActions() {
		c.log.Debug().Msg("reset skipped: actions disallowed by host")
		return false
	}
	c.projects = make(map[string]events.Order)
	c.current = Incoming{}
	c.status.Flush()
	c.output.Reset()
	c.session = newSessionID()
	c.started = time.Now()
	deferredGauge.Set(0)
	c.publish("reset", "", "", nil)
	return true
}

// Session returns the id of the current build session.
func (c *Coordinator) Session() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Aggregate reports Failed iff any recorded slot of cat is Fail.
func (c *Coordinator) Aggregate(cat events.Category) Outcome {
	return c.aggregate(cat)
}

func (c *Coordinator) aggregate(cats ...events.Category) Outcome {
	for _, cat := range cats {
		if c.status.Contains(cat, status.Fail) {
			return Failed
		}
	}
	return Success
}
