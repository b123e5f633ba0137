package coordinator

import (
	"time"

	"github.com/rs/zerolog"

	"buildhook/internal/events"
	"buildhook/internal/logsink"
	"buildhook/internal/output"
	"buildhook/internal/status"
)

// Config encapsulates the collaborators of a Coordinator.
type Config struct {
	Provider    Provider
	Executor    Executor
	Environment Environment
	Output      OutputMatcher
	Status      *status.Tracker
	Publisher   EventPublisher
	// Logger must not already carry the sink hook; New attaches it once per origin.
	Logger zerolog.Logger
	// Sink, when set, feeds the Logging category and receives coordinator logs.
	Sink *logsink.Sink
}

// allowAll is the default environment: names pass through, actions allowed.
type allowAll struct{}

func (allowAll) ProjectName(handle string) string { return handle }
func (allowAll) AllowActions() bool               { return true }

// New constructs a Coordinator from cfg, applying defaults for unset
// collaborators. Provider and Executor are required.
func New(cfg Config) *Coordinator {
	c := &Coordinator{
		provider:  cfg.Provider,
		exec:      cfg.Executor,
		env:       cfg.Environment,
		output:    cfg.Output,
		status:    cfg.Status,
		publisher: cfg.Publisher,
		projects:  make(map[string]events.Order),
		wake:      make(chan struct{}, 1),
	}
	if c.env == nil {
		c.env = allowAll{}
	}
	if c.output == nil {
		c.output = output.NewBuild()
	}
	if c.status == nil {
		c.status = status.NewTracker()
	}
	if c.publisher == nil {
		c.publisher = noopPublisher{}
	}
	c.log = cfg.Logger
	c.logDispatch = cfg.Logger
	if cfg.Sink != nil {
		c.log = cfg.Sink.Attach(cfg.Logger, logsink.OriginHost)
		c.logDispatch = cfg.Sink.Attach(cfg.Logger, logsink.OriginLogDispatch)
		c.unregister = cfg.Sink.Register(c)
	}
	c.session = newSessionID()
	c.started = time.Now()
	return c
}
