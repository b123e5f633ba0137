package coordinator

import (
	"context"

	"buildhook/internal/events"
	"buildhook/internal/logsink"
)

// Notify queues a log message for the logging path. It never blocks and never
// runs actions itself. Messages emitted while a logging action runs are
// dropped so an action cannot trigger itself.
func (c *Coordinator) Notify(m logsink.Message) {
	if m.Origin == logsink.OriginLogDispatch {
		return
	}
	c.qmu.Lock()
	c.queue = append(c.queue, m)
	n := len(c.queue)
	c.qmu.Unlock()
	logQueueDepth.Set(float64(n))
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *Coordinator) dequeue() (logsink.Message, bool) {
	c.qmu.Lock()
	defer c.qmu.Unlock()
	if len(c.queue) == 0 {
		return logsink.Message{}, false
	}
	m := c.queue[0]
	c.queue[0] = logsink.Message{}
	c.queue = c.queue[1:]
	logQueueDepth.Set(float64(len(c.queue)))
	return m, true
}

// Run consumes queued log messages until ctx is done. Each message is handled
// under the coordinator lock, serialized with the host hooks.
func (c *Coordinator) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-c.wake:
		}
		for {
			if ctx.Err() != nil {
				return nil
			}
			m, ok := c.dequeue()
			if !ok {
				break
			}
			c.handleLog(ctx, m)
		}
	}
}

func (c *Coordinator) handleLog(ctx context.Context, m logsink.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastLog = m
	defer c.publish("log_handled", events.Logging, "", map[string]any{"level": m.Level.String()})
	if !c.admit(c.logDispatch, events.Logging, c.provider.Events(events.Logging)) {
		return
	}
	c.dispatch(ctx, c.logDispatch, events.Logging, input{succeeded: true})
}
