package coordinator

import (
	"context"

	"buildhook/internal/events"
	"buildhook/internal/status"
)

// sweepDeferred runs the deferred Pre items that require exactly the
// transition just observed. Each item leaves Deferred at most once. Caller
// holds c.mu.
func (c *Coordinator) sweepDeferred(ctx context.Context, project string, order events.Order, success bool) {
	list := c.provider.Events(events.Pre)
	for i, evt := range list {
		if c.status.Get(events.Pre, i) != status.Deferred {
			continue
		}
		if !evt.Enabled || !c.provider.Enabled() {
			c.log.Info().Str("event", evt.Label()).Msg("deferred action ignored: disabled")
			continue
		}
		if !c.env.AllowActions() {
			c.ignored(c.log, events.Pre)
			return
		}
		if !success && evt.IgnoreIfBuildFailed {
			c.log.Info().Str("event", evt.Label()).Str("project", project).Msg("deferred action skipped: build failed")
			continue
		}
		if !isCurrent(evt, project, order) {
			continue
		}
		c.log.Info().Str("event", evt.Label()).Str("project", project).Str("order", string(order)).Msg("running deferred action")
		c.status.Set(events.Pre, i, c.invoke(ctx, c.log, events.Pre, evt))
	}
}
