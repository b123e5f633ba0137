package coordinator

import (
	"context"
	"strings"

	"buildhook/internal/events"
	"buildhook/internal/status"
)

// rawCategories are dispatched, in order, for every chunk of build output.
var rawCategories = []events.Category{events.Transmitter, events.Warnings, events.Errors, events.Output}

// BindPre runs unconstrained Pre actions and defers the constrained ones
// until their project transition is observed.
func (c *Coordinator) BindPre(ctx context.Context) Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	list := c.provider.Events(events.Pre)
	if !c.admit(c.log, events.Pre, list) {
		return Success
	}
	for i, evt := range list {
		if !evt.Enabled {
			continue
		}
		if evt.HasExecutionOrder() {
			c.log.Info().Str("event", evt.Label()).Int("requirements", len(evt.ExecutionOrder)).Msg("pre action deferred")
			c.status.Set(events.Pre, i, status.Deferred)
			c.publish("action_deferred", events.Pre, evt.Label(), nil)
			continue
		}
		c.status.Set(events.Pre, i, c.invoke(ctx, c.log, events.Pre, evt))
	}
	deferredGauge.Set(float64(c.status.Count(events.Pre, status.Deferred)))
	return c.aggregate(events.Pre)
}

// BindPost runs Post actions whose requirements are reached.
func (c *Coordinator) BindPost(ctx context.Context, succeeded bool) Outcome {
	return c.bind(ctx, events.Post, input{succeeded: succeeded})
}

// BindCancel runs Cancel actions whose requirements are reached.
func (c *Coordinator) BindCancel(ctx context.Context) Outcome {
	return c.bind(ctx, events.Cancel, input{})
}

func (c *Coordinator) bind(ctx context.Context, cat events.Category, in input) Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.admit(c.log, cat, c.provider.Events(cat)) {
		return Success
	}
	c.dispatch(ctx, c.log, cat, in)
	return c.aggregate(cat)
}

// BindBuildRaw feeds a chunk of build output to the matcher, then dispatches
// Transmitter, Warnings, Errors and Output actions.
func (c *Coordinator) BindBuildRaw(ctx context.Context, data string) Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.output.UpdateRaw(data)
	if !c.provider.Enabled() {
		return Success
	}
	for _, cat := range rawCategories {
		list := c.provider.Events(cat)
		if allDisabled(list) {
			continue
		}
		if !c.env.AllowActions() {
			c.ignored(c.log, cat)
			return Success
		}
		c.dispatch(ctx, c.log, cat, input{succeeded: true})
	}
	return c.aggregate(rawCategories...)
}

// BindProjectPre records that project handle is about to build.
func (c *Coordinator) BindProjectPre(ctx context.Context, handle string) Outcome {
	c.OnProject(ctx, c.env.ProjectName(handle), events.Before, true)
	return Success
}

// BindProjectPost records that project handle finished building.
func (c *Coordinator) BindProjectPost(ctx context.Context, handle string, success bool) Outcome {
	c.OnProject(ctx, c.env.ProjectName(handle), events.After, success)
	return Success
}

// BindCommand runs CommandEvent actions whose filters match cmd. cancel is
// true when a matching Pre filter asks the host to cancel the command.
func (c *Coordinator) BindCommand(ctx context.Context, cmd Command) (out Outcome, cancel bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	list := c.provider.Events(events.CommandEvent)
	if !c.admit(c.log, events.CommandEvent, list) {
		return Success, false
	}
	for i, evt := range list {
		if !evt.Enabled {
			continue
		}
		ok, wantCancel := matchFilters(evt.Filters, cmd)
		if !ok {
			continue
		}
		if cmd.Pre && wantCancel {
			cancel = true
		}
		c.status.Set(events.CommandEvent, i, c.invoke(ctx, c.log, events.CommandEvent, evt))
	}
	return c.aggregate(events.CommandEvent), cancel
}

// matchFilters reports whether any filter selects cmd and whether any of the
// selecting filters asks for cancellation. Items without filters never match.
func matchFilters(filters []events.CommandFilter, cmd Command) (matched, cancel bool) {
	for _, f := range filters {
		if !selects(f, cmd) {
			continue
		}
		matched = true
		if f.Cancel {
			cancel = true
		}
	}
	return matched, cancel
}

func selects(f events.CommandFilter, cmd Command) bool {
	if cmd.Pre && !f.Pre || !cmd.Pre && !f.Post {
		return false
	}
	if f.ID != cmd.ID || !strings.EqualFold(f.GUID, cmd.GUID) {
		return false
	}
	return samePayload(f.CustomIn, cmd.CustomIn) && samePayload(f.CustomOut, cmd.CustomOut)
}

func samePayload(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
