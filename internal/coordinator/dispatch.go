package coordinator

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"buildhook/internal/events"
	"buildhook/internal/output"
	"buildhook/internal/status"
)

type gate int

const (
	gateReached gate = iota
	gateExecute
)

// input is what a bind call knows about the build at dispatch time.
type input struct {
	succeeded bool
}

// policy describes how one category filters and gates its items.
type policy struct {
	gate gate
	// skipFailedBuild honors IgnoreIfBuildFailed when the build did not succeed.
	skipFailedBuild bool
	// filter is a content rule applied before the gate.
	filter func(c *Coordinator, evt events.Event) bool
}

var policies = map[events.Category]policy{
	events.Post:        {gate: gateReached, skipFailedBuild: true},
	events.Cancel:      {gate: gateReached},
	events.Transmitter: {gate: gateExecute},
	events.Warnings:    {gate: gateExecute, filter: diagnostics(output.Warnings)},
	events.Errors:      {gate: gateExecute, filter: diagnostics(output.Errors)},
	events.Output:      {gate: gateExecute, filter: matchOutput},
	events.Logging:     {gate: gateExecute},
}

func diagnostics(kind output.Kind) func(*Coordinator, events.Event) bool {
	return func(c *Coordinator, evt events.Event) bool {
		return c.output.CheckRule(kind, evt.Whitelist, evt.Codes)
	}
}

func matchOutput(c *Coordinator, evt events.Event) bool {
	return c.output.Match(evt.Match, output.MatchType(evt.MatchType), c.output.Raw())
}

func (c *Coordinator) pass(g gate, evt events.Event) bool {
	if g == gateReached {
		return c.isReached(evt)
	}
	return c.isExecute(evt)
}

// dispatch runs every eligible item of cat. Caller holds c.mu.
func (c *Coordinator) dispatch(ctx context.Context, l zerolog.Logger, cat events.Category, in input) {
	p, ok := policies[cat]
	if !ok {
		return
	}
	for i, evt := range c.provider.Events(cat) {
		if !evt.Enabled {
			continue
		}
		if p.skipFailedBuild && !in.succeeded && evt.IgnoreIfBuildFailed {
			l.Info().Str("category", string(cat)).Str("event", evt.Label()).Msg("skipped: build failed")
			continue
		}
		if p.filter != nil && !p.filter(c, evt) {
			continue
		}
		if !c.pass(p.gate, evt) {
			l.Debug().Str("category", string(cat)).Str("event", evt.Label()).Msg("skipped: execution order not reached")
			continue
		}
		c.status.Set(cat, i, c.invoke(ctx, l, cat, evt))
	}
}

// invoke runs one action and converts its result into a status slot. Errors
// and panics are logged and become Fail.
func (c *Coordinator) invoke(ctx context.Context, l zerolog.Logger, cat events.Category, evt events.Event) status.Status {
	ctx = l.WithContext(ctx)
	start := time.Now()
	c.publish("action_start", cat, evt.Label(), nil)
	effect, err := c.safeExec(ctx, evt, cat)
	actionDuration.WithLabelValues(string(cat)).Observe(time.Since(start).Seconds())
	if err != nil {
		l.Error().Err(err).Str("category", string(cat)).Str("event", evt.Label()).Msg("action failed")
		actionsTotal.WithLabelValues(string(cat), "fail").Inc()
		c.publish("action_failed", cat, evt.Label(), map[string]any{"error": err.Error()})
		return status.Fail
	}
	if effect {
		l.Info().Str("category", string(cat)).Str("event", evt.Label()).Dur("dur", time.Since(start)).Msg("action executed")
	}
	actionsTotal.WithLabelValues(string(cat), "success").Inc()
	c.publish("action_done", cat, evt.Label(), nil)
	return status.Success
}

func (c *Coordinator) safeExec(ctx context.Context, evt events.Event, cat events.Category) (effect bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("action panic: %v", r)
		}
	}()
	return c.exec.Exec(ctx, evt, cat)
}

// admit applies the guards shared by every bind entry point. It returns false
// when the bind should report Success without running anything.
func (c *Coordinator) admit(l zerolog.Logger, cat events.Category, list []events.Event) bool {
	if !c.provider.Enabled() || allDisabled(list) {
		return false
	}
	if !c.env.AllowActions() {
		c.ignored(l, cat)
		return false
	}
	return true
}

func (c *Coordinator) ignored(l zerolog.Logger, cat events.Category) {
	ignoredTotal.WithLabelValues(string(cat)).Inc()
	l.Debug().Str("category", string(cat)).Msg("actions ignored: disallowed by host")
}

func allDisabled(list []events.Event) bool {
	for _, e := range list {
		if e.Enabled {
			return false
		}
	}
	return true
}
