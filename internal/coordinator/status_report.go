package coordinator

import (
	"sort"
	"time"

	"buildhook/internal/events"
	"buildhook/internal/status"
	"buildhook/pkg/types"
)

// Snapshot is a read-only copy of the coordinator state.
type Snapshot struct {
	Session  string
	Projects map[string]events.Order
	Current  Incoming
	LastLog  string
}

// Snapshot returns a read-only view of the coordinator state.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	projects := make(map[string]events.Order, len(c.projects))
	for k, v := range c.projects {
		projects[k] = v
	}
	return Snapshot{Session: c.session, Projects: projects, Current: c.current, LastLog: c.lastLog.Text}
}

// Status builds a detailed status response for /v1/status.
func (c *Coordinator) Status() types.StatusResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	resp := types.StatusResponse{
		Session:        c.session,
		Enabled:        c.provider.Enabled(),
		AllowActions:   c.env.AllowActions(),
		Deferred:       c.status.Count(events.Pre, status.Deferred),
		LastLog:        c.lastLog.Text,
		ServerTimeUnix: time.Now().Unix(),
	}
	if !c.started.IsZero() {
		resp.UptimeSeconds = int64(time.Since(c.started).Seconds())
	}
	if c.current.Project != "" {
		resp.Current = &types.ProjectState{Project: c.current.Project, Order: string(c.current.Order)}
	}
	resp.Projects = make([]types.ProjectState, 0, len(c.projects))
	for p, o := range c.projects {
		resp.Projects = append(resp.Projects, types.ProjectState{Project: p, Order: string(o)})
	}
	sort.Slice(resp.Projects, func(i, j int) bool { return resp.Projects[i].Project < resp.Projects[j].Project })
	resp.Categories = make([]types.CategoryStatus, 0, len(events.Categories))
	for _, cat := range events.Categories {
		slots := c.status.Slots(cat)
		if len(slots) == 0 {
			continue
		}
		cs := types.CategoryStatus{Category: string(cat), Outcome: c.aggregate(cat).String(), Slots: make([]string, len(slots))}
		for i, s := range slots {
			cs.Slots[i] = s.String()
		}
		resp.Categories = append(resp.Categories, cs)
	}
	return resp
}
