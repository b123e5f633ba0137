package script

import (
	"strconv"
	"strings"

	regexp "github.com/grafana/regexp"

	"buildhook/internal/events"
	"buildhook/internal/status"
)

// EventStore is the configuration the internal component reads and mutates.
type EventStore interface {
	Events(c events.Category) []events.Event
	Update(c events.Category, idx int, fn func(*events.Event)) error
}

// StatusReader exposes per-item outcomes.
type StatusReader interface {
	Get(c events.Category, idx int) status.Status
}

var (
	internalRe = regexp.MustCompile(`(?s)^\[hook\s+(.+)\]$`)
	segmentRe  = regexp.MustCompile(`(?s)^([A-Za-z_]+)\s*(.*)$`)
	dotSegRe   = regexp.MustCompile(`(?s)^\.\s*([A-Za-z_]+)\s*(.*)$`)
	itemRe     = regexp.MustCompile(`(?s)^\.\s*item\s*\(\s*(?:(\d+)|"((?:[^"\\]|\\.)*)")\s*\)\s*(.*)$`)
	itemOpenRe = regexp.MustCompile(`^\.\s*item\s*\(`)
	subPropRe  = regexp.MustCompile(`(?s)^\.\s*([A-Za-z_]+)\s*(=.*)?$`)
)

// InternalComponent exposes the configured events:
//
//	[hook events.<Category>.item(<n>|"<name>").<Property>[ = <value>]]
type InternalComponent struct {
	store  EventStore
	status StatusReader
}

func NewInternalComponent(store EventStore, st StatusReader) *InternalComponent {
	return &InternalComponent{store: store, status: st}
}

func (c *InternalComponent) Parse(data string) (string, error) {
	m := internalRe.FindStringSubmatch(strings.TrimSpace(data))
	if m == nil {
		return "", errSyntax("internal component: %q", data)
	}
	seg := segmentRe.FindStringSubmatch(strings.TrimSpace(m[1]))
	if seg == nil {
		return "", errSyntax("internal component: %q", m[1])
	}
	switch seg[1] {
	case "events":
		return c.stEvents(strings.TrimSpace(seg[2]))
	}
	return "", errSubtype("%q", seg[1])
}

func (c *InternalComponent) stEvents(expr string) (string, error) {
	if expr == "" {
		return "", errOperand("events: category expected")
	}
	m := dotSegRe.FindStringSubmatch(expr)
	if m == nil {
		return "", errSyntax("events: %q", expr)
	}
	cat, ok := events.ParseCategory(m[1])
	if !ok {
		return "", errSubtype("events.%s", m[1])
	}
	return c.stEventItem(cat, strings.TrimSpace(m[2]))
}

func (c *InternalComponent) stEventItem(cat events.Category, expr string) (string, error) {
	if expr == "" {
		return "", errOperand("events.%s: item expected", cat)
	}
	m := itemRe.FindStringSubmatch(expr)
	if m == nil {
		if itemOpenRe.MatchString(expr) {
			return "", errSyntax("events.%s: item index must be a number or a quoted name: %q", cat, expr)
		}
		if d := dotSegRe.FindStringSubmatch(expr); d != nil {
			return "", errSubtype("events.%s.%s", cat, d[1])
		}
		return "", errSyntax("events.%s: %q", cat, expr)
	}
	idx, err := c.findItem(cat, m[1], m[2])
	if err != nil {
		return "", err
	}
	tail := strings.TrimSpace(m[3])
	if tail == "" {
		return "", errOperand("events.%s.item: property expected", cat)
	}
	p := dotSegRe.FindStringSubmatch(tail)
	if p == nil {
		return "", errOperand("events.%s.item: %q", cat, tail)
	}
	rest := strings.TrimSpace(p[2])
	switch p[1] {
	case "Enabled":
		return c.pBool(cat, idx, rest,
			func(e events.Event) bool { return e.Enabled },
			func(e *events.Event, v bool) { e.Enabled = v })
	case "IgnoreIfBuildFailed":
		return c.pBool(cat, idx, rest,
			func(e events.Event) bool { return e.IgnoreIfBuildFailed },
			func(e *events.Event, v bool) { e.IgnoreIfBuildFailed = v })
	case "Name":
		return c.pString(cat, idx, p[1], rest, func(e events.Event) string { return e.Name })
	case "Caption":
		return c.pString(cat, idx, p[1], rest, func(e events.Event) string { return e.Label() })
	case "Status":
		return c.pStatus(cat, idx, rest)
	}
	return "", errSubtype("events.%s.item.%s", cat, p[1])
}

// findItem resolves a 1-based number or a quoted name to a 0-based index.
func (c *InternalComponent) findItem(cat events.Category, num, name string) (int, error) {
	list := c.store.Events(cat)
	if num != "" {
		n, err := strconv.Atoi(num)
		if err != nil || n < 1 || n > len(list) {
			return -1, errOperand("events.%s.item(%s)", cat, num)
		}
		return n - 1, nil
	}
	name = strings.ReplaceAll(name, `\"`, `"`)
	for i, e := range list {
		if e.Name == name {
			return i, nil
		}
	}
	return -1, errOperand("events.%s.item(%q)", cat, name)
}

func (c *InternalComponent) pBool(cat events.Category, idx int, rest string, get func(events.Event) bool, set func(*events.Event, bool)) (string, error) {
	switch {
	case rest == "":
		list := c.store.Events(cat)
		if idx >= len(list) {
			return "", errOperand("events.%s.item(%d)", cat, idx+1)
		}
		return strconv.FormatBool(get(list[idx])), nil
	case strings.HasPrefix(rest, "="):
		v, ok := parseBool(strings.TrimSpace(rest[1:]))
		if !ok {
			return "", errOperand("boolean expected: %q", strings.TrimSpace(rest[1:]))
		}
		if err := c.store.Update(cat, idx, func(e *events.Event) { set(e, v) }); err != nil {
			return "", errOperand("%v", err)
		}
		return "", nil
	case strings.HasPrefix(rest, "."):
		return "", errSubtype("events.%s.item: boolean property has no members: %q", cat, rest)
	}
	return "", errSyntax("events.%s.item: %q", cat, rest)
}

func (c *InternalComponent) pString(cat events.Category, idx int, name, rest string, get func(events.Event) string) (string, error) {
	switch {
	case rest == "":
		list := c.store.Events(cat)
		if idx >= len(list) {
			return "", errOperand("events.%s.item(%d)", cat, idx+1)
		}
		return get(list[idx]), nil
	case strings.HasPrefix(rest, "="), strings.HasPrefix(rest, "."):
		return "", errSubtype("events.%s.item.%s is read-only", cat, name)
	}
	return "", errSyntax("events.%s.item.%s: %q", cat, name, rest)
}

func (c *InternalComponent) pStatus(cat events.Category, idx int, rest string) (string, error) {
	if rest == "" {
		return "", errOperand("events.%s.item.Status: property expected", cat)
	}
	if strings.HasPrefix(rest, "=") {
		return "", errSubtype("events.%s.item.Status is read-only", cat)
	}
	m := subPropRe.FindStringSubmatch(rest)
	if m == nil {
		return "", errOperand("events.%s.item.Status: %q", cat, rest)
	}
	if m[1] != "HasErrors" {
		return "", errSubtype("events.%s.item.Status.%s", cat, m[1])
	}
	if m[2] != "" {
		return "", errSubtype("events.%s.item.Status.HasErrors is read-only", cat)
	}
	var st status.Status
	if c.status != nil {
		st = c.status.Get(cat, idx)
	}
	return strconv.FormatBool(st == status.Fail), nil
}

// parseBool accepts only true/false/1/0, case-insensitive.
func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true", "1":
		return true, true
	case "false", "0":
		return false, true
	}
	return false, false
}
