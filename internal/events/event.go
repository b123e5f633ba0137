package events

import (
	"fmt"
	"strings"
)

// Category identifies one configured action list.
type Category string

const (
	Pre          Category = "Pre"
	Post         Category = "Post"
	Cancel       Category = "Cancel"
	Transmitter  Category = "Transmitter"
	Warnings     Category = "Warnings"
	Errors       Category = "Errors"
	Output       Category = "Output"
	Logging      Category = "Logging"
	CommandEvent Category = "CommandEvent"
)

// Categories lists every category in a stable order.
var Categories = []Category{Pre, Post, Cancel, Transmitter, Warnings, Errors, Output, Logging, CommandEvent}

// ParseCategory matches s against the known category names.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Order is the lifecycle point a project has reached.
type Order string

const (
	Before Order = "Before"
	After  Order = "After"
)

// ParseOrder accepts Before/After in any letter case.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "before":
		return Before, nil
	case "after":
		return After, nil
	}
	return "", fmt.Errorf("unknown execution order %q", s)
}

// Requirement is one (project, order) pair an event waits for.
type Requirement struct {
	Project string `json:"project" yaml:"project" toml:"project"`
	Order   Order  `json:"order" yaml:"order" toml:"order"`
}

// ModeType selects how an event's action runs.
type ModeType string

const (
	ModeCommand ModeType = "command"
	ModeScript  ModeType = "script"
)

// Mode is the action definition attached to an event.
type Mode struct {
	Type    ModeType `json:"type" yaml:"type" toml:"type"`
	Command string   `json:"command" yaml:"command" toml:"command"`
	// Dir is the working directory for command mode; empty means the daemon's.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty" toml:"dir,omitempty"`
}

// CommandFilter selects host command occurrences for CommandEvent items.
type CommandFilter struct {
	GUID      string  `json:"guid" yaml:"guid" toml:"guid"`
	ID        int     `json:"id" yaml:"id" toml:"id"`
	CustomIn  *string `json:"custom_in,omitempty" yaml:"custom_in,omitempty" toml:"custom_in,omitempty"`
	CustomOut *string `json:"custom_out,omitempty" yaml:"custom_out,omitempty" toml:"custom_out,omitempty"`
	Pre       bool    `json:"pre" yaml:"pre" toml:"pre"`
	Post      bool    `json:"post" yaml:"post" toml:"post"`
	Cancel    bool    `json:"cancel" yaml:"cancel" toml:"cancel"`
}

// Event is a configured action descriptor. Category-specific fields are
// ignored by categories that do not use them.
type Event struct {
	Name                string        `json:"name" yaml:"name" toml:"name"`
	Caption             string        `json:"caption,omitempty" yaml:"caption,omitempty" toml:"caption,omitempty"`
	Enabled             bool          `json:"enabled" yaml:"enabled" toml:"enabled"`
	IgnoreIfBuildFailed bool          `json:"ignore_if_build_failed,omitempty" yaml:"ignore_if_build_failed,omitempty" toml:"ignore_if_build_failed,omitempty"`
	ExecutionOrder      []Requirement `json:"execution_order,omitempty" yaml:"execution_order,omitempty" toml:"execution_order,omitempty"`
	Mode                Mode          `json:"mode" yaml:"mode" toml:"mode"`

	// Warnings / Errors
	Codes     []string `json:"codes,omitempty" yaml:"codes,omitempty" toml:"codes,omitempty"`
	Whitelist bool     `json:"whitelist,omitempty" yaml:"whitelist,omitempty" toml:"whitelist,omitempty"`

	// Output
	Match     string `json:"match,omitempty" yaml:"match,omitempty" toml:"match,omitempty"`
	MatchType string `json:"match_type,omitempty" yaml:"match_type,omitempty" toml:"match_type,omitempty"`

	// CommandEvent
	Filters []CommandFilter `json:"filters,omitempty" yaml:"filters,omitempty" toml:"filters,omitempty"`
}

// Label is the human-facing name used in logs.
func (e Event) Label() string {
	if e.Caption != "" {
		return e.Caption
	}
	return e.Name
}

// HasExecutionOrder reports whether the event is constrained by ordering requirements.
func (e Event) HasExecutionOrder() bool { return len(e.ExecutionOrder) > 0 }

// Clone returns a deep copy so callers can hold it without sharing slices.
func (e Event) Clone() Event {
	out := e
	out.ExecutionOrder = append([]Requirement(nil), e.ExecutionOrder...)
	out.Codes = append([]string(nil), e.Codes...)
	if e.Filters != nil {
		out.Filters = make([]CommandFilter, len(e.Filters))
		copy(out.Filters, e.Filters)
	}
	return out
}

// Set is the full configured event collection, one list per category.
type Set struct {
	Pre          []Event `json:"pre,omitempty" yaml:"pre,omitempty" toml:"pre,omitempty"`
	Post         []Event `json:"post,omitempty" yaml:"post,omitempty" toml:"post,omitempty"`
	Cancel       []Event `json:"cancel,omitempty" yaml:"cancel,omitempty" toml:"cancel,omitempty"`
	Transmitter  []Event `json:"transmitter,omitempty" yaml:"transmitter,omitempty" toml:"transmitter,omitempty"`
	Warnings     []Event `json:"warnings,omitempty" yaml:"warnings,omitempty" toml:"warnings,omitempty"`
	Errors       []Event `json:"errors,omitempty" yaml:"errors,omitempty" toml:"errors,omitempty"`
	Output       []Event `json:"output,omitempty" yaml:"output,omitempty" toml:"output,omitempty"`
	Logging      []Event `json:"logging,omitempty" yaml:"logging,omitempty" toml:"logging,omitempty"`
	CommandEvent []Event `json:"command,omitempty" yaml:"command,omitempty" toml:"command,omitempty"`
}

// List returns the slice backing category c.
func (s *Set) List(c Category) *[]Event {
	switch c {
	case Pre:
		return &s.Pre
	case Post:
		return &s.Post
	case Cancel:
		return &s.Cancel
	case Transmitter:
		return &s.Transmitter
	case Warnings:
		return &s.Warnings
	case Errors:
		return &s.Errors
	case Output:
		return &s.Output
	case Logging:
		return &s.Logging
	case CommandEvent:
		return &s.CommandEvent
	}
	return nil
}

// Validate normalizes order values and rejects unusable descriptors.
func (s *Set) Validate() error {
	for _, c := range Categories {
		list := s.List(c)
		for i := range *list {
			evt := &(*list)[i]
			if strings.TrimSpace(evt.Name) == "" {
				return fmt.Errorf("events.%s[%d]: name is required", c, i)
			}
			for j := range evt.ExecutionOrder {
				o, err := ParseOrder(string(evt.ExecutionOrder[j].Order))
				if err != nil {
					return fmt.Errorf("events.%s[%d].execution_order[%d]: %w", c, i, j, err)
				}
				evt.ExecutionOrder[j].Order = o
				if strings.TrimSpace(evt.ExecutionOrder[j].Project) == "" {
					return fmt.Errorf("events.%s[%d].execution_order[%d]: project is required", c, i, j)
				}
			}
			switch evt.Mode.Type {
			case "":
				evt.Mode.Type = ModeCommand
			case ModeCommand, ModeScript:
			default:
				return fmt.Errorf("events.%s[%d]: unknown mode %q", c, i, evt.Mode.Type)
			}
			switch strings.ToLower(evt.MatchType) {
			case "", "default", "regex", "wildcard":
			default:
				return fmt.Errorf("events.%s[%d]: unknown match_type %q", c, i, evt.MatchType)
			}
		}
	}
	return nil
}
