package coordinator

import "buildhook/internal/events"

// Event represents a coordinator lifecycle event.
// Name plus the category and item it concerns; extra data goes to Fields.
type Event struct {
	Name     string
	Category events.Category
	Item     string
	Fields   map[string]any
}

// EventPublisher receives events from the coordinator. Implementations should
// be lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

func (c *Coordinator) publish(name string, cat events.Category, item string, fields map[string]any) {
	if fields == nil {
		fields = map[string]any{}
	}
	fields["session"] = c.session
	c.publisher.Publish(Event{Name: name, Category: cat, Item: item, Fields: fields})
}
