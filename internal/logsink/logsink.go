// Package logsink turns log lines into notifications for registered observers.
// A zerolog hook feeds the sink, so anything logged through an attached logger
// reaches the observers.
package logsink

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Origin tells observers where a message was produced.
type Origin int

const (
	// OriginHost covers everything outside a log-triggered dispatch.
	OriginHost Origin = iota
	// OriginLogDispatch marks messages produced while handling a log notification.
	OriginLogDispatch
)

// Message is one produced log line.
type Message struct {
	Text   string
	Level  zerolog.Level
	Origin Origin
	Time   time.Time
}

// Observer receives messages. Notify is called on the emitting goroutine and
// must not block.
type Observer interface {
	Notify(Message)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Message)

func (f ObserverFunc) Notify(m Message) { f(m) }

// Sink fans messages out to observers.
type Sink struct {
	mu        sync.RWMutex
	observers map[uint64]Observer
	next      uint64
	minLevel  zerolog.Level
}

// New returns a sink forwarding messages at minLevel or above.
func New(minLevel zerolog.Level) *Sink {
	return &Sink{observers: make(map[uint64]Observer), minLevel: minLevel}
}

// Register adds o and returns a function that removes it.
func (s *Sink) Register(o Observer) (unregister func()) {
	s.mu.Lock()
	id := s.next
	s.next++
	s.observers[id] = o
	s.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		})
	}
}

// Emit delivers m to every observer.
func (s *Sink) Emit(m Message) {
	if m.Level < s.minLevel || m.Text == "" {
		return
	}
	if m.Time.IsZero() {
		m.Time = time.Now()
	}
	s.mu.RLock()
	obs := make([]Observer, 0, len(s.observers))
	for _, o := range s.observers {
		obs = append(obs, o)
	}
	s.mu.RUnlock()
	for _, o := range obs {
		o.Notify(m)
	}
}

// Attach returns l with a hook that emits every logged message tagged with origin.
func (s *Sink) Attach(l zerolog.Logger, origin Origin) zerolog.Logger {
	return l.Hook(hook{sink: s, origin: origin})
}

type hook struct {
	sink   *Sink
	origin Origin
}

func (h hook) Run(_ *zerolog.Event, level zerolog.Level, msg string) {
	h.sink.Emit(Message{Text: msg, Level: level, Origin: h.origin})
}
