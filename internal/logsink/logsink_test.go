package logsink

import (
	"io"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

type recorder struct {
	mu   sync.Mutex
	msgs []Message
}

func (r *recorder) Notify(m Message) {
	r.mu.Lock()
	r.msgs = append(r.msgs, m)
	r.mu.Unlock()
}

func (r *recorder) all() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.msgs...)
}

func TestSink_AttachEmitsWithOrigin(t *testing.T) {
	s := New(zerolog.InfoLevel)
	rec := &recorder{}
	s.Register(rec)
	base := zerolog.New(io.Discard)
	host := s.Attach(base, OriginHost)
	inner := s.Attach(base, OriginLogDispatch)

	host.Info().Msg("from host")
	inner.Warn().Msg("from dispatch")
	host.Debug().Msg("below threshold")

	got := rec.all()
	if len(got) != 2 {
		t.Fatalf("got %d messages: %+v", len(got), got)
	}
	if got[0].Text != "from host" || got[0].Origin != OriginHost || got[0].Level != zerolog.InfoLevel {
		t.Fatalf("unexpected first message: %+v", got[0])
	}
	if got[1].Origin != OriginLogDispatch || got[1].Time.IsZero() {
		t.Fatalf("unexpected second message: %+v", got[1])
	}
}

func TestSink_Unregister(t *testing.T) {
	s := New(zerolog.DebugLevel)
	rec := &recorder{}
	unregister := s.Register(rec)
	s.Emit(Message{Text: "one", Level: zerolog.InfoLevel})
	unregister()
	unregister()
	s.Emit(Message{Text: "two", Level: zerolog.InfoLevel})
	if got := rec.all(); len(got) != 1 || got[0].Text != "one" {
		t.Fatalf("got %+v", got)
	}
}

func TestSink_ObserverFunc(t *testing.T) {
	s := New(zerolog.InfoLevel)
	n := 0
	s.Register(ObserverFunc(func(Message) { n++ }))
	s.Emit(Message{Text: "", Level: zerolog.ErrorLevel})
	s.Emit(Message{Text: "x", Level: zerolog.ErrorLevel})
	if n != 1 {
		t.Fatalf("n=%d", n)
	}
}
