package audit

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
)

type countingSink struct {
	count atomic.Int64
}

func (s *countingSink) Emit(context.Context, Event) {
	s.count.Add(1)
}

type gateSink struct {
	gate chan struct{}
}

func newGateSink() *gateSink {
	return &gateSink{gate: make(chan struct{})}
}

func (s *gateSink) Emit(context.Context, Event) {
	<-s.gate
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestDisabledDispatcherIsNil(t *testing.T) {
	d := NewDispatcher(Config{Enabled: false}, &countingSink{})
	if d != nil {
		t.Fatal("expected nil dispatcher when disabled")
	}
	d.Emit(context.Background(), Event{Type: "e1"})
	d.Close()
	if d.Dropped() != 0 || d.Delivered() != 0 {
		t.Fatal("nil dispatcher must report zero counters")
	}
}

func TestBufferFullDropIfFullTrueDoesNotBlock(t *testing.T) {
	sink := newGateSink()
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)
	defer func() {
		close(sink.gate)
		d.Close()
	}()

	d.Emit(context.Background(), Event{Type: "e1"})
	d.Emit(context.Background(), Event{Type: "e2"})

	start := time.Now()
	d.Emit(context.Background(), Event{Type: "e3"})
	if time.Since(start) > 100*time.Millisecond {
		t.Fatal("expected non-blocking emit when DropIfFull is true")
	}
	if d.Dropped() == 0 {
		t.Fatal("expected dropped counter to increment when queue is full")
	}
}

func TestBufferFullDropIfFullFalseBlocksUntilSpace(t *testing.T) {
	sink := newGateSink()
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1, DropIfFull: false}, sink)
	defer func() {
		close(sink.gate)
		d.Close()
	}()

	d.Emit(context.Background(), Event{Type: "e1"})
	d.Emit(context.Background(), Event{Type: "e2"})

	done := make(chan struct{})
	go func() {
		d.Emit(context.Background(), Event{Type: "e3"})
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("expected emit to block while buffer is full")
	case <-time.After(150 * time.Millisecond):
	}

	sink.gate <- struct{}{}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("expected blocked emit to proceed after space is available")
	}
}

func TestCloseDrainsAndIsIdempotent(t *testing.T) {
	sink := &countingSink{}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 8, DropIfFull: false}, sink)

	for i := 0; i < 5; i++ {
		d.Emit(context.Background(), Event{Type: "e"})
	}
	d.Close()
	d.Close()
	d.Emit(context.Background(), Event{Type: "late"})

	if got := sink.count.Load(); got != 5 {
		t.Fatalf("expected 5 delivered events, got %d", got)
	}
	if d.Delivered() != 5 {
		t.Fatalf("expected Delivered()=5, got %d", d.Delivered())
	}
}

func TestJSONWriterSinkWritesJSONLines(t *testing.T) {
	var buf syncBuffer
	sink := NewJSONWriterSink(&buf)
	sink.Emit(context.Background(), Event{
		Timestamp: time.Now().UTC(),
		Type:      "login_success",
		Subject:   "alice@example.com",
		IP:        "127.0.0.1",
		Success:   true,
	})

	out := buf.String()
	if !strings.Contains(out, `"event_type":"login_success"`) {
		t.Fatalf("expected event type in %q", out)
	}
	if !strings.Contains(out, `"subject":"alice@example.com"`) {
		t.Fatalf("expected subject in %q", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Fatal("expected newline-terminated record")
	}
}

func TestLogrusSinkLevels(t *testing.T) {
	logger, hook := logrustest.NewNullLogger()
	sink := NewLogrusSink(logger)

	sink.Emit(context.Background(), Event{Type: "login_success", Subject: "alice@example.com", Success: true})
	sink.Emit(context.Background(), Event{Type: "login_failure", Subject: "alice@example.com", Reason: "bad_credentials"})

	entries := hook.AllEntries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Level != logrus.InfoLevel || entries[1].Level != logrus.WarnLevel {
		t.Fatalf("unexpected levels %v %v", entries[0].Level, entries[1].Level)
	}
	if entries[1].Data["reason"] != "bad_credentials" {
		t.Fatalf("expected reason field, got %v", entries[1].Data)
	}
}
