package verifact

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

type countingSink struct {
	count atomic.Int64
}

func (s *countingSink) Emit(context.Context, AuditEvent) {
	s.count.Add(1)
}

func collectEvents(sink *ChannelSink, want int) []AuditEvent {
	events := make([]AuditEvent, 0, want)
	timeout := time.After(2 * time.Second)
	for len(events) < want {
		select {
		case ev := <-sink.Events():
			events = append(events, ev)
		case <-timeout:
			return events
		}
	}
	return events
}

func auditConfig() Config {
	cfg := testConfig()
	cfg.Audit.Enabled = true
	cfg.Audit.BufferSize = 32
	cfg.Audit.DropIfFull = false
	return cfg
}

func TestAuditDisabledNoSinkCalls(t *testing.T) {
	sink := &countingSink{}
	env := newTestEnv(t, func(b *Builder) { b.WithAuditSink(sink) })
	env.seedUser(t, "alice@example.com", "secret1", nil)

	_, _ = env.engine.Login(context.Background(), "alice@example.com", "wrong-pass")
	env.engine.Close()

	if sink.count.Load() != 0 {
		t.Fatalf("expected no audit sink calls when disabled, got %d", sink.count.Load())
	}
}

func TestAuditLoginEventsCarryFields(t *testing.T) {
	sink := NewChannelSink(16)
	env := newTestEnv(t, func(b *Builder) { b.WithConfig(auditConfig()).WithAuditSink(sink) })
	env.seedUser(t, "alice@example.com", "secret1", nil)

	ctx := WithClientIP(context.Background(), "198.51.100.33")
	_, _ = env.engine.Login(ctx, "alice@example.com", "wrong-pass")
	_, _ = env.engine.Login(ctx, "alice@example.com", "secret1")

	events := collectEvents(sink, 2)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}

	failure, success := events[0], events[1]
	if failure.Type != auditEventLoginFailure || failure.Success || failure.Reason != "bad_credentials" {
		t.Fatalf("unexpected failure event %+v", failure)
	}
	if success.Type != auditEventLoginSuccess || !success.Success || success.Reason != "" {
		t.Fatalf("unexpected success event %+v", success)
	}
	for _, ev := range events {
		if ev.IP != "198.51.100.33" || ev.Subject != "alice@example.com" {
			t.Fatalf("missing ip or subject in %+v", ev)
		}
		if !ev.Timestamp.Equal(env.clock.Now()) {
			t.Fatalf("expected engine clock timestamp, got %v", ev.Timestamp)
		}
	}
}

func TestAuditNoSecretsInEvents(t *testing.T) {
	sink := NewChannelSink(32)
	env := newTestEnv(t, func(b *Builder) { b.WithConfig(auditConfig()).WithAuditSink(sink) })
	env.seedUser(t, "bob@example.com", "old-secret", nil)
	ctx := context.Background()

	res, err := env.engine.Login(ctx, "bob@example.com", "old-secret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if err := env.engine.SendResetOTP(ctx, "bob@example.com"); err != nil {
		t.Fatalf("SendResetOTP failed: %v", err)
	}
	code := env.notifier.lastCode(t, NotifyResetPassword, "bob@example.com")
	_ = env.engine.ResetPassword(ctx, "bob@example.com", "999999x", "new-secret")
	if err := env.engine.ResetPassword(ctx, "bob@example.com", code, "new-secret"); err != nil {
		t.Fatalf("ResetPassword failed: %v", err)
	}

	events := collectEvents(sink, 4)
	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(events))
	}

	needles := []string{"old-secret", "new-secret", code, res.Token}
	for _, ev := range events {
		fields := []string{ev.Reason, ev.Subject, ev.Type}
		for _, v := range ev.Metadata {
			fields = append(fields, v)
		}
		for _, f := range fields {
			for _, needle := range needles {
				if strings.Contains(f, needle) {
					t.Fatalf("secret %q leaked in event %+v", needle, ev)
				}
			}
		}
	}
}

func TestAuditRegistrationOutcomes(t *testing.T) {
	sink := NewChannelSink(8)
	env := newTestEnv(t, func(b *Builder) { b.WithConfig(auditConfig()).WithAuditSink(sink) })
	ctx := context.Background()

	req := RegisterRequest{Name: "Kim", Email: "kim@example.com", Password: "secret1"}
	_, _ = env.engine.Register(ctx, req)
	_, _ = env.engine.Register(ctx, req)

	events := collectEvents(sink, 2)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Type != auditEventAccountCreated || !events[0].Success {
		t.Fatalf("unexpected first event %+v", events[0])
	}
	if events[1].Type != auditEventAccountDuplicate || events[1].Reason != "account_exists" {
		t.Fatalf("unexpected second event %+v", events[1])
	}
}
