package keyrealm

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/keyrealm/keyrealm/random"
)

func newAuditedRealm(t *testing.T, sink AuditSink) *Realm {
	t.Helper()

	cfg := fastTestConfig()
	cfg.Audit.Enabled = true
	cfg.Audit.BufferSize = 16
	cfg.Audit.DropIfFull = false

	gen, err := random.NewSeeded([]byte("audit-test"))
	if err != nil {
		t.Fatalf("NewSeeded failed: %v", err)
	}

	realm, err := New().
		WithConfig(cfg).
		WithGenerator(gen).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return realm
}

func collectEvents(t *testing.T, sink *ChannelSink, n int) []AuditEvent {
	t.Helper()

	events := make([]AuditEvent, 0, n)
	timeout := time.After(2 * time.Second)
	for len(events) < n {
		select {
		case event := <-sink.Events():
			events = append(events, event)
		case <-timeout:
			t.Fatalf("timed out after %d of %d events", len(events), n)
		}
	}
	return events
}

func TestAuditLoginEvents(t *testing.T) {
	sink := NewChannelSink(16)
	realm := newAuditedRealm(t, sink)
	defer realm.Close()

	ctx := WithClientIP(context.Background(), "10.0.0.7")

	if err := realm.AddUser(ctx, "alice", "secret-password"); err != nil {
		t.Fatalf("AddUser failed: %v", err)
	}
	if _, err := realm.Verify(ctx, "alice", "wrong"); err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	principal, err := realm.Verify(ctx, "alice", "secret-password")
	if err != nil || principal == nil {
		t.Fatalf("Verify failed: %v, %v", principal, err)
	}
	realm.Revoke(ctx, principal)

	events := collectEvents(t, sink, 4)

	types := make([]string, len(events))
	for i, event := range events {
		types[i] = event.EventType
	}
	want := []string{EventUserRegistered, EventLoginFailure, EventLoginSuccess, EventTokenRevoked}
	for i, w := range want {
		if types[i] != w {
			t.Fatalf("event %d = %q, want %q (all: %v)", i, types[i], w, types)
		}
	}

	failure := events[1]
	if failure.Success {
		t.Fatal("login failure event marked successful")
	}
	if failure.Username != "alice" || failure.IP != "10.0.0.7" {
		t.Fatalf("failure event missing identity fields: %+v", failure)
	}
}

func TestJSONWriterSinkOutput(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)
	realm := newAuditedRealm(t, sink)

	ctx := context.Background()
	if err := realm.AddUser(ctx, "bob", "secret-password"); err != nil {
		t.Fatalf("AddUser failed: %v", err)
	}

	// Close drains the dispatcher before we read the buffer.
	realm.Close()

	var event AuditEvent
	if err := json.Unmarshal(buf.Bytes(), &event); err != nil {
		t.Fatalf("sink output is not one JSON object per line: %v (%q)", err, buf.String())
	}
	if event.EventType != EventUserRegistered || event.Username != "bob" {
		t.Fatalf("unexpected event: %+v", event)
	}
}

func TestAuditDroppedCounter(t *testing.T) {
	realm := newAuditedRealm(t, NoOpSink{})
	defer realm.Close()

	if realm.AuditDropped() != 0 {
		t.Fatalf("expected zero dropped events, got %d", realm.AuditDropped())
	}
}
