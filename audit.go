package keyrealm

import (
	"context"
	"io"
	"time"

	internalaudit "github.com/keyrealm/keyrealm/internal/audit"
)

// Audit event types emitted by the realm.
const (
	EventLoginSuccess          = "login.success"
	EventLoginFailure          = "login.failure"
	EventLoginRateLimited      = "login.rate_limited"
	EventTokenAuthorized       = "token.authorized"
	EventTokenRevoked          = "token.revoked"
	EventUserRegistered        = "user.registered"
	EventApplicationRegistered = "application.registered"
)

// AuditEvent is a structured audit record emitted by the realm.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the realm's dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer], one object per line.
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

func (r *Realm) emitAudit(ctx context.Context, eventType, username, clientID, ip string, success bool, err error, metaKV ...string) {
	if r.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Username:  username,
		ClientID:  clientID,
		IP:        ip,
		Success:   success,
	}
	if err != nil {
		event.Error = err.Error()
	}
	if len(metaKV) >= 2 {
		event.Metadata = make(map[string]string, len(metaKV)/2)
		for i := 0; i+1 < len(metaKV); i += 2 {
			event.Metadata[metaKV[i]] = metaKV[i+1]
		}
	}

	r.audit.Emit(ctx, event)
}
