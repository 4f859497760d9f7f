package keyrealm

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	internalaudit "github.com/keyrealm/keyrealm/internal/audit"
	internalmetrics "github.com/keyrealm/keyrealm/internal/metrics"
	"github.com/keyrealm/keyrealm/internal/rate"
	"github.com/keyrealm/keyrealm/password"
	"github.com/keyrealm/keyrealm/policy"
	"github.com/keyrealm/keyrealm/random"
)

// Realm verifies credentials, issues opaque bearer tokens bound to
// principals, resolves tokens back to principals, and revokes them.
//
// The token and credential tables are guarded for concurrent use:
// authentication traffic is inherently parallel. Administrative mutators
// (AddUser, AddApplication, AssignRole) are expected during setup but share
// the same lock, so runtime calls are safe, merely discouraged.
type Realm struct {
	config  Config
	logger  *zap.Logger
	gen     *random.Generator
	hasher  *password.Keyed
	limiter *rate.Limiter
	audit   *internalaudit.Dispatcher
	metrics *internalmetrics.Metrics

	mu     sync.RWMutex
	users  map[string]*userRecord
	apps   map[string]Application
	tokens map[string]*Principal
}

// Verify checks username/password against the stored credential record.
// A mismatch or unknown username returns (nil, nil): failed logins are an
// expected outcome, not a fault, and leave the token table untouched. On
// success a fresh token is minted, a principal carrying the user's role
// memberships is bound to it, and the principal is returned.
func (r *Realm) Verify(ctx context.Context, username, pass string) (*Principal, error) {
	ip := clientIPFromContext(ctx)

	if r.limiter != nil {
		if err := r.limiter.CheckLogin(ctx, username, ip); err != nil {
			if errors.Is(err, rate.ErrRateLimited) {
				r.metrics.Inc(internalmetrics.MetricVerifyRateLimited)
				r.emitAudit(ctx, EventLoginRateLimited, username, "", ip, false, err)
				return nil, fmt.Errorf("%w: %s", ErrLoginRateLimited, username)
			}
			return nil, err
		}
	}

	// Snapshot the record and role set under the lock: AssignRole mutates
	// the same bitmap, and argon2 is far too slow to run inside it.
	r.mu.RLock()
	rec, ok := r.users[username]
	var record string
	var roles *policy.RoleSet
	if ok {
		record = rec.record
		roles = rec.roles.Clone()
	}
	r.mu.RUnlock()

	if !ok {
		return nil, r.failVerify(ctx, username, ip)
	}

	match, err := r.hasher.VerifyRecord(pass, record)
	if err != nil {
		// A record that does not parse is corrupted state, not a bad login.
		r.logger.Error("credential record unreadable",
			zap.String("username", username), zap.Error(err))
		return nil, err
	}
	if !match {
		return nil, r.failVerify(ctx, username, ip)
	}

	token, err := r.gen.Generate(r.config.Token.Bits)
	if err != nil {
		return nil, err
	}

	principal := &Principal{
		name:  username,
		token: token,
		roles: roles,
	}

	r.mu.Lock()
	r.tokens[token] = principal
	r.mu.Unlock()

	if r.limiter != nil {
		if err := r.limiter.ClearLogin(ctx, username); err != nil {
			r.logger.Warn("login window reset failed", zap.Error(err))
		}
	}

	r.metrics.Inc(internalmetrics.MetricVerifySuccess)
	r.metrics.Inc(internalmetrics.MetricTokenIssued)
	r.emitAudit(ctx, EventLoginSuccess, username, "", ip, true, nil)

	return principal, nil
}

func (r *Realm) failVerify(ctx context.Context, username, ip string) error {
	if r.limiter != nil {
		if err := r.limiter.RecordFailure(ctx, username, ip); err != nil {
			r.logger.Warn("login failure not recorded", zap.Error(err))
		}
	}

	r.metrics.Inc(internalmetrics.MetricVerifyFailure)
	r.emitAudit(ctx, EventLoginFailure, username, "", ip, false, nil)
	return nil
}

// Authenticate resolves token to its bound principal. The second result
// declares whether upstream layers may memoize the resolution. A revoked
// token is indistinguishable from one that never existed.
func (r *Realm) Authenticate(token string) (*Principal, bool) {
	r.mu.RLock()
	principal, ok := r.tokens[token]
	r.mu.RUnlock()

	if !ok {
		r.metrics.Inc(internalmetrics.MetricAuthenticateMiss)
		return nil, false
	}

	r.metrics.Inc(internalmetrics.MetricAuthenticateHit)
	return principal, r.config.Token.CacheableLookups
}

// Revoke removes the principal's token from the realm. Idempotent:
// revoking an already-revoked or never-issued principal is a no-op. The
// token is terminal afterwards; only a fresh Verify re-authenticates.
func (r *Realm) Revoke(ctx context.Context, principal *Principal) {
	if principal == nil || principal.token == "" {
		return
	}

	r.mu.Lock()
	_, existed := r.tokens[principal.token]
	delete(r.tokens, principal.token)
	r.mu.Unlock()

	if existed {
		r.metrics.Inc(internalmetrics.MetricTokenRevoked)
		r.emitAudit(ctx, EventTokenRevoked, principal.name, "", "", true, nil)
	}
}

// Authorize hands the bearer artifact for principal to the named
// application. It returns the token already bound by Verify; it never mints
// a new one. Unregistered applications are a fault, as is a principal whose
// token has been revoked.
func (r *Realm) Authorize(ctx context.Context, app Application, scope string, principal *Principal) (string, error) {
	if principal == nil {
		return "", ErrNotAuthenticated
	}

	r.mu.RLock()
	_, appKnown := r.apps[app.ClientID]
	current, tokenLive := r.tokens[principal.token]
	r.mu.RUnlock()

	if !appKnown {
		return "", fmt.Errorf("%w: %q", ErrUnknownApplication, app.ClientID)
	}
	if !tokenLive || current != principal {
		return "", ErrNotAuthenticated
	}

	r.emitAudit(ctx, EventTokenAuthorized, principal.name, app.ClientID, "", true, nil,
		"scope", scope)
	return principal.token, nil
}

// CheckPermission evaluates req against the active security context and
// counts the outcome in the realm's metrics. Hosts that want unmetered
// checks call [HasPermission] directly.
func (r *Realm) CheckPermission(ctx context.Context, req policy.Request) (bool, error) {
	granted, err := HasPermission(ctx, req)
	if err != nil {
		return false, err
	}

	if granted {
		r.metrics.Inc(internalmetrics.MetricPermissionGranted)
	} else {
		r.metrics.Inc(internalmetrics.MetricPermissionDenied)
	}
	return granted, nil
}

// Close flushes the audit dispatcher. The realm is unusable afterwards
// only in the sense that further events are dropped; lookups still work.
func (r *Realm) Close() {
	if r == nil {
		return
	}
	r.audit.Close()
}

// MetricsSnapshot returns a point-in-time copy of the realm's counters.
func (r *Realm) MetricsSnapshot() MetricsSnapshot {
	return r.metrics.Snapshot()
}

// AuditDropped returns the number of audit events dropped under back
// pressure.
func (r *Realm) AuditDropped() uint64 {
	return r.audit.Dropped()
}
