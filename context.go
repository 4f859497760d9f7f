package keyrealm

import (
	"context"

	"github.com/keyrealm/keyrealm/policy"
)

type securityContextKey struct{}
type clientIPContextKey struct{}

// SecurityContext binds the active principal and policy set for one logical
// operation. It rides the request's context.Context, so its lifetime is the
// request's lifetime: it is torn down with the context on every exit path
// and can never leak into an unrelated operation.
type SecurityContext struct {
	manager   *policy.Manager
	principal *Principal
}

// Principal returns the context's active principal.
func (s *SecurityContext) Principal() *Principal {
	if s == nil {
		return nil
	}
	return s.principal
}

// HasPermission forwards req to the bound policy manager on behalf of the
// bound principal.
func (s *SecurityContext) HasPermission(req policy.Request) (bool, error) {
	if s == nil || s.manager == nil {
		return false, ErrNoSecurityContext
	}
	return s.manager.HasPermission(s.principal, req)
}

// WithSecurityContext establishes the active security context for the
// operation scoped by ctx. Nested permission checks deep inside business
// logic read it back with [HasPermission] or [PrincipalFromContext] instead
// of threading the principal through every signature.
func WithSecurityContext(ctx context.Context, manager *policy.Manager, principal *Principal) context.Context {
	return context.WithValue(ctx, securityContextKey{}, &SecurityContext{
		manager:   manager,
		principal: principal,
	})
}

// SecurityContextFrom returns the active security context, if any.
func SecurityContextFrom(ctx context.Context) (*SecurityContext, bool) {
	if ctx == nil {
		return nil, false
	}
	sc, ok := ctx.Value(securityContextKey{}).(*SecurityContext)
	return sc, ok
}

// PrincipalFromContext returns the active principal, or nil outside any
// security context.
func PrincipalFromContext(ctx context.Context) *Principal {
	sc, ok := SecurityContextFrom(ctx)
	if !ok {
		return nil
	}
	return sc.Principal()
}

// HasPermission evaluates req against the active security context. Calling
// it before any [WithSecurityContext] binding is a contract violation and
// fails with [ErrNoSecurityContext] instead of being masked as a deny.
func HasPermission(ctx context.Context, req policy.Request) (bool, error) {
	sc, ok := SecurityContextFrom(ctx)
	if !ok {
		return false, ErrNoSecurityContext
	}
	return sc.HasPermission(req)
}

// WithClientIP attaches the caller's IP address to ctx. The realm uses it
// for per-IP login throttling and audit records.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}
