package policy

import "fmt"

// RolePolicy answers role-kind requests by testing the requested role bit in
// the principal's membership set. It holds no state of its own beyond the
// shared registry, which it consults only to reject never-created role ids.
type RolePolicy struct {
	name     string
	registry *Registry
}

// NewRolePolicy creates a role-membership policy backed by registry.
func NewRolePolicy(name string, registry *Registry) (*RolePolicy, error) {
	if registry == nil {
		return nil, fmt.Errorf("role policy %q: nil registry", name)
	}
	return &RolePolicy{name: name, registry: registry}, nil
}

// Name returns the policy's configured name.
func (p *RolePolicy) Name() string { return p.name }

// Applicable reports true for role-kind requests only.
func (p *RolePolicy) Applicable(req Request) bool {
	return req.Kind() == KindRole
}

// Evaluate grants when the principal holds the requested role. A request
// naming a role id that was never created is a contract violation and fails
// with [ErrRoleNotFound] instead of being masked as a deny.
func (p *RolePolicy) Evaluate(principal Principal, req Request) (Decision, error) {
	if req.Kind() != KindRole {
		return NotApplicable, nil
	}

	if !p.registry.Known(req.Role()) {
		return NotApplicable, fmt.Errorf("role policy %q: %w: id %d", p.name, ErrRoleNotFound, req.Role())
	}

	if principal != nil && principal.HasRole(req.Role()) {
		return Grant, nil
	}
	return Deny, nil
}
