package policy

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrPolicyCapacity is returned when AddPolicy would exceed the
	// manager's construction-time capacity.
	ErrPolicyCapacity = errors.New("policy capacity exceeded")
	// ErrManagerFrozen is returned by AddPolicy after Freeze.
	ErrManagerFrozen = errors.New("policy manager frozen")
)

// Manager is a fixed-capacity aggregate of [Policy] instances. It routes a
// permission request to every policy applicable to the request's kind and
// returns true on the first grant; absence of an explicit grant is always a
// deny, never an error.
type Manager struct {
	maxPolicies int

	mu       sync.RWMutex
	policies []Policy
	frozen   bool
}

// NewManager creates a [Manager] holding at most maxPolicies policies.
func NewManager(maxPolicies int) (*Manager, error) {
	if maxPolicies <= 0 {
		return nil, errors.New("maxPolicies must be positive")
	}
	return &Manager{
		maxPolicies: maxPolicies,
		policies:    make([]Policy, 0, maxPolicies),
	}, nil
}

// AddPolicy registers a policy instance. Exceeding the configured capacity
// is a configuration fault surfaced at startup, not a runtime condition.
func (m *Manager) AddPolicy(p Policy) error {
	if p == nil {
		return errors.New("nil policy")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.frozen {
		return ErrManagerFrozen
	}
	if len(m.policies) >= m.maxPolicies {
		return fmt.Errorf("%w: max %d policies", ErrPolicyCapacity, m.maxPolicies)
	}

	m.policies = append(m.policies, p)
	return nil
}

// HasPermission dispatches req to each applicable policy in registration
// order and returns true on the first grant. Deny and not-applicable both
// yield false. A non-nil error reports a contract violation inside a policy
// (for example a never-created role id), not a deny.
func (m *Manager) HasPermission(principal Principal, req Request) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var firstErr error
	for _, p := range m.policies {
		if !p.Applicable(req) {
			continue
		}

		decision, err := p.Evaluate(principal, req)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if decision == Grant {
			return true, nil
		}
	}

	return false, firstErr
}

// Freeze ends the setup phase; subsequent AddPolicy calls fail.
func (m *Manager) Freeze() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frozen = true
}

// Count returns the number of registered policies.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.policies)
}
