package policy

import (
	"errors"
	"fmt"
	"sync"
)

// RoleID identifies a registered role. IDs are allocated monotonically
// starting at FirstRoleID and are never reused.
type RoleID uint32

// FirstRoleID is the identifier assigned to the first registered role.
const FirstRoleID RoleID = 1

var (
	// ErrRoleCapacity is returned when registering a role would exceed the
	// registry's configured maximum.
	ErrRoleCapacity = errors.New("role capacity exceeded")
	// ErrRoleNotFound is returned for unregistered role names and
	// never-allocated role ids.
	ErrRoleNotFound = errors.New("role not found")
	// ErrRegistryFrozen is returned by CreateRole after Freeze.
	ErrRegistryFrozen = errors.New("role registry frozen")
)

// Registry is a bidirectional mapping between role names and role ids,
// bounded by a maximum role count. It is append-only: roles are permanent
// for the lifetime of the process.
type Registry struct {
	maxRoles int

	mu       sync.RWMutex
	nameToID map[string]RoleID
	idToName map[RoleID]string
	next     RoleID
	frozen   bool
}

// NewRegistry creates a role [Registry] holding at most maxRoles roles.
func NewRegistry(maxRoles int) (*Registry, error) {
	if maxRoles <= 0 {
		return nil, errors.New("maxRoles must be positive")
	}

	return &Registry{
		maxRoles: maxRoles,
		nameToID: make(map[string]RoleID, maxRoles),
		idToName: make(map[RoleID]string, maxRoles),
		next:     FirstRoleID,
	}, nil
}

// CreateRole registers name and returns its id. If name is already
// registered the existing id is returned, so repeated calls are idempotent.
// Returns [ErrRoleCapacity] once maxRoles ids have been allocated.
func (r *Registry) CreateRole(name string) (RoleID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name == "" {
		return 0, errors.New("role name cannot be empty")
	}

	if id, ok := r.nameToID[name]; ok {
		return id, nil
	}

	if r.frozen {
		return 0, ErrRegistryFrozen
	}

	if len(r.nameToID) >= r.maxRoles {
		return 0, fmt.Errorf("%w: max %d roles", ErrRoleCapacity, r.maxRoles)
	}

	id := r.next
	r.next++
	r.nameToID[name] = id
	r.idToName[id] = name

	return id, nil
}

// FindRole returns the id registered for name, or [ErrRoleNotFound].
func (r *Registry) FindRole(name string) (RoleID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.nameToID[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrRoleNotFound, name)
	}
	return id, nil
}

// RoleName returns the name registered for id. Ids outside the allocated
// range fail with [ErrRoleNotFound] rather than returning an empty name, so
// misconfigured lookups surface during integration testing.
func (r *Registry) RoleName(id RoleID) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name, ok := r.idToName[id]
	if !ok {
		return "", fmt.Errorf("%w: id %d", ErrRoleNotFound, id)
	}
	return name, nil
}

// Known reports whether id has been allocated.
func (r *Registry) Known(id RoleID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.idToName[id]
	return ok
}

// Freeze ends the setup phase. Subsequent CreateRole calls for new names
// fail; lookups remain available.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Count returns the number of registered roles.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.nameToID)
}
