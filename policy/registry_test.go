package policy

import (
	"errors"
	"testing"
)

func newTestRegistry(t *testing.T, maxRoles int) *Registry {
	t.Helper()

	r, err := NewRegistry(maxRoles)
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	return r
}

func TestCreateRoleIdempotent(t *testing.T) {
	r := newTestRegistry(t, 8)

	first, err := r.CreateRole("admin")
	if err != nil {
		t.Fatalf("CreateRole failed: %v", err)
	}
	second, err := r.CreateRole("admin")
	if err != nil {
		t.Fatalf("repeated CreateRole failed: %v", err)
	}
	if first != second {
		t.Fatalf("expected same id, got %d then %d", first, second)
	}
	if r.Count() != 1 {
		t.Fatalf("expected 1 role, got %d", r.Count())
	}

	name, err := r.RoleName(first)
	if err != nil {
		t.Fatalf("RoleName failed: %v", err)
	}
	if name != "admin" {
		t.Fatalf("expected admin, got %q", name)
	}
}

func TestCreateRoleMonotonicIDs(t *testing.T) {
	r := newTestRegistry(t, 8)

	a, _ := r.CreateRole("a")
	b, _ := r.CreateRole("b")
	c, _ := r.CreateRole("c")

	if a != FirstRoleID || b != FirstRoleID+1 || c != FirstRoleID+2 {
		t.Fatalf("expected ids %d,%d,%d, got %d,%d,%d",
			FirstRoleID, FirstRoleID+1, FirstRoleID+2, a, b, c)
	}
}

func TestCreateRoleCapacity(t *testing.T) {
	r := newTestRegistry(t, 2)

	if _, err := r.CreateRole("a"); err != nil {
		t.Fatalf("CreateRole failed: %v", err)
	}
	if _, err := r.CreateRole("b"); err != nil {
		t.Fatalf("CreateRole failed: %v", err)
	}

	_, err := r.CreateRole("c")
	if !errors.Is(err, ErrRoleCapacity) {
		t.Fatalf("expected ErrRoleCapacity, got %v", err)
	}

	// Existing names stay reachable past capacity.
	if _, err := r.CreateRole("a"); err != nil {
		t.Fatalf("idempotent create past capacity failed: %v", err)
	}
}

func TestFindRoleNotFound(t *testing.T) {
	r := newTestRegistry(t, 8)

	if _, err := r.FindRole("ghost"); !errors.Is(err, ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound, got %v", err)
	}
	if _, err := r.RoleName(99); !errors.Is(err, ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound for unallocated id, got %v", err)
	}
}

func TestRegistryFreeze(t *testing.T) {
	r := newTestRegistry(t, 8)

	id, err := r.CreateRole("admin")
	if err != nil {
		t.Fatalf("CreateRole failed: %v", err)
	}

	r.Freeze()

	if _, err := r.CreateRole("late"); !errors.Is(err, ErrRegistryFrozen) {
		t.Fatalf("expected ErrRegistryFrozen, got %v", err)
	}

	// Idempotent re-create of an existing role still succeeds.
	again, err := r.CreateRole("admin")
	if err != nil {
		t.Fatalf("existing role create after freeze failed: %v", err)
	}
	if again != id {
		t.Fatalf("expected id %d, got %d", id, again)
	}
}
