package policyfile

import (
	"errors"
	"strings"
	"testing"

	"github.com/keyrealm/keyrealm/policy"
)

const validSource = `
roles: [developer, manager]
policies:
  - name: roles
    kind: role
  - name: uris
    kind: uri
    rules:
      - pattern: /developer/*
        role: developer
      - pattern: /manager/*
        role: manager
`

func newTargets(t *testing.T) (*policy.Registry, *policy.Manager) {
	t.Helper()

	registry, err := policy.NewRegistry(16)
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	manager, err := policy.NewManager(8)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return registry, manager
}

func TestLoadValidSource(t *testing.T) {
	registry, manager := newTargets(t)

	if err := Load(strings.NewReader(validSource), registry, manager); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if registry.Count() != 2 {
		t.Fatalf("expected 2 roles, got %d", registry.Count())
	}
	if manager.Count() != 2 {
		t.Fatalf("expected 2 policies, got %d", manager.Count())
	}

	developer, err := registry.FindRole("developer")
	if err != nil {
		t.Fatalf("FindRole failed: %v", err)
	}

	set := policy.NewRoleSet()
	set.Add(developer)
	principal := testPrincipal{name: "dev", roles: set}

	granted, err := manager.HasPermission(principal, policy.URIRequest("/developer/build"))
	if err != nil {
		t.Fatalf("HasPermission failed: %v", err)
	}
	if !granted {
		t.Fatal("expected loaded rules to grant /developer/build")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	registry, manager := newTargets(t)

	err := Load(strings.NewReader("roles: ["), registry, manager)
	if !errors.Is(err, ErrPolicyLoad) {
		t.Fatalf("expected ErrPolicyLoad, got %v", err)
	}
}

func TestLoadUnknownRuleRole(t *testing.T) {
	registry, manager := newTargets(t)

	const source = `
roles: [developer]
policies:
  - name: uris
    kind: uri
    rules:
      - pattern: /ops/*
        role: operator
`
	err := Load(strings.NewReader(source), registry, manager)
	if !errors.Is(err, ErrPolicyLoad) {
		t.Fatalf("expected ErrPolicyLoad, got %v", err)
	}
}

func TestLoadUnknownPolicyKind(t *testing.T) {
	registry, manager := newTargets(t)

	const source = `
policies:
  - name: weird
    kind: quota
`
	err := Load(strings.NewReader(source), registry, manager)
	if !errors.Is(err, ErrPolicyLoad) {
		t.Fatalf("expected ErrPolicyLoad, got %v", err)
	}
}

func TestLoadRespectsCapacity(t *testing.T) {
	registry, err := policy.NewRegistry(1)
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	manager, err := policy.NewManager(8)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	err = Load(strings.NewReader(validSource), registry, manager)
	if !errors.Is(err, ErrPolicyLoad) {
		t.Fatalf("expected ErrPolicyLoad past role capacity, got %v", err)
	}
}

func TestLoadFileMissing(t *testing.T) {
	registry, manager := newTargets(t)

	err := LoadFile("does-not-exist.yaml", registry, manager)
	if !errors.Is(err, ErrPolicyLoad) {
		t.Fatalf("expected ErrPolicyLoad, got %v", err)
	}
}

type testPrincipal struct {
	name  string
	roles *policy.RoleSet
}

func (p testPrincipal) Name() string { return p.name }

func (p testPrincipal) HasRole(id policy.RoleID) bool { return p.roles.Has(id) }
