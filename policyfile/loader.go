// Package policyfile loads a declarative role and policy description into a
// registry and manager. It is the concrete policy-source collaborator: it
// runs before serving traffic, and any failure should be treated as a fatal
// startup error rather than serving a partially configured engine.
package policyfile

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/keyrealm/keyrealm/policy"
)

// ErrPolicyLoad wraps every failure surfaced by this package.
var ErrPolicyLoad = errors.New("policy load")

// File is the on-disk shape:
//
//	roles: [developer, manager]
//	policies:
//	  - name: roles
//	    kind: role
//	  - name: uris
//	    kind: uri
//	    rules:
//	      - pattern: /developer/*
//	        role: developer
type File struct {
	Roles    []string     `yaml:"roles"`
	Policies []PolicyDecl `yaml:"policies"`
}

// PolicyDecl declares one policy instance.
type PolicyDecl struct {
	Name  string     `yaml:"name"`
	Kind  string     `yaml:"kind"`
	Rules []RuleDecl `yaml:"rules"`
}

// RuleDecl declares one pattern→role rule of a uri policy.
type RuleDecl struct {
	Pattern string `yaml:"pattern"`
	Role    string `yaml:"role"`
}

// Load parses a policy description from r and populates registry and
// manager: roles first, then one policy instance per declaration. Role
// names referenced by rules must appear in the roles list.
func Load(r io.Reader, registry *policy.Registry, manager *policy.Manager) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPolicyLoad, err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("%w: %v", ErrPolicyLoad, err)
	}

	return populate(file, registry, manager)
}

// LoadFile is [Load] reading from the named file.
func LoadFile(path string, registry *policy.Registry, manager *policy.Manager) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPolicyLoad, err)
	}
	defer f.Close()

	return Load(f, registry, manager)
}

func populate(file File, registry *policy.Registry, manager *policy.Manager) error {
	for _, name := range file.Roles {
		if _, err := registry.CreateRole(name); err != nil {
			return fmt.Errorf("%w: role %q: %v", ErrPolicyLoad, name, err)
		}
	}

	for _, decl := range file.Policies {
		p, err := buildPolicy(decl, registry)
		if err != nil {
			return err
		}
		if err := manager.AddPolicy(p); err != nil {
			return fmt.Errorf("%w: policy %q: %v", ErrPolicyLoad, decl.Name, err)
		}
	}

	return nil
}

func buildPolicy(decl PolicyDecl, registry *policy.Registry) (policy.Policy, error) {
	switch decl.Kind {
	case "role":
		p, err := policy.NewRolePolicy(decl.Name, registry)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPolicyLoad, err)
		}
		return p, nil

	case "uri":
		p := policy.NewURIPolicy(decl.Name)
		for _, rule := range decl.Rules {
			id, err := registry.FindRole(rule.Role)
			if err != nil {
				return nil, fmt.Errorf("%w: policy %q: %v", ErrPolicyLoad, decl.Name, err)
			}
			if err := p.AddRule(rule.Pattern, id); err != nil {
				return nil, fmt.Errorf("%w: policy %q: %v", ErrPolicyLoad, decl.Name, err)
			}
		}
		return p, nil

	default:
		return nil, fmt.Errorf("%w: policy %q: unknown kind %q", ErrPolicyLoad, decl.Name, decl.Kind)
	}
}
