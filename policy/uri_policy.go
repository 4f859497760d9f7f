package policy

import (
	"errors"
	"strings"
)

type uriRule struct {
	pattern string
	prefix  string // pattern minus a trailing "*", empty for exact rules
	exact   bool
	role    RoleID
}

// URIPolicy answers URI-kind requests from an ordered list of pattern→role
// rules. A pattern either matches exactly or, when it ends in "*", matches
// any path with the preceding prefix. The most specific (longest) matching
// pattern decides; among equally specific patterns the first added wins.
// Exact matches always beat wildcard matches of the same length.
type URIPolicy struct {
	name  string
	rules []uriRule
}

// NewURIPolicy creates an empty URI-pattern policy. Rules are added by the
// policy source loader before the serving phase.
func NewURIPolicy(name string) *URIPolicy {
	return &URIPolicy{name: name}
}

// Name returns the policy's configured name.
func (p *URIPolicy) Name() string { return p.name }

// AddRule appends a pattern→role rule.
func (p *URIPolicy) AddRule(pattern string, role RoleID) error {
	if pattern == "" {
		return errors.New("uri policy: empty pattern")
	}

	rule := uriRule{pattern: pattern, role: role}
	if strings.HasSuffix(pattern, "*") {
		rule.prefix = strings.TrimSuffix(pattern, "*")
	} else {
		rule.exact = true
	}

	p.rules = append(p.rules, rule)
	return nil
}

// Rules returns the number of configured rules.
func (p *URIPolicy) Rules() int { return len(p.rules) }

// Applicable reports true for URI-kind requests only.
func (p *URIPolicy) Applicable(req Request) bool {
	return req.Kind() == KindURI
}

// Evaluate selects the most specific rule matching the requested path and
// grants when the principal holds that rule's role. Paths no rule covers are
// NotApplicable, which the manager folds into deny-by-default.
func (p *URIPolicy) Evaluate(principal Principal, req Request) (Decision, error) {
	if req.Kind() != KindURI {
		return NotApplicable, nil
	}

	rule, ok := p.match(req.URI())
	if !ok {
		return NotApplicable, nil
	}

	if principal != nil && principal.HasRole(rule.role) {
		return Grant, nil
	}
	return Deny, nil
}

func (p *URIPolicy) match(path string) (uriRule, bool) {
	var (
		best      uriRule
		bestScore = -1
	)

	for _, rule := range p.rules {
		var score int
		switch {
		case rule.exact:
			if path != rule.pattern {
				continue
			}
			// An exact rule outranks a wildcard rule of equal length.
			score = 2*len(rule.pattern) + 1
		default:
			if !strings.HasPrefix(path, rule.prefix) {
				continue
			}
			score = 2 * len(rule.prefix)
		}

		if score > bestScore {
			best = rule
			bestScore = score
		}
	}

	return best, bestScore >= 0
}
