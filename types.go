package keyrealm

import "github.com/keyrealm/keyrealm/policy"

// Application is an OAuth client record. Immutable once registered.
type Application struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Metadata     map[string]string
}

// Principal is an authenticated identity bound to one bearer token. The
// policy engine reads it through [policy.Principal]; nothing outside the
// realm mutates it after issuance.
type Principal struct {
	name  string
	token string
	roles *policy.RoleSet
}

// Name returns the principal's display name (the verified username).
func (p *Principal) Name() string {
	if p == nil {
		return ""
	}
	return p.name
}

// HasRole reports whether the principal's membership set contains id.
func (p *Principal) HasRole(id policy.RoleID) bool {
	if p == nil || p.roles == nil {
		return false
	}
	return p.roles.Has(id)
}

// Roles returns the number of roles in the membership set.
func (p *Principal) Roles() int {
	if p == nil || p.roles == nil {
		return 0
	}
	return p.roles.Len()
}

// userRecord is the stored credential record: "<salt> <hash>" plus the role
// memberships copied into principals minted for this user.
type userRecord struct {
	username string
	record   string
	roles    *policy.RoleSet
}

var _ policy.Principal = (*Principal)(nil)
