package policy

// Kind discriminates permission request variants.
type Kind uint8

const (
	// KindRole asks whether the principal holds a specific role.
	KindRole Kind = iota + 1
	// KindURI asks whether the principal may access a URI path.
	KindURI
)

// Request is an immutable, tagged description of what is being asked.
// Construct one with [RoleRequest] or [URIRequest].
type Request struct {
	kind Kind
	role RoleID
	uri  string
}

// RoleRequest builds a role-membership request for id.
func RoleRequest(id RoleID) Request {
	return Request{kind: KindRole, role: id}
}

// URIRequest builds a URI-access request for path.
func URIRequest(path string) Request {
	return Request{kind: KindURI, uri: path}
}

// Kind returns the request's discriminator.
func (r Request) Kind() Kind { return r.kind }

// Role returns the requested role id. Meaningful only for KindRole.
func (r Request) Role() RoleID { return r.role }

// URI returns the requested path. Meaningful only for KindURI.
func (r Request) URI() string { return r.uri }

// Decision is a single policy's answer to a request. NotApplicable and Deny
// both surface as false from the manager, but the distinction is kept so a
// policy that matched-and-refused is not confused with one that never looked.
type Decision uint8

const (
	// NotApplicable means the policy holds no rule covering the request.
	NotApplicable Decision = iota
	// Deny means the policy matched the request and refuses it.
	Deny
	// Grant means the policy matched the request and allows it.
	Grant
)

// Principal is the authenticated identity subject to permission checks.
// Implementations are created by the authentication layer; the policy
// engine only reads them.
type Principal interface {
	Name() string
	HasRole(id RoleID) bool
}

// Policy is a named, independently loaded rule set deciding grant/deny for
// the request kinds it declares applicable. Variants beyond [RolePolicy]
// and [URIPolicy] are pluggable.
type Policy interface {
	Name() string
	Applicable(req Request) bool
	Evaluate(p Principal, req Request) (Decision, error)
}
