// Package keyrealm is an embeddable role-based access-control policy engine
// combined with a token-issuing authentication realm.
//
// Hosts declare roles and URI-shaped permission rules during startup,
// freeze the policy set, and evaluate permission checks on the request hot
// path through a context-scoped security binding. Independently, the realm
// verifies username/password credentials against salted keyed-hash records,
// issues opaque bearer tokens, resolves tokens back to principals, and
// revokes them.
//
// Construct a realm with the fluent builder:
//
//	realm, err := keyrealm.New().
//		WithLogger(logger).
//		WithAuditSink(keyrealm.NewJSONWriterSink(os.Stdout)).
//		Build()
//
// Policy configuration lives in the policy subpackage; the policyfile
// subpackage loads it from YAML before the serving phase.
package keyrealm
