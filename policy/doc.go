// Package policy implements the role registry and the permission decision
// engine: a fixed-capacity manager dispatching typed permission requests to
// pluggable policy variants, deny-by-default.
//
// The registry and manager follow a two-phase lifecycle: populate during
// startup (single-threaded), then Freeze and serve the read-heavy
// permission-check path. Mutations after Freeze are rejected.
package policy
