// Package metrics holds the realm's in-process atomic counters. Export
// bridges (see metrics/export) read point-in-time snapshots; nothing in
// this package blocks or allocates on the hot path.
package metrics
