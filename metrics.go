package keyrealm

import internalmetrics "github.com/keyrealm/keyrealm/internal/metrics"

// MetricID identifies a specific counter in the realm's metrics table.
type MetricID = internalmetrics.ID

const (
	MetricVerifySuccess     = internalmetrics.MetricVerifySuccess
	MetricVerifyFailure     = internalmetrics.MetricVerifyFailure
	MetricVerifyRateLimited = internalmetrics.MetricVerifyRateLimited
	MetricTokenIssued       = internalmetrics.MetricTokenIssued
	MetricTokenRevoked      = internalmetrics.MetricTokenRevoked
	MetricAuthenticateHit   = internalmetrics.MetricAuthenticateHit
	MetricAuthenticateMiss  = internalmetrics.MetricAuthenticateMiss
	MetricPermissionGranted = internalmetrics.MetricPermissionGranted
	MetricPermissionDenied  = internalmetrics.MetricPermissionDenied

	// MetricIDCount is the number of defined counters.
	MetricIDCount = internalmetrics.IDCount
)

// MetricsSnapshot is a point-in-time copy of all realm counters.
type MetricsSnapshot = internalmetrics.Snapshot
