// Package otel bridges the realm's in-process counters to OpenTelemetry
// observable instruments. Registration is pull-based: values are read from
// a metrics snapshot at collection time, so the realm's hot path never
// touches the meter.
package otel

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/metric"

	keyrealm "github.com/keyrealm/keyrealm"
)

var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil metrics source")
)

type metricsSource interface {
	MetricsSnapshot() keyrealm.MetricsSnapshot
	AuditDropped() uint64
}

type counterDef struct {
	id   keyrealm.MetricID
	name string
	help string
}

var counterDefs = []counterDef{
	{keyrealm.MetricVerifySuccess, "keyrealm_verify_success_total", "Successful credential verifications."},
	{keyrealm.MetricVerifyFailure, "keyrealm_verify_failure_total", "Failed credential verifications."},
	{keyrealm.MetricVerifyRateLimited, "keyrealm_verify_rate_limited_total", "Rate-limited verification attempts."},
	{keyrealm.MetricTokenIssued, "keyrealm_token_issued_total", "Issued bearer tokens."},
	{keyrealm.MetricTokenRevoked, "keyrealm_token_revoked_total", "Revoked bearer tokens."},
	{keyrealm.MetricAuthenticateHit, "keyrealm_authenticate_hit_total", "Token lookups that resolved a principal."},
	{keyrealm.MetricAuthenticateMiss, "keyrealm_authenticate_miss_total", "Token lookups for unknown or revoked tokens."},
	{keyrealm.MetricPermissionGranted, "keyrealm_permission_granted_total", "Granted permission checks."},
	{keyrealm.MetricPermissionDenied, "keyrealm_permission_denied_total", "Denied permission checks."},
}

type observedCounter struct {
	id         keyrealm.MetricID
	instrument metric.Int64ObservableCounter
}

// Exporter registers one observable counter per realm metric on a meter.
type Exporter struct {
	source       metricsSource
	registration metric.Registration
	counters     []observedCounter
	auditDropped metric.Int64ObservableCounter
}

// New creates an [Exporter] observing realm through meter.
func New(meter metric.Meter, realm *keyrealm.Realm) (*Exporter, error) {
	return NewFromSource(meter, realm)
}

// NewFromSource is [New] for any snapshot source; used by tests.
func NewFromSource(meter metric.Meter, source metricsSource) (*Exporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	e := &Exporter{
		source:   source,
		counters: make([]observedCounter, 0, len(counterDefs)),
	}

	observables := make([]metric.Observable, 0, len(counterDefs)+1)
	for _, def := range counterDefs {
		ins, err := meter.Int64ObservableCounter(def.name, metric.WithDescription(def.help))
		if err != nil {
			return nil, fmt.Errorf("create observable counter %s: %w", def.name, err)
		}
		e.counters = append(e.counters, observedCounter{id: def.id, instrument: ins})
		observables = append(observables, ins)
	}

	dropped, err := meter.Int64ObservableCounter(
		"keyrealm_audit_dropped_total",
		metric.WithDescription("Audit events dropped under back pressure."),
	)
	if err != nil {
		return nil, fmt.Errorf("create observable counter keyrealm_audit_dropped_total: %w", err)
	}
	e.auditDropped = dropped
	observables = append(observables, dropped)

	registration, err := meter.RegisterCallback(e.observe, observables...)
	if err != nil {
		return nil, fmt.Errorf("register metrics callback: %w", err)
	}
	e.registration = registration

	return e, nil
}

func (e *Exporter) observe(_ context.Context, o metric.Observer) error {
	snapshot := e.source.MetricsSnapshot()
	for _, c := range e.counters {
		o.ObserveInt64(c.instrument, int64(snapshot.Counters[c.id]))
	}
	o.ObserveInt64(e.auditDropped, int64(e.source.AuditDropped()))
	return nil
}

// Close unregisters the collection callback.
func (e *Exporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
