// Package metrics instruments record repositories with Prometheus metrics.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/manav03panchal/studylog/internal/errors"
	"github.com/manav03panchal/studylog/internal/model"
	"github.com/manav03panchal/studylog/internal/storage"
)

const namespace = "studylog"

// Result label values.
const (
	ResultOK       = "ok"
	ResultNotFound = "not_found"
	ResultError    = "error"
)

// Metrics holds the repository collectors and their registry.
type Metrics struct {
	Registry   *prometheus.Registry
	Operations *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
	Records    prometheus.Gauge
}

// New creates a Metrics with its own registry, including Go runtime and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "repository_operations_total",
			Help:      "Record repository operations by operation and result.",
		}, []string{"op", "result"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "repository_operation_duration_seconds",
			Help:      "Latency of record repository operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		Records: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records",
			Help:      "Number of records returned by the most recent successful list.",
		}),
	}
	reg.MustRegister(
		m.Operations,
		m.Duration,
		m.Records,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

func (m *Metrics) observe(op string, start time.Time, err error) {
	m.Duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	m.Operations.WithLabelValues(op, resultOf(err)).Inc()
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, errors.ErrRecordNotFound):
		return ResultNotFound
	default:
		return ResultError
	}
}

// Repository wraps a storage.Repository and records every call.
type Repository struct {
	next    storage.Repository
	metrics *Metrics
}

var _ storage.Repository = (*Repository)(nil)

// Instrument wraps next with metrics collection.
func Instrument(next storage.Repository, m *Metrics) *Repository {
	return &Repository{next: next, metrics: m}
}

// Unwrap returns the wrapped repository.
func (r *Repository) Unwrap() storage.Repository {
	return r.next
}

// List implements storage.Repository.
func (r *Repository) List(ctx context.Context) ([]model.Record, error) {
	start := time.Now()
	recs, err := r.next.List(ctx)
	r.metrics.observe(errors.OpList, start, err)
	if err == nil {
		r.metrics.Records.Set(float64(len(recs)))
	}
	return recs, err
}

// Create implements storage.Repository.
func (r *Repository) Create(ctx context.Context, fields model.RecordFields) error {
	start := time.Now()
	err := r.next.Create(ctx, fields)
	r.metrics.observe(errors.OpCreate, start, err)
	return err
}

// Update implements storage.Repository.
func (r *Repository) Update(ctx context.Context, id string, fields model.RecordFields) error {
	start := time.Now()
	err := r.next.Update(ctx, id, fields)
	r.metrics.observe(errors.OpUpdate, start, err)
	return err
}

// Delete implements storage.Repository.
func (r *Repository) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := r.next.Delete(ctx, id)
	r.metrics.observe(errors.OpDelete, start, err)
	return err
}

// Ping delegates to the wrapped repository when it supports health checks.
func (r *Repository) Ping(ctx context.Context) error {
	if p, ok := r.next.(storage.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Close delegates to the wrapped repository when it holds resources.
func (r *Repository) Close() error {
	if c, ok := r.next.(storage.Closer); ok {
		return c.Close()
	}
	return nil
}
