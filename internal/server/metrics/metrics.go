// Package metrics exports gallery telemetry to Prometheus.
package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Upload outcomes used as the "outcome" label.
const (
	OutcomeAccepted     = "accepted"
	OutcomeRejected     = "rejected"
	OutcomeUnauthorized = "unauthorized"
	OutcomeUnknownGuest = "unknown_guest"
	OutcomeStorageError = "storage_error"
	OutcomeDBError      = "database_error"
)

// Pipeline stages used as the "stage" label.
const (
	StageResolve = "resolve"
	StageStorage = "storage"
	StageRecord  = "record"
	StageCleanup = "cleanup"
)

// Observer captures telemetry for the upload pipeline and the HTTP layer.
type Observer interface {
	RecordUpload(outcome string, sizeBytes int64)
	RecordStage(stage string, duration time.Duration, err error)
	RecordCompensationFailure()
	RecordGateLogin(ok bool)
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
}

// PrometheusObserver implements Observer on top of a Prometheus registry.
type PrometheusObserver struct {
	uploads              *prometheus.CounterVec
	uploadBytes          prometheus.Counter
	stageDuration        *prometheus.HistogramVec
	stageErrors          *prometheus.CounterVec
	compensationFailures prometheus.Counter
	gateLogins           *prometheus.CounterVec
	httpRequests         *prometheus.CounterVec
	httpDuration         *prometheus.HistogramVec
}

// NewPrometheusObserver registers the gallery metrics on reg under namespace.
func NewPrometheusObserver(namespace string, reg prometheus.Registerer) (*PrometheusObserver, error) {
	if namespace == "" {
		namespace = "gallery"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	o := &PrometheusObserver{
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Photo submissions by outcome.",
		}, []string{"outcome"}),
		uploadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploaded_bytes_total",
			Help:      "Bytes of accepted photos written to object storage.",
		}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upload_stage_duration_seconds",
			Help:      "Latency of each upload pipeline stage.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
		stageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_stage_errors_total",
			Help:      "Failures of each upload pipeline stage.",
		}, []string{"stage"}),
		compensationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orphaned_blobs_total",
			Help:      "Blobs left behind because the compensating delete failed.",
		}),
		gateLogins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gate_logins_total",
			Help:      "Site password attempts by result.",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	var err error
	if o.uploads, err = register(reg, o.uploads); err != nil {
		return nil, err
	}
	if o.uploadBytes, err = register(reg, o.uploadBytes); err != nil {
		return nil, err
	}
	if o.stageDuration, err = register(reg, o.stageDuration); err != nil {
		return nil, err
	}
	if o.stageErrors, err = register(reg, o.stageErrors); err != nil {
		return nil, err
	}
	if o.compensationFailures, err = register(reg, o.compensationFailures); err != nil {
		return nil, err
	}
	if o.gateLogins, err = register(reg, o.gateLogins); err != nil {
		return nil, err
	}
	if o.httpRequests, err = register(reg, o.httpRequests); err != nil {
		return nil, err
	}
	if o.httpDuration, err = register(reg, o.httpDuration); err != nil {
		return nil, err
	}
	return o, nil
}

// register adds c to reg. When an identical collector is already registered
// the existing one is returned so observers built twice share their series.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("register gallery metric: %w", err)
	}
	return c, nil
}

func (o *PrometheusObserver) RecordUpload(outcome string, sizeBytes int64) {
	if o == nil {
		return
	}
	o.uploads.WithLabelValues(outcome).Inc()
	if outcome == OutcomeAccepted && sizeBytes > 0 {
		o.uploadBytes.Add(float64(sizeBytes))
	}
}

func (o *PrometheusObserver) RecordStage(stage string, duration time.Duration, err error) {
	if o == nil {
		return
	}
	o.stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
	if err != nil {
		o.stageErrors.WithLabelValues(stage).Inc()
	}
}

func (o *PrometheusObserver) RecordCompensationFailure() {
	if o == nil {
		return
	}
	o.compensationFailures.Inc()
}

func (o *PrometheusObserver) RecordGateLogin(ok bool) {
	if o == nil {
		return
	}
	result := "denied"
	if ok {
		result = "granted"
	}
	o.gateLogins.WithLabelValues(result).Inc()
}

func (o *PrometheusObserver) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if o == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	o.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	o.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// NewRegistry returns a registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves the metrics gathered by reg.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

type nopObserver struct{}

// Nop returns an Observer that records nothing.
func Nop() Observer { return nopObserver{} }

func (nopObserver) RecordUpload(string, int64) {}

func (nopObserver) RecordStage(string, time.Duration, error) {}

func (nopObserver) RecordCompensationFailure() {}

func (nopObserver) RecordGateLogin(bool) {}

func (nopObserver) RecordHTTPRequest(string, string, int, time.Duration) {}
