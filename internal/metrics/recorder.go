// Package metrics exposes pipeline counters and histograms in Prometheus
// format. A nil *Recorder is valid and records nothing.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dm/escat/internal/model"
)

const namespace = "escat"

// Recorder implements client.RequestObserver, engine.StageRecorder and
// transform.EntityObserver on top of a private registry.
type Recorder struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	stageRecords    *prometheus.CounterVec
	stageFailures   *prometheus.CounterVec
	stageDuration   *prometheus.HistogramVec
	entities        *prometheus.CounterVec
}

// NewRecorder creates a Recorder with all metrics registered.
func NewRecorder() (*Recorder, error) {
	r := &Recorder{registry: prometheus.NewRegistry()}

	r.requests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Requests made to the cluster by endpoint and outcome",
		},
		[]string{"endpoint", "code"},
	)
	r.requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of requests made to the cluster",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		},
		[]string{"endpoint"},
	)
	r.stageRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_records_total",
			Help:      "Records produced per stage",
		},
		[]string{"stage"},
	)
	r.stageFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_item_failures_total",
			Help:      "Per-item failures absorbed per stage",
		},
		[]string{"stage"},
	)
	r.stageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time per stage",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14), // 10ms to ~80s
		},
		[]string{"stage"},
	)
	r.entities = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entities_transformed_total",
			Help:      "Catalog entities produced by type",
		},
		[]string{"type"},
	)

	for _, c := range []prometheus.Collector{
		r.requests,
		r.requestDuration,
		r.stageRecords,
		r.stageFailures,
		r.stageDuration,
		r.entities,
	} {
		if err := r.registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}
	return r, nil
}

// ObserveRequest records one HTTP call. A zero status means no response.
func (r *Recorder) ObserveRequest(endpoint string, status int, err error, elapsed time.Duration) {
	if r == nil {
		return
	}
	code := "none"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	r.requests.WithLabelValues(endpoint, code).Inc()
	r.requestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// ObserveStage records the outcome of one stage.
func (r *Recorder) ObserveStage(stage string, stats model.Stats, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.stageRecords.WithLabelValues(stage).Add(float64(stats.TotalRecordCount))
	r.stageFailures.WithLabelValues(stage).Add(float64(stats.FailedItemCount))
	r.stageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

// ObserveEntities records n transformed entities of the given type.
func (r *Recorder) ObserveEntities(typ model.EntityType, n int) {
	if r == nil {
		return
	}
	r.entities.WithLabelValues(string(typ)).Add(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Serve exposes /metrics on ln until ctx is cancelled.
func (r *Recorder) Serve(ctx context.Context, ln net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"healthy","service":"escat-metrics"}`))
	})

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}

// ListenAndServe listens on addr and calls Serve.
func (r *Recorder) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("metrics listen %s: %w", addr, err)
	}
	return r.Serve(ctx, ln)
}
