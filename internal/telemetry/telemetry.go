package telemetry

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/weave/pkg/reactive"
	"github.com/vango-dev/weave/pkg/render"
	"github.com/vango-dev/weave/pkg/vdom"
)

const defaultTracerName = "weave"

// Config configures Telemetry.
type Config struct {
	// Namespace is the metrics namespace (default: "weave").
	Namespace string

	// ConstLabels are added to every metric.
	ConstLabels prometheus.Labels

	// Buckets are the duration histogram buckets.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry receives the metrics. Default: a new registry with the Go
	// and process collectors.
	Registry *prometheus.Registry

	// Tracing enables spans around flushes and renders.
	Tracing bool

	// TracerName is the tracer name (default: "weave").
	TracerName string
}

// Option configures Telemetry.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		if namespace != "" {
			c.Namespace = namespace
		}
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

// WithTracing enables or disables spans.
func WithTracing(enabled bool) Option {
	return func(c *Config) {
		c.Tracing = enabled
	}
}

// WithTracerName sets the tracer name.
func WithTracerName(name string) Option {
	return func(c *Config) {
		c.TracerName = name
	}
}

// Telemetry records runtime, render and stream events.
type Telemetry struct {
	registry *prometheus.Registry
	tracer   trace.Tracer

	flushes         prometheus.Counter
	flushDuration   prometheus.Histogram
	flushPasses     prometheus.Histogram
	reactorRuns     prometheus.Counter
	reactorSkips    prometheus.Counter
	reactorFailures *prometheus.CounterVec

	renders        prometheus.Counter
	renderDuration prometheus.Histogram
	remounts       prometheus.Counter
	patches        *prometheus.CounterVec

	clients     prometheus.Gauge
	framesSent  prometheus.Counter
	bytesSent   prometheus.Counter
	disconnects *prometheus.CounterVec

	// pool is sampled on the runtime goroutine after every flush and read
	// by the scrape goroutine.
	poolMu    sync.Mutex
	pool      *reactive.EdgePool
	poolStats reactive.PoolStats
}

// New creates Telemetry and registers its metrics.
func New(opts ...Option) *Telemetry {
	config := Config{
		Namespace:  "weave",
		Buckets:    prometheus.DefBuckets,
		TracerName: defaultTracerName,
	}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
		config.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	t := &Telemetry{registry: config.Registry}
	if config.Tracing {
		t.tracer = otel.Tracer(config.TracerName)
	} else {
		t.tracer = noop.NewTracerProvider().Tracer(config.TracerName)
	}

	factory := promauto.With(config.Registry)
	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace: config.Namespace, Name: name, Help: help, ConstLabels: config.ConstLabels,
		})
	}
	histogram := func(name, help string, buckets []float64) prometheus.Histogram {
		return factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: config.Namespace, Name: name, Help: help, ConstLabels: config.ConstLabels, Buckets: buckets,
		})
	}
	counterVec := func(name, help, label string) *prometheus.CounterVec {
		return factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace, Name: name, Help: help, ConstLabels: config.ConstLabels,
		}, []string{label})
	}

	t.flushes = counter("flushes_total", "Total number of completed flushes")
	t.flushDuration = histogram("flush_duration_seconds", "Flush duration in seconds", config.Buckets)
	t.flushPasses = histogram("flush_passes", "Queue passes per flush", []float64{1, 2, 3, 5, 10, 25, 50, 100})
	t.reactorRuns = counter("reactor_runs_total", "Total number of reactor executions during flushes")
	t.reactorSkips = counter("reactor_skips_total", "Queued reactors skipped because no dependency changed")
	t.reactorFailures = counterVec("reactor_failures_total", "Total number of reactor panics", "reactor")

	t.renders = counter("renders_total", "Total number of render passes")
	t.renderDuration = histogram("render_duration_seconds", "Render, diff and patch duration in seconds", config.Buckets)
	t.remounts = counter("remounts_total", "Renders that remounted after a failed patch")
	t.patches = counterVec("patches_total", "Patches emitted by op", "op")

	t.clients = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: config.Namespace, Name: "stream_clients", Help: "Connected stream clients", ConstLabels: config.ConstLabels,
	})
	t.framesSent = counter("stream_frames_sent_total", "Frames written to stream clients")
	t.bytesSent = counter("stream_bytes_sent_total", "Bytes written to stream clients")
	t.disconnects = counterVec("stream_disconnects_total", "Stream client disconnects by reason", "reason")

	t.registerPoolMetrics(factory, config)
	return t
}

func (t *Telemetry) registerPoolMetrics(factory promauto.Factory, config Config) {
	gauge := func(name, help string, read func(reactive.PoolStats) float64) {
		factory.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: config.Namespace, Name: name, Help: help, ConstLabels: config.ConstLabels,
		}, func() float64 {
			return read(t.PoolStats())
		})
	}
	counter := func(name, help string, read func(reactive.PoolStats) uint64) {
		factory.NewCounterFunc(prometheus.CounterOpts{
			Namespace: config.Namespace, Name: name, Help: help, ConstLabels: config.ConstLabels,
		}, func() float64 {
			return float64(read(t.PoolStats()))
		})
	}

	gauge("edge_pool_live", "Live dependency edges", func(s reactive.PoolStats) float64 { return float64(s.Live) })
	gauge("edge_pool_free", "Edges waiting in the free list", func(s reactive.PoolStats) float64 { return float64(s.Free) })
	counter("edge_pool_hits_total", "Acquires that found an existing edge", func(s reactive.PoolStats) uint64 { return s.Hits })
	counter("edge_pool_allocated_total", "Edges allocated", func(s reactive.PoolStats) uint64 { return s.Allocated })
	counter("edge_pool_reused_total", "Edges taken from the free list", func(s reactive.PoolStats) uint64 { return s.Reused })
	counter("edge_pool_dropped_total", "Released edges dropped because the free list was full", func(s reactive.PoolStats) uint64 { return s.Dropped })
	counter("edge_pool_evicted_total", "Edges unlinked because their owner was collected", func(s reactive.PoolStats) uint64 { return s.Evicted })
}

// Registry returns the registry holding the metrics.
func (t *Telemetry) Registry() *prometheus.Registry {
	return t.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (t *Telemetry) Handler() http.Handler {
	return promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{})
}

// TrackPool samples pool after every flush. Call on the runtime goroutine.
func (t *Telemetry) TrackPool(pool *reactive.EdgePool) {
	t.poolMu.Lock()
	defer t.poolMu.Unlock()
	t.pool = pool
	t.poolStats = pool.Stats()
}

// PoolStats returns the last sampled pool statistics.
func (t *Telemetry) PoolStats() reactive.PoolStats {
	t.poolMu.Lock()
	defer t.poolMu.Unlock()
	return t.poolStats
}

// span records a finished operation of duration d ending now.
func (t *Telemetry) span(name string, d time.Duration, attrs ...attribute.KeyValue) trace.Span {
	end := time.Now()
	_, span := t.tracer.Start(context.Background(), name,
		trace.WithTimestamp(end.Add(-d)),
		trace.WithAttributes(attrs...))
	return span
}

// FlushCompleted implements reactive.Observer. Flushes that found an empty
// queue only refresh the pool sample.
func (t *Telemetry) FlushCompleted(s reactive.FlushStats) {
	t.poolMu.Lock()
	if t.pool != nil {
		t.poolStats = t.pool.Stats()
	}
	t.poolMu.Unlock()

	if s.Passes == 0 {
		return
	}
	t.flushes.Inc()
	t.flushDuration.Observe(s.Duration.Seconds())
	t.flushPasses.Observe(float64(s.Passes))
	t.reactorRuns.Add(float64(s.Reactors))
	t.reactorSkips.Add(float64(s.Skipped))

	span := t.span("weave.flush", s.Duration,
		attribute.Int("weave.passes", s.Passes),
		attribute.Int("weave.reactors", s.Reactors),
		attribute.Int("weave.skipped", s.Skipped),
		attribute.Int("weave.failures", s.Failures))
	if s.Failures > 0 {
		span.SetStatus(codes.Error, "reactor failures")
	}
	span.End()
}

// ReactorFailed implements reactive.Observer.
func (t *Telemetry) ReactorFailed(err *reactive.ReactorError) {
	name := err.Name
	if name == "" {
		name = "anonymous"
	}
	t.reactorFailures.WithLabelValues(name).Inc()

	span := t.span("weave.reactor_failed", 0,
		attribute.Int64("weave.reactor_id", int64(err.ReactorID)),
		attribute.String("weave.reactor", name),
		attribute.String("weave.priority", err.Priority.String()))
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.End()
}

// RenderCompleted implements render.Observer.
func (t *Telemetry) RenderCompleted(s render.Stats) {
	t.renders.Inc()
	t.renderDuration.Observe(s.Duration.Seconds())
	if s.Remount {
		t.remounts.Inc()
	}

	span := t.span("weave.render", s.Duration,
		attribute.Int64("weave.seq", int64(s.Seq)),
		attribute.Int("weave.patches", s.Patches),
		attribute.Int("weave.nodes", s.Nodes),
		attribute.Bool("weave.remount", s.Remount))
	span.End()
}

// CountPatches tallies a frame's patches by op. Register it with
// render.Root.OnPatch.
func (t *Telemetry) CountPatches(f render.Frame) {
	for op, n := range vdom.Counts(f.Patches) {
		t.patches.WithLabelValues(op.String()).Add(float64(n))
	}
}

// ClientConnected implements stream.Observer.
func (t *Telemetry) ClientConnected(string) {
	t.clients.Inc()
}

// ClientDisconnected implements stream.Observer.
func (t *Telemetry) ClientDisconnected(_, reason string) {
	t.clients.Dec()
	t.disconnects.WithLabelValues(reason).Inc()
}

// FrameSent implements stream.Observer.
func (t *Telemetry) FrameSent(bytes int) {
	t.framesSent.Inc()
	t.bytesSent.Add(float64(bytes))
}
