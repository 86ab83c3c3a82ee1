// Package telemetry exports weave runtime, render and stream events as
// Prometheus metrics and OpenTelemetry spans.
//
// A single *Telemetry implements reactive.Observer, render.Observer and
// stream.Observer, so one value is passed to all three:
//
//	tel := telemetry.New(telemetry.WithNamespace("myapp"), telemetry.WithTracing(true))
//	rt := reactive.New(reactive.WithObserver(tel))
//	root := render.New(rt, view, render.WithObserver(tel))
//	root.OnPatch(tel.CountPatches)
//	tel.TrackPool(rt.Pool())
//	hub := stream.NewHub(root, stream.WithObserver(tel))
//	http.ListenAndServe(addr, hub.Router(tel.Handler()))
//
// Metrics collected (namespace "weave" by default):
//   - weave_flushes_total, weave_flush_duration_seconds, weave_flush_passes
//   - weave_reactor_runs_total, weave_reactor_skips_total
//   - weave_reactor_failures_total{reactor}
//   - weave_renders_total, weave_render_duration_seconds, weave_remounts_total
//   - weave_patches_total{op}
//   - weave_edge_pool_live, weave_edge_pool_free, weave_edge_pool_*_total
//   - weave_stream_clients, weave_stream_frames_sent_total,
//     weave_stream_bytes_sent_total, weave_stream_disconnects_total{reason}
//
// Spans use the global OpenTelemetry tracer provider. Configure it in
// main() before creating the runtime.
package telemetry
