// Package telemetry sets up tracing and Prometheus metrics for the server:
// the OpenTelemetry tracer provider, the otelhttp handler wrapper, and the
// HTTP, job and rate limit metrics exposed on /metrics.
package telemetry
