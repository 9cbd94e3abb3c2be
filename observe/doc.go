// Package observe provides tracing, metrics and structured logging for cache
// operations.
//
// The cache calls Instrumentation.Observe around every store round trip and
// every recomputation. An Observer built from Config wires the OpenTelemetry
// providers and exporters; a zero-configuration Nop instrumentation is used
// when none is supplied.
package observe
