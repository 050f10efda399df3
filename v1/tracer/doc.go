// Package tracer wraps the OpenTelemetry SDK with a small API for creating
// spans, recording errors and attaching attributes. Domain services accept
// it through a narrow interface and fall back to no-op spans when none is
// provided.
package tracer
