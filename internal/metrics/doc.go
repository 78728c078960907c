// Package metrics exposes alarm clock activity as Prometheus metrics.
//
// Every Recorder method is safe on a nil receiver so components can run
// without metrics in tests.
package metrics
