// Package prometheus publishes verifact engine metrics to Prometheus.
//
// [Collector] plugs into a client_golang registry so engine series sit next
// to process metrics on one /metrics endpoint served by promhttp. Counter
// names are prefixed verifact_ and end in _total; the single histogram is
// verifact_validate_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in the global Prometheus registry. Callers register
//     the Collector on their own registry.
//   - Mutate engine state.
package prometheus
