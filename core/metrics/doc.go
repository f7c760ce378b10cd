// Package metrics defines the sinks that record prediction outcomes for
// observability. Sinks such as the Prometheus and InfluxDB implementations in
// infra/metrics register themselves by type name; NewMetricsSink builds the
// configured ones and wraps several of them in a MultiSink. Optional
// capabilities (failures, model state) are expressed as separate recorder
// interfaces checked at runtime.
package metrics
