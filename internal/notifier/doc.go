// Package notifier turns classified anomalies into alerts: it looks up the
// remediation text and fans each event out to the configured sinks.
//
// # Contract
//
// The Dispatcher:
//  1. Receives one types.AnomalyEvent per anomalous reading.
//  2. Invokes Notify on every registered Sink exactly once, concurrently.
//  3. Bounds each call by DispatcherOptions.SinkTimeout (default 5s).
//  4. Records the outcome of each sink in a Report.
//
// A sink that returns an error, panics or overruns its timeout is logged and
// counted in cranewatch_sink_notify_total. Dispatch itself never fails and the
// remaining sinks are always invoked. There is no retry, no ordering between
// sinks and no delivery guarantee.
//
// # Sinks
//
//   - operator: queues the alert for a background OperatorDisplay worker
//     (log output or a desktop command such as notify-send).
//   - broadcast: emits "anomaly_alert" {issue, fix} to every real-time client.
//   - bus: publishes "Anomaly Detected: <issue>, Fix: <fix>" to a broker topic
//     (default "crane/anomalies").
//   - webhook: POSTs a cranewatch.anomaly JSON envelope to an HTTP endpoint.
//
// # Remediation Catalog
//
// Catalog.Lookup is total: unknown or unmapped issues resolve to
// FallbackRemediation. The catalog is immutable once built.
//
// # Types
//
//	func NewDispatcher(logger *zap.Logger, opts DispatcherOptions) *Dispatcher
//	func (d *Dispatcher) Dispatch(ctx context.Context, event types.AnomalyEvent) Report
//	func NewCatalog(overrides map[types.IssueKind]string) (*Catalog, error)
package notifier
