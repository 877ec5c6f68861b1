// Package api provides the cranewatch HTTP endpoints.
//
// # Routes
//
//	GET  /test_alert            run the fixed sample reading through the pipeline
//	POST /api/v1/readings       run a caller-supplied reading
//	GET  /api/v1/remediations   list the remediation catalog
//	GET  /api/v1/capabilities   describe threshold, rules and sinks
//	GET  /ws                    WebSocket stream of anomaly_alert messages
//	GET  /events                the same stream as Server-Sent Events
//	GET  /healthz, /readyz      liveness and readiness
//	GET  /metrics               Prometheus metrics
//
// # Contract
//
//   - Shape and non-finite value errors map to 400, model errors to 503,
//     anything else to 500.
//   - Sink failures never change the status code. They are reported per
//     sink in the readings response.
//   - When a request rate is configured the trigger endpoints answer 429
//     once the limiter is exhausted.
package api
