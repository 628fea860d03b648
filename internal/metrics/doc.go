// Package metrics keeps the converter's counters and gauges and serves them
// in the Prometheus text exposition format.
//
// Series:
//   - unitconv_conversions_total{outcome}   counter, one per engine outcome
//   - unitconv_table_reloads_total{result}  counter, result = ok | error
//   - unitconv_table_units                  gauge
//   - unitconv_table_edges                  gauge
//
// Registry implements engine.Recorder so it can be handed straight to
// engine.New.
package metrics
