// Package classifier turns a reconstruction error into an anomaly verdict and
// assigns an issue category from the raw reading.
//
// # Contract
//
// Classification runs in two steps:
//
//  1. Verdict: a reading is anomalous iff its reconstruction error is strictly
//     greater than the threshold (DefaultThreshold = 0.01).
//
//  2. Issue assignment, only when anomalous: rules are evaluated in a fixed
//     priority order over raw channel values and the first match wins.
//
// # Built-in Rules
//
//   - high-temperature: temperature channel > 100
//   - overload: load channel > 900
//   - high-vibration: vibration channel > 45
//   - abnormal-power: power channel > 40
//
// An anomalous reading that matches no rule is still reported, with
// types.IssueUnknown. The rules are a coarse heuristic and do not look at
// which channels drove the reconstruction error.
//
// The Classifier is read-only after construction and safe for concurrent use.
//
// # Constructor
//
//	func New(threshold float64, rules []Rule) (*Classifier, error)
//	func (c *Classifier) Classify(reading types.SensorReading, recErr float64) (Verdict, bool)
package classifier
