package classifier

import (
	"fmt"
	"math"

	"github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/types"
)

// DefaultThreshold is the reconstruction error above which a reading is anomalous.
const DefaultThreshold = 0.01

// Verdict describes an anomalous reading.
type Verdict struct {
	Issue               types.IssueKind
	Rule                string // empty when Issue is IssueUnknown
	ReconstructionError float64
	Reading             types.SensorReading
}

// Classifier applies the threshold and the ordered rule chain.
type Classifier struct {
	threshold float64
	rules     []Rule
}

// New creates a Classifier. The rule order given is the priority order.
func New(threshold float64, rules []Rule) (*Classifier, error) {
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) || threshold < 0 {
		return nil, fmt.Errorf("threshold must be a non-negative finite number, got %g", threshold)
	}
	seen := make(map[string]bool, len(rules))
	for i, r := range rules {
		if r.Name == "" {
			return nil, fmt.Errorf("rule %d has no name", i)
		}
		if r.Match == nil {
			return nil, fmt.Errorf("rule %q has no match function", r.Name)
		}
		if !r.Issue.Valid() || r.Issue == types.IssueUnknown {
			return nil, fmt.Errorf("rule %q has invalid issue %q", r.Name, r.Issue)
		}
		if seen[r.Name] {
			return nil, fmt.Errorf("duplicate rule %q", r.Name)
		}
		seen[r.Name] = true
	}
	return &Classifier{
		threshold: threshold,
		rules:     append([]Rule(nil), rules...),
	}, nil
}

// NewDefault returns a Classifier with DefaultThreshold and DefaultRules.
func NewDefault() *Classifier {
	c, _ := New(DefaultThreshold, DefaultRules(DefaultThresholds()))
	return c
}

// Threshold returns the anomaly threshold.
func (c *Classifier) Threshold() float64 { return c.threshold }

// Rules returns a copy of the rule chain in priority order.
func (c *Classifier) Rules() []Rule {
	return append([]Rule(nil), c.rules...)
}

// Anomalous reports whether recErr exceeds the threshold.
func (c *Classifier) Anomalous(recErr float64) bool {
	return recErr > c.threshold
}

// Diagnose returns the issue of the first matching rule, or IssueUnknown.
func (c *Classifier) Diagnose(reading types.SensorReading) (types.IssueKind, string) {
	for _, r := range c.rules {
		if r.Match(reading) {
			return r.Issue, r.Name
		}
	}
	return types.IssueUnknown, ""
}

// Classify returns a Verdict and true when the reading is anomalous. A normal
// reading yields false and no further work should be done for it.
func (c *Classifier) Classify(reading types.SensorReading, recErr float64) (Verdict, bool) {
	if !c.Anomalous(recErr) {
		return Verdict{}, false
	}
	issue, rule := c.Diagnose(reading)
	return Verdict{
		Issue:               issue,
		Rule:                rule,
		ReconstructionError: recErr,
		Reading:             reading,
	}, true
}
