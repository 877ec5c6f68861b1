package notifier

import (
	"fmt"
	"strings"

	"github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/types"
)

// FallbackRemediation is returned for IssueUnknown and any unmapped kind.
const FallbackRemediation = "No predefined solution. Perform manual inspection."

// DefaultRemediations returns the built-in troubleshooting text per issue.
func DefaultRemediations() map[types.IssueKind]string {
	return map[types.IssueKind]string{
		types.IssueHighTemperature: "Check coolant, reduce load, inspect cooling system.",
		types.IssueOverload:        "Reduce load, check weight distribution.",
		types.IssueHighVibration:   "Inspect mechanical parts, check for loose connections.",
		types.IssueAbnormalPower:   "Check electrical wiring, inspect motor efficiency.",
	}
}

// CatalogEntry is one row of the catalog as exposed by the API and CLI.
type CatalogEntry struct {
	Issue       types.IssueKind `json:"issue"`
	Title       string          `json:"title"`
	Remediation string          `json:"remediation"`
}

// Catalog maps issues to remediation text. Immutable after NewCatalog.
type Catalog struct {
	entries map[types.IssueKind]string
}

// NewCatalog starts from DefaultRemediations and applies overrides.
// IssueUnknown always resolves to FallbackRemediation and cannot be overridden.
func NewCatalog(overrides map[types.IssueKind]string) (*Catalog, error) {
	entries := DefaultRemediations()
	for kind, text := range overrides {
		if !kind.Valid() || kind == types.IssueUnknown {
			return nil, fmt.Errorf("remediation override for unsupported issue %q", kind)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return nil, fmt.Errorf("remediation override for %q is empty", kind)
		}
		entries[kind] = text
	}
	return &Catalog{entries: entries}, nil
}

// DefaultCatalog returns a Catalog with no overrides.
func DefaultCatalog() *Catalog {
	return &Catalog{entries: DefaultRemediations()}
}

// Lookup returns the remediation for kind. It never fails.
func (c *Catalog) Lookup(kind types.IssueKind) string {
	if text, ok := c.entries[kind]; ok {
		return text
	}
	return FallbackRemediation
}

// Entries lists every issue kind with its remediation, in classifier
// priority order, ending with IssueUnknown.
func (c *Catalog) Entries() []CatalogEntry {
	kinds := types.AllIssueKinds()
	out := make([]CatalogEntry, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, CatalogEntry{
			Issue:       k,
			Title:       k.Title(),
			Remediation: c.Lookup(k),
		})
	}
	return out
}
