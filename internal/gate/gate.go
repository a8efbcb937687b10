// Package gate implements the deterministic first line of defense: domain
// allowlisting, content sanitization, and heuristic suspicion scoring over
// both the raw markup and the visible text it reduces to.
package gate

import (
	"fmt"

	"github.com/agentgauntlet/arbiter/internal/sanitize"
)

// denyThreshold is the suspicion score at which the gate denies on its own,
// independent of the aggregator's configurable threshold.
const denyThreshold = 2

// Report is the sanitizer-plus-scorer output for one document.
type Report struct {
	SafeText string   `json:"safe_text"`
	Score    int      `json:"score"`
	Patterns []string `json:"patterns"`
	Snippet  string   `json:"snippet"`
}

// Result is the full gate verdict for one URL + content pair.
type Result struct {
	Approved    bool
	Reason      string
	AllowlistOK bool
	Report
}

// Gate bundles the suspicion catalog behind the gate operations.
type Gate struct {
	catalog *Catalog
}

// New creates a gate. A nil catalog selects the built-in one.
func New(catalog *Catalog) *Gate {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Gate{catalog: catalog}
}

// Sanitize strips raw content to visible text and scores what remains.
// Malformed markup degrades gracefully; empty input yields an empty report.
func (g *Gate) Sanitize(raw string) Report {
	text := sanitize.VisibleText(raw)
	scored := g.catalog.Score(text)

	safe := text
	if len(safe) > sanitize.MaxSafeTextLen {
		safe = safe[:sanitize.MaxSafeTextLen]
	}
	return Report{
		SafeText: safe,
		Score:    scored.Score,
		Patterns: scored.Patterns,
		Snippet:  scored.Snippet,
	}
}

// Check runs the complete gate: allowlist first, then a dual-layer scan of
// the raw content and the sanitized text. The raw scan runs BEFORE
// sanitization so an attack hidden in markup is detected even though
// sanitization would discard it.
func (g *Gate) Check(rawURL, raw string) Result {
	if !DomainAllowed(rawURL) {
		return Result{
			Approved:    false,
			Reason:      fmt.Sprintf("Domain not in allowlist: %s", rawURL),
			AllowlistOK: false,
			Report:      Report{Patterns: []string{}},
		}
	}

	rawScore := g.catalog.Score(raw)
	report := g.Sanitize(raw)

	// Keep the higher of the two scans, with its evidence.
	if rawScore.Score > report.Score {
		report.Score = rawScore.Score
		report.Patterns = rawScore.Patterns
		report.Snippet = rawScore.Snippet
	}

	res := Result{AllowlistOK: true, Report: report}

	if report.Score >= denyThreshold {
		res.Reason = "Suspicious content detected; human approval required."
		return res
	}
	for _, id := range report.Patterns {
		if id == "instruction-override" {
			res.Reason = "Direct prompt injection attempt detected."
			return res
		}
	}

	res.Approved = true
	res.Reason = "Approved"
	return res
}
