// Package conformance validates a proposed plan step against the contract
// the caller declared for it: allowed domain, allowed tool, dangerous-action
// screening, and objective alignment. It also produces the deterministic
// safe revision offered when a step is denied.
package conformance

import "strings"

// Contract declares the allowed scope for one plan step. Immutable once
// created; supplied by the caller per invocation.
type Contract struct {
	Domain        string   `json:"domain"`
	Tool          string   `json:"tool"`
	ObjectiveTags []string `json:"objective_tags"`
}

// Step is a proposed action against a fetched page.
type Step struct {
	Action  string `json:"action,omitempty"`
	Tool    string `json:"tool,omitempty"`
	URL     string `json:"url,omitempty"`
	Fixture string `json:"fixture,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

// Text flattens every step field into one lowercase blob for keyword and
// dangerous-pattern scanning.
func (s Step) Text() string {
	fields := []string{s.Action, s.Tool, s.URL, s.Fixture, s.Notes}
	var parts []string
	for _, f := range fields {
		if f != "" {
			parts = append(parts, f)
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// Revision is the conservative replacement for a denied step: read-only
// fact extraction against a known-safe target, with restrictions derived
// from the violations that triggered the denial.
type Revision struct {
	Action       string   `json:"action"`
	Tool         string   `json:"tool"`
	URL          string   `json:"url"`
	Method       string   `json:"method"`
	Restrictions []string `json:"restrictions"`
	Objective    string   `json:"objective"`
}
