package conformance

import (
	"fmt"
	"strings"
)

// SafeRevision rewrites a denied step into a conservative alternative:
// the contract's own tool, a read-only fact-extraction intent, and a
// known-safe target. The original URL survives only when the violation
// trace shows the domain itself was fine. Restrictions are assembled from
// the text of the violations, so the revision forbids exactly the kind of
// behavior that got the step denied. Deterministic and rule-based.
func SafeRevision(step Step, contract Contract, violationReasons []string) *Revision {
	rev := &Revision{
		Action:       "extract_facts",
		Tool:         contract.Tool,
		URL:          fmt.Sprintf("http://%s/safe_store.html", contract.Domain),
		Method:       "read_only",
		Restrictions: []string{"visible_text_only", "facts_only", "no_hidden_content"},
		Objective:    "Extract information about " + strings.Join(contract.ObjectiveTags, ", "),
	}

	domainWasFine := false
	for _, reason := range violationReasons {
		if strings.Contains(reason, "Domain") && strings.Contains(reason, "is allowed") {
			domainWasFine = true
			break
		}
	}
	if step.URL != "" && domainWasFine {
		rev.URL = step.URL
	}

	for _, restriction := range restrictionsFromReasons(violationReasons) {
		rev.Restrictions = append(rev.Restrictions, restriction)
	}

	return rev
}

func restrictionsFromReasons(reasons []string) []string {
	var extra []string
	if anyContains(reasons, "email", "communication") {
		extra = append(extra, "no_external_communication")
	}
	if anyContains(reasons, "navigation", "external") {
		extra = append(extra, "no_external_links")
	}
	if anyContains(reasons, "system", "prompt") {
		extra = append(extra, "no_system_access")
	}
	return extra
}

func anyContains(reasons []string, terms ...string) bool {
	for _, reason := range reasons {
		lower := strings.ToLower(reason)
		for _, term := range terms {
			if strings.Contains(lower, term) {
				return true
			}
		}
	}
	return false
}
