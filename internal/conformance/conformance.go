package conformance

import (
	"fmt"
	"strings"

	"github.com/agentgauntlet/arbiter/internal/gate"
)

// allowedDomains are always acceptable step targets regardless of contract.
var allowedDomains = map[string]bool{
	"localhost": true,
	"127.0.0.1": true,
}

// allowedTools is the fixed capability set any contract may draw from.
var allowedTools = map[string]bool{
	"read_page":         true,
	"extract_text":      true,
	"fetch_and_extract": true,
}

// toolSynonyms maps a normalized canonical tool name to names that mean
// the same thing.
var toolSynonyms = map[string][]string{
	"readpage":        {"read_page", "fetch_page", "get_page"},
	"extracttext":     {"extract_text", "get_text", "parse_text"},
	"fetchandextract": {"fetch_and_extract", "read_and_extract"},
}

// objectiveExpansions maps a contract objective tag to terms that satisfy
// it semantically.
var objectiveExpansions = map[string][]string{
	"refund":   {"return", "money back", "reimbursement", "credit"},
	"warranty": {"guarantee", "coverage", "protection", "repair"},
	"policy":   {"rule", "guideline", "procedure", "terms"},
	"return":   {"exchange", "send back", "give back"},
	"hours":    {"time", "schedule", "open", "closed"},
	"contact":  {"phone", "email", "address", "support"},
}

// generalInfoTerms make a step acceptable as a plain information request
// when no objective tag matches directly.
var generalInfoTerms = []string{"find", "get", "extract", "read", "information", "content", "text"}

// Check validates a step against its contract. All four sub-checks must
// pass; reasons accumulate from every sub-check, including positive reasons
// from the ones that passed, so the trace explains the whole verdict.
func Check(step Step, contract Contract) (bool, []string) {
	ok := true
	var reasons []string

	tool := step.Tool
	if tool == "" {
		tool = step.Action
	}

	if domainOK, domainReasons := checkDomain(step.URL, contract.Domain); !domainOK {
		ok = false
		reasons = append(reasons, domainReasons...)
	} else {
		reasons = append(reasons, fmt.Sprintf("Domain '%s' is allowed", gate.Host(step.URL)))
	}

	if toolOK, toolReasons := checkTool(tool, contract.Tool); !toolOK {
		ok = false
		reasons = append(reasons, toolReasons...)
	} else {
		reasons = append(reasons, fmt.Sprintf("Tool '%s' is permitted", tool))
	}

	if dangerOK, dangerReasons := checkDangerousActions(step); !dangerOK {
		ok = false
		reasons = append(reasons, dangerReasons...)
	}

	objectiveOK, objectiveReasons := checkObjectiveAlignment(step, contract.ObjectiveTags)
	if !objectiveOK {
		ok = false
	}
	reasons = append(reasons, objectiveReasons...)

	return ok, reasons
}

func checkDomain(rawURL, contractDomain string) (bool, []string) {
	if rawURL == "" {
		return false, []string{"No URL provided"}
	}

	host := gate.Host(rawURL)
	if host == "" {
		return false, []string{fmt.Sprintf("Invalid URL format: %s", rawURL)}
	}

	if allowedDomains[host] {
		return true, nil
	}
	if host == strings.ToLower(contractDomain) {
		return true, nil
	}
	// localhost and 127.0.0.1 are the same machine.
	if strings.EqualFold(contractDomain, "localhost") && (host == "localhost" || host == "127.0.0.1") {
		return true, nil
	}

	return false, []string{fmt.Sprintf("Domain '%s' not in allowlist (permitted: localhost, 127.0.0.1)", host)}
}

func checkTool(tool, contractTool string) (bool, []string) {
	if tool == "" {
		return false, []string{"No tool specified"}
	}

	normalized := normalizeTool(tool)
	if normalized == normalizeTool(contractTool) {
		return true, nil
	}
	if allowedTools[tool] {
		return true, nil
	}
	for canonical, variants := range toolSynonyms {
		if normalized == canonical {
			return true, nil
		}
		for _, v := range variants {
			if tool == v {
				return true, nil
			}
		}
	}

	return false, []string{fmt.Sprintf("Tool '%s' not permitted (permitted: read_page, extract_text, fetch_and_extract)", tool)}
}

func normalizeTool(tool string) string {
	s := strings.ToLower(tool)
	s = strings.ReplaceAll(s, "_", "")
	return strings.ReplaceAll(s, "-", "")
}

// checkDangerousActions scans the whole step text against the dangerous
// catalog. Any match is a conformance failure on its own, independent of
// the domain and tool checks.
func checkDangerousActions(step Step) (bool, []string) {
	text := step.Text()

	var violations []string
	for _, action := range dangerousActions {
		if action.re.MatchString(text) {
			violations = append(violations, "Dangerous action detected: "+action.description)
		}
	}
	if len(violations) > 0 {
		return false, violations
	}
	return true, nil
}

func checkObjectiveAlignment(step Step, objectiveTags []string) (bool, []string) {
	if len(objectiveTags) == 0 {
		return true, []string{"No specific objectives to validate"}
	}

	text := step.Text()

	var matched []string
	for _, tag := range objectiveTags {
		if strings.Contains(text, strings.ToLower(tag)) {
			matched = append(matched, tag)
			continue
		}
		for _, expansion := range objectiveExpansions[strings.ToLower(tag)] {
			if strings.Contains(text, expansion) {
				matched = append(matched, fmt.Sprintf("%s (via %s)", tag, expansion))
				break
			}
		}
	}
	if len(matched) > 0 {
		return true, []string{"Aligned with objectives: " + strings.Join(matched, ", ")}
	}

	for _, term := range generalInfoTerms {
		if strings.Contains(text, term) {
			return true, []string{"General information request - acceptable"}
		}
	}

	return false, []string{fmt.Sprintf("Step does not align with stated objectives: %s", strings.Join(objectiveTags, ", "))}
}
