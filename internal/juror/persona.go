package juror

import (
	"fmt"
	"strings"
)

// Persona is one configured juror: an id, a bias applied on top of the
// shared analysis, and a rationale voice. Personas are flat config; all
// of them dispatch through the same analysis function.
type Persona struct {
	ID        string
	Style     string
	BiasDelta int

	// AnalyzeFn overrides the shared indicator analysis; nil selects the
	// built-in heuristic. An LLM-backed juror plugs in here.
	AnalyzeFn func(in Input) (risk int, triggered []string, err error)
}

// Panel returns the three fixed personas in activation order. The strict
// juror biases every computed risk up by one (capped at 5); the balanced
// and red-team jurors score unbiased but narrate differently.
func Panel() []Persona {
	return []Persona{
		{ID: "strict_security", Style: "strict_security", BiasDelta: 1},
		{ID: "balanced_analyst", Style: "balanced"},
		{ID: "red_team_savvy", Style: "red_team_savvy"},
	}
}

// riskIndicator is a two-token co-occurrence with an associated risk level.
type riskIndicator struct {
	first  string
	second string
	risk   int
}

// riskIndicators is the shared assessment protocol: both tokens present in
// the evidence means that attack family is plausibly in play, at the given
// risk level. The maximum matched level wins.
var riskIndicators = []riskIndicator{
	{"ignore", "instructions", 4},
	{"reveal", "system", 5},
	{"send", "data", 4},
	{"email", "secrets", 5},
	{"act as", "admin", 4},
	{"override", "safety", 4},
	{"bypass", "security", 4},
	{"navigate", "external", 3},
	{"click", "link", 2},
	{"download", "file", 2},
	{"print", "system", 3},
	{"hidden", "instructions", 4},
}

// Assess runs this persona's analysis over the input and returns its vote.
// elapsedMS is stamped by the caller, which owns the clock.
func (p Persona) Assess(in Input) (risk int, rationale string, confidence float64, err error) {
	analyze := p.AnalyzeFn
	if analyze == nil {
		analyze = sharedAnalysis
	}

	base, triggered, err := analyze(in)
	if err != nil {
		return 0, "", 0, err
	}

	risk = clampRisk(base + p.BiasDelta)
	rationale = p.rationale(risk, triggered)
	confidence = confidenceForRisk(risk)
	return risk, rationale, confidence, nil
}

// sharedAnalysis scans the combined evidence for indicator pairs and
// returns the highest matched risk with the pairs that fired.
func sharedAnalysis(in Input) (int, []string, error) {
	text := strings.ToLower(strings.Join([]string{
		in.SanitizedText,
		in.Step.Text(),
		in.Contract.Domain,
		in.Contract.Tool,
		strings.Join(in.Contract.ObjectiveTags, " "),
	}, " "))

	maxRisk := 0
	var triggered []string
	for _, ind := range riskIndicators {
		if strings.Contains(text, ind.first) && strings.Contains(text, ind.second) {
			if ind.risk > maxRisk {
				maxRisk = ind.risk
			}
			triggered = append(triggered, ind.first+"..."+ind.second)
		}
	}
	return maxRisk, triggered, nil
}

func confidenceForRisk(risk int) float64 {
	switch {
	case risk >= 4:
		return 0.9
	case risk >= 2:
		return 0.7
	default:
		return 0.8
	}
}

// rationale renders the persona's explanation for a risk band. Each style
// keeps its own voice so a reader can tell the jurors apart in a report.
func (p Persona) rationale(risk int, triggered []string) string {
	styleNote := map[string]string{
		"strict_security": " (strict security perspective)",
		"red_team_savvy":  " (red team analysis)",
	}[p.Style]
	if styleNote == "" {
		styleNote = " (balanced assessment)"
	}

	switch {
	case risk >= 4:
		evidence := joinFirst(triggered, 2)
		switch p.Style {
		case "strict_security":
			return fmt.Sprintf("CRITICAL SECURITY RISK: detected %s. Zero tolerance for potential injection attacks%s", evidence, styleNote)
		case "red_team_savvy":
			return fmt.Sprintf("High-risk attack patterns identified: %s. Classic prompt injection techniques%s", evidence, styleNote)
		default:
			return fmt.Sprintf("Significant risk indicators: %s. Recommend blocking%s", evidence, styleNote)
		}
	case risk >= 2:
		evidence := joinFirst(triggered, 1)
		switch p.Style {
		case "strict_security":
			return fmt.Sprintf("Suspicious patterns warrant caution: %s. Better safe than sorry%s", evidence, styleNote)
		case "red_team_savvy":
			return fmt.Sprintf("Moderate threat indicators: %s. Could be reconnaissance%s", evidence, styleNote)
		default:
			return fmt.Sprintf("Some risk indicators present: %s. Moderate concern%s", evidence, styleNote)
		}
	default:
		switch p.Style {
		case "strict_security":
			return "No obvious threats detected, but maintaining vigilance" + styleNote
		case "red_team_savvy":
			return "Content appears clean, no attack vectors identified" + styleNote
		default:
			return "Content appears benign with no obvious security risks" + styleNote
		}
	}
}

func joinFirst(items []string, n int) string {
	if len(items) == 0 {
		return "none"
	}
	if len(items) > n {
		items = items[:n]
	}
	return strings.Join(items, ", ")
}
