// Package juror implements the risk-assessment panel: independently biased
// personas that each score a proposed action 0-5, polled in parallel under
// a per-vote timeout, plus the consensus analysis over their votes.
package juror

import "github.com/agentgauntlet/arbiter/internal/conformance"

// Vote is one juror's assessment. RiskScore is always within [0,5] and
// Confidence within [0.0,1.0]; out-of-range values from an assessor are
// clamped before a Vote is ever observable.
type Vote struct {
	JurorID        string  `json:"juror_id"`
	RiskScore      int     `json:"risk_score"`
	Rationale      string  `json:"rationale"`
	Confidence     float64 `json:"confidence"`
	ResponseTimeMS int     `json:"response_time_ms,omitempty"`
}

// Input is the evidence handed to every juror: the sanitized visible text,
// the proposed step, and the contract it claims to serve.
type Input struct {
	SanitizedText string
	Step          conformance.Step
	Contract      conformance.Contract
}

func newVote(id string, risk int, rationale string, confidence float64, elapsedMS int) Vote {
	return Vote{
		JurorID:        id,
		RiskScore:      clampRisk(risk),
		Rationale:      rationale,
		Confidence:     clampConfidence(confidence),
		ResponseTimeMS: elapsedMS,
	}
}

func clampRisk(risk int) int {
	if risk < 0 {
		return 0
	}
	if risk > 5 {
		return 5
	}
	return risk
}

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
