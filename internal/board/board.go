package board

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/agentgauntlet/arbiter/internal/config"
	"github.com/agentgauntlet/arbiter/internal/conformance"
	"github.com/agentgauntlet/arbiter/internal/gate"
	"github.com/agentgauntlet/arbiter/internal/juror"
	"github.com/agentgauntlet/arbiter/internal/ledger"
)

// Defense tags attached to decisions.
const (
	DefenseDomainAllowlist     = "Domain Allowlist"
	DefenseStaticAnalysis      = "Static Analysis"
	DefenseContextMinimization = "Context Minimization"
	DefensePlanConformance     = "Plan Conformance"
	DefenseLLMPanel            = "LLM Panel"
	DefenseLLMPanelApproved    = "LLM Panel (approved)"
	DefenseErrorHandling       = "Error Handling"
	DefenseEscalationFallback  = "Escalation Fallback"
	DefenseNoneNeeded          = "No defenses needed"
)

// Board orchestrates the full review: static gate, conformance check,
// optional juror panel, aggregation, and ledger recording.
type Board struct {
	gate   *gate.Gate
	ledger *ledger.Ledger
	panel  []juror.Persona
}

// New creates a board. A nil gate or ledger gets the default.
func New(g *gate.Gate, l *ledger.Ledger) *Board {
	if g == nil {
		g = gate.New(nil)
	}
	if l == nil {
		l = ledger.New(0)
	}
	return &Board{
		gate:   g,
		ledger: l,
		panel:  juror.Panel(),
	}
}

// Ledger exposes the board's risk ledger for reporting.
func (b *Board) Ledger() *ledger.Ledger {
	return b.ledger
}

// Evaluate runs the complete review of a proposed step. Internal
// failures never propagate: any panic resolves to a denial with low
// confidence.
func (b *Board) Evaluate(ctx context.Context, req Request) (decision Decision) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			decision = errorDecision(fmt.Sprintf("%v", r), start)
		}
	}()

	settings := req.Settings.Normalized()

	gateRes := b.gate.Check(req.URL, req.RawContent)
	conformanceOK, conformanceReasons := conformance.Check(req.Step, req.Contract)

	signals := Signals{
		AllowlistOK:        gateRes.AllowlistOK,
		StaticScore:        gateRes.Report.Score,
		StaticPatterns:     gateRes.Report.Patterns,
		Snippet:            gateRes.Report.Snippet,
		ConformanceOK:      conformanceOK,
		ConformanceReasons: conformanceReasons,
		Timestamp:          time.Now(),
	}

	if settings.LLMEnabled && settings.JurorCount > 0 {
		personas := b.panel
		if settings.JurorCount < len(personas) {
			personas = personas[:settings.JurorCount]
		}
		votes := juror.Poll(ctx, personas, juror.Input{
			SanitizedText: gateRes.Report.SafeText,
			Step:          req.Step,
			Contract:      req.Contract,
		}, settings.VoteTimeout)

		consensus := juror.Analyze(votes)
		signals.JurorVotes = votes
		signals.JurorMedianRisk = &consensus.MedianRisk
		signals.JurorConsensus = &consensus.Consensus
		signals.JurySummary = consensus.Summary
	}

	decision = b.aggregate(req, settings, gateRes, signals)
	decision.Signals.AnalysisTimeMS = time.Since(start).Milliseconds()

	b.record(decision, req)
	return decision
}

// aggregate applies the veto chain in fixed order: allowlist, static
// analysis, conformance, juror panel. Any veto denies; confidence is the
// minimum ceiling among fired vetoes.
func (b *Board) aggregate(req Request, settings config.Settings, gateRes gate.Result, signals Signals) Decision {
	approved := true
	confidence := 1.0
	var defenses []string
	var reasons []string

	if !signals.AllowlistOK {
		approved = false
		defenses = append(defenses, DefenseDomainAllowlist)
		reasons = append(reasons, "Domain not in allowlist")
		confidence = 0.95
	}

	if !gateRes.Approved || signals.StaticScore > settings.StaticThreshold {
		approved = false
		defenses = append(defenses, DefenseStaticAnalysis, DefenseContextMinimization)
		if !gateRes.Approved {
			reasons = append(reasons, "Safety gate denied: "+gateRes.Reason)
		}
		if signals.StaticScore > settings.StaticThreshold {
			reasons = append(reasons, fmt.Sprintf("Suspicious patterns detected (score: %d)", signals.StaticScore))
		}
		confidence = minFloat(confidence, 0.9)
	}

	if !signals.ConformanceOK {
		approved = false
		defenses = append(defenses, DefensePlanConformance)
		reasons = append(reasons, signals.ConformanceReasons...)
		confidence = minFloat(confidence, 0.85)
	}

	if signals.JurorMedianRisk != nil {
		if *signals.JurorMedianRisk > float64(settings.LLMThreshold) {
			approved = false
			defenses = append(defenses, DefenseLLMPanel)
			reasons = append(reasons, fmt.Sprintf("Juror consensus: high risk (%g/5)", *signals.JurorMedianRisk))
			confidence = minFloat(confidence, 0.8)
		} else {
			defenses = append(defenses, DefenseLLMPanelApproved)
		}
	}

	// Approved decisions never carry panel markers.
	if approved {
		kept := defenses[:0]
		for _, d := range defenses {
			if d != DefenseLLMPanelApproved {
				kept = append(kept, d)
			}
		}
		defenses = kept
		if len(defenses) == 0 {
			defenses = []string{DefenseNoneNeeded}
		}
	}

	var revised *conformance.Revision
	if !approved {
		revised = conformance.SafeRevision(req.Step, req.Contract, reasons)
	}

	// Consult the streak before this decision lands in the ledger.
	fallback := b.ledger.ShouldTriggerFallback(settings.MaxDenials)
	if fallback {
		defenses = append(defenses, DefenseEscalationFallback)
		reasons = append(reasons, "Multiple consecutive denials - fallback recommended")
	}

	return Decision{
		Approved:            approved,
		Confidence:          confidence,
		DefensesUsed:        defenses,
		Reasons:             reasons,
		SanitizedText:       gateRes.Report.SafeText,
		ContentModified:     len(signals.StaticPatterns) > 0,
		RevisedStep:         revised,
		FallbackRecommended: fallback,
		Signals:             signals,
		DecisionID:          newDecisionID(),
	}
}

func (b *Board) record(d Decision, req Request) {
	fixture := req.Step.Fixture
	if fixture == "" {
		fixture = "unknown"
	}
	b.ledger.Append(ledger.Entry{
		DecisionID:        d.DecisionID,
		URL:               req.URL,
		Fixture:           fixture,
		Approved:          d.Approved,
		RiskScore:         d.Signals.StaticScore,
		DefensesTriggered: d.DefensesUsed,
	})
}

// errorDecision is the fail-secure verdict for internal failures. It is
// never recorded in the ledger.
func errorDecision(msg string, start time.Time) Decision {
	return Decision{
		Approved:     false,
		Confidence:   0.1,
		DefensesUsed: []string{DefenseErrorHandling},
		Reasons:      []string{"Review failed: " + truncate(msg, 100)},
		Signals: Signals{
			AllowlistOK:        false,
			StaticScore:        5,
			StaticPatterns:     []string{},
			ConformanceOK:      false,
			ConformanceReasons: []string{"Analysis error: " + truncate(msg, 50)},
			AnalysisTimeMS:     time.Since(start).Milliseconds(),
			Timestamp:          time.Now(),
		},
		DecisionID: newDecisionID(),
	}
}

func newDecisionID() string {
	return "arb-" + uuid.NewString()
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
