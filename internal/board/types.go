package board

import (
	"time"

	"github.com/agentgauntlet/arbiter/internal/config"
	"github.com/agentgauntlet/arbiter/internal/conformance"
	"github.com/agentgauntlet/arbiter/internal/juror"
)

// Request carries everything the board needs to evaluate one step.
type Request struct {
	Step       conformance.Step
	URL        string
	RawContent string
	Contract   conformance.Contract
	Settings   config.Settings
}

// Signals collects every intermediate check result feeding the decision.
// Juror fields are nil when the panel did not run.
type Signals struct {
	AllowlistOK        bool         `json:"allowlist_ok"`
	StaticScore        int          `json:"static_score"`
	StaticPatterns     []string     `json:"static_patterns"`
	Snippet            string       `json:"snippet,omitempty"`
	JurorVotes         []juror.Vote `json:"juror_votes,omitempty"`
	JurorMedianRisk    *float64     `json:"juror_median_risk,omitempty"`
	JurorConsensus     *bool        `json:"juror_consensus,omitempty"`
	JurySummary        string       `json:"jury_summary,omitempty"`
	ConformanceOK      bool         `json:"conformance_ok"`
	ConformanceReasons []string     `json:"conformance_reasons"`
	AnalysisTimeMS     int64        `json:"analysis_time_ms"`
	Timestamp          time.Time    `json:"timestamp"`
}

// Decision is the board's final verdict on a proposed step.
type Decision struct {
	Approved            bool                  `json:"approved"`
	Confidence          float64               `json:"confidence"`
	DefensesUsed        []string              `json:"defenses_used"`
	Reasons             []string              `json:"reasons"`
	SanitizedText       string                `json:"sanitized_text"`
	ContentModified     bool                  `json:"content_modified"`
	RevisedStep         *conformance.Revision `json:"revised_step,omitempty"`
	FallbackRecommended bool                  `json:"fallback_recommended"`
	Signals             Signals               `json:"signals"`
	DecisionID          string                `json:"decision_id"`
}
