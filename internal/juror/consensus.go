package juror

import (
	"fmt"
	"math"
	"sort"
)

// Consensus summarizes a panel's votes: the median risk, whether the panel
// agrees (every vote within one point of the median), and how tightly the
// votes cluster.
type Consensus struct {
	MedianRisk          float64 `json:"median_risk"`
	Consensus           bool    `json:"consensus"`
	AgreementLevel      float64 `json:"agreement_level"`
	HighConfidenceVotes int     `json:"high_confidence_votes"`
	TotalVotes          int     `json:"total_votes"`
	Summary             string  `json:"summary"`
}

// Analyze computes the consensus over a vote set. An empty set yields
// median 0, no consensus, zero agreement.
func Analyze(votes []Vote) Consensus {
	if len(votes) == 0 {
		return Consensus{Summary: "No juror votes available"}
	}

	scores := make([]int, len(votes))
	for i, v := range votes {
		scores[i] = v.RiskScore
	}
	sort.Ints(scores)

	median := medianOf(scores)

	consensus := true
	for _, s := range scores {
		if math.Abs(float64(s)-median) > 1 {
			consensus = false
			break
		}
	}

	agreement := agreementLevel(scores)

	highConfidence := 0
	for _, v := range votes {
		if v.Confidence >= 0.7 {
			highConfidence++
		}
	}

	return Consensus{
		MedianRisk:          median,
		Consensus:           consensus,
		AgreementLevel:      agreement,
		HighConfidenceVotes: highConfidence,
		TotalVotes:          len(votes),
		Summary:             summarize(consensus, median, scores),
	}
}

// medianOf takes the standard median over sorted scores: middle element
// when odd, arithmetic mean of the two middle elements when even.
func medianOf(sorted []int) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return float64(sorted[n/2])
	}
	return float64(sorted[n/2-1]+sorted[n/2]) / 2
}

// agreementLevel is 1.0 for identical votes, otherwise 1 - stddev/2.5
// floored at zero, rounded to two decimals.
func agreementLevel(scores []int) float64 {
	identical := true
	for _, s := range scores[1:] {
		if s != scores[0] {
			identical = false
			break
		}
	}
	if identical {
		return 1.0
	}

	mean := 0.0
	for _, s := range scores {
		mean += float64(s)
	}
	mean /= float64(len(scores))

	variance := 0.0
	for _, s := range scores {
		d := float64(s) - mean
		variance += d * d
	}
	variance /= float64(len(scores))

	level := 1.0 - math.Sqrt(variance)/2.5
	if level < 0 {
		level = 0
	}
	return math.Round(level*100) / 100
}

func summarize(consensus bool, median float64, sorted []int) string {
	switch {
	case consensus && median >= 4:
		return fmt.Sprintf("Strong consensus: HIGH RISK (median: %g)", median)
	case consensus && median <= 1:
		return fmt.Sprintf("Strong consensus: LOW RISK (median: %g)", median)
	case consensus:
		return fmt.Sprintf("Consensus: MODERATE RISK (median: %g)", median)
	default:
		return fmt.Sprintf("Mixed opinions: risk range %d-%d", sorted[0], sorted[len(sorted)-1])
	}
}
