package gate

import "regexp"

// MaxScore is the ceiling of the suspicion scale.
const MaxScore = 5

// snippetLen bounds the evidence snippet attached to a score.
const snippetLen = 240

var (
	imperativeVerbs = regexp.MustCompile(
		`(?i)\b(click|navigate|email|send|perform|execute|download|upload|visit|go|access|open|run)\b`)
	instructionNouns = regexp.MustCompile(
		`(?i)\b(instruction|command|directive|order|task|step|action|must|should|need to)\b`)
)

// ScoreResult is the outcome of scanning one text for suspicious intent.
type ScoreResult struct {
	Score    int
	Patterns []string
	Snippet  string
}

// Score scans text against the catalog and returns a 0-5 suspicion score,
// the matched indicator ids in catalog order, and an evidence snippet.
//
// Each distinct indicator match is worth 2 points, saturating at 5: two
// matches already clear the cautious threshold. Two density bonuses add
// one point each: three or more imperative verbs, or five or more
// instruction-framing nouns.
func (c *Catalog) Score(text string) ScoreResult {
	if text == "" {
		return ScoreResult{Patterns: []string{}}
	}

	var matched []string
	for _, ind := range c.indicators {
		if ind.re.MatchString(text) {
			matched = append(matched, ind.id)
		}
	}

	// Invisible unicode is an indicator in its own right: zero-width and
	// bidi-control characters carry text no human reviewer will ever see.
	if containsHiddenUnicode(text) {
		matched = append(matched, "hidden-unicode")
	}

	score := 0
	if len(matched) > 0 {
		score = min(MaxScore, len(matched)*2)
	}

	if len(imperativeVerbs.FindAllStringIndex(text, -1)) >= 3 {
		score = min(MaxScore, score+1)
	}
	if len(instructionNouns.FindAllStringIndex(text, -1)) >= 5 {
		score = min(MaxScore, score+1)
	}

	snippet := text
	if len(snippet) > snippetLen {
		snippet = snippet[:snippetLen] + "..."
	}

	if matched == nil {
		matched = []string{}
	}
	return ScoreResult{Score: score, Patterns: matched, Snippet: snippet}
}
