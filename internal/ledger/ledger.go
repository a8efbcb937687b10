package ledger

import (
	"encoding/json"
	"math"
	"sync"
	"time"
)

const defaultMaxEntries = 1000

// Entry records the outcome of a single evaluation.
type Entry struct {
	Timestamp         time.Time `json:"timestamp"`
	DecisionID        string    `json:"decision_id"`
	URL               string    `json:"url"`
	Fixture           string    `json:"fixture"`
	Approved          bool      `json:"approved"`
	RiskScore         int       `json:"risk_score"`
	DefensesTriggered []string  `json:"defenses_triggered"`
}

// Trend summarizes risk over a recent window of decisions.
type Trend struct {
	AverageRisk   float64 `json:"average_risk"`
	DenialRate    float64 `json:"denial_rate"`
	Trend         string  `json:"trend"`
	SampleSize    int     `json:"sample_size"`
	CurrentStreak int     `json:"current_streak"`
}

// FixtureStats aggregates outcomes for a single fixture.
type FixtureStats struct {
	TotalAttempts  int            `json:"total_attempts"`
	Approvals      int            `json:"approvals"`
	Denials        int            `json:"denials"`
	DenialRate     float64        `json:"denial_rate"`
	AverageRisk    float64        `json:"average_risk"`
	CommonDefenses map[string]int `json:"common_defenses"`
}

// SessionSummary reports session-level statistics.
type SessionSummary struct {
	SessionDuration     string  `json:"session_duration"`
	TotalDecisions      int     `json:"total_decisions"`
	Approvals           int     `json:"approvals"`
	Denials             int     `json:"denials"`
	ApprovalRate        float64 `json:"approval_rate"`
	UniqueFixtures      int     `json:"unique_fixtures"`
	CurrentDenialStreak int     `json:"current_denial_streak"`
	RiskTrend           Trend   `json:"risk_trend"`
}

// Ledger keeps a bounded in-memory history of decisions. Oldest entries
// are evicted once the capacity is reached. Safe for concurrent use.
type Ledger struct {
	mu           sync.RWMutex
	entries      []Entry
	maxEntries   int
	sessionStart time.Time
}

// New creates a ledger holding at most maxEntries records. Values at or
// below zero fall back to the default capacity of 1000.
func New(maxEntries int) *Ledger {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	return &Ledger{
		maxEntries:   maxEntries,
		sessionStart: time.Now(),
	}
}

// Append records an entry, evicting the oldest when at capacity. A zero
// timestamp is filled in with the current time.
func (l *Ledger) Append(e Entry) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	if e.DefensesTriggered == nil {
		e.DefensesTriggered = []string{}
	} else {
		e.DefensesTriggered = append([]string(nil), e.DefensesTriggered...)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, e)
	if len(l.entries) > l.maxEntries {
		over := len(l.entries) - l.maxEntries
		l.entries = append([]Entry(nil), l.entries[over:]...)
	}
}

// Len reports the number of stored entries.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// LastN returns up to n most recent entries, oldest first.
func (l *Ledger) LastN(n int) []Entry {
	if n <= 0 {
		return nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastNLocked(n)
}

func (l *Ledger) lastNLocked(n int) []Entry {
	if n > len(l.entries) {
		n = len(l.entries)
	}
	out := make([]Entry, n)
	copy(out, l.entries[len(l.entries)-n:])
	return out
}

// ConsecutiveDenials reports whether the last count decisions were all
// denials. Fewer than count entries can never satisfy the check.
func (l *Ledger) ConsecutiveDenials(count int) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.entries) < count {
		return false
	}
	for _, e := range l.entries[len(l.entries)-count:] {
		if e.Approved {
			return false
		}
	}
	return true
}

// DenialStreak counts consecutive denials at the end of the history.
func (l *Ledger) DenialStreak() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.denialStreakLocked()
}

func (l *Ledger) denialStreakLocked() int {
	streak := 0
	for i := len(l.entries) - 1; i >= 0; i-- {
		if l.entries[i].Approved {
			break
		}
		streak++
	}
	return streak
}

// ShouldTriggerFallback reports whether the denial pattern warrants
// switching to a safer fallback plan.
func (l *Ledger) ShouldTriggerFallback(maxDenials int) bool {
	return l.ConsecutiveDenials(maxDenials)
}

// RiskTrend analyzes the last windowSize decisions. Windows shorter than
// five entries are reported as insufficient_data; otherwise the trend
// compares the mean risk of the older half against the newer half.
func (l *Ledger) RiskTrend(windowSize int) Trend {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.riskTrendLocked(windowSize)
}

func (l *Ledger) riskTrendLocked(windowSize int) Trend {
	if windowSize <= 0 {
		windowSize = 10
	}
	recent := l.lastNLocked(windowSize)
	if len(recent) == 0 {
		return Trend{Trend: "stable"}
	}

	totalRisk := 0
	denials := 0
	for _, e := range recent {
		totalRisk += e.RiskScore
		if !e.Approved {
			denials++
		}
	}

	trend := "insufficient_data"
	if len(recent) >= 5 {
		half := len(recent) / 2
		firstAvg := meanRisk(recent[:half])
		secondAvg := meanRisk(recent[half:])
		switch {
		case secondAvg > firstAvg+0.5:
			trend = "increasing"
		case secondAvg < firstAvg-0.5:
			trend = "decreasing"
		default:
			trend = "stable"
		}
	}

	return Trend{
		AverageRisk:   round2(float64(totalRisk) / float64(len(recent))),
		DenialRate:    round2(float64(denials) / float64(len(recent))),
		Trend:         trend,
		SampleSize:    len(recent),
		CurrentStreak: l.denialStreakLocked(),
	}
}

// ByFixture groups outcomes by fixture name.
func (l *Ledger) ByFixture() map[string]FixtureStats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	totals := make(map[string]int)
	stats := make(map[string]FixtureStats)
	for _, e := range l.entries {
		s, ok := stats[e.Fixture]
		if !ok {
			s = FixtureStats{CommonDefenses: make(map[string]int)}
		}
		s.TotalAttempts++
		if e.Approved {
			s.Approvals++
		} else {
			s.Denials++
		}
		for _, d := range e.DefensesTriggered {
			s.CommonDefenses[d]++
		}
		totals[e.Fixture] += e.RiskScore
		stats[e.Fixture] = s
	}

	for fixture, s := range stats {
		s.DenialRate = float64(s.Denials) / float64(s.TotalAttempts)
		s.AverageRisk = float64(totals[fixture]) / float64(s.TotalAttempts)
		stats[fixture] = s
	}
	return stats
}

// Summary reports session-level statistics including the current trend.
func (l *Ledger) Summary() SessionSummary {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := SessionSummary{
		SessionDuration: time.Since(l.sessionStart).String(),
		RiskTrend:       l.riskTrendLocked(10),
	}
	if len(l.entries) == 0 {
		return out
	}

	fixtures := make(map[string]struct{})
	for _, e := range l.entries {
		if e.Approved {
			out.Approvals++
		}
		fixtures[e.Fixture] = struct{}{}
	}
	out.TotalDecisions = len(l.entries)
	out.Denials = out.TotalDecisions - out.Approvals
	out.ApprovalRate = round2(float64(out.Approvals) / float64(out.TotalDecisions))
	out.UniqueFixtures = len(fixtures)
	out.CurrentDenialStreak = l.denialStreakLocked()
	return out
}

// ExportJSON serializes the full history with session metadata.
func (l *Ledger) ExportJSON() ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entries := l.entries
	if entries == nil {
		entries = []Entry{}
	}
	return json.MarshalIndent(struct {
		SessionStart time.Time `json:"session_start"`
		ExportTime   time.Time `json:"export_time"`
		TotalEntries int       `json:"total_entries"`
		Entries      []Entry   `json:"entries"`
	}{
		SessionStart: l.sessionStart,
		ExportTime:   time.Now(),
		TotalEntries: len(entries),
		Entries:      entries,
	}, "", "  ")
}

// Clear drops all entries and restarts the session clock.
func (l *Ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
	l.sessionStart = time.Now()
}

func meanRisk(entries []Entry) float64 {
	if len(entries) == 0 {
		return 0
	}
	total := 0
	for _, e := range entries {
		total += e.RiskScore
	}
	return float64(total) / float64(len(entries))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
