package logger

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/agentgauntlet/arbiter/internal/redact"
)

type AuditEvent struct {
	Timestamp           string   `json:"timestamp"`
	DecisionID          string   `json:"decision_id"`
	URL                 string   `json:"url"`
	Fixture             string   `json:"fixture,omitempty"`
	Approved            bool     `json:"approved"`
	Confidence          float64  `json:"confidence"`
	StaticScore         int      `json:"static_score"`
	DefensesUsed        []string `json:"defenses_used"`
	Reasons             []string `json:"reasons"`
	Snippet             string   `json:"snippet,omitempty"`
	FallbackRecommended bool     `json:"fallback_recommended,omitempty"`
	LatencyMS           int64    `json:"latency_ms"`
	UserAction          string   `json:"user_action,omitempty"`
	Error               string   `json:"error,omitempty"`
}

type AuditLogger struct {
	file *os.File
	mu   sync.Mutex
}

func New(path string) (*AuditLogger, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, err
	}

	return &AuditLogger{file: file}, nil
}

func (l *AuditLogger) Log(event AuditEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Redact sensitive data before logging
	event.Snippet = redact.Redact(event.Snippet)
	event.Reasons = redact.RedactAll(event.Reasons)
	if event.Error != "" {
		event.Error = redact.Redact(event.Error)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	data = append(data, '\n')
	_, err = l.file.Write(data)
	return err
}

func (l *AuditLogger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
