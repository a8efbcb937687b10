package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	DefaultConfigDir   = ".arbiter"
	DefaultLogFile     = "audit.jsonl"
	DefaultFixturesDir = "fixtures/html"
)

// Config holds filesystem paths resolved at startup.
type Config struct {
	ConfigDir   string
	LogPath     string
	FixturesDir string
}

// Settings are the runtime evaluation knobs.
type Settings struct {
	LLMEnabled      bool
	JurorCount      int
	VoteTimeout     time.Duration
	StaticThreshold int
	LLMThreshold    int
	MaxDenials      int
}

// DefaultSettings returns the defaults: juror panel off, static and
// panel thresholds at 2, escalation after 2 consecutive denials.
func DefaultSettings() Settings {
	return Settings{
		LLMEnabled:      false,
		JurorCount:      0,
		VoteTimeout:     2 * time.Second,
		StaticThreshold: 2,
		LLMThreshold:    2,
		MaxDenials:      2,
	}
}

// SettingsFromEnv reads settings from ARB_* environment variables,
// falling back to defaults for unset or malformed values.
func SettingsFromEnv() Settings {
	s := DefaultSettings()

	if v := os.Getenv("ARB_LLM"); v != "" {
		s.LLMEnabled = v == "on" || v == "true" || v == "1"
		if s.LLMEnabled && s.JurorCount == 0 {
			s.JurorCount = 3
		}
	}
	if v := os.Getenv("ARB_JURORS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			s.JurorCount = n
		}
	}
	if v := os.Getenv("ARB_VOTE_TIMEOUT_S"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			s.VoteTimeout = time.Duration(f * float64(time.Second))
		}
	}
	if v := os.Getenv("ARB_STATIC_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			s.StaticThreshold = n
		}
	}
	if v := os.Getenv("ARB_LLM_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			s.LLMThreshold = n
		}
	}
	if v := os.Getenv("ARB_MAX_DENIALS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			s.MaxDenials = n
		}
	}
	return s.Normalized()
}

// Normalized clamps every field into its valid range.
func (s Settings) Normalized() Settings {
	if s.JurorCount < 0 {
		s.JurorCount = 0
	}
	if s.JurorCount > 3 {
		s.JurorCount = 3
	}
	if s.VoteTimeout <= 0 {
		s.VoteTimeout = 2 * time.Second
	}
	s.StaticThreshold = clampScore(s.StaticThreshold)
	s.LLMThreshold = clampScore(s.LLMThreshold)
	if s.MaxDenials < 1 {
		s.MaxDenials = 1
	}
	return s
}

func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 5 {
		return 5
	}
	return n
}

// Load resolves the config directory (created under the user's home if
// missing) and the audit log path. An explicit logPath overrides the
// default location; fixturesDir defaults to fixtures/html relative to
// the working directory.
func Load(logPath, fixturesDir string) (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	configDir := filepath.Join(homeDir, DefaultConfigDir)
	if err := ensureDir(configDir); err != nil {
		return nil, err
	}

	cfg := &Config{ConfigDir: configDir}

	if logPath != "" {
		cfg.LogPath = logPath
	} else {
		cfg.LogPath = filepath.Join(configDir, DefaultLogFile)
	}

	if fixturesDir != "" {
		cfg.FixturesDir = fixturesDir
	} else {
		cfg.FixturesDir = DefaultFixturesDir
	}

	return cfg, nil
}

func ensureDir(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, 0700)
	}
	return nil
}
