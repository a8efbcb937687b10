package config

import (
	"testing"
	"time"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	if s.LLMEnabled {
		t.Error("panel should be off by default")
	}
	if s.JurorCount != 0 {
		t.Errorf("juror count = %d, want 0", s.JurorCount)
	}
	if s.VoteTimeout != 2*time.Second {
		t.Errorf("vote timeout = %v, want 2s", s.VoteTimeout)
	}
	if s.StaticThreshold != 2 || s.LLMThreshold != 2 {
		t.Errorf("thresholds = %d/%d, want 2/2", s.StaticThreshold, s.LLMThreshold)
	}
	if s.MaxDenials != 2 {
		t.Errorf("max denials = %d, want 2", s.MaxDenials)
	}
}

func TestSettingsFromEnv(t *testing.T) {
	t.Setenv("ARB_LLM", "on")
	t.Setenv("ARB_JURORS", "2")
	t.Setenv("ARB_VOTE_TIMEOUT_S", "0.5")
	t.Setenv("ARB_STATIC_THRESHOLD", "3")
	t.Setenv("ARB_LLM_THRESHOLD", "1")
	t.Setenv("ARB_MAX_DENIALS", "4")

	s := SettingsFromEnv()
	if !s.LLMEnabled {
		t.Error("expected panel enabled")
	}
	if s.JurorCount != 2 {
		t.Errorf("juror count = %d, want 2", s.JurorCount)
	}
	if s.VoteTimeout != 500*time.Millisecond {
		t.Errorf("vote timeout = %v, want 500ms", s.VoteTimeout)
	}
	if s.StaticThreshold != 3 || s.LLMThreshold != 1 {
		t.Errorf("thresholds = %d/%d, want 3/1", s.StaticThreshold, s.LLMThreshold)
	}
	if s.MaxDenials != 4 {
		t.Errorf("max denials = %d, want 4", s.MaxDenials)
	}
}

func TestSettingsFromEnv_LLMOnDefaultsJurors(t *testing.T) {
	t.Setenv("ARB_LLM", "on")

	s := SettingsFromEnv()
	if s.JurorCount != 3 {
		t.Errorf("enabling the panel without ARB_JURORS should seat 3, got %d", s.JurorCount)
	}
}

func TestSettingsFromEnv_Malformed(t *testing.T) {
	t.Setenv("ARB_JURORS", "lots")
	t.Setenv("ARB_VOTE_TIMEOUT_S", "-1")
	t.Setenv("ARB_STATIC_THRESHOLD", "")

	s := SettingsFromEnv()
	defaults := DefaultSettings()
	if s.JurorCount != defaults.JurorCount {
		t.Errorf("malformed juror count should fall back, got %d", s.JurorCount)
	}
	if s.VoteTimeout != defaults.VoteTimeout {
		t.Errorf("non-positive timeout should fall back, got %v", s.VoteTimeout)
	}
	if s.StaticThreshold != defaults.StaticThreshold {
		t.Errorf("empty threshold should fall back, got %d", s.StaticThreshold)
	}
}

func TestNormalized(t *testing.T) {
	tests := []struct {
		name string
		in   Settings
		want Settings
	}{
		{
			name: "everything out of range",
			in: Settings{
				JurorCount:      9,
				VoteTimeout:     -1,
				StaticThreshold: 8,
				LLMThreshold:    -2,
				MaxDenials:      0,
			},
			want: Settings{
				JurorCount:      3,
				VoteTimeout:     2 * time.Second,
				StaticThreshold: 5,
				LLMThreshold:    0,
				MaxDenials:      1,
			},
		},
		{
			name: "valid values untouched",
			in: Settings{
				LLMEnabled:      true,
				JurorCount:      2,
				VoteTimeout:     time.Second,
				StaticThreshold: 3,
				LLMThreshold:    2,
				MaxDenials:      5,
			},
			want: Settings{
				LLMEnabled:      true,
				JurorCount:      2,
				VoteTimeout:     time.Second,
				StaticThreshold: 3,
				LLMThreshold:    2,
				MaxDenials:      5,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Normalized(); got != tt.want {
				t.Errorf("Normalized() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
