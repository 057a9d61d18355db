package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.CDPPort != 9222 {
		t.Fatalf("CDPPort = %d, want 9222", cfg.CDPPort)
	}
	if cfg.BindAddr != "127.0.0.1:8199" {
		t.Fatalf("BindAddr = %q", cfg.BindAddr)
	}
	if len(cfg.BindCandidates) != 3 {
		t.Fatalf("BindCandidates = %v", cfg.BindCandidates)
	}
	if cfg.TimeGapMinutes != 10 || cfg.DebounceMS != 1500 {
		t.Fatalf("automation defaults wrong: gap=%v debounce=%d", cfg.TimeGapMinutes, cfg.DebounceMS)
	}
	if cfg.LLMProvider != "" {
		t.Fatalf("LLM provider must default to unset, got %q", cfg.LLMProvider)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CHROMIUM_CDP_PORT", "9333")
	t.Setenv("WARDEN_LOG_LEVEL", "DEBUG")
	t.Setenv("WARDEN_BIND_CANDIDATES", " 127.0.0.1:9000 ,127.0.0.1:9001")
	t.Setenv("WARDEN_DEBOUNCE_MS", "10")
	t.Setenv("WARDEN_TIME_GAP_MINUTES", "2.5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.CDPPort != 9333 {
		t.Fatalf("CDPPort = %d", cfg.CDPPort)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want lowercase debug", cfg.LogLevel)
	}
	if len(cfg.BindCandidates) != 2 || cfg.BindCandidates[0] != "127.0.0.1:9000" {
		t.Fatalf("BindCandidates = %v", cfg.BindCandidates)
	}
	// Too-small debounce values clamp to the floor.
	if cfg.DebounceMS != 100 {
		t.Fatalf("DebounceMS = %d, want clamped 100", cfg.DebounceMS)
	}
	if cfg.TimeGapMinutes != 2.5 {
		t.Fatalf("TimeGapMinutes = %v", cfg.TimeGapMinutes)
	}
	if got := cfg.CDPURL(); got != "http://127.0.0.1:9333" {
		t.Fatalf("CDPURL() = %q", got)
	}
}
