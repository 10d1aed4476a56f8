package main

import (
	"strings"
	"testing"
	"time"

	"github.com/hangthedj/htdj-go/pkg/types"
	htdj "github.com/hangthedj/htdj-go/sdk"
)

func TestParseChatConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := parseChatConfig(nil, func(string) string { return "" })
	if err != nil {
		t.Fatalf("parseChatConfig() error = %v", err)
	}
	if cfg.BaseURL != htdj.DefaultBaseURL {
		t.Fatalf("BaseURL = %q, want %q", cfg.BaseURL, htdj.DefaultBaseURL)
	}
	if cfg.Timeout != defaultTimeout {
		t.Fatalf("Timeout = %v, want %v", cfg.Timeout, defaultTimeout)
	}
	if cfg.EnvFile != ".env" {
		t.Fatalf("EnvFile = %q, want .env", cfg.EnvFile)
	}
	if cfg.Verbose {
		t.Fatal("Verbose should default to false")
	}
}

func TestParseChatFlags_EnvFile(t *testing.T) {
	t.Parallel()

	cfg, err := parseChatFlags([]string{"-env-file", "local.env"})
	if err != nil {
		t.Fatalf("parseChatFlags() error = %v", err)
	}
	if cfg.EnvFile != "local.env" {
		t.Fatalf("EnvFile = %q, want local.env", cfg.EnvFile)
	}

	if _, err := parseChatFlags([]string{"-no-such-flag"}); err == nil {
		t.Fatal("unknown flag should error")
	}
}

func TestParseChatConfig_EnvAndFlagPrecedence(t *testing.T) {
	t.Parallel()

	getenv := func(key string) string {
		if key == "HTDJ_BASE_URL" {
			return "http://env.example:8000"
		}
		return ""
	}

	cfg, err := parseChatConfig(nil, getenv)
	if err != nil {
		t.Fatalf("parseChatConfig() error = %v", err)
	}
	if cfg.BaseURL != "http://env.example:8000" {
		t.Fatalf("BaseURL = %q, want env value", cfg.BaseURL)
	}

	cfg, err = parseChatConfig([]string{
		"-base-url", "http://flag.example:9000",
		"-timeout", "30s",
		"-verbose",
	}, getenv)
	if err != nil {
		t.Fatalf("parseChatConfig() error = %v", err)
	}
	if cfg.BaseURL != "http://flag.example:9000" {
		t.Fatalf("BaseURL = %q, flag must win over env", cfg.BaseURL)
	}
	if cfg.Timeout != 30*time.Second || !cfg.Verbose {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestValidateChatConfig(t *testing.T) {
	t.Parallel()

	valid := chatConfig{BaseURL: "http://localhost:8000", Timeout: time.Minute}
	if err := validateChatConfig(valid); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := []struct {
		name string
		cfg  chatConfig
	}{
		{"empty base URL", chatConfig{BaseURL: "  ", Timeout: time.Minute}},
		{"no scheme", chatConfig{BaseURL: "localhost:8000", Timeout: time.Minute}},
		{"credentials", chatConfig{BaseURL: "http://u:p@localhost:8000", Timeout: time.Minute}},
		{"zero timeout", chatConfig{BaseURL: "http://localhost:8000"}},
		{"negative timeout", chatConfig{BaseURL: "http://localhost:8000", Timeout: -time.Second}},
	}
	for _, tc := range cases {
		if err := validateChatConfig(tc.cfg); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestFormatSummary(t *testing.T) {
	t.Parallel()

	if got := formatSummary(nil); got != "(no summary)" {
		t.Fatalf("formatSummary(nil) = %q", got)
	}

	got := formatSummary(&types.IntakeSummary{
		Preferences:  []string{"kindness"},
		Dealbreakers: []string{"dishonesty"},
		DatingThesis: "Slow burn.",
	})
	for _, want := range []string{"- kindness", "- dishonesty", "Dating thesis: Slow burn."} {
		if !strings.Contains(got, want) {
			t.Fatalf("formatSummary missing %q in:\n%s", want, got)
		}
	}
}

func TestFormatExchange(t *testing.T) {
	t.Parallel()

	got := formatExchange(&types.DateExchange{
		Scene: "A quiet bookshop.",
		Transcript: []types.DateTurn{
			{Speaker: "user_1", Name: "Amy", Text: "I live here, basically."},
		},
		EvaluatorNotes: []string{"shared interests"},
		Score:          &types.DateScore{ScoreA: 9, ScoreB: 8, Compatibility: 88},
	})

	for _, want := range []string{
		"Scene: A quiet bookshop.",
		"Amy: I live here, basically.",
		"- shared interests",
		"Score: A=9 B=8 compatibility=88",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("formatExchange missing %q in:\n%s", want, got)
		}
	}
	if strings.HasSuffix(got, "\n") {
		t.Fatal("formatExchange should trim trailing newlines")
	}
}
