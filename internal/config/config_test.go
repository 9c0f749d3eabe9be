package config

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jaminalder/tic-tac-toe-ai/internal/domain"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("serve", nil, env(nil), io.Discard)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadEnvThenFlags(t *testing.T) {
	e := env(map[string]string{
		"TTT_ADDR":      ":9000",
		"TTT_MODE":      "computer",
		"TTT_AI_DELAY":  "1s",
		"TTT_SEED":      "42",
		"TTT_LOG_LEVEL": "debug",
	})
	cfg, err := Load("serve", nil, e, io.Discard)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Config{Addr: ":9000", Mode: domain.RandomAI, AIDelay: time.Second, Seed: 42, LogLevel: slog.LevelDebug}
	if cfg != want {
		t.Fatalf("expected %+v, got %+v", want, cfg)
	}

	cfg, err = Load("serve", []string{"-mode", "player", "-addr", ":1", "-ai-delay", "0s", "-log-level", "warn"}, e, io.Discard)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Mode != domain.TwoPlayer || cfg.Addr != ":1" || cfg.AIDelay != 0 || cfg.LogLevel != slog.LevelWarn || cfg.Seed != 42 {
		t.Fatalf("flags should override env, got %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
	}{
		{"bad mode flag", []string{"-mode", "hard"}, nil},
		{"bad mode env", nil, map[string]string{"TTT_MODE": "hard"}},
		{"bad delay env", nil, map[string]string{"TTT_AI_DELAY": "soon"}},
		{"negative delay", []string{"-ai-delay", "-1s"}, nil},
		{"bad seed", nil, map[string]string{"TTT_SEED": "x"}},
		{"bad level", []string{"-log-level", "loud"}, nil},
		{"unknown flag", []string{"-nope"}, nil},
		{"extra args", []string{"extra"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load("serve", tt.args, env(tt.env), io.Discard); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
