// Package config reads the settings of the tictactoe binary from flags,
// falling back to TTT_* environment variables.
package config

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/jaminalder/tic-tac-toe-ai/internal/domain"
)

// Config holds the settings shared by the serve and play commands.
type Config struct {
	Addr     string
	Mode     domain.Mode
	AIDelay  time.Duration
	Seed     int64 // zero seeds from the clock
	LogLevel slog.Level
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Addr:     ":8080",
		Mode:     domain.MinimaxAI,
		AIDelay:  500 * time.Millisecond,
		LogLevel: slog.LevelInfo,
	}
}

// Load parses args (without the program and command names). getenv supplies
// defaults for unset flags; pass os.Getenv in production.
func Load(name string, args []string, getenv func(string) string, output io.Writer) (Config, error) {
	cfg := Default()
	if err := cfg.fromEnv(getenv); err != nil {
		return cfg, err
	}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(output)
	mode := fs.String("mode", cfg.Mode.String(), "game mode: player, computer or minimax")
	level := fs.String("log-level", cfg.LogLevel.String(), "log level: debug, info, warn or error")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	fs.DurationVar(&cfg.AIDelay, "ai-delay", cfg.AIDelay, "pause before the computer replies")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "seed of the random computer (0 = clock)")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if fs.NArg() > 0 {
		return cfg, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	m, err := domain.ParseMode(*mode)
	if err != nil {
		return cfg, err
	}
	cfg.Mode = m
	if err := cfg.LogLevel.UnmarshalText([]byte(*level)); err != nil {
		return cfg, fmt.Errorf("log level: %w", err)
	}
	if cfg.AIDelay < 0 {
		return cfg, fmt.Errorf("ai-delay must not be negative, got %s", cfg.AIDelay)
	}
	return cfg, nil
}

func (c *Config) fromEnv(getenv func(string) string) error {
	if getenv == nil {
		return nil
	}
	if v := getenv("TTT_ADDR"); v != "" {
		c.Addr = v
	}
	if v := getenv("TTT_MODE"); v != "" {
		m, err := domain.ParseMode(v)
		if err != nil {
			return fmt.Errorf("TTT_MODE: %w", err)
		}
		c.Mode = m
	}
	if v := getenv("TTT_AI_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TTT_AI_DELAY: %w", err)
		}
		c.AIDelay = d
	}
	if v := getenv("TTT_SEED"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("TTT_SEED: %w", err)
		}
		c.Seed = n
	}
	if v := getenv("TTT_LOG_LEVEL"); v != "" {
		if err := c.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("TTT_LOG_LEVEL: %w", err)
		}
	}
	return nil
}
