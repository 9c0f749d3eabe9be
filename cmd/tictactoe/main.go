// Command tictactoe serves the game over HTTP or plays it in the terminal.
//
//	tictactoe serve [-addr :8080] [-mode minimax] [-ai-delay 500ms]
//	tictactoe play  [-mode minimax] [-seed 1]
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/muesli/termenv"

	"github.com/jaminalder/tic-tac-toe-ai/internal/app"
	"github.com/jaminalder/tic-tac-toe-ai/internal/cli"
	"github.com/jaminalder/tic-tac-toe-ai/internal/config"
	"github.com/jaminalder/tic-tac-toe-ai/internal/web"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cmd := "serve"
	if len(args) > 0 && (args[0] == "serve" || args[0] == "play") {
		cmd, args = args[0], args[1:]
	}
	cfg, err := config.Load(cmd, args, os.Getenv, os.Stderr)
	if err != nil {
		return err
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	if cmd == "play" {
		svc := app.NewService(app.WithRand(rng), app.WithLogger(log))
		s, err := cli.NewSession(svc, termenv.NewOutput(os.Stdout), cfg.Mode, log)
		if err != nil {
			return err
		}
		if err := s.Run(ctx, os.Stdin); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}
	return serve(ctx, cfg, rng, log)
}

func serve(ctx context.Context, cfg config.Config, rng *rand.Rand, log *slog.Logger) error {
	svc := app.NewService(app.WithRand(rng), app.WithAIDelay(cfg.AIDelay), app.WithLogger(log))
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           web.NewServer(svc, web.WithDefaultMode(cfg.Mode), web.WithLogger(log)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.Addr, "mode", cfg.Mode, "ai_delay", cfg.AIDelay)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
