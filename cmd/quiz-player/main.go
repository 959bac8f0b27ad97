package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"quiz-player/internal/config"
	"quiz-player/internal/journal"
	"quiz-player/internal/startmark"
	"quiz-player/internal/userclient"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, "error loading .env:", err)
		os.Exit(1)
	}
	cfg := config.LoadPlayer()

	server := flag.String("server", cfg.ServerURL, "quiz service API base URL")
	token := flag.String("token", cfg.Token, "bearer token for the quiz service")
	timeout := flag.Duration("timeout", cfg.HTTPTimeout, "HTTP timeout")
	journalPath := flag.String("journal", cfg.JournalPath, "SQLite history file (empty disables history)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runCfg := userclient.Config{
		ServerURL:    *server,
		Token:        *token,
		HTTPTimeout:  *timeout,
		TickInterval: cfg.TickInterval,
		Logger:       logger,
	}

	if *journalPath != "" {
		store, err := journal.NewSQLiteStore(*journalPath)
		if err != nil {
			logger.Warn("history disabled", "path", *journalPath, "error", err)
		} else {
			defer store.Close()
			runCfg.Journal = store
		}
	}

	if cfg.Redis.Addr != "" {
		marks, err := startmark.NewRedisMarks(ctx, startmark.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.MarkTTL,
		})
		if err != nil {
			logger.Warn("falling back to in-memory start marks", "addr", cfg.Redis.Addr, "error", err)
		} else {
			defer marks.Close()
			runCfg.Marks = marks
		}
	}

	if err := userclient.Run(ctx, os.Stdin, os.Stdout, runCfg); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
