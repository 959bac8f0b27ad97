package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"quiz-player/internal/config"
	"quiz-player/internal/devserver"
	"quiz-player/internal/opentdb"
)

const (
	triviaQuizID      = "trivia"
	triviaTimeLimit   = 300
	triviaMaxAttempts = 3
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("error loading .env", "error", err)
		os.Exit(1)
	}
	cfg := config.LoadDevServer()

	addr := flag.String("addr", cfg.Addr, "HTTP listen address")
	catalog := flag.String("catalog", cfg.CatalogPath, "JSON quiz catalog to serve")
	seed := flag.Int("seed-opentdb", cfg.SeedOpenTDB, "number of Open Trivia DB questions to seed (0 disables)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := devserver.NewStore()
	if err := loadCatalog(store, *catalog, logger); err != nil {
		logger.Error("failed to load catalog", "path", *catalog, "error", err)
		os.Exit(1)
	}
	if *seed > 0 {
		if err := seedTrivia(ctx, store, cfg.OpenTDB, *seed); err != nil {
			logger.Warn("trivia seed skipped", "error", err)
		} else {
			logger.Info("seeded trivia quiz", "id", triviaQuizID)
		}
	}

	server := &http.Server{
		Addr:              *addr,
		Handler:           devserver.NewRouter(store, cfg.JWTSecret, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("quiz-dev-server listening", "addr", *addr, "quizzes", store.QuizIDs())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func loadCatalog(store *devserver.Store, path string, logger *slog.Logger) error {
	if path == "" {
		return nil
	}
	quizzes, err := devserver.LoadCatalogFile(path)
	if err != nil {
		return err
	}
	for _, q := range quizzes {
		if err := store.PutQuiz(q); err != nil {
			logger.Warn("skipping quiz", "id", q.ID, "error", err)
		}
	}
	return nil
}

func seedTrivia(ctx context.Context, store *devserver.Store, cfg config.OpenTDBConfig, amount int) error {
	fetchCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client := opentdb.NewClient(&http.Client{Timeout: 10 * time.Second}, cfg.URL)
	raw, err := client.Fetch(fetchCtx, opentdb.Query{
		Amount:     amount,
		Category:   cfg.Category,
		Difficulty: cfg.Difficulty,
	})
	if err != nil {
		return err
	}
	return store.PutQuiz(devserver.TriviaQuiz(triviaQuizID, raw, triviaTimeLimit, triviaMaxAttempts))
}
