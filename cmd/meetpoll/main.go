package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/example/meeting-poll/internal/application"
	"github.com/example/meeting-poll/internal/config"
	httptransport "github.com/example/meeting-poll/internal/http"
	"github.com/example/meeting-poll/internal/persistence/sqlite"
)

// shortIDAlphabet excludes look-alike characters so ids survive being read
// aloud or copied from a chat message.
const (
	shortIDAlphabet = "abcdefghjkmnpqrstuvwxyz23456789"
	shortIDLength   = 5
)

func main() {
	// Local development convenience; a missing .env is not an error.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	pool, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close database", "error", cerr)
		}
	}()

	if err := pool.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply schema", "error", err)
		os.Exit(1)
	}

	sessionRepo := sqlite.NewSessionRepository(pool)

	service := application.NewSchedulingServiceWithLogger(
		sessionRepo,
		sessionRepo,
		application.BcryptPasswords{},
		randomShortID,
		uuid.NewString,
		time.Now,
		logger,
	)
	service.SetDefaultSessionTTL(cfg.DefaultSessionTTL)

	sessionHandler := httptransport.NewSessionHandler(service, cfg.BaseURL, logger)
	voteHandler := httptransport.NewVoteHandler(service, logger)
	adminHandler := httptransport.NewAdminHandler(service, pool, logger)

	corsOptions := cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
	}
	if len(cfg.AllowedOrigins) > 0 {
		corsOptions.AllowedOrigins = cfg.AllowedOrigins
	} else {
		corsOptions.AllowedOrigins = []string{"*"}
	}

	limiter := httptransport.NewRateLimiter(cfg.RateLimitRPS, int(cfg.RateLimitRPS)*2)

	handler := httptransport.NewRouter(httptransport.RouterConfig{
		Sessions: sessionHandler,
		Votes:    voteHandler,
		Admin:    adminHandler,
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.SecurityHeaders,
			cors.New(corsOptions).Handler,
			limiter.Limit,
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("meeting poll API listening", "addr", server.Addr, "base_url", cfg.BaseURL)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// randomShortID produces the short shareable session identifier.
func randomShortID() string {
	buf := make([]byte, shortIDLength)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return fmt.Sprintf("f%d", time.Now().UnixNano()%100000)
	}
	id := make([]byte, shortIDLength)
	for i, b := range buf {
		id[i] = shortIDAlphabet[int(b)%len(shortIDAlphabet)]
	}
	return string(id)
}
