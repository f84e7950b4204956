package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"adnote/api/internal/app"
	"adnote/api/internal/logging"
	"adnote/api/internal/session"
	"adnote/api/internal/store"
)

var skipMigrations bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "Do not apply pending migrations at startup")
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(ctx, cfg.DatabaseURL, poolOptions())
	if err != nil {
		return err
	}
	defer db.Close()

	if !skipMigrations {
		if err := store.ApplyMigrations(ctx, db); err != nil {
			return err
		}
	}

	var revocations *session.RedisRevocations
	if strings.TrimSpace(cfg.RedisURL) != "" {
		revocations, err = session.NewRedisRevocations(cfg.RedisURL)
		if err != nil {
			return err
		}
		defer revocations.Close()
		logger.Info("session revocation enabled", slog.String("backend", "redis"))
	} else {
		logger.Warn("REDIS_URL not set; logout will not revoke tokens")
	}

	resolverCfg := session.ResolverConfig{
		Secret:     []byte(cfg.JWTSecret),
		Audience:   cfg.JWTAudience,
		Issuer:     cfg.JWTIssuer,
		CookieName: cfg.SessionCookie,
	}
	if revocations != nil {
		resolverCfg.Revocations = revocations
	}

	service := app.New(cfg, store.NewPostgresStore(db), session.NewResolver(resolverCfg), revocations, logger)
	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("notes API listening", slog.String("addr", cfg.Addr), slog.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", slog.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", logging.Err(err))
		return err
	}
	return nil
}
