package app

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/sweatmarket-server/internal/auth"
	"github.com/vovakirdan/sweatmarket-server/internal/config"
	"github.com/vovakirdan/sweatmarket-server/internal/core"
	"github.com/vovakirdan/sweatmarket-server/internal/media"
	"github.com/vovakirdan/sweatmarket-server/internal/service/chat"
	"github.com/vovakirdan/sweatmarket-server/internal/service/posts"
	"github.com/vovakirdan/sweatmarket-server/internal/service/profile"
	"github.com/vovakirdan/sweatmarket-server/internal/service/wallet"
	"github.com/vovakirdan/sweatmarket-server/internal/store"
	"github.com/vovakirdan/sweatmarket-server/internal/store/sqlite"
	transporthttp "github.com/vovakirdan/sweatmarket-server/internal/transport/http"
)

// App wires together storage, the chat core and the HTTP transport.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	registry        *core.Registry
	store           store.Store
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	logger.Info().Str("db_path", cfg.DatabasePath).Msg("database initialized")

	jwtConfig := &auth.JWTConfig{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      cfg.TokenTTL,
	}

	storage := media.New(cfg.UploadDir, cfg.PublicPrefix, cfg.MaxUploadBytes, logger)
	registry := core.NewRegistry(logger, cfg.WSWriteTimeout)
	publisher := core.NewPublisher(st, registry, logger)
	directory := chat.NewDirectory(st, st, logger)

	server := transporthttp.NewServer(transporthttp.Dependencies{
		Config:    *cfg,
		Auth:      auth.NewService(st, jwtConfig, logger),
		Profiles:  profile.NewService(st, storage, logger),
		Posts:     posts.NewService(st, storage, logger),
		Chat:      chat.NewService(st, directory, publisher, storage, logger),
		Wallet:    wallet.NewService(st, logger),
		Registry:  registry,
		Publisher: publisher,
		Media:     storage,
		Logger:    logger,
	})

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		registry:        registry,
		store:           st,
		log:             logger,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		a.log.Info().Str("addr", a.server.Addr).Msg("http server listening")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		// hijacked websocket connections are not tracked by Shutdown
		a.registry.CloseAll("server shutting down")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup closes database and other resources.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
