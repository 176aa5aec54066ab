package main

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Blog struct {
	store         Store
	templates     map[string]*template.Template
	logger        zerolog.Logger
	secureCookies bool
}

func NewBlog(store Store, logger zerolog.Logger, secureCookies bool) *Blog {
	return &Blog{
		store:         store,
		templates:     loadTemplates(),
		logger:        logger,
		secureCookies: secureCookies,
	}
}

func openStore(cfg Config) (Store, error) {
	if cfg.DBDriver == "postgres" {
		store, err := newGormStore(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return store, nil
	}

	store, err := newSQLiteStore(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	return store, nil
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("loading .env file")
	}

	cfg, err := loadConfig(environ())
	if err != nil {
		log.Fatal().Err(err).Msg("loading configuration")
	}
	setupLogger(cfg)

	ctx := context.Background()

	store, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("opening database")
	}
	defer store.Close()

	if err = store.Init(ctx); err != nil {
		log.Fatal().Err(err).Msg("initializing database")
	}

	if cfg.AdminPass == "" {
		log.Warn().Msg("ADMIN_PASS not set, skipping superuser setup")
	} else {
		created, err := ensureSuperuser(ctx, store, cfg.AdminUser, cfg.AdminPass)
		if err != nil {
			log.Fatal().Err(err).Msg("creating superuser")
		}
		if created {
			log.Info().Str("username", cfg.AdminUser).Msg("superuser created")
		}
	}

	if err = store.CleanupExpiredSessions(ctx); err != nil {
		log.Error().Err(err).Msg("cleaning up expired sessions")
	}

	cleanupCtx, stopCleanup := context.WithCancel(ctx)
	defer stopCleanup()
	go cleanupSessions(cleanupCtx, store, time.Hour)

	blog := NewBlog(store, log.With().Str("component", "blog").Logger(), cfg.SecureCookies)

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      blog.routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errChannel := make(chan error, 2)

	go func() {
		log.Info().Str("addr", cfg.Addr).Str("driver", cfg.DBDriver).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChannel <- err
		}
	}()

	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Err(fatalErr).Msg("closing server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutting down server")
	}
}

func cleanupSessions(ctx context.Context, store Store, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := store.CleanupExpiredSessions(ctx); err != nil {
				log.Error().Err(err).Msg("cleaning up expired sessions")
			}
		}
	}
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
