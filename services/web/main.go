// Веб-клиент: страница входа/регистрации и список миссий поверх API бэкенда.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sololeveling/internal/apiclient"
	"github.com/sololeveling/internal/config"
	"github.com/sololeveling/internal/dashboard"
	"github.com/sololeveling/internal/handler"
	"github.com/sololeveling/internal/logger"
	"github.com/sololeveling/internal/startup"
)

func main() {
	logger.SetPrefix("web")
	dev := flag.Bool("dev", false, "keep browser sessions in memory (no Redis/Postgres required)")
	embeddedDB := flag.Bool("embedded-db", false, "start embedded PostgreSQL and keep browser sessions there")
	flag.Parse()

	if err := run(*dev, *embeddedDB); err != nil {
		// Все defer в run уже отработали (включая остановку embedded postgres).
		config.Exitf("web: %v", err)
	}
	logger.Info("web client stopped")
}

func run(dev, embeddedDB bool) error {
	cfg := config.Load()
	logger.SetLevel(cfg.LogLevel)
	logger.Infof("starting web client, api=%s", cfg.APIBaseURL)

	if embeddedDB {
		pg, err := startup.StartEmbeddedPostgres(cfg, "", 5433)
		if err != nil {
			return fmt.Errorf("embedded postgres: %w", err)
		}
		defer func() {
			logger.Info("stopping embedded postgres...")
			if err := pg.Stop(); err != nil {
				logger.Errorf("embedded postgres stop: %v", err)
			}
		}()
	}
	if dev {
		logger.Info("web -dev: browser sessions in memory (лишатся при перезапуске)")
		cfg.Storage.Backend = "memory"
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := startup.OpenStore(ctx, cfg.Storage, 60*time.Second, "web: ")
	if err != nil {
		return fmt.Errorf("open session storage: %w", err)
	}
	defer store.Close()
	logger.Infof("session storage: %s", cfg.Storage.Backend)

	httpClient := &http.Client{}
	reg := handler.NewRegistry(store, func(tokens apiclient.TokenSource) dashboard.API {
		return apiclient.New(cfg.APIBaseURL, tokens, apiclient.WithHTTPClient(httpClient), apiclient.WithUserAgent("solo-web"))
	}, handler.DefaultMaxBrowsers)

	srv := &http.Server{
		Addr:         cfg.WebAddr,
		Handler:      handler.NewRouter(cfg, reg),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("web client listening on %s", cfg.WebAddr)
		return srv.ListenAndServe()
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}
