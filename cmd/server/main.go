package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yourname/sleepreport/internal"
	"github.com/yourname/sleepreport/internal/api"
	"github.com/yourname/sleepreport/internal/app"
	"github.com/yourname/sleepreport/internal/config"
)

const demoUsers = `[{"id":"u1","login":"demo","password":"demo","token":"MOCK-TOKEN","name":"Demo User","role":"user"},
 {"id":"u2","login":"admin","password":"admin","token":"MOCK-ADMIN-TOKEN","name":"Admin","role":"admin"}]`

func main() {
	cfg := config.Load()

	logger, err := internal.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatalf("server: %v", err)
	}
}

func run(cfg *config.Config, logger internal.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Env == "development" && cfg.DBType == "file" {
		if err := seedDemoUsers(cfg.FileUsers); err != nil {
			return err
		}
	}

	a, err := app.New(ctx, cfg, logger, app.Options{})
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Errorf("closing: %v", err)
		}
	}()

	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(a, a.AuthProvider()),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("server listening on %s (storage=%s auth=%s)", cfg.HTTPAddr, cfg.DBType, cfg.AuthMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// seedDemoUsers writes a demo user and a demo admin when no users file exists yet.
func seedDemoUsers(path string) error {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	return os.WriteFile(path, []byte(demoUsers), 0644)
}
