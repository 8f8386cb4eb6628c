// Package cli provides the initialization shared by the painel commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"painel/internal/config"
	applog "painel/internal/log"
	"painel/internal/storage"
)

// SetupLogger builds the process logger from LOG_LEVEL and LOG_FORMAT and
// sets it as the slog default.
func SetupLogger(cfg *config.Config) *applog.Logger {
	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Format:    applog.ParseFormat(cfg.LogFormat),
		Component: applog.ComponentApp,
		Writer:    os.Stderr,
	})
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// A missing file is not an error.
func LoadEnvFile(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// LoadAndValidateConfig loads configuration and validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// InitSQLite opens and migrates the SQLite database at dbPath.
func InitSQLite(logger *applog.Logger, dbPath string) (*storage.SQLiteRepository, error) {
	repo, err := storage.NewSQLiteRepository(dbPath, logger)
	if err != nil {
		return nil, fmt.Errorf("initialize sqlite repository at %s: %w", dbPath, err)
	}
	return repo, nil
}

// Service is one long-running part of a command. Run blocks until ctx is
// done or it fails; Stop, when set, is given the shutdown deadline.
type Service struct {
	Name string
	Run  func(ctx context.Context) error
	Stop func(ctx context.Context) error
}

// RunUntilSignal runs every service until SIGINT/SIGTERM or the first
// failure, then stops them all within timeout.
func RunUntilSignal(ctx context.Context, logger *applog.Logger, timeout time.Duration, services ...Service) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	for _, svc := range services {
		g.Go(func() error {
			logger.Info("Service starting", "service", svc.Name)
			if err := svc.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("%s: %w", svc.Name, err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down", applog.FieldOperation, applog.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()

		var errs []error
		for _, svc := range services {
			if svc.Stop == nil {
				continue
			}
			if err := svc.Stop(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("stop %s: %w", svc.Name, err))
			}
		}
		return errors.Join(errs...)
	})

	err := g.Wait()
	if err == nil {
		logger.Info("Shutdown complete")
	}
	return err
}
