// Package cli provides common CLI initialization utilities shared by
// cmd/upreport and cmd/report-worker.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"upreport/internal/backend"
	"upreport/internal/config"
	"upreport/internal/log"
	"upreport/internal/services"

	"github.com/joho/godotenv"
)

// LoadEnvFile loads the .env file for local development.
// A missing file is ignored; other errors are returned.
func LoadEnvFile(paths ...string) error {
	err := godotenv.Load(paths...)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// SetupLogger builds the logger described by LOG_LEVEL and LOG_FORMAT and
// installs it as the default logger.
func SetupLogger(cfg *config.Config, component string) *log.Logger {
	lc := log.DefaultConfig()
	lc.Component = component
	lc.Format = cfg.LogFormat
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		lc.Level = level
	}
	logger := log.New(lc)
	log.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration from the environment and
// validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// ServiceConfig maps the application config to report settings.
func ServiceConfig(cfg *config.Config) services.Config {
	return services.Config{
		Currency:   cfg.ReportCurrency,
		Location:   cfg.Location(),
		Lower:      cfg.VarianceLower,
		Upper:      cfg.VarianceUpper,
		BudgetFile: cfg.BudgetFile,
	}
}

// NewReportService wires the configured source, writer and run history into
// a report service. The returned cleanup releases them.
func NewReportService(ctx context.Context, cfg *config.Config, logger *log.Logger, opts ...services.Option) (*services.ReportService, func() error, error) {
	bc, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	factory := backend.NewFactory(logger)

	src, err := factory.CreateSource(ctx, bc)
	if err != nil {
		return nil, nil, err
	}
	writer, err := factory.CreateWriter(ctx, bc)
	if err != nil {
		if src.Cleanup != nil {
			src.Cleanup()
		}
		return nil, nil, err
	}

	cleanup := func() error {
		var errs []error
		for _, c := range []backend.CleanupFunc{writer.Cleanup, src.Cleanup} {
			if c != nil {
				errs = append(errs, c())
			}
		}
		return errors.Join(errs...)
	}

	opts = append([]services.Option{services.WithLogger(logger.WithComponent(log.ComponentReport))}, opts...)
	if src.Runs != nil {
		opts = append(opts, services.WithRunStore(src.Runs))
	}
	return services.NewReportService(src.Opener, writer.Writer, ServiceConfig(cfg), opts...), cleanup, nil
}
