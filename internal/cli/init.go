// Package cli provides process setup utilities for the expense tracker
// binary: environment, configuration, logging and signal handling.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"expenses/internal/config"
	"expenses/internal/log"
)

// ErrInterrupted is returned when the process receives SIGINT or SIGTERM.
var ErrInterrupted = errors.New("interrupted")

// Process exit codes.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitInterrupted = 130
)

// LoadEnvFile loads the .env file from the working directory.
// A missing file is not an error.
func LoadEnvFile() {
	_ = godotenv.Load()
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

// SetupLogger builds the application logger from cfg and sets it as the
// default. Records go to cfg.LogFile when set, otherwise to stderr. Every
// record carries the session id of this run. The returned func closes the
// log file.
func SetupLogger(cfg *config.Config) (*log.Logger, func(), error) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}

	var out io.Writer = os.Stderr
	cleanup := func() {}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
		cleanup = func() { _ = f.Close() }
	}

	lc := log.DefaultConfig()
	lc.Level = level
	lc.Output = out
	logger := log.New(lc).With(log.FieldSessionID, uuid.NewString())
	log.SetDefault(logger)
	return logger, cleanup, nil
}

// WaitForSignal blocks until SIGINT or SIGTERM arrives, returning
// ErrInterrupted, or until ctx is done, returning nil.
func WaitForSignal(ctx context.Context, logger *log.Logger) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	return waitFor(ctx, logger.WithComponent(log.ComponentCLI), sigChan)
}

func waitFor(ctx context.Context, logger *log.Logger, sigChan <-chan os.Signal) error {
	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received",
			"signal", sig.String(),
			log.FieldOperation, log.OpShutdown)
		return ErrInterrupted
	case <-ctx.Done():
		return nil
	}
}

// ExitCode maps the error that ended the run to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrInterrupted), errors.Is(err, context.Canceled):
		return ExitInterrupted
	default:
		return ExitFailure
	}
}
