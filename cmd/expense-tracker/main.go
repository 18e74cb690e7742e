package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"expenses/internal/chart"
	"expenses/internal/cli"
	"expenses/internal/config"
	"expenses/internal/console"
	"expenses/internal/log"
	"expenses/internal/services"
	"expenses/internal/storage"
)

func main() {
	os.Exit(run(os.Stdin, os.Stdout, os.Stderr))
}

func run(stdin io.Reader, stdout, stderr io.Writer) int {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return cli.ExitFailure
	}

	logger, closeLog, err := cli.SetupLogger(cfg)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return cli.ExitFailure
	}
	defer closeLog()

	ctx, cancel := context.WithCancel(log.WithContext(context.Background(), logger))
	defer cancel()

	logger.InfoContext(ctx, "Starting expense tracker",
		log.FieldOperation, log.OpStartup,
		log.FieldPath, cfg.LedgerFile,
		log.FieldFormat, cfg.ChartFormat)

	svc, err := newService(cfg, stdout)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to build chart renderer",
			log.FieldErrorType, log.ErrorTypeConfiguration,
			log.FieldError, err)
		fmt.Fprintln(stderr, err)
		return cli.ExitFailure
	}

	status, err := svc.Load(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrCorruptLedger) {
			fmt.Fprintf(stderr, "Cannot read %s, the file was left untouched: %v\n", cfg.LedgerFile, err)
		} else {
			fmt.Fprintln(stderr, err)
		}
		return cli.ExitFailure
	}
	logger.InfoContext(ctx, "Ledger ready",
		log.FieldOperation, log.OpLoad,
		log.FieldStatus, status.String())
	fmt.Fprintln(stdout, console.LoadMessage(status))

	session := console.NewSession(svc, stdin, stdout, sessionOptions(cfg))
	defer session.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return session.Run(gctx)
	})
	g.Go(func() error {
		return cli.WaitForSignal(gctx, logger)
	})

	err = g.Wait()
	if err != nil {
		fmt.Fprintln(stdout)
	}
	logger.InfoContext(ctx, "Expense tracker stopped",
		log.FieldOperation, log.OpShutdown,
		log.FieldSuccess, err == nil)
	return cli.ExitCode(err)
}

func newService(cfg *config.Config, stdout io.Writer) (*services.ExpenseService, error) {
	renderer, err := chart.New(chart.Options{
		Format: cfg.ChartFormat,
		Output: cfg.ChartOutput,
		Unit:   cfg.CurrencyUnit,
		Width:  cfg.ChartWidth,
	}, stdout)
	if err != nil {
		return nil, err
	}
	return services.NewExpenseService(storage.NewFileStore(cfg.LedgerFile), renderer), nil
}

func sessionOptions(cfg *config.Config) console.Options {
	opts := console.Options{Unit: cfg.CurrencyUnit}
	if cfg.ChartFormat != chart.FormatText {
		opts.ChartOutput = cfg.ChartOutput
	}
	return opts
}
