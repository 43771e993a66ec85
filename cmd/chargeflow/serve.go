package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gyeh/chargeflow/internal/audit"
	"github.com/gyeh/chargeflow/internal/db"
	"github.com/gyeh/chargeflow/internal/exitcode"
	"github.com/gyeh/chargeflow/internal/httpapi"
	"github.com/gyeh/chargeflow/internal/logging"
	"github.com/gyeh/chargeflow/internal/tebra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the upload and download API",
	RunE:  runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&cfg.Port, "port", cfg.Port, "Listen port (or set CHARGEFLOW_PORT)")
	f.StringVar(&cfg.OutputDir, "output-dir", cfg.OutputDir, "Directory for processed workbooks")
	f.BoolVar(&cfg.Record, "record", false, "Record every run in the Postgres ledger")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := httpapi.Options{OutputDir: cfg.OutputDir, Match: cfg.MatchConfig()}
	if cfg.Record {
		if cfg.DSN == "" {
			log.Error().Msg("--record needs --dsn or CHARGEFLOW_DSN")
			os.Exit(exitcode.UsageError)
		}
		pool, err := db.NewPool(ctx, cfg.DSN)
		if err != nil {
			log.Error().Err(err).Msg("database connection failed")
			os.Exit(exitcode.DBConnError)
		}
		defer pool.Close()
		opts.Recorder = audit.New(pool, log)
	}

	factory := func(creds tebra.Credentials) (tebra.Gateway, error) {
		return tebra.NewClient(cfg.Endpoint, creds, cfg.Timeout())
	}
	srv := httpapi.New(opts, factory, log)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(":" + cfg.Port) }()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("server failed")
			os.Exit(exitcode.RunError)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("shutdown")
		}
		log.Info().Msg("server stopped")
	}
	return nil
}
