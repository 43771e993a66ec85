package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gyeh/chargeflow/internal/audit"
	"github.com/gyeh/chargeflow/internal/batch"
	"github.com/gyeh/chargeflow/internal/db"
	"github.com/gyeh/chargeflow/internal/exitcode"
	"github.com/gyeh/chargeflow/internal/logging"
	"github.com/gyeh/chargeflow/internal/model"
	"github.com/gyeh/chargeflow/internal/normalize"
	"github.com/gyeh/chargeflow/internal/progress"
	"github.com/gyeh/chargeflow/internal/report"
	"github.com/gyeh/chargeflow/internal/sheet"
	"github.com/gyeh/chargeflow/internal/tebra"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Run all three phases over a charge sheet",
	RunE:  runProcess,
}

func init() {
	f := processCmd.Flags()
	f.StringVar(&cfg.FilePath, "file", "", "Charge sheet: .csv, .xlsx or .parquet (required)")
	f.StringVar(&cfg.OutPath, "out", "", "Processed sheet path (default <output-dir>/<name>_processed<ext>)")
	f.StringVar(&cfg.SummaryPath, "summary", "", "Write the run summary as JSON; a .gz suffix compresses it")
	f.StringVar(&cfg.S3Bucket, "s3-bucket", cfg.S3Bucket, "Upload the processed sheet and summary to this bucket")
	f.StringVar(&cfg.S3Prefix, "s3-prefix", cfg.S3Prefix, "Key prefix for uploads")
	f.StringVar(&cfg.Progress, "progress", cfg.Progress, "Progress display: auto, bar, log or none")
	f.BoolVar(&cfg.Record, "record", false, "Record the run in the Postgres ledger")
	_ = processCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(processCmd)
}

func defaultOutPath(input, dir string) string {
	base := filepath.Base(input)
	ext := filepath.Ext(base)
	return filepath.Join(dir, strings.TrimSuffix(base, ext)+"_processed"+ext)
}

func runProcess(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cfg.ValidateForRun(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	sha, err := normalize.FileHash(cfg.FilePath)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash file")
		os.Exit(exitcode.ValidationError)
	}

	sh, err := sheet.Read(cfg.FilePath)
	if err != nil {
		var me *sheet.MappingError
		if errors.As(err, &me) {
			log.Error().Err(err).Interface("missing", me.Missing).Msg("critical columns missing")
		} else {
			log.Error().Err(err).Msg("failed to read sheet")
		}
		os.Exit(exitcode.ValidationError)
	}
	log.Info().Str("file", cfg.FilePath).Int("rows", len(sh.Rows)).Msg("sheet loaded")

	gw, err := tebra.NewClient(cfg.Endpoint, cfg.Credentials(), cfg.Timeout())
	if err != nil {
		log.Error().Err(err).Msg("gateway setup failed")
		os.Exit(exitcode.GatewayError)
	}

	runID := uuid.New()
	var ledger *audit.Ledger
	if cfg.Record {
		pool, err := db.NewPool(ctx, cfg.DSN)
		if err != nil {
			log.Error().Err(err).Msg("database connection failed")
			os.Exit(exitcode.DBConnError)
		}
		defer pool.Close()
		ledger = audit.New(pool, log)
		warnEarlierRuns(ctx, ledger, sha, log)
		if err := ledger.Start(ctx, runID, cfg.FilePath, sha, time.Now().UTC()); err != nil {
			log.Error().Err(err).Msg("failed to register run")
			os.Exit(exitcode.DBConnError)
		}
	}

	pm := progress.New(progress.Mode(cfg.Progress), log)
	summary, err := batch.Run(ctx, sh.Rows, gw, log, batch.Options{
		RunID:       runID.String(),
		InputFile:   cfg.FilePath,
		InputSHA256: sha,
		Match:       cfg.MatchConfig(),
		Progress:    pm,
	})
	pm.Wait()
	if err != nil {
		if ledger != nil {
			if ferr := ledger.Fail(context.Background(), runID); ferr != nil {
				log.Warn().Err(ferr).Msg("failed to mark run failed")
			}
		}
		var pe *batch.PipelineError
		if errors.As(err, &pe) {
			log.Error().Err(pe.Err).Str("phase", pe.Phase).Msg("run aborted")
		} else {
			log.Error().Err(err).Msg("run aborted")
		}
		os.Exit(exitcode.RunError)
	}

	// An interrupt ends the run early, not its outputs.
	outCtx := context.WithoutCancel(ctx)
	if err := writeOutputs(outCtx, sh, summary, log); err != nil {
		log.Error().Err(err).Msg("failed to write outputs")
		os.Exit(exitcode.OutputError)
	}

	if ledger != nil {
		if err := ledger.Finish(outCtx, summary, sh.Rows); err != nil {
			log.Error().Err(err).Msg("failed to record run")
			os.Exit(exitcode.DBConnError)
		}
	}

	report.Print(os.Stdout, summary)
	if summary.FailedRows > 0 {
		os.Exit(exitcode.PartialSuccess)
	}
	return nil
}

func warnEarlierRuns(ctx context.Context, ledger *audit.Ledger, sha string, log zerolog.Logger) {
	runs, err := ledger.RunsForFile(ctx, sha)
	if err != nil {
		log.Warn().Err(err).Msg("could not check earlier runs")
		return
	}
	for _, r := range runs {
		log.Warn().
			Str("earlier_run", r.RunID.String()).
			Str("status", r.Status).
			Time("started_at", r.StartedAt).
			Msg("this file was processed before; payments may be posted twice")
	}
}

func writeOutputs(ctx context.Context, sh *sheet.Sheet, summary *model.RunSummary, log zerolog.Logger) error {
	out := cfg.OutPath
	if out == "" {
		if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
			return err
		}
		out = defaultOutPath(cfg.FilePath, cfg.OutputDir)
	}
	if err := sh.Write(out); err != nil {
		return err
	}
	log.Info().Str("path", out).Msg("processed sheet written")

	uploads := []string{out}
	if cfg.SummaryPath != "" {
		if err := report.WriteFile(cfg.SummaryPath, summary); err != nil {
			return err
		}
		uploads = append(uploads, cfg.SummaryPath)
		log.Info().Str("path", cfg.SummaryPath).Msg("summary written")
	}

	if cfg.S3Bucket == "" {
		return nil
	}
	up, err := report.NewUploader(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3Prefix)
	if err != nil {
		return err
	}
	for _, file := range uploads {
		key, err := up.UploadFile(ctx, summary.RunID, file)
		if err != nil {
			return err
		}
		log.Info().Str("bucket", cfg.S3Bucket).Str("key", key).Msg("uploaded")
	}
	return nil
}
