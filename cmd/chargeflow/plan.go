package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/chargeflow/internal/batch"
	"github.com/gyeh/chargeflow/internal/exitcode"
	"github.com/gyeh/chargeflow/internal/logging"
	"github.com/gyeh/chargeflow/internal/model"
	"github.com/gyeh/chargeflow/internal/normalize"
	"github.com/gyeh/chargeflow/internal/sheet"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Dry run: column mapping and row counts, no API calls",
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().StringVar(&cfg.FilePath, "file", "", "Charge sheet: .csv, .xlsx or .parquet (required)")
	_ = planCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
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
		log.Error().Err(err).Msg("sheet validation failed")
		os.Exit(exitcode.ValidationError)
	}
	p := batch.MakePlan(sh.Rows)

	fmt.Println("=== chargeflow plan ===")
	fmt.Printf("File:       %s\n", cfg.FilePath)
	fmt.Printf("SHA-256:    %s\n", sha)
	fmt.Printf("Rows:       %d\n", p.Rows)
	fmt.Println()
	fmt.Println("Column mapping:")
	for _, fd := range model.AllFields {
		h := sh.Columns.Header(fd.Field)
		switch {
		case fd.Output:
			fmt.Printf("  %-22s → %s (output)\n", fd.Field, h)
		case h == string(fd.Field) && !hasHeader(sh.Headers, h):
			fmt.Printf("  %-22s → (absent)\n", fd.Field)
		default:
			fmt.Printf("  %-22s → %s\n", fd.Field, h)
		}
	}
	fmt.Println()
	fmt.Printf("Rows missing Patient ID or Practice: %d\n", p.MissingKeys)
	fmt.Printf("Rows with a payment to post:         %d\n", p.PaymentRows)
	fmt.Printf("Encounter groups (at most):          %d\n", len(p.Groups))
	fmt.Println("Schema validation: OK")
	return nil
}

func hasHeader(headers []string, h string) bool {
	for _, x := range headers {
		if x == h {
			return true
		}
	}
	return false
}
