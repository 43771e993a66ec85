package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/chargeflow/internal/config"
	"github.com/gyeh/chargeflow/internal/exitcode"
)

// cfg starts from the environment; flags registered in init override it.
var cfg = loadEnv()

func loadEnv() config.Config {
	c, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(exitcode.UsageError)
	}
	return c
}

var rootCmd = &cobra.Command{
	Use:   "chargeflow",
	Short: "Batch eligibility, payment and encounter automation for Tebra",
	Long: "Reads a charge sheet, checks patient insurance eligibility, posts patient payments " +
		"and creates encounters through the Tebra SOAP API, then writes a per-row status report.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfg.ConfigPath == "" {
			return nil
		}
		return cfg.LoadFromFile(cfg.ConfigPath)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.DSN, "dsn", cfg.DSN, "Postgres connection string for the run ledger (or set CHARGEFLOW_DSN)")
	pf.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: text or json")
	pf.StringVar(&cfg.ConfigPath, "config", "", "YAML file with provider matching rules")
}
