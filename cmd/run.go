package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runURL string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Enrich a single product listing URL",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("run"); err != nil {
			return err
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		outcome := env.Orchestrator.Run(ctx, runURL)

		zap.L().Info("enrichment complete",
			zap.String("url", runURL),
			zap.Bool("success", outcome.Success),
			zap.Int("errors", len(outcome.Errors)),
		)

		// Print outcome JSON to stdout
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(outcome); err != nil {
			return err
		}

		if !outcome.Success {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runURL, "url", "", "product listing URL (required)")
	_ = runCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(runCmd)
}
