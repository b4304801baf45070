package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/terrapulse/vitals-cli/internal/model"
)

var scanSite string

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run a full-body scan: diagnose every organ at once",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		results, err := env.Orchestrator.ScanAll(ctx, scanSite)
		if err != nil {
			return err
		}

		// Fixed organ order for stable output.
		ordered := make([]model.DiagnosisResult, 0, len(results))
		for _, organ := range model.AllOrgans() {
			if r, ok := results[organ]; ok {
				ordered = append(ordered, r)
			}
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(ordered)
	},
}

func init() {
	scanCmd.Flags().StringVar(&scanSite, "site", "", "named region to examine (default per organ)")
	rootCmd.AddCommand(scanCmd)
}
