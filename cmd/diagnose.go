package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/terrapulse/vitals-cli/internal/model"
)

var diagnoseSite string

var diagnoseCmd = &cobra.Command{
	Use:       "diagnose <organ>",
	Short:     "Diagnose one of Earth's organs (lungs, heart, skin)",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(model.OrganLungs), string(model.OrganHeart), string(model.OrganSkin)},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := env.Orchestrator.Diagnose(ctx, args[0], diagnoseSite)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	diagnoseCmd.Flags().StringVar(&diagnoseSite, "site", "", "named region to examine (default per organ)")
	rootCmd.AddCommand(diagnoseCmd)
}
