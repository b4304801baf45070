package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/terrapulse/vitals-cli/internal/history"
	"github.com/terrapulse/vitals-cli/internal/model"
)

var (
	historyOrgan string
	historySite  string
	historyLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past diagnoses, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if cfg.History.Path == "" {
			return eris.New("history persistence is disabled (VITALS_HISTORY_PATH is empty)")
		}

		st, err := history.New(cfg.History.Path)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return err
		}

		filter := history.Filter{Locator: historySite, Limit: historyLimit}
		if historyOrgan != "" {
			organ, err := model.ParseOrgan(historyOrgan)
			if err != nil {
				return err
			}
			filter.Organ = organ
		}

		entries, err := st.Recent(ctx, filter)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyOrgan, "organ", "", "filter by organ (lungs, heart, skin)")
	historyCmd.Flags().StringVar(&historySite, "site", "", "filter by examined region")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum entries to return")
	rootCmd.AddCommand(historyCmd)
}
