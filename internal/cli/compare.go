package cli

import (
	"github.com/spf13/cobra"

	"market-lens/internal/app"
)

var compareDays int

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Show what changed versus yesterday's snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.CompareOptions{
			Days: compareDays,
		}
		return getApp().Compare(opts)
	},
}

func init() {
	compareCmd.Flags().IntVar(&compareDays, "days", 7, "Lookback window for locating snapshots")
}
