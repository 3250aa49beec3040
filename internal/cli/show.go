package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"market-lens/internal/app"
)

var showDays int

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display recent daily snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		if showDays <= 0 {
			return fmt.Errorf("--days must be greater than zero")
		}

		opts := app.ShowOptions{
			Days: showDays,
		}

		return getApp().Show(opts)
	},
}

func init() {
	showCmd.Flags().IntVar(&showDays, "days", 14, "Number of days to display")
}
