package cli

import (
	"github.com/spf13/cobra"

	"market-lens/internal/app"
)

var captureForce bool

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Capture today's snapshot immediately",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.CaptureOptions{
			Force: captureForce,
		}
		return getApp().Capture(cmd.Context(), opts)
	},
}

func init() {
	captureCmd.Flags().BoolVar(&captureForce, "force", false, "Replace today's snapshot if it already exists")
}
