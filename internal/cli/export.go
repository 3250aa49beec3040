package cli

import (
	"github.com/spf13/cobra"

	"market-lens/internal/app"
)

var (
	exportDays      int
	exportCSVPath   string
	exportPNGPath   string
	exportMaxPoints int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export snapshot history as CSV and/or a PNG chart",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.ExportOptions{
			Days:      exportDays,
			CSVPath:   exportCSVPath,
			PNGPath:   exportPNGPath,
			MaxPoints: exportMaxPoints,
		}
		return getApp().Export(opts)
	},
}

func init() {
	exportCmd.Flags().IntVar(&exportDays, "days", 45, "Number of days to export")
	exportCmd.Flags().StringVar(&exportCSVPath, "csv", "", "CSV output path")
	exportCmd.Flags().StringVar(&exportPNGPath, "png", "", "PNG chart output path")
	exportCmd.Flags().IntVar(&exportMaxPoints, "max-points", 0, "Maximum data points (0 = config default)")
}
