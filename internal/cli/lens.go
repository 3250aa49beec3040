package cli

import (
	"github.com/spf13/cobra"

	"market-lens/internal/app"
)

var (
	lensRegime     string
	lensConfidence float64
	lensVIX        float64
	lensTrumpZ     float64
	lensNews       float64
	lensFedTone    string
	lensDemo       bool
)

var lensCmd = &cobra.Command{
	Use:   "lens",
	Short: "Evaluate the action lens against explicit signal readings",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.LensOptions{
			Regime:  lensRegime,
			FedTone: lensFedTone,
		}
		if lensDemo {
			opts.DataMode = "demo"
		}
		if cmd.Flags().Changed("confidence") {
			opts.Confidence = &lensConfidence
		}
		if cmd.Flags().Changed("vix") {
			opts.VIX = &lensVIX
		}
		if cmd.Flags().Changed("trump-z") {
			opts.TrumpZ = &lensTrumpZ
		}
		if cmd.Flags().Changed("news") {
			opts.NewsIntensity = &lensNews
		}
		return getApp().Lens(opts)
	},
}

func init() {
	lensCmd.Flags().StringVar(&lensRegime, "regime", "", "Regime label (Risk-On, Risk-Off, Neutral, Policy Shock, Stagflation)")
	lensCmd.Flags().Float64Var(&lensConfidence, "confidence", 0, "Regime confidence (0-100)")
	lensCmd.Flags().Float64Var(&lensVIX, "vix", 0, "Implied-volatility index level")
	lensCmd.Flags().Float64Var(&lensTrumpZ, "trump-z", 0, "Policy intensity z-score")
	lensCmd.Flags().Float64Var(&lensNews, "news", 0, "News intensity score (0-100)")
	lensCmd.Flags().StringVar(&lensFedTone, "fed-tone", "", "Fed tone (dovish, neutral, hawkish)")
	lensCmd.Flags().BoolVar(&lensDemo, "demo", false, "Evaluate in demo mode")
}
