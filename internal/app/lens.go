package app

import (
	"encoding/json"
	"fmt"
	"os"

	"market-lens/internal/lens"
	"market-lens/internal/mistake"
	"market-lens/internal/policyrisk"
	"market-lens/internal/volatility"
)

// Lens evaluates the classification core against explicitly supplied
// readings and prints the combined result, without touching the store or
// any upstream API.
func (a *App) Lens(opts LensOptions) error {
	vol := volatility.Classify(opts.VIX, nil, "")
	policy := policyrisk.Classify(opts.TrumpZ, opts.NewsIntensity)

	lensResult := lens.Compute(lens.Input{
		Regime:           opts.Regime,
		RegimeConfidence: opts.Confidence,
		Volatility:       string(vol.Level),
		PolicyRisk:       string(policy.Level),
		FedTone:          opts.FedTone,
		DataMode:         opts.DataMode,
	})

	base := float64(lensResult.Confidence)
	mistakeResult := mistake.Compute(mistake.Input{
		Regime:         opts.Regime,
		Volatility:     string(vol.Level),
		PolicyRisk:     string(policy.Level),
		FedTone:        opts.FedTone,
		BaseConfidence: &base,
	})

	out := struct {
		Volatility volatility.Result `json:"volatility"`
		PolicyRisk policyrisk.Result `json:"policyRisk"`
		Lens       lens.Result       `json:"lens"`
		Mistake    mistake.Result    `json:"mistake"`
	}{vol, policy, lensResult, mistakeResult}

	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode lens result: %w", err)
	}

	fmt.Fprintln(os.Stdout, string(encoded))
	return nil
}
