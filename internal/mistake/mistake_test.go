package mistake

import (
	"testing"

	"market-lens/internal/market"
)

func f(v float64) *float64 { return &v }

func TestCascadePriorityOrder(t *testing.T) {
	cases := []struct {
		name string
		in   Input
		want Archetype
		sev  market.Level
	}{
		{"high policy wins", Input{Regime: "Risk-On", Volatility: "low", PolicyRisk: "high"}, IgnoringEventRisk, market.LevelHigh},
		{"policy shock wins", Input{Regime: "Policy Shock", Volatility: "low", PolicyRisk: "low"}, IgnoringEventRisk, market.LevelHigh},
		{"high vol non risk-on", Input{Regime: "Risk-Off", Volatility: "high", PolicyRisk: "low"}, OvertradingChop, market.LevelHigh},
		{"risk-on non-high vol", Input{Regime: "Risk-On", Volatility: "medium", PolicyRisk: "low"}, FightingTrend, market.LevelMedium},
		{"neutral non-low vol", Input{Regime: "Neutral", Volatility: "medium", PolicyRisk: "low"}, ForcingConviction, market.LevelMedium},
		{"risk-off calm", Input{Regime: "Risk-Off", Volatility: "low", PolicyRisk: "low"}, OversizingPositions, market.LevelHigh},
		{"default", Input{Regime: "Stagflation", Volatility: "low", PolicyRisk: "low"}, ForcingConviction, market.LevelMedium},
	}

	for _, tc := range cases {
		got := Compute(tc.in)
		if got.Mistake != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, got.Mistake)
		}
		if got.Severity != tc.sev {
			t.Fatalf("%s: expected severity %s, got %s", tc.name, tc.sev, got.Severity)
		}
		if got.Headline == "" || got.Explanation == "" {
			t.Fatalf("%s: archetype copy must be populated", tc.name)
		}
	}
}

func TestRiskOnHighVolatilityIsNotOvertrading(t *testing.T) {
	got := Compute(Input{Regime: "Risk-On", Volatility: "high", PolicyRisk: "low"})
	if got.Mistake == OvertradingChop {
		t.Fatal("overtrading_chop requires a non-Risk-On regime")
	}
}

func TestConfidenceCappedAt85(t *testing.T) {
	got := Compute(Input{Regime: "Risk-On", Volatility: "low", PolicyRisk: "low", BaseConfidence: f(99)})
	if got.Confidence != 85 {
		t.Fatalf("confidence must cap at 85, got %d", got.Confidence)
	}
}

func TestConfidencePenaltiesAndDefault(t *testing.T) {
	got := Compute(Input{Regime: "Neutral", Missing: []string{"volatility", "policy"}})
	// Default base 50, -15 each for missing volatility and policy.
	if got.Confidence != 20 {
		t.Fatalf("expected 20, got %d", got.Confidence)
	}

	got = Compute(Input{Regime: "Neutral"})
	if got.Confidence != 50 {
		t.Fatalf("expected default 50, got %d", got.Confidence)
	}
}

func TestTaxonomyCarriesSevenArchetypes(t *testing.T) {
	if len(archetypeCopy) != 7 {
		t.Fatalf("expected 7 archetypes, got %d", len(archetypeCopy))
	}
	for _, reserved := range []Archetype{ChasingBreakouts, PanicReacting} {
		block, ok := archetypeCopy[reserved]
		if !ok || block.Headline == "" {
			t.Fatalf("reserved archetype %s must keep its copy", reserved)
		}
	}
}

func TestDriversOmitAbsentSignals(t *testing.T) {
	got := Compute(Input{Regime: "Risk-On", Volatility: "low"})
	if got.Drivers.Regime == "" || got.Drivers.Volatility == "" {
		t.Fatalf("present signals must appear in drivers: %+v", got.Drivers)
	}
	if got.Drivers.PolicyRisk != "" || got.Drivers.FedTone != "" {
		t.Fatalf("absent signals must be omitted from drivers: %+v", got.Drivers)
	}
}

func TestHeroCopyBadges(t *testing.T) {
	if got := HeroCopy("", "", "", TrafficRed).BadgeBehavioral; got != "Stand Down" {
		t.Fatalf("Red should badge Stand Down, got %q", got)
	}
	if got := HeroCopy("", "", "", TrafficYellow).BadgeBehavioral; got != "Trade Light" {
		t.Fatalf("Yellow should badge Trade Light, got %q", got)
	}
	if got := HeroCopy("", "", "", TrafficGreen).BadgeBehavioral; got != "Selective Risk" {
		t.Fatalf("Green should badge Selective Risk, got %q", got)
	}
	if got := HeroCopy("", "", "", TrafficLevel("purple")).BadgeBehavioral; got != "Trade Light" {
		t.Fatalf("unrecognized level should badge Trade Light, got %q", got)
	}
}

func TestHeroCopyPrimaryAndSecondary(t *testing.T) {
	got := HeroCopy("Policy Shock", "high", "high", TrafficRed)
	if got.PrimaryLine != "Headline risk is driving price action today." {
		t.Fatalf("unexpected primary line: %q", got.PrimaryLine)
	}
	if got.SecondaryLine == "" {
		t.Fatal("secondary line must not be empty")
	}

	// Risk-On with no volatility or policy signal: no clause applies.
	got = HeroCopy("Risk-On", "", "", TrafficGreen)
	if got.SecondaryLine != "Signals are quiet; follow the standing playbook." {
		t.Fatalf("expected generic secondary line, got %q", got.SecondaryLine)
	}

	got = HeroCopy("Neutral", "high", "medium", TrafficYellow)
	if got.SecondaryLine != "Policy risk moderate, volatility elevated, regime mixed." {
		t.Fatalf("unexpected clause assembly: %q", got.SecondaryLine)
	}
}
