package probability

import (
	"testing"

	"github.com/brokeberg/gexengine/fractal"
)

func filtersWithBullish(n int) fractal.TrendFilters {
	var f fractal.TrendFilters
	if n > 0 {
		f.PriceAboveSMA21 = true
	}
	if n > 1 {
		f.MomentumPositive = true
	}
	if n > 2 {
		f.SlopePositive = true
	}
	return f
}

func TestClassifyPoles(t *testing.T) {
	cfg := DefaultClassifierConfig()

	cases := []struct {
		name      string
		hurst     float64
		bullish   int
		moneyness float64
		want      Recommendation
		risk      string
	}{
		{"persistent_uptrend", 0.7, 3, -5, VendaForte, RiskLow},
		{"persistent_downtrend", 0.7, 0, -5, RiscoAlto, RiskHigh},
		{"persistent_mostly_bearish", 0.7, 1, -5, Cautela, RiskElevated},
		{"persistent_mixed", 0.7, 2, -5, Neutro, RiskModerate},
		{"reverting_oversold", 0.3, 0, -5, Oportunidade, RiskModerate},
		{"reverting_overbought", 0.3, 3, -5, Cautela, RiskElevated},
		{"reverting_mixed", 0.3, 1, -5, Neutro, RiskModerate},
		{"random_walk", 0.5, 3, -5, Neutro, RiskModerate},
		{"deep_itm_caps_strong_sell", 0.7, 3, 8, Cautela, RiskElevated},
		{"deep_itm_caps_opportunity", 0.3, 0, 8, Cautela, RiskElevated},
		{"deep_itm_keeps_high_risk", 0.7, 0, 8, RiscoAlto, RiskHigh},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			adv := Classify(tc.hurst, filtersWithBullish(tc.bullish), tc.moneyness, cfg)
			if adv.Classification != tc.want {
				t.Errorf("Classification = %s, want %s", adv.Classification, tc.want)
			}
			if adv.RiskLevel != tc.risk {
				t.Errorf("RiskLevel = %s, want %s", adv.RiskLevel, tc.risk)
			}
			if adv.Rationale == "" {
				t.Error("empty rationale")
			}
		})
	}
}

func TestClassifyTotal(t *testing.T) {
	// Every (hurst band, bullish count, moneyness side) combination must land
	// on one of the five labels with a risk level attached.
	cfg := DefaultClassifierConfig()
	valid := map[Recommendation]bool{
		VendaForte: true, Oportunidade: true, Neutro: true, Cautela: true, RiscoAlto: true,
	}

	for _, h := range []float64{0.1, 0.45, 0.5, 0.55, 0.9} {
		for bullish := 0; bullish <= 3; bullish++ {
			for _, m := range []float64{-10, 0, 4.99, 5, 10} {
				adv := Classify(h, filtersWithBullish(bullish), m, cfg)
				if !valid[adv.Classification] {
					t.Errorf("h=%.2f bullish=%d m=%.2f: unknown label %q", h, bullish, m, adv.Classification)
				}
				if adv.RiskLevel == "" {
					t.Errorf("h=%.2f bullish=%d m=%.2f: empty risk level", h, bullish, m)
				}
			}
		}
	}
}

func TestClassifyCustomThresholds(t *testing.T) {
	cfg := ClassifierConfig{PersistentMin: 0.6, AntiPersistentMax: 0.4, DeepITMPct: 2.0}

	// 0.58 is persistent under the defaults but random walk here.
	adv := Classify(0.58, filtersWithBullish(3), -5, cfg)
	if adv.Classification != Neutro {
		t.Errorf("h=0.58 with PersistentMin=0.6: got %s, want %s", adv.Classification, Neutro)
	}

	// The tighter deep-ITM bound trips at 3%.
	adv = Classify(0.7, filtersWithBullish(3), 3, cfg)
	if adv.Classification != Cautela {
		t.Errorf("3%% ITM with DeepITMPct=2: got %s, want %s", adv.Classification, Cautela)
	}
}
