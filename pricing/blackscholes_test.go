package pricing

import (
	"math"
	"testing"

	"github.com/brokeberg/gexengine/options"
)

func TestPutCallParity(t *testing.T) {
	cases := []struct {
		name             string
		S, K, T, r, sigma float64
	}{
		{"atm", 100, 100, 0.25, 0.1375, 0.22},
		{"itm_call", 120, 100, 0.5, 0.1375, 0.35},
		{"otm_call", 80, 100, 1.0, 0.05, 0.15},
		{"short_dated", 100, 95, 1.0 / 365, 0.1375, 0.60},
		{"high_vol", 100, 100, 2.0, 0.02, 1.5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			call := CallPrice(tc.S, tc.K, tc.T, tc.r, tc.sigma)
			put := PutPrice(tc.S, tc.K, tc.T, tc.r, tc.sigma)
			lhs := call - put
			rhs := tc.S - tc.K*math.Exp(-tc.r*tc.T)
			if math.Abs(lhs-rhs) > 1e-9 {
				t.Errorf("parity violated: C-P=%.10f, S-Ke^{-rT}=%.10f", lhs, rhs)
			}
		})
	}
}

func TestGammaProperties(t *testing.T) {
	for _, K := range []float64{80, 90, 100, 110, 120} {
		g := Gamma(100, K, 0.25, 0.1375, 0.22)
		if g < 0 {
			t.Errorf("Gamma(K=%.0f) = %f, want >= 0", K, g)
		}
		if g == 0 {
			t.Errorf("Gamma(K=%.0f) = 0 for non-degenerate inputs", K)
		}
	}

	// Gamma is type-independent: Greeks must report the same value for
	// calls and puts.
	cg := Greeks(options.Call, 100, 105, 0.5, 0.1375, 0.3)
	pg := Greeks(options.Put, 100, 105, 0.5, 0.1375, 0.3)
	if cg.Gamma != pg.Gamma {
		t.Errorf("call gamma %f != put gamma %f", cg.Gamma, pg.Gamma)
	}
	if cg.Vega != pg.Vega {
		t.Errorf("call vega %f != put vega %f", cg.Vega, pg.Vega)
	}
	if math.Abs(cg.Delta-pg.Delta-1) > 1e-12 {
		t.Errorf("delta relation: call %f - put %f != 1", cg.Delta, pg.Delta)
	}
}

func TestDegenerateCollapse(t *testing.T) {
	t.Run("expired_collapses_to_intrinsic", func(t *testing.T) {
		if got := CallPrice(110, 100, 0, 0.1375, 0.22); got != 10 {
			t.Errorf("expired ITM call = %f, want 10", got)
		}
		if got := CallPrice(90, 100, 0, 0.1375, 0.22); got != 0 {
			t.Errorf("expired OTM call = %f, want 0", got)
		}
		if got := PutPrice(90, 100, -0.1, 0.1375, 0.22); got != 10 {
			t.Errorf("expired ITM put = %f, want 10", got)
		}
	})

	t.Run("zero_vol_collapses_to_intrinsic", func(t *testing.T) {
		if got := PutPrice(95, 100, 0.5, 0.1375, 0); got != 5 {
			t.Errorf("zero-vol ITM put = %f, want 5", got)
		}
	})

	t.Run("zero_greeks", func(t *testing.T) {
		if g := Gamma(100, 100, 0, 0.1375, 0.22); g != 0 {
			t.Errorf("expired gamma = %f, want 0", g)
		}
		if v := Vega(100, 100, 0.5, 0.1375, 0); v != 0 {
			t.Errorf("zero-vol vega = %f, want 0", v)
		}
		if gr := Greeks(options.Call, 100, 100, 0, 0.1375, 0.22); gr != (options.PricedGreeks{}) {
			t.Errorf("expired greeks = %+v, want zero value", gr)
		}
	})
}

func TestVegaScaling(t *testing.T) {
	// Vega is quoted per percentage point: 100x smaller than dPrice/dSigma.
	S, K, T, r, sigma := 100.0, 100.0, 0.5, 0.1375, 0.22
	v := Vega(S, K, T, r, sigma)
	raw := rawVega(S, K, T, r, sigma)
	if math.Abs(raw-100*v) > 1e-12 {
		t.Errorf("rawVega %f != 100*Vega %f", raw, 100*v)
	}

	// Finite-difference check on the unscaled sensitivity.
	const h = 1e-6
	fd := (CallPrice(S, K, T, r, sigma+h) - CallPrice(S, K, T, r, sigma-h)) / (2 * h)
	if math.Abs(fd-raw) > 1e-4 {
		t.Errorf("finite-difference vega %f, analytic %f", fd, raw)
	}
}

func TestThetaDaily(t *testing.T) {
	// Short-dated ATM options decay; daily theta must be negative and small
	// relative to the price.
	gr := Greeks(options.Call, 100, 100, 30.0/365, 0.1375, 0.22)
	if gr.ThetaDaily >= 0 {
		t.Errorf("ATM call theta = %f, want negative", gr.ThetaDaily)
	}
	if math.Abs(gr.ThetaAnnual/365-gr.ThetaDaily) > 1e-12 {
		t.Errorf("ThetaDaily %f is not ThetaAnnual/365 (%f)", gr.ThetaDaily, gr.ThetaAnnual/365)
	}
	price := CallPrice(100, 100, 30.0/365, 0.1375, 0.22)
	if -gr.ThetaDaily > price {
		t.Errorf("daily theta %f exceeds option price %f", gr.ThetaDaily, price)
	}
}
