package gex

import (
	"math"

	"github.com/brokeberg/gexengine/options"
	"github.com/brokeberg/gexengine/pricing"
)

// IVSource records where a contract's volatility came from, in resolution
// order.
type IVSource string

const (
	IVSourceContract IVSource = "CONTRACT" // site-supplied IV on the row
	IVSourceMarket   IVSource = "MARKET"   // solved from market price
	IVSourceNearest  IVSource = "NEAREST"  // nearest strike, same expiry and type
	IVSourceDefault  IVSource = "DEFAULT"  // fallback constant
)

// Sign convention: dealers are short gamma on calls and long on puts, so
// call GEX is negative and put GEX positive. Pinned by
// TestAggregateSignConvention.
func dealerSign(t options.OptionType) float64 {
	if t == options.Call {
		return -1
	}
	return 1
}

// ContractResult is the per-contract outcome of a GEX run.
type ContractResult struct {
	Contract     options.OptionContract `json:"contract"`
	TimeToExpiry float64                `json:"time_to_expiry"`
	IV           float64                `json:"iv"`
	IVSource     IVSource               `json:"iv_source"`
	Gamma        float64                `json:"gamma"`
	GEX          float64                `json:"gex"`
}

// resolveDirectIV applies the first two steps of the resolution order:
// site-supplied IV, then IV solved from the market price. It reports
// (0, "") when neither applies so the nearest-strike pass can fill in.
func resolveDirectIV(c options.OptionContract, snap options.MarketSnapshot, T float64) (float64, IVSource) {
	if c.IV != nil && *c.IV > 0 {
		return *c.IV, IVSourceContract
	}
	if c.MarketPrice != nil && *c.MarketPrice > 0 {
		iv, err := pricing.ImpliedVolatility(*c.MarketPrice, c.Type, snap.SpotPrice, c.Strike, T, snap.RiskFreeRate)
		if err == nil {
			return iv, IVSourceMarket
		}
	}
	return 0, ""
}

// resolveGamma prefers a valid site-supplied gamma, otherwise prices one
// with the resolved IV.
func resolveGamma(c options.OptionContract, snap options.MarketSnapshot, T, iv float64) float64 {
	if c.SiteGamma != nil && *c.SiteGamma > 0 {
		return *c.SiteGamma
	}
	return pricing.Gamma(snap.SpotPrice, c.Strike, T, snap.RiskFreeRate, iv)
}

// contractGEX applies the documented formula:
// gamma * open_interest * spot^2 * multiplier * dealer sign.
func contractGEX(c options.OptionContract, gamma, spot, multiplier float64) float64 {
	return gamma * float64(c.OpenInterest) * spot * spot * multiplier * dealerSign(c.Type)
}

// bucketStrike snaps a strike onto the bucket grid.
func bucketStrike(strike, size float64) float64 {
	if size <= 0 {
		return strike
	}
	return math.Round(strike/size) * size
}
