package options

import (
	"fmt"
	"sort"
	"time"
)

// OptionType is the side of the contract. Only the two enumerated values
// are valid anywhere downstream.
type OptionType string

const (
	Call OptionType = "CALL"
	Put  OptionType = "PUT"
)

func (t OptionType) Valid() bool {
	return t == Call || t == Put
}

// DefaultRiskFreeRate is the fallback annualized rate used when the caller
// has no live rate available.
const DefaultRiskFreeRate = 0.1375

// DefaultVolatility is the fallback annualized volatility used when no IV
// can be resolved for a contract.
const DefaultVolatility = 0.22

// OptionContract is a single normalized row of an options chain. Optional
// site-supplied fields are nil when the source did not carry them; zero is
// never used to mean "missing".
type OptionContract struct {
	Ticker       string     `json:"ticker"`
	Type         OptionType `json:"type"`
	Strike       float64    `json:"strike"`
	Expiry       time.Time  `json:"expiry"`
	OpenInterest int        `json:"open_interest"`
	Volume       int        `json:"volume"`

	MarketPrice *float64 `json:"market_price,omitempty"`
	IV          *float64 `json:"iv,omitempty"`
	SiteDelta   *float64 `json:"delta,omitempty"`
	SiteGamma   *float64 `json:"gamma,omitempty"`
}

// MarketSnapshot carries the externally resolved market state an analytics
// run prices against.
type MarketSnapshot struct {
	SpotPrice     float64   `json:"spot_price"`
	RiskFreeRate  float64   `json:"risk_free_rate"`
	ReferenceDate time.Time `json:"reference_date"`
}

// Chain is a normalized options table.
type Chain []OptionContract

// PricedGreeks holds the per-contract sensitivities computed by the
// pricing kernel.
type PricedGreeks struct {
	Delta       float64 `json:"delta"`
	Gamma       float64 `json:"gamma"`
	Vega        float64 `json:"vega"`
	ThetaAnnual float64 `json:"theta_annual"`
	ThetaDaily  float64 `json:"theta_daily"`
}

func (c OptionContract) Validate() error {
	if !c.Type.Valid() {
		return fmt.Errorf("%w: option type %q", ErrInvalidInput, string(c.Type))
	}
	if c.Strike <= 0 {
		return fmt.Errorf("%w: strike %.4f must be positive", ErrInvalidInput, c.Strike)
	}
	if c.OpenInterest < 0 {
		return fmt.Errorf("%w: open interest %d is negative", ErrInvalidInput, c.OpenInterest)
	}
	return nil
}

func (s MarketSnapshot) Validate() error {
	if s.SpotPrice <= 0 {
		return fmt.Errorf("%w: spot price %.4f must be positive", ErrInvalidInput, s.SpotPrice)
	}
	return nil
}

// Validate checks every contract in the chain and the snapshot together.
func (ch Chain) Validate(snapshot MarketSnapshot) error {
	if err := snapshot.Validate(); err != nil {
		return err
	}
	for i, c := range ch {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("contract %d (%s): %w", i, c.Ticker, err)
		}
	}
	return nil
}

// Calls returns only the CALL rows of the chain.
func (ch Chain) Calls() Chain {
	return ch.filter(Call)
}

// Puts returns only the PUT rows of the chain.
func (ch Chain) Puts() Chain {
	return ch.filter(Put)
}

func (ch Chain) filter(t OptionType) Chain {
	var out Chain
	for _, c := range ch {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}

// ForExpiry returns the rows expiring on the given date.
func (ch Chain) ForExpiry(expiry time.Time) Chain {
	var out Chain
	for _, c := range ch {
		if c.Expiry.Equal(expiry) {
			out = append(out, c)
		}
	}
	return out
}

// Strikes returns the sorted set of distinct strikes in the chain.
func (ch Chain) Strikes() []float64 {
	seen := make(map[float64]struct{}, len(ch))
	var strikes []float64
	for _, c := range ch {
		if _, ok := seen[c.Strike]; !ok {
			seen[c.Strike] = struct{}{}
			strikes = append(strikes, c.Strike)
		}
	}
	sort.Float64s(strikes)
	return strikes
}

// TotalOpenInterest sums open interest across the whole chain.
func (ch Chain) TotalOpenInterest() int {
	total := 0
	for _, c := range ch {
		total += c.OpenInterest
	}
	return total
}

// YearsToExpiry converts a calendar expiry to year-fraction time. Expired
// or same-day contracts are floored at one trading day so the Greeks stay
// finite on expiry morning.
func YearsToExpiry(expiry, reference time.Time) float64 {
	days := expiry.Sub(reference).Hours() / 24
	if days <= 0 {
		return 1.0 / 365
	}
	return days / 365
}

// Float is a convenience constructor for the optional pointer fields.
func Float(v float64) *float64 {
	return &v
}
