package sentiment

import (
	"fmt"

	"github.com/brokeberg/gexengine/options"
)

// MaxPainResult carries the minimizing settlement strike and the full
// dealer-loss curve it was chosen from.
type MaxPainResult struct {
	Strike       float64             `json:"max_pain_strike"`
	PainByStrike map[float64]float64 `json:"pain_by_strike"`
}

// MaxPain finds the settlement price, drawn from the set of observed
// strikes, that minimizes aggregate dealer loss (equivalently, aggregate
// option-buyer payoff): calls below settlement pay (settlement-strike)*OI,
// puts above settlement pay (strike-settlement)*OI, both scaled by the
// contract multiplier. Ties resolve to the lowest strike.
func MaxPain(chain options.Chain, multiplier float64) (MaxPainResult, error) {
	strikes := chain.Strikes()
	if len(strikes) == 0 {
		return MaxPainResult{}, fmt.Errorf("%w: empty chain", options.ErrInsufficientData)
	}
	if multiplier <= 0 {
		multiplier = 1
	}

	pain := make(map[float64]float64, len(strikes))
	bestStrike, bestPain := strikes[0], 0.0
	first := true

	for _, settlement := range strikes {
		total := 0.0
		for _, c := range chain {
			oi := float64(c.OpenInterest)
			switch c.Type {
			case options.Call:
				if settlement > c.Strike {
					total += (settlement - c.Strike) * oi * multiplier
				}
			case options.Put:
				if settlement < c.Strike {
					total += (c.Strike - settlement) * oi * multiplier
				}
			}
		}
		pain[settlement] = total
		if first || total < bestPain {
			bestStrike, bestPain, first = settlement, total, false
		}
	}

	return MaxPainResult{Strike: bestStrike, PainByStrike: pain}, nil
}
