package fractal

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/brokeberg/gexengine/options"
)

const ivRankWindow = 21

// IVRankResult positions the current implied volatility inside the
// historical-volatility cone of the trailing year.
type IVRankResult struct {
	Rank       float64 `json:"iv_rank"` // 0..100
	HVMin      float64 `json:"hv_min"`  // annualized, decimal
	HVMax      float64 `json:"hv_max"`
	SellSignal string  `json:"sell_signal"`
}

// IVRank ranks currentIV against the rolling 21-day historical volatility
// cone of the trailing year. A flat cone (max==min) yields the neutral
// rank 50.
func IVRank(currentIV float64, closes options.PriceHistory) IVRankResult {
	rets := closes.Tail(options.FullHistoryWindow).LogReturns()

	hvMin, hvMax := math.Inf(1), math.Inf(-1)
	for start := 0; start+ivRankWindow <= len(rets); start++ {
		hv := stat.StdDev(rets[start:start+ivRankWindow], nil) * math.Sqrt(252)
		if hv < hvMin {
			hvMin = hv
		}
		if hv > hvMax {
			hvMax = hv
		}
	}

	res := IVRankResult{Rank: 50}
	if math.IsInf(hvMin, 1) || hvMax <= hvMin {
		res.SellSignal = sellSignal(res.Rank)
		return res
	}

	rank := (currentIV - hvMin) / (hvMax - hvMin) * 100
	res.Rank = math.Max(0, math.Min(100, rank))
	res.HVMin = hvMin
	res.HVMax = hvMax
	res.SellSignal = sellSignal(res.Rank)
	return res
}

func sellSignal(rank float64) string {
	switch {
	case rank >= 80:
		return "Excelente"
	case rank >= 60:
		return "Bom"
	case rank >= 40:
		return "Neutro"
	case rank >= 20:
		return "Cautela"
	default:
		return "Evitar"
	}
}
