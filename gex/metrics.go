package gex

import "math"

// Metrics are the dashboard scalars derived from a bucketed GEX profile.
type Metrics struct {
	// GammaAtual is total GEX linearly interpolated at the spot price.
	GammaAtual float64 `json:"gamma_atual"`
	// FlipPoint is the zero crossing of total GEX nearest the spot;
	// profiles with no sign change default to the spot itself.
	FlipPoint float64 `json:"flip_point"`
	// GammaScore normalizes GammaAtual into [-1, 1] against the profile's
	// min/max; a flat profile scores 0.
	GammaScore float64 `json:"gamma_score"`
	// Strikes carrying the most positive and most negative exposure.
	GammaMaxPositive float64 `json:"gamma_max_positive"`
	GammaMinNegative float64 `json:"gamma_min_negative"`
}

// ComputeMetrics derives the scalar metrics from sorted strike records.
func ComputeMetrics(records []GexRecord, spot float64) Metrics {
	if len(records) == 0 {
		return Metrics{FlipPoint: spot}
	}

	gammaAtual := interpolateAtSpot(records, spot)

	minGEX, maxGEX := records[0].TotalGEX, records[0].TotalGEX
	minStrike, maxStrike := records[0].Strike, records[0].Strike
	for _, r := range records[1:] {
		if r.TotalGEX < minGEX {
			minGEX, minStrike = r.TotalGEX, r.Strike
		}
		if r.TotalGEX > maxGEX {
			maxGEX, maxStrike = r.TotalGEX, r.Strike
		}
	}

	score := 0.0
	if maxGEX > minGEX {
		score = 2*(gammaAtual-minGEX)/(maxGEX-minGEX) - 1
	}

	return Metrics{
		GammaAtual:       gammaAtual,
		FlipPoint:        flipPoint(records, spot),
		GammaScore:       score,
		GammaMaxPositive: maxStrike,
		GammaMinNegative: minStrike,
	}
}

// interpolateAtSpot evaluates total GEX at the spot by linear
// interpolation over the sorted strikes, clamping outside the range.
func interpolateAtSpot(records []GexRecord, spot float64) float64 {
	if spot <= records[0].Strike {
		return records[0].TotalGEX
	}
	last := records[len(records)-1]
	if spot >= last.Strike {
		return last.TotalGEX
	}
	for i := 0; i < len(records)-1; i++ {
		a, b := records[i], records[i+1]
		if spot >= a.Strike && spot <= b.Strike {
			if b.Strike == a.Strike {
				return a.TotalGEX
			}
			frac := (spot - a.Strike) / (b.Strike - a.Strike)
			return a.TotalGEX + frac*(b.TotalGEX-a.TotalGEX)
		}
	}
	return last.TotalGEX
}

// flipPoint finds the sign change of total GEX closest to the spot,
// linearly interpolated between the bracketing strikes.
func flipPoint(records []GexRecord, spot float64) float64 {
	best := spot
	bestDist := math.Inf(1)
	for i := 0; i < len(records)-1; i++ {
		y1, y2 := records[i].TotalGEX, records[i+1].TotalGEX
		if y1*y2 >= 0 {
			continue
		}
		x1, x2 := records[i].Strike, records[i+1].Strike
		flip := x1 - y1*(x2-x1)/(y2-y1)
		if d := math.Abs(flip - spot); d < bestDist {
			best, bestDist = flip, d
		}
	}
	return best
}
