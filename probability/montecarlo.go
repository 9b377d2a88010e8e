package probability

import (
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"

	"github.com/brokeberg/gexengine/fractal"
	"github.com/brokeberg/gexengine/options"
)

const (
	defaultPaths   = 3000
	defaultRuinPct = 0.10
	tradingDays    = 365.0
)

// MCParams are the contract and market parameters of one simulation.
type MCParams struct {
	Type   options.OptionType
	Spot   float64
	Strike float64
	Rate   float64
	Sigma  float64
	Hurst  float64
	T      float64 // years
}

// MCConfig controls the simulation run. The zero value gets sensible
// defaults; Seed makes the run fully reproducible.
type MCConfig struct {
	Paths   int
	Workers int
	Seed    uint64
	RuinPct float64 // ruin threshold as a fraction beyond the strike
}

func (c MCConfig) withDefaults() MCConfig {
	if c.Paths <= 0 {
		c.Paths = defaultPaths
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.RuinPct <= 0 {
		c.RuinPct = defaultRuinPct
	}
	return c
}

// MCResult is the terminal-distribution summary of one simulation run.
type MCResult struct {
	ProbExercise float64 `json:"prob_exercise"`
	MeanFinal    float64 `json:"mean_final"`
	MedianFinal  float64 `json:"median_final"`
	StdFinal     float64 `json:"std_final"`
	Percentile5  float64 `json:"percentile_5"`
	Percentile95 float64 `json:"percentile_95"`
	RuinLevel    float64 `json:"ruin_level"`
	ProbRuin     float64 `json:"prob_ruin"`
	Paths        int     `json:"n_paths"`
	Days         int     `json:"n_days"`
}

// MonteCarloFBM simulates price paths under fractional Brownian motion with
// drift equal to the risk-free rate and reports the empirical exercise
// probability plus terminal-distribution statistics.
//
// The log price follows
//
//	log S_t = log S0 + r*t - 0.5*sigma^2*t^{2H} + sigma*B_H(t)
//
// which reduces to risk-neutral GBM at H=0.5. Paths are partitioned into
// per-worker blocks with seeds derived from cfg.Seed, so the output is
// identical for a fixed seed regardless of scheduling.
func MonteCarloFBM(p MCParams, cfg MCConfig) (MCResult, error) {
	if p.Spot <= 0 || p.Strike <= 0 || p.T <= 0 || p.Sigma <= 0 {
		return MCResult{}, fmt.Errorf("%w: spot=%.4f strike=%.4f T=%.6f sigma=%.4f",
			options.ErrInvalidInput, p.Spot, p.Strike, p.T, p.Sigma)
	}
	cfg = cfg.withDefaults()

	days := int(math.Round(p.T * tradingDays))
	if days < 1 {
		days = 1
	}
	dt := p.T / float64(days)

	gen, err := fractal.NewPathGenerator(p.Hurst, days, dt)
	if err != nil {
		return MCResult{}, err
	}
	hurst := gen.Hurst()

	ruinLevel := p.Strike * (1 - cfg.RuinPct)
	if p.Type == options.Call {
		ruinLevel = p.Strike * (1 + cfg.RuinPct)
	}

	finals := make([]float64, cfg.Paths)
	ruinHits := make([]int, cfg.Workers)

	// Deterministic partition: block i always owns the same path indices
	// and the same derived seed.
	blockSize := (cfg.Paths + cfg.Workers - 1) / cfg.Workers

	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		start := w * blockSize
		if start >= cfg.Paths {
			break
		}
		end := start + blockSize
		if end > cfg.Paths {
			end = cfg.Paths
		}

		wg.Add(1)
		go func(worker, start, end int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(cfg.Seed + uint64(worker)*0x9e3779b97f4a7c15))
			path := make([]float64, days)

			for i := start; i < end; i++ {
				path = gen.Path(rng, path)

				touched := false
				final := p.Spot
				for k, b := range path {
					t := float64(k+1) * dt
					price := p.Spot * math.Exp(p.Rate*t-0.5*p.Sigma*p.Sigma*math.Pow(t, 2*hurst)+p.Sigma*b)
					if p.Type == options.Put && price <= ruinLevel {
						touched = true
					}
					if p.Type == options.Call && price >= ruinLevel {
						touched = true
					}
					final = price
				}

				finals[i] = final
				if touched {
					ruinHits[worker]++
				}
			}
		}(w, start, end)
	}
	wg.Wait()

	exercised := 0
	for _, f := range finals {
		if p.Type == options.Put && f < p.Strike {
			exercised++
		}
		if p.Type == options.Call && f > p.Strike {
			exercised++
		}
	}
	totalRuin := 0
	for _, n := range ruinHits {
		totalRuin += n
	}

	sorted := append([]float64(nil), finals...)
	sort.Float64s(sorted)

	return MCResult{
		ProbExercise: float64(exercised) / float64(cfg.Paths),
		MeanFinal:    stat.Mean(finals, nil),
		MedianFinal:  stat.Quantile(0.5, stat.Empirical, sorted, nil),
		StdFinal:     stat.StdDev(finals, nil),
		Percentile5:  stat.Quantile(0.05, stat.Empirical, sorted, nil),
		Percentile95: stat.Quantile(0.95, stat.Empirical, sorted, nil),
		RuinLevel:    ruinLevel,
		ProbRuin:     float64(totalRuin) / float64(cfg.Paths),
		Paths:        cfg.Paths,
		Days:         days,
	}, nil
}

// Evaluate runs all three exercise models for one contract against a
// fractal profile. The historical volatility backs the models when sigma is
// not supplied (<=0).
func Evaluate(p MCParams, profile fractal.FractalProfile, cfg MCConfig) (ExerciseProbability, MCResult, error) {
	if p.Sigma <= 0 {
		p.Sigma = profile.HistoricalVolatility
	}
	if p.Sigma <= 0 {
		p.Sigma = options.DefaultVolatility
	}
	p.Hurst = profile.Hurst

	mc, err := MonteCarloFBM(p, cfg)
	if err != nil {
		return ExerciseProbability{}, MCResult{}, err
	}
	return ExerciseProbability{
		BlackScholes: ExerciseBS(p.Type, p.Spot, p.Strike, p.T, p.Rate, p.Sigma),
		Fractal:      ExerciseFractal(p.Type, p.Spot, p.Strike, p.T, p.Rate, p.Sigma, p.Hurst),
		MonteCarlo:   mc.ProbExercise,
	}, mc, nil
}
