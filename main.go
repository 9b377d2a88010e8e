package main

import (
	"context"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shirou/gopsutil/cpu"
	"github.com/vbauerster/mpb/v7"
	"github.com/vbauerster/mpb/v7/decor"
	"github.com/xhhuango/json"

	"github.com/brokeberg/gexengine/fractal"
	"github.com/brokeberg/gexengine/gex"
	"github.com/brokeberg/gexengine/options"
	"github.com/brokeberg/gexengine/probability"
	"github.com/brokeberg/gexengine/sentiment"
)

// TickerInput is one entry of the chain file: a normalized options table
// plus the already-resolved market state. Scraping and rate fetching are
// the producer's job; this binary only reads their output.
type TickerInput struct {
	Ticker       string               `json:"ticker"`
	SpotPrice    float64              `json:"spot_price"`
	RiskFreeRate float64              `json:"risk_free_rate"`
	Reference    time.Time            `json:"reference_date"`
	Contracts    options.Chain        `json:"contracts"`
	History      options.PriceHistory `json:"history"`
}

// TickerReport is the full analytics output for one ticker.
type TickerReport struct {
	Ticker    string  `json:"ticker"`
	SpotPrice float64 `json:"spot_price"`

	GEX     gex.Result               `json:"gex"`
	MaxPain *sentiment.MaxPainResult `json:"max_pain,omitempty"`
	PCR     sentiment.PCRResult      `json:"pcr"`

	Fractal       fractal.FractalProfile          `json:"fractal"`
	IVRank        fractal.IVRankResult            `json:"iv_rank"`
	TargetPut     string                          `json:"target_put,omitempty"`
	Probabilities probability.ExerciseProbability `json:"probabilities"`
	MonteCarlo    probability.MCResult            `json:"monte_carlo"`
	Advice        probability.Advice              `json:"advice"`
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using environment as-is")
	}

	chainFile := envStr("CHAIN_FILE", "chains.json")
	outFile := envStr("OUT_FILE", "analytics.json")
	seed := uint64(envInt("MC_SEED", 42))
	paths := envInt("MC_PATHS", 3000)
	workers := envInt("WORKERS", 0)
	bucketSize := envFloat("BUCKET_SIZE", 1.0)
	multiplier := envFloat("CONTRACT_MULTIPLIER", 1.0)

	raw, err := os.ReadFile(chainFile)
	if err != nil {
		log.Fatalf("reading chain file %s: %v", chainFile, err)
	}
	var inputs []TickerInput
	if err := json.Unmarshal(raw, &inputs); err != nil {
		log.Fatalf("parsing chain file %s: %v", chainFile, err)
	}
	if len(inputs) == 0 {
		log.Fatalf("chain file %s has no tickers", chainFile)
	}

	go monitorCPUUsage()

	p := mpb.New(mpb.WithWidth(64))
	bar := p.AddBar(int64(len(inputs)),
		mpb.PrependDecorators(
			decor.Name("Tickers"),
			decor.Percentage(decor.WCSyncSpace),
		),
		mpb.AppendDecorators(
			decor.CountersNoUnit("(%d / %d)", decor.WCSyncSpace),
		),
	)

	ctx := context.Background()
	var reports []TickerReport

	for _, in := range inputs {
		report, err := analyzeTicker(ctx, in, analyzeConfig{
			seed:       seed,
			paths:      paths,
			workers:    workers,
			bucketSize: bucketSize,
			multiplier: multiplier,
		})
		if err != nil {
			fmt.Printf("\n%s: %v\n", in.Ticker, err)
			bar.Increment()
			continue
		}
		reports = append(reports, report)
		bar.Increment()
	}
	p.Wait()

	for _, r := range reports {
		fmt.Printf("\n%s @ %.2f\n", r.Ticker, r.SpotPrice)
		fmt.Printf("  gamma_atual: %.0f  flip: %.2f  score: %.2f\n",
			r.GEX.Metrics.GammaAtual, r.GEX.Metrics.FlipPoint, r.GEX.Metrics.GammaScore)
		if r.MaxPain != nil {
			fmt.Printf("  max pain: %.2f\n", r.MaxPain.Strike)
		}
		fmt.Printf("  PCR(OI): %s\n", r.PCR.Interpretation)
		fmt.Printf("  Hurst: %.3f (%s)  HV: %.1f%%\n",
			r.Fractal.Hurst, r.Fractal.Regime, r.Fractal.HistoricalVolatility*100)
		if r.TargetPut != "" {
			fmt.Printf("  %s -> BS %.1f%%  fractal %.1f%%  MC %.1f%%  => %s (%s)\n",
				r.TargetPut,
				r.Probabilities.BlackScholes*100,
				r.Probabilities.Fractal*100,
				r.Probabilities.MonteCarlo*100,
				r.Advice.Classification, r.Advice.RiskLevel)
		}
	}

	out, err := json.Marshal(reports)
	if err != nil {
		log.Fatalf("marshalling reports: %v", err)
	}
	if err := os.WriteFile(outFile, out, 0644); err != nil {
		log.Fatalf("writing %s: %v", outFile, err)
	}
	fmt.Printf("\nWrote %d ticker reports to %s\n", len(reports), outFile)
}

type analyzeConfig struct {
	seed       uint64
	paths      int
	workers    int
	bucketSize float64
	multiplier float64
}

func analyzeTicker(ctx context.Context, in TickerInput, cfg analyzeConfig) (TickerReport, error) {
	snap := options.MarketSnapshot{
		SpotPrice:     in.SpotPrice,
		RiskFreeRate:  in.RiskFreeRate,
		ReferenceDate: in.Reference,
	}
	if snap.RiskFreeRate == 0 {
		snap.RiskFreeRate = options.DefaultRiskFreeRate
	}
	if snap.ReferenceDate.IsZero() {
		snap.ReferenceDate = time.Now()
	}

	gexResult, err := gex.Aggregate(ctx, in.Contracts, snap, gex.AggregateOptions{
		BucketSize:         cfg.bucketSize,
		ContractMultiplier: cfg.multiplier,
		Workers:            cfg.workers,
	})
	if err != nil {
		return TickerReport{}, fmt.Errorf("gex: %w", err)
	}

	report := TickerReport{
		Ticker:    in.Ticker,
		SpotPrice: snap.SpotPrice,
		GEX:       gexResult,
		PCR:       sentiment.PutCallRatio(in.Contracts),
		Fractal:   fractal.Profile(in.History),
	}

	if mp, err := sentiment.MaxPain(in.Contracts, cfg.multiplier); err == nil {
		report.MaxPain = &mp
	}

	// Probability and recommendation run against the put nearest the money
	// at the earliest expiry, the screener's cash-secured-put view.
	target, ok := nearestATMPut(in.Contracts, snap.SpotPrice)
	if !ok {
		return report, nil
	}
	report.TargetPut = target.Ticker

	sigma := resolvedIVFor(gexResult, target)
	report.IVRank = fractal.IVRank(sigma, in.History)

	probs, mc, err := probability.Evaluate(probability.MCParams{
		Type:   options.Put,
		Spot:   snap.SpotPrice,
		Strike: target.Strike,
		Rate:   snap.RiskFreeRate,
		Sigma:  sigma,
		T:      options.YearsToExpiry(target.Expiry, snap.ReferenceDate),
	}, report.Fractal, probability.MCConfig{
		Paths:   cfg.paths,
		Workers: cfg.workers,
		Seed:    cfg.seed,
	})
	if err != nil {
		return TickerReport{}, fmt.Errorf("probability: %w", err)
	}
	report.Probabilities = probs
	report.MonteCarlo = mc

	moneyness := (target.Strike - snap.SpotPrice) / snap.SpotPrice * 100
	report.Advice = probability.Classify(report.Fractal.Hurst, report.Fractal.Filters,
		moneyness, probability.DefaultClassifierConfig())

	return report, nil
}

func nearestATMPut(chain options.Chain, spot float64) (options.OptionContract, bool) {
	puts := chain.Puts()
	if len(puts) == 0 {
		return options.OptionContract{}, false
	}

	earliest := puts[0].Expiry
	for _, c := range puts[1:] {
		if c.Expiry.Before(earliest) {
			earliest = c.Expiry
		}
	}

	front := puts.ForExpiry(earliest)
	best := front[0]
	bestDist := math.Abs(front[0].Strike - spot)
	for _, c := range front[1:] {
		if d := math.Abs(c.Strike - spot); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, true
}

func resolvedIVFor(result gex.Result, target options.OptionContract) float64 {
	for i := range result.Contracts {
		c := &result.Contracts[i]
		if c.Contract.Ticker == target.Ticker &&
			c.Contract.Strike == target.Strike &&
			c.Contract.Type == target.Type {
			return c.IV
		}
	}
	return options.DefaultVolatility
}

func monitorCPUUsage() {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		percentage, err := cpu.Percent(time.Second, false)
		if err == nil && len(percentage) > 0 {
			fmt.Printf("\nCPU Usage: %.2f%%\n", percentage[0])
		}
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
