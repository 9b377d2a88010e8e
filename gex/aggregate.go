package gex

import (
	"context"
	"math"
	"runtime"
	"sort"
	"sync"

	"github.com/brokeberg/gexengine/options"
)

// GexRecord is the aggregated exposure of one strike bucket. Records are
// computed fresh each run and never mutated afterwards.
type GexRecord struct {
	Strike   float64 `json:"strike"`
	CallGEX  float64 `json:"call_gex"`
	PutGEX   float64 `json:"put_gex"`
	TotalGEX float64 `json:"total_gex"`
}

// AggregateOptions configure a GEX run. The zero value gets defaults.
type AggregateOptions struct {
	BucketSize         float64 // strike bucket width, default 1.0
	ContractMultiplier float64 // shares per contract, default 1
	DefaultVolatility  float64 // last-resort IV, default options.DefaultVolatility
	Workers            int     // bounded fan-out, default GOMAXPROCS
}

func (o AggregateOptions) withDefaults() AggregateOptions {
	if o.BucketSize <= 0 {
		o.BucketSize = 1.0
	}
	if o.ContractMultiplier <= 0 {
		o.ContractMultiplier = 1
	}
	if o.DefaultVolatility <= 0 {
		o.DefaultVolatility = options.DefaultVolatility
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	return o
}

// Result is a full GEX aggregation. Complete is false when the run was
// cancelled mid-way; partial numbers must not be treated as final.
type Result struct {
	Contracts     []ContractResult `json:"contracts"`
	Records       []GexRecord      `json:"records"`
	Metrics       Metrics          `json:"metrics"`
	WeightedAvgIV float64          `json:"weighted_avg_iv"`
	Complete      bool             `json:"complete"`
}

// Aggregate prices every contract, resolves volatilities in the documented
// order (contract IV, market price, nearest strike, default), buckets
// strikes, and derives the dashboard metrics.
//
// Contracts are priced on a bounded worker pool; the reduction iterates the
// chain in input order, so the aggregate is independent of completion
// order. Cancellation is cooperative per contract.
func Aggregate(ctx context.Context, chain options.Chain, snap options.MarketSnapshot, opts AggregateOptions) (Result, error) {
	if err := chain.Validate(snap); err != nil {
		return Result{}, err
	}
	opts = opts.withDefaults()

	results := make([]ContractResult, len(chain))

	// First pass: direct IV resolution plus time to expiry, fanned out
	// across the pool. Nearest-strike resolution needs the whole first
	// pass, so it runs after the fan-in.
	jobs := make(chan int)
	var wg sync.WaitGroup
	cancelled := false

	for w := 0; w < opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				c := chain[i]
				T := options.YearsToExpiry(c.Expiry, snap.ReferenceDate)
				iv, src := resolveDirectIV(c, snap, T)
				results[i] = ContractResult{Contract: c, TimeToExpiry: T, IV: iv, IVSource: src}
			}
		}()
	}

feed:
	for i := range chain {
		select {
		case <-ctx.Done():
			cancelled = true
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if cancelled {
		return Result{Complete: false}, ctx.Err()
	}

	// Second pass: nearest-strike fallback, then default, then gamma and
	// the exposure itself.
	for i := range results {
		r := &results[i]
		if r.IVSource == "" {
			if iv, ok := nearestResolvedIV(results, i); ok {
				r.IV, r.IVSource = iv, IVSourceNearest
			} else {
				r.IV, r.IVSource = opts.DefaultVolatility, IVSourceDefault
			}
		}
		r.Gamma = resolveGamma(r.Contract, snap, r.TimeToExpiry, r.IV)
		r.GEX = contractGEX(r.Contract, r.Gamma, snap.SpotPrice, opts.ContractMultiplier)
	}

	records := bucketRecords(results, opts.BucketSize)

	return Result{
		Contracts:     results,
		Records:       records,
		Metrics:       ComputeMetrics(records, snap.SpotPrice),
		WeightedAvgIV: weightedAvgIV(results),
		Complete:      true,
	}, nil
}

// nearestResolvedIV finds the directly resolved IV of the closest strike
// with the same type and expiry.
func nearestResolvedIV(results []ContractResult, idx int) (float64, bool) {
	target := results[idx].Contract
	best := math.Inf(1)
	var iv float64
	found := false

	for i := range results {
		r := &results[i]
		if i == idx || (r.IVSource != IVSourceContract && r.IVSource != IVSourceMarket) {
			continue
		}
		if r.Contract.Type != target.Type || !r.Contract.Expiry.Equal(target.Expiry) {
			continue
		}
		if d := math.Abs(r.Contract.Strike - target.Strike); d < best {
			best, iv, found = d, r.IV, true
		}
	}
	return iv, found
}

func bucketRecords(results []ContractResult, bucketSize float64) []GexRecord {
	byBucket := make(map[float64]*GexRecord)
	for i := range results {
		r := &results[i]
		b := bucketStrike(r.Contract.Strike, bucketSize)
		rec, ok := byBucket[b]
		if !ok {
			rec = &GexRecord{Strike: b}
			byBucket[b] = rec
		}
		if r.Contract.Type == options.Call {
			rec.CallGEX += r.GEX
		} else {
			rec.PutGEX += r.GEX
		}
		rec.TotalGEX += r.GEX
	}

	records := make([]GexRecord, 0, len(byBucket))
	for _, rec := range byBucket {
		records = append(records, *rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Strike < records[j].Strike })
	return records
}

// weightedAvgIV is the open-interest weighted mean of the resolved IVs; a
// chain with zero total OI yields 0 rather than dividing.
func weightedAvgIV(results []ContractResult) float64 {
	var sum, weight float64
	for i := range results {
		oi := float64(results[i].Contract.OpenInterest)
		sum += results[i].IV * oi
		weight += oi
	}
	if weight == 0 {
		return 0
	}
	return sum / weight
}
