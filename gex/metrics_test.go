package gex

import (
	"math"
	"testing"
)

func TestComputeMetricsFlipPoint(t *testing.T) {
	t.Run("single_crossing", func(t *testing.T) {
		records := []GexRecord{
			{Strike: 95, TotalGEX: -1000},
			{Strike: 100, TotalGEX: 1000},
			{Strike: 105, TotalGEX: 2000},
		}
		m := ComputeMetrics(records, 99)
		// Linear crossing between 95 and 100 lands at 97.5.
		if math.Abs(m.FlipPoint-97.5) > 1e-12 {
			t.Errorf("FlipPoint = %f, want 97.5", m.FlipPoint)
		}
		if m.FlipPoint < 95 || m.FlipPoint > 100 {
			t.Errorf("FlipPoint = %f outside bracketing strikes", m.FlipPoint)
		}
	})

	t.Run("nearest_of_many_crossings", func(t *testing.T) {
		records := []GexRecord{
			{Strike: 90, TotalGEX: 100},
			{Strike: 92, TotalGEX: -100}, // crossing at 91
			{Strike: 100, TotalGEX: 100}, // crossing at 96
			{Strike: 110, TotalGEX: -100}, // crossing at 105
		}
		m := ComputeMetrics(records, 104)
		if math.Abs(m.FlipPoint-105) > 1e-12 {
			t.Errorf("FlipPoint = %f, want nearest crossing 105", m.FlipPoint)
		}
	})

	t.Run("no_crossing_defaults_to_spot", func(t *testing.T) {
		records := []GexRecord{
			{Strike: 95, TotalGEX: 500},
			{Strike: 105, TotalGEX: 1500},
		}
		m := ComputeMetrics(records, 101.5)
		if m.FlipPoint != 101.5 {
			t.Errorf("FlipPoint = %f, want spot 101.5", m.FlipPoint)
		}
	})

	t.Run("empty_profile", func(t *testing.T) {
		m := ComputeMetrics(nil, 42)
		if m.FlipPoint != 42 {
			t.Errorf("empty FlipPoint = %f, want spot", m.FlipPoint)
		}
		if m.GammaAtual != 0 || m.GammaScore != 0 {
			t.Errorf("empty metrics = %+v, want zeros", m)
		}
	})
}

func TestComputeMetricsGammaAtual(t *testing.T) {
	records := []GexRecord{
		{Strike: 90, TotalGEX: -2000},
		{Strike: 100, TotalGEX: 0},
		{Strike: 110, TotalGEX: 2000},
	}

	t.Run("interpolates", func(t *testing.T) {
		m := ComputeMetrics(records, 105)
		if math.Abs(m.GammaAtual-1000) > 1e-12 {
			t.Errorf("GammaAtual = %f, want 1000", m.GammaAtual)
		}
	})

	t.Run("clamps_below", func(t *testing.T) {
		m := ComputeMetrics(records, 50)
		if m.GammaAtual != -2000 {
			t.Errorf("GammaAtual = %f, want clamp to -2000", m.GammaAtual)
		}
	})

	t.Run("clamps_above", func(t *testing.T) {
		m := ComputeMetrics(records, 500)
		if m.GammaAtual != 2000 {
			t.Errorf("GammaAtual = %f, want clamp to 2000", m.GammaAtual)
		}
	})
}

func TestComputeMetricsGammaScore(t *testing.T) {
	records := []GexRecord{
		{Strike: 90, TotalGEX: -2000},
		{Strike: 100, TotalGEX: 0},
		{Strike: 110, TotalGEX: 2000},
	}

	if m := ComputeMetrics(records, 110); m.GammaScore != 1 {
		t.Errorf("at max: score = %f, want 1", m.GammaScore)
	}
	if m := ComputeMetrics(records, 90); m.GammaScore != -1 {
		t.Errorf("at min: score = %f, want -1", m.GammaScore)
	}
	if m := ComputeMetrics(records, 100); m.GammaScore != 0 {
		t.Errorf("at midpoint: score = %f, want 0", m.GammaScore)
	}

	t.Run("flat_profile", func(t *testing.T) {
		flat := []GexRecord{{Strike: 95, TotalGEX: 700}, {Strike: 105, TotalGEX: 700}}
		if m := ComputeMetrics(flat, 100); m.GammaScore != 0 {
			t.Errorf("flat score = %f, want 0", m.GammaScore)
		}
	})
}

func TestComputeMetricsExtremeStrikes(t *testing.T) {
	records := []GexRecord{
		{Strike: 90, TotalGEX: -500},
		{Strike: 95, TotalGEX: 300},
		{Strike: 100, TotalGEX: 900},
		{Strike: 105, TotalGEX: -1200},
	}
	m := ComputeMetrics(records, 100)
	if m.GammaMaxPositive != 100 {
		t.Errorf("GammaMaxPositive = %f, want 100", m.GammaMaxPositive)
	}
	if m.GammaMinNegative != 105 {
		t.Errorf("GammaMinNegative = %f, want 105", m.GammaMinNegative)
	}
}

func TestBucketStrike(t *testing.T) {
	cases := []struct {
		strike, size, want float64
	}{
		{101.3, 1, 101},
		{101.5, 1, 102},
		{101.3, 5, 100},
		{103.2, 5, 105},
		{101.3, 0, 101.3}, // non-positive size leaves the strike alone
	}
	for _, tc := range cases {
		if got := bucketStrike(tc.strike, tc.size); got != tc.want {
			t.Errorf("bucketStrike(%.2f, %.1f) = %.2f, want %.2f", tc.strike, tc.size, got, tc.want)
		}
	}
}
