package engine

import (
	"time"

	"github.com/rxtech-lab/ladder-trading/internal/types"
)

// Market context tracker parameters.
const (
	contextWindowCapacity = 20
	recentSampleCount     = 5
	minSamplesForTrend    = 3
	trendStrengthScale    = 10.0
	bullishThreshold      = 0.1
	bearishThreshold      = -0.1
)

// MarketContextTracker keeps a fixed-capacity FIFO window of recent price
// samples and classifies the short-term trend by comparing the newest five
// samples against the older remainder of the window. When the window holds
// too few samples to split, the prior classification is retained unchanged.
type MarketContextTracker struct {
	samples  []types.PriceSample
	trend    types.MarketTrend
	strength float64
}

// NewMarketContextTracker creates a tracker with a neutral prior.
func NewMarketContextTracker() *MarketContextTracker {
	return &MarketContextTracker{
		samples:  make([]types.PriceSample, 0, contextWindowCapacity),
		trend:    types.MarketTrendNeutral,
		strength: 0,
	}
}

// AddSample appends a price observation, evicting the oldest sample once the
// window is full, and reclassifies the trend.
func (t *MarketContextTracker) AddSample(price float64, timestamp time.Time) {
	t.samples = append(t.samples, types.PriceSample{
		Price:     price,
		Timestamp: timestamp,
	})

	if len(t.samples) > contextWindowCapacity {
		t.samples = t.samples[1:]
	}

	t.classify()
}

// Context returns the current classification snapshot.
func (t *MarketContextTracker) Context() types.MarketContext {
	return types.MarketContext{
		Trend:         t.trend,
		TrendStrength: t.strength,
		SampleCount:   len(t.samples),
	}
}

// Reset clears the window and returns the tracker to its neutral prior.
func (t *MarketContextTracker) Reset() {
	t.samples = t.samples[:0]
	t.trend = types.MarketTrendNeutral
	t.strength = 0
}

// classify splits the window into the recent five samples and the older
// remainder, computes the clamped relative drift between their averages, and
// maps it onto bullish/bearish/neutral. With fewer than five recent samples,
// or an empty older remainder, the prior classification stands.
func (t *MarketContextTracker) classify() {
	n := len(t.samples)
	if n < minSamplesForTrend || n < recentSampleCount {
		return
	}

	older := t.samples[:n-recentSampleCount]
	recent := t.samples[n-recentSampleCount:]

	if len(older) == 0 {
		return
	}

	avgOlder := averagePrice(older)
	if avgOlder == 0 {
		return
	}

	avgRecent := averagePrice(recent)

	strength := trendStrengthScale * (avgRecent - avgOlder) / avgOlder
	if strength > 1 {
		strength = 1
	} else if strength < -1 {
		strength = -1
	}

	t.strength = strength

	switch {
	case strength > bullishThreshold:
		t.trend = types.MarketTrendBullish
	case strength < bearishThreshold:
		t.trend = types.MarketTrendBearish
	default:
		t.trend = types.MarketTrendNeutral
	}
}

func averagePrice(samples []types.PriceSample) float64 {
	var sum float64
	for _, sample := range samples {
		sum += sample.Price
	}

	return sum / float64(len(samples))
}
