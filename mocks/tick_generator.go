package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/ladder-trading/internal/types"
)

// TickGenerator generates realistic price ticks for testing and benchmarking.
type TickGenerator struct {
	rng *rand.Rand
}

// NewTickGenerator creates a new TickGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewTickGenerator(seed int64) *TickGenerator {
	return &TickGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// TickGeneratorConfig configures how price ticks are generated.
type TickGeneratorConfig struct {
	// Symbol is the trading symbol (e.g., "AAPL", "SPY")
	Symbol string
	// StartTime is the beginning of the tick series
	StartTime time.Time
	// Interval is the duration between ticks
	Interval time.Duration
	// Count is the number of ticks to generate
	Count int
	// InitialPrice is the starting price
	InitialPrice float64
	// Volatility controls price movement per tick (0.002 = 0.2%)
	Volatility float64
	// Trend is the drift factor per tick (-0.01 to 0.01 for bearish to bullish)
	Trend float64
}

// DefaultTickConfig returns a sensible default configuration.
func DefaultTickConfig() TickGeneratorConfig {
	return TickGeneratorConfig{
		Symbol:       "TEST",
		StartTime:    time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC),
		Interval:     time.Second,
		Count:        1000,
		InitialPrice: 100.0,
		Volatility:   0.002,
		Trend:        0.0,
	}
}

// Generate produces a deterministic tick series following a geometric random
// walk with drift. The same seed and config always yield the same series.
func (g *TickGenerator) Generate(config TickGeneratorConfig) []types.PriceTick {
	ticks := make([]types.PriceTick, 0, config.Count)
	price := config.InitialPrice

	for i := 0; i < config.Count; i++ {
		shock := g.rng.NormFloat64() * config.Volatility
		price *= math.Exp(config.Trend + shock)

		// A random walk can wander arbitrarily low; floor it so generated
		// ticks always pass validation.
		if price < 0.01 {
			price = 0.01
		}

		ticks = append(ticks, types.PriceTick{
			Symbol:    config.Symbol,
			Price:     price,
			Timestamp: config.StartTime.Add(time.Duration(i) * config.Interval),
		})
	}

	return ticks
}

// GenerateConstant produces ticks at a fixed price, useful for exercising
// resting-order behavior without fills.
func (g *TickGenerator) GenerateConstant(config TickGeneratorConfig) []types.PriceTick {
	ticks := make([]types.PriceTick, 0, config.Count)

	for i := 0; i < config.Count; i++ {
		ticks = append(ticks, types.PriceTick{
			Symbol:    config.Symbol,
			Price:     config.InitialPrice,
			Timestamp: config.StartTime.Add(time.Duration(i) * config.Interval),
		})
	}

	return ticks
}
