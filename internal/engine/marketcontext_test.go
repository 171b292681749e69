package engine

import (
	"testing"
	"time"

	"github.com/rxtech-lab/ladder-trading/internal/types"
	"github.com/stretchr/testify/suite"
)

type MarketContextTestSuite struct {
	suite.Suite
	t0 time.Time
}

func TestMarketContextSuite(t *testing.T) {
	suite.Run(t, new(MarketContextTestSuite))
}

func (suite *MarketContextTestSuite) SetupTest() {
	suite.t0 = time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)
}

func (suite *MarketContextTestSuite) addAll(tracker *MarketContextTracker, prices []float64) {
	for i, price := range prices {
		tracker.AddSample(price, suite.t0.Add(time.Duration(i)*time.Second))
	}
}

func (suite *MarketContextTestSuite) TestClassification() {
	tests := []struct {
		name     string
		prices   []float64
		expected types.MarketTrend
	}{
		{
			name:     "empty window stays neutral",
			prices:   nil,
			expected: types.MarketTrendNeutral,
		},
		{
			name:     "too few samples retain neutral prior",
			prices:   []float64{100, 120, 140},
			expected: types.MarketTrendNeutral,
		},
		{
			name:     "exactly five samples retain prior",
			prices:   []float64{100, 110, 120, 130, 140},
			expected: types.MarketTrendNeutral,
		},
		{
			name:     "rising prices classify bullish",
			prices:   []float64{100, 100, 100, 103, 104, 105, 106, 107},
			expected: types.MarketTrendBullish,
		},
		{
			name:     "falling prices classify bearish",
			prices:   []float64{100, 100, 100, 97, 96, 95, 94, 93},
			expected: types.MarketTrendBearish,
		},
		{
			name:     "flat prices classify neutral",
			prices:   []float64{100, 100, 100, 100, 100, 100, 100, 100},
			expected: types.MarketTrendNeutral,
		},
		{
			name:     "tiny drift stays neutral",
			prices:   []float64{100, 100, 100, 100.01, 100.02, 100.02, 100.01, 100.02},
			expected: types.MarketTrendNeutral,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			tracker := NewMarketContextTracker()
			suite.addAll(tracker, tt.prices)
			suite.Equal(tt.expected, tracker.Context().Trend)
		})
	}
}

func (suite *MarketContextTestSuite) TestStrengthIsClamped() {
	tracker := NewMarketContextTracker()
	// A 50% jump between the older remainder and the recent window would map
	// to strength 5; the tracker clamps it to 1.
	suite.addAll(tracker, []float64{100, 100, 100, 150, 150, 150, 150, 150})

	context := tracker.Context()
	suite.Equal(types.MarketTrendBullish, context.Trend)
	suite.InDelta(1.0, context.TrendStrength, 1e-9)
}

func (suite *MarketContextTestSuite) TestWindowEvictsOldestSample() {
	tracker := NewMarketContextTracker()

	for i := 0; i < 30; i++ {
		tracker.AddSample(100, suite.t0.Add(time.Duration(i)*time.Second))
	}

	suite.Equal(20, tracker.Context().SampleCount)
}

// A prior classification survives a window too short to split; once enough
// samples arrive the tracker reclassifies.
func (suite *MarketContextTestSuite) TestPriorRetainedAcrossReset() {
	tracker := NewMarketContextTracker()
	suite.addAll(tracker, []float64{100, 100, 100, 103, 104, 105, 106, 107})
	suite.Equal(types.MarketTrendBullish, tracker.Context().Trend)

	tracker.Reset()
	suite.Equal(types.MarketTrendNeutral, tracker.Context().Trend)
	suite.Equal(0, tracker.Context().SampleCount)

	// Short window after the reset: the neutral prior holds even though the
	// few samples seen are falling.
	suite.addAll(tracker, []float64{100, 98, 96})
	suite.Equal(types.MarketTrendNeutral, tracker.Context().Trend)
}
