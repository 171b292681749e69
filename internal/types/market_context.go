package types

// MarketTrend is the coarse short-term trend classification derived from the
// rolling price window.
type MarketTrend string

const (
	MarketTrendBullish MarketTrend = "BULLISH"
	MarketTrendBearish MarketTrend = "BEARISH"
	MarketTrendNeutral MarketTrend = "NEUTRAL"
)

// MarketContext is the tracker's current classification snapshot.
type MarketContext struct {
	// Trend is the current classification. Starts NEUTRAL and is retained
	// whenever the window holds too few samples to reclassify.
	Trend MarketTrend `yaml:"trend" json:"trend"`

	// TrendStrength is the clamped [-1, 1] relative drift of the recent
	// samples against the older remainder of the window.
	TrendStrength float64 `yaml:"trend_strength" json:"trend_strength"`

	// SampleCount is the number of samples currently in the window.
	SampleCount int `yaml:"sample_count" json:"sample_count"`
}
