// Package tickfeed provides price-tick sources for the laddering engine:
// CSV replay, a generic JSON-over-WebSocket quote stream, and Binance
// aggregated trades.
package tickfeed

import (
	"context"
	"iter"

	"github.com/rxtech-lab/ladder-trading/internal/types"
)

// Source yields realtime or replayed price ticks.
type Source interface {
	// Stream returns an iterator that yields price ticks and error pairs.
	// Cancel the context to stop streaming; the iterator ends when the feed
	// is exhausted or fails.
	Stream(ctx context.Context) iter.Seq2[types.PriceTick, error]
}
