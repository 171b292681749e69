package tickfeed

import (
	"context"
	"iter"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rxtech-lab/ladder-trading/internal/types"
	"github.com/rxtech-lab/ladder-trading/pkg/errors"
)

// tickFrame is the JSON wire shape of the chart platform's quote stream.
type tickFrame struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

// WebSocketSource streams JSON tick frames from a quote-stream endpoint.
type WebSocketSource struct {
	// URL is the websocket endpoint, e.g. ws://host/ws/quotes?symbol=SPY.
	URL string
}

// NewWebSocketSource creates a websocket quote source.
func NewWebSocketSource(url string) *WebSocketSource {
	return &WebSocketSource{
		URL: url,
	}
}

// Stream implements Source.
func (s *WebSocketSource) Stream(ctx context.Context) iter.Seq2[types.PriceTick, error] {
	return func(yield func(types.PriceTick, error) bool) {
		conn, resp, err := websocket.DefaultDialer.DialContext(ctx, s.URL, nil)
		if err != nil {
			yield(types.PriceTick{}, errors.Wrapf(errors.ErrCodeFeedConnectFailed, err, "failed to connect to %s", s.URL))

			return
		}

		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}

		defer conn.Close()

		// Unblock the read loop when the caller cancels.
		done := make(chan struct{})
		defer close(done)

		go func() {
			select {
			case <-ctx.Done():
				conn.Close()
			case <-done:
			}
		}()

		for {
			var frame tickFrame
			if err := conn.ReadJSON(&frame); err != nil {
				if ctx.Err() != nil {
					return
				}

				yield(types.PriceTick{}, errors.Wrap(errors.ErrCodeFeedClosed, "quote stream closed", err))

				return
			}

			tick := types.PriceTick{
				Symbol:    frame.Symbol,
				Price:     frame.Price,
				Timestamp: frame.Timestamp,
			}

			if !yield(tick, nil) {
				return
			}
		}
	}
}
