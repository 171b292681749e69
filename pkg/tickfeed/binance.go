package tickfeed

import (
	"context"
	"iter"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/rxtech-lab/ladder-trading/internal/types"
	"github.com/rxtech-lab/ladder-trading/pkg/errors"
)

// tickBufferSize bounds the handler-to-iterator channel so a slow consumer
// applies backpressure instead of growing without bound.
const tickBufferSize = 256

// AggTradeStreamService abstracts the go-binance aggregated-trade websocket
// entry point so tests can substitute a deterministic fake.
type AggTradeStreamService interface {
	WsAggTradeServe(symbol string, handler binance.WsAggTradeHandler, errHandler binance.ErrHandler) (doneC, stopC chan struct{}, err error)
}

// binanceStreamService is the production implementation backed by go-binance.
type binanceStreamService struct{}

func (binanceStreamService) WsAggTradeServe(symbol string, handler binance.WsAggTradeHandler, errHandler binance.ErrHandler) (chan struct{}, chan struct{}, error) {
	return binance.WsAggTradeServe(symbol, handler, errHandler)
}

// BinanceSource streams Binance aggregated trades as price ticks.
type BinanceSource struct {
	symbol  string
	service AggTradeStreamService
}

// NewBinanceSource creates a source streaming aggregated trades for a symbol.
func NewBinanceSource(symbol string) *BinanceSource {
	return &BinanceSource{
		symbol:  symbol,
		service: binanceStreamService{},
	}
}

// NewBinanceSourceWithService creates a source over a custom stream service,
// used by tests to substitute a fake.
func NewBinanceSourceWithService(symbol string, service AggTradeStreamService) *BinanceSource {
	return &BinanceSource{
		symbol:  symbol,
		service: service,
	}
}

// Stream implements Source.
func (s *BinanceSource) Stream(ctx context.Context) iter.Seq2[types.PriceTick, error] {
	return func(yield func(types.PriceTick, error) bool) {
		ticks := make(chan types.PriceTick, tickBufferSize)
		streamErrs := make(chan error, 1)

		handler := func(event *binance.WsAggTradeEvent) {
			price, err := strconv.ParseFloat(event.Price, 64)
			if err != nil {
				select {
				case streamErrs <- errors.Wrapf(errors.ErrCodeFeedParseFailed, err, "failed to parse trade price %q", event.Price):
				default:
				}

				return
			}

			tick := types.PriceTick{
				Symbol:    event.Symbol,
				Price:     price,
				Timestamp: time.UnixMilli(event.TradeTime),
			}

			select {
			case ticks <- tick:
			case <-ctx.Done():
			}
		}

		errHandler := func(err error) {
			select {
			case streamErrs <- errors.Wrap(errors.ErrCodeFeedClosed, "aggregated trade stream failed", err):
			default:
			}
		}

		doneC, stopC, err := s.service.WsAggTradeServe(s.symbol, handler, errHandler)
		if err != nil {
			yield(types.PriceTick{}, errors.Wrapf(errors.ErrCodeFeedConnectFailed, err, "failed to open aggregated trade stream for %s", s.symbol))

			return
		}

		defer func() {
			select {
			case <-stopC:
			default:
				close(stopC)
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case <-doneC:
				return
			case err := <-streamErrs:
				yield(types.PriceTick{}, err)

				return
			case tick := <-ticks:
				if !yield(tick, nil) {
					return
				}
			}
		}
	}
}
