package tickfeed

import (
	"context"
	"testing"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/rxtech-lab/ladder-trading/internal/types"
	"github.com/rxtech-lab/ladder-trading/pkg/errors"
	"github.com/stretchr/testify/suite"
)

// fakeAggTradeService replays scripted aggregated-trade events, or fails the
// connection outright.
type fakeAggTradeService struct {
	events     []*binance.WsAggTradeEvent
	streamErr  error
	connectErr error
}

func (f *fakeAggTradeService) WsAggTradeServe(_ string, handler binance.WsAggTradeHandler, errHandler binance.ErrHandler) (chan struct{}, chan struct{}, error) {
	if f.connectErr != nil {
		return nil, nil, f.connectErr
	}

	doneC := make(chan struct{})
	stopC := make(chan struct{})

	go func() {
		defer close(doneC)

		for _, event := range f.events {
			select {
			case <-stopC:
				return
			default:
			}

			handler(event)
		}

		if f.streamErr != nil {
			errHandler(f.streamErr)
		}

		// Hold the stream open until the consumer stops, so delivered ticks
		// and errors are drained before doneC fires.
		<-stopC
	}()

	return doneC, stopC, nil
}

type BinanceSourceTestSuite struct {
	suite.Suite
}

func TestBinanceSourceSuite(t *testing.T) {
	suite.Run(t, new(BinanceSourceTestSuite))
}

func aggTrade(symbol, price string, tradeTimeMs int64) *binance.WsAggTradeEvent {
	return &binance.WsAggTradeEvent{ //nolint:exhaustruct
		Symbol:    symbol,
		Price:     price,
		TradeTime: tradeTimeMs,
	}
}

func (suite *BinanceSourceTestSuite) TestStreamConvertsAggTrades() {
	service := &fakeAggTradeService{ //nolint:exhaustruct
		events: []*binance.WsAggTradeEvent{
			aggTrade("BTCUSDT", "42000.50", 1704189000000),
			aggTrade("BTCUSDT", "42001.25", 1704189001000),
		},
	}
	source := NewBinanceSourceWithService("BTCUSDT", service)

	ticks := make([]types.PriceTick, 0)

	for tick, err := range source.Stream(context.Background()) {
		suite.Require().NoError(err)

		ticks = append(ticks, tick)
		if len(ticks) == 2 {
			break
		}
	}

	suite.Require().Len(ticks, 2)
	suite.Equal("BTCUSDT", ticks[0].Symbol)
	suite.InDelta(42000.50, ticks[0].Price, 1e-9)
	suite.Equal(time.UnixMilli(1704189000000), ticks[0].Timestamp)
	suite.InDelta(42001.25, ticks[1].Price, 1e-9)
}

func (suite *BinanceSourceTestSuite) TestUnparseablePriceFailsStream() {
	service := &fakeAggTradeService{ //nolint:exhaustruct
		events: []*binance.WsAggTradeEvent{
			aggTrade("BTCUSDT", "not-a-price", 1704189000000),
		},
	}
	source := NewBinanceSourceWithService("BTCUSDT", service)

	var streamErr error

	for _, err := range source.Stream(context.Background()) {
		if err != nil {
			streamErr = err

			break
		}
	}

	suite.Require().Error(streamErr)
	suite.True(errors.HasCode(streamErr, errors.ErrCodeFeedParseFailed))
}

func (suite *BinanceSourceTestSuite) TestStreamFailureSurfacesAsFeedClosed() {
	service := &fakeAggTradeService{ //nolint:exhaustruct
		events:    []*binance.WsAggTradeEvent{aggTrade("BTCUSDT", "42000", 1704189000000)},
		streamErr: errors.New(errors.ErrCodeFeedClosed, "connection reset"),
	}
	source := NewBinanceSourceWithService("BTCUSDT", service)

	var (
		tickCount int
		streamErr error
	)

	for tick, err := range source.Stream(context.Background()) {
		if err != nil {
			streamErr = err

			break
		}

		suite.Positive(tick.Price)
		tickCount++
	}

	suite.Equal(1, tickCount)
	suite.Require().Error(streamErr)
	suite.True(errors.HasCode(streamErr, errors.ErrCodeFeedClosed))
}

func (suite *BinanceSourceTestSuite) TestConnectFailure() {
	service := &fakeAggTradeService{ //nolint:exhaustruct
		connectErr: errors.New(errors.ErrCodeFeedConnectFailed, "dial failed"),
	}
	source := NewBinanceSourceWithService("BTCUSDT", service)

	var streamErr error

	for _, err := range source.Stream(context.Background()) {
		streamErr = err

		break
	}

	suite.Require().Error(streamErr)
	suite.True(errors.HasCode(streamErr, errors.ErrCodeFeedConnectFailed))
}

func (suite *BinanceSourceTestSuite) TestCancelEndsStream() {
	service := &fakeAggTradeService{} //nolint:exhaustruct
	source := NewBinanceSourceWithService("BTCUSDT", service)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, err := range source.Stream(ctx) {
		suite.Require().NoError(err)
	}
}
