package execution

import (
	"testing"
	"time"

	"github.com/rxtech-lab/ladder-trading/internal/clock"
	"github.com/rxtech-lab/ladder-trading/internal/logger"
	"github.com/rxtech-lab/ladder-trading/internal/types"
	"github.com/rxtech-lab/ladder-trading/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type PaperRouterTestSuite struct {
	suite.Suite
	t0     time.Time
	clock  *clock.FakeClock
	router *PaperRouter
}

func TestPaperRouterSuite(t *testing.T) {
	suite.Run(t, new(PaperRouterTestSuite))
}

func (suite *PaperRouterTestSuite) SetupTest() {
	suite.t0 = time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)
	suite.clock = clock.NewFakeClock(suite.t0)
	suite.router = NewPaperRouter(PaperRouterConfig{FillChunk: 0}, suite.clock, logger.NewNopLogger())
}

func (suite *PaperRouterTestSuite) limitIntent(side types.PurchaseType, price float64, quantity int64) types.OrderIntent {
	return types.OrderIntent{
		LineID:    "line-1",
		Symbol:    "SPY",
		Side:      side,
		OrderType: types.OrderTypeLimit,
		Price:     price,
		Quantity:  quantity,
		Reason:    types.Reason{Reason: types.OrderReasonEntryLadder, Message: "test"},
	}
}

func (suite *PaperRouterTestSuite) tick(price float64) {
	suite.router.ProcessTick(types.PriceTick{Symbol: "SPY", Price: price, Timestamp: suite.clock.Now()})
}

func (suite *PaperRouterTestSuite) TestLimitOrderRestsUntilCrossed() {
	order, err := suite.router.PlaceOrder(suite.limitIntent(types.PurchaseTypeBuy, 100, 10))
	suite.Require().NoError(err)
	suite.Equal(types.OrderStatusPending, order.Status)

	// Ticks above the buy limit never fill it.
	suite.tick(101)
	suite.tick(100.5)

	current, err := suite.router.OrderStatus(order.OrderID)
	suite.Require().NoError(err)
	suite.Equal(int64(0), current.FilledQuantity)
	suite.True(current.IsOpen())

	// A crossing tick fills at the limit price, not the tick price.
	suite.tick(99)

	current, err = suite.router.OrderStatus(order.OrderID)
	suite.Require().NoError(err)
	suite.Equal(types.OrderStatusFilled, current.Status)
	suite.Equal(int64(10), current.FilledQuantity)
	suite.Equal(int64(0), current.Quantity)
	suite.InDelta(100, current.Price, 1e-9)
	suite.True(current.FilledAt.IsSome())
}

func (suite *PaperRouterTestSuite) TestSellLimitFillsAtOrAboveLimit() {
	order, err := suite.router.PlaceOrder(suite.limitIntent(types.PurchaseTypeSell, 110, 5))
	suite.Require().NoError(err)

	suite.tick(109)
	current, _ := suite.router.OrderStatus(order.OrderID)
	suite.True(current.IsOpen())

	suite.tick(110)
	current, _ = suite.router.OrderStatus(order.OrderID)
	suite.Equal(types.OrderStatusFilled, current.Status)
}

func (suite *PaperRouterTestSuite) TestFillChunkProducesPartialFills() {
	router := NewPaperRouter(PaperRouterConfig{FillChunk: 3}, suite.clock, logger.NewNopLogger())

	order, err := router.PlaceOrder(suite.limitIntent(types.PurchaseTypeBuy, 100, 10))
	suite.Require().NoError(err)

	crossing := types.PriceTick{Symbol: "SPY", Price: 99, Timestamp: suite.t0}

	router.ProcessTick(crossing)
	current, _ := router.OrderStatus(order.OrderID)
	suite.Equal(int64(3), current.FilledQuantity)
	suite.Equal(int64(7), current.Quantity)
	suite.Equal(types.OrderStatusPending, current.Status, "partially filled orders stay pending")

	// Three more crossing ticks complete the order.
	router.ProcessTick(crossing)
	router.ProcessTick(crossing)
	router.ProcessTick(crossing)

	current, _ = router.OrderStatus(order.OrderID)
	suite.Equal(types.OrderStatusFilled, current.Status)
	suite.Equal(int64(10), current.FilledQuantity)
}

func (suite *PaperRouterTestSuite) TestMarketOrderFillsAtLastPrice() {
	suite.tick(102.5)

	order, err := suite.router.PlaceOrder(types.OrderIntent{
		LineID:    "",
		Symbol:    "SPY",
		Side:      types.PurchaseTypeSell,
		OrderType: types.OrderTypeMarket,
		Price:     0,
		Quantity:  4,
		Reason:    types.Reason{Reason: types.OrderReasonZeroOut, Message: "test"},
	})
	suite.Require().NoError(err)
	suite.Equal(types.OrderStatusFilled, order.Status)
	suite.Equal(int64(4), order.FilledQuantity)
}

func (suite *PaperRouterTestSuite) TestMarketOrderWithoutLastPriceFails() {
	_, err := suite.router.PlaceOrder(types.OrderIntent{
		LineID:    "",
		Symbol:    "SPY",
		Side:      types.PurchaseTypeSell,
		OrderType: types.OrderTypeMarket,
		Price:     0,
		Quantity:  4,
		Reason:    types.Reason{Reason: types.OrderReasonZeroOut, Message: "test"},
	})
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeNoMarketPrice))
}

func (suite *PaperRouterTestSuite) TestPlaceOrderValidatesIntent() {
	tests := []struct {
		name   string
		mutate func(intent *types.OrderIntent)
	}{
		{name: "missing symbol", mutate: func(i *types.OrderIntent) { i.Symbol = "" }},
		{name: "zero quantity", mutate: func(i *types.OrderIntent) { i.Quantity = 0 }},
		{name: "limit without price", mutate: func(i *types.OrderIntent) { i.Price = 0 }},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			intent := suite.limitIntent(types.PurchaseTypeBuy, 100, 10)
			tt.mutate(&intent)

			_, err := suite.router.PlaceOrder(intent)
			suite.Error(err)
		})
	}
}

func (suite *PaperRouterTestSuite) TestAmendOrder() {
	order, err := suite.router.PlaceOrder(suite.limitIntent(types.PurchaseTypeBuy, 100, 10))
	suite.Require().NoError(err)

	suite.Require().NoError(suite.router.AmendOrder(order.OrderID, 101, 8))

	current, _ := suite.router.OrderStatus(order.OrderID)
	suite.InDelta(101, current.Price, 1e-9)
	suite.Equal(int64(8), current.Quantity)

	suite.Error(suite.router.AmendOrder(order.OrderID, -1, 8))
	suite.Error(suite.router.AmendOrder("unknown", 101, 8))
}

func (suite *PaperRouterTestSuite) TestAmendTerminalOrderFails() {
	order, err := suite.router.PlaceOrder(suite.limitIntent(types.PurchaseTypeBuy, 100, 10))
	suite.Require().NoError(err)
	suite.tick(99)

	err = suite.router.AmendOrder(order.OrderID, 101, 8)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeAmendFailed))
}

func (suite *PaperRouterTestSuite) TestCancelOrder() {
	order, err := suite.router.PlaceOrder(suite.limitIntent(types.PurchaseTypeBuy, 100, 10))
	suite.Require().NoError(err)

	suite.Require().NoError(suite.router.CancelOrder(order.OrderID))

	current, _ := suite.router.OrderStatus(order.OrderID)
	suite.Equal(types.OrderStatusCancelled, current.Status)

	// Cancelling a terminal order is a deliberate no-op.
	suite.NoError(suite.router.CancelOrder(order.OrderID))
	suite.Error(suite.router.CancelOrder("unknown"))

	// A cancelled order never fills.
	suite.tick(99)
	current, _ = suite.router.OrderStatus(order.OrderID)
	suite.Equal(int64(0), current.FilledQuantity)
}

func (suite *PaperRouterTestSuite) TestRealizedPnLRoundTrip() {
	buy, err := suite.router.PlaceOrder(suite.limitIntent(types.PurchaseTypeBuy, 100, 10))
	suite.Require().NoError(err)
	suite.tick(100)

	current, _ := suite.router.OrderStatus(buy.OrderID)
	suite.Require().Equal(types.OrderStatusFilled, current.Status)

	_, err = suite.router.PlaceOrder(suite.limitIntent(types.PurchaseTypeSell, 110, 10))
	suite.Require().NoError(err)
	suite.tick(111)

	account := suite.router.Account("SPY")
	suite.True(account.Position.IsZero())
	// Bought 10 at 100, sold 10 at the 110 limit: 100 realized.
	suite.True(account.RealizedPnL.Equal(decimal.NewFromInt(100)),
		"expected 100 realized, got %s", account.RealizedPnL)
}

func (suite *PaperRouterTestSuite) TestAccountForUnknownSymbolIsZero() {
	account := suite.router.Account("QQQ")
	suite.True(account.Position.IsZero())
	suite.True(account.RealizedPnL.IsZero())
}

func (suite *PaperRouterTestSuite) TestOpenOrdersPreservePlacementOrder() {
	first, _ := suite.router.PlaceOrder(suite.limitIntent(types.PurchaseTypeBuy, 90, 1))
	second, _ := suite.router.PlaceOrder(suite.limitIntent(types.PurchaseTypeBuy, 91, 1))
	third, _ := suite.router.PlaceOrder(suite.limitIntent(types.PurchaseTypeBuy, 92, 1))

	open := suite.router.OpenOrders()
	suite.Require().Len(open, 3)
	suite.Equal([]string{first.OrderID, second.OrderID, third.OrderID},
		[]string{open[0].OrderID, open[1].OrderID, open[2].OrderID})
}

func (suite *PaperRouterTestSuite) TestInvalidTickIsIgnored() {
	order, _ := suite.router.PlaceOrder(suite.limitIntent(types.PurchaseTypeBuy, 100, 10))

	suite.router.ProcessTick(types.PriceTick{Symbol: "SPY", Price: -1, Timestamp: suite.t0})

	current, _ := suite.router.OrderStatus(order.OrderID)
	suite.Equal(int64(0), current.FilledQuantity)

	// The invalid tick must not become the last traded price.
	_, err := suite.router.PlaceOrder(types.OrderIntent{
		LineID:    "",
		Symbol:    "SPY",
		Side:      types.PurchaseTypeSell,
		OrderType: types.OrderTypeMarket,
		Price:     0,
		Quantity:  1,
		Reason:    types.Reason{Reason: types.OrderReasonZeroOut, Message: "test"},
	})
	suite.True(errors.HasCode(err, errors.ErrCodeNoMarketPrice))
}
