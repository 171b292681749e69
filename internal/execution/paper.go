package execution

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/ladder-trading/internal/clock"
	"github.com/rxtech-lab/ladder-trading/internal/logger"
	"github.com/rxtech-lab/ladder-trading/internal/types"
	"github.com/rxtech-lab/ladder-trading/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaperRouterConfig holds configuration for the paper venue.
type PaperRouterConfig struct {
	// FillChunk caps the size filled per crossing tick so partial fills can
	// be exercised. Zero fills the full remaining size at once.
	FillChunk int64 `yaml:"fill_chunk" json:"fill_chunk" jsonschema:"title=Fill Chunk,description=Max size filled per crossing tick (0 fills all at once)" validate:"gte=0"`
}

// symbolBook tracks the signed average-cost position for one symbol.
type symbolBook struct {
	position decimal.Decimal
	cost     decimal.Decimal
	realized decimal.Decimal
}

// AccountSummary is the paper venue's per-symbol accounting snapshot.
type AccountSummary struct {
	Symbol      string          `yaml:"symbol" json:"symbol"`
	Position    decimal.Decimal `yaml:"position" json:"position"`
	RealizedPnL decimal.Decimal `yaml:"realized_pnl" json:"realized_pnl"`
}

// PaperRouter is a deterministic simulation venue implementing OrderRouter.
// It keeps resting limit orders, fills them when a tick crosses the limit,
// executes market orders at the last traded price, and tracks realized PnL
// with exact decimal arithmetic.
type PaperRouter struct {
	mu        sync.Mutex
	config    PaperRouterConfig
	clock     clock.Clock
	log       *logger.Logger
	orders    map[string]*types.Order
	orderIDs  []string
	lastPrice map[string]float64
	books     map[string]*symbolBook
}

// NewPaperRouter creates a new paper venue.
func NewPaperRouter(config PaperRouterConfig, clk clock.Clock, log *logger.Logger) *PaperRouter {
	return &PaperRouter{
		mu:        sync.Mutex{},
		config:    config,
		clock:     clk,
		log:       log,
		orders:    make(map[string]*types.Order),
		orderIDs:  make([]string, 0),
		lastPrice: make(map[string]float64),
		books:     make(map[string]*symbolBook),
	}
}

// PlaceOrder implements OrderRouter.
func (r *PaperRouter) PlaceOrder(intent types.OrderIntent) (types.Order, error) {
	if err := intent.Validate(); err != nil {
		return types.Order{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	order := &types.Order{
		OrderID:        uuid.New().String(),
		LineID:         intent.LineID,
		Symbol:         intent.Symbol,
		Side:           intent.Side,
		OrderType:      intent.OrderType,
		Price:          intent.Price,
		Quantity:       intent.Quantity,
		FilledQuantity: 0,
		Status:         types.OrderStatusPending,
		PlacedAt:       r.clock.Now(),
		FilledAt:       optional.None[time.Time](),
		Reason:         intent.Reason,
	}

	if intent.OrderType == types.OrderTypeMarket {
		lastPrice, ok := r.lastPrice[intent.Symbol]
		if !ok {
			return types.Order{}, errors.Newf(errors.ErrCodeNoMarketPrice, "no traded price seen for %s", intent.Symbol)
		}

		r.fill(order, order.Quantity, lastPrice, r.clock.Now())
	}

	r.orders[order.OrderID] = order
	r.orderIDs = append(r.orderIDs, order.OrderID)

	r.log.Debug("paper order placed",
		zap.String("order_id", order.OrderID),
		zap.String("symbol", order.Symbol),
		zap.String("side", string(order.Side)),
		zap.String("type", string(order.OrderType)),
		zap.Float64("price", order.Price),
		zap.Int64("quantity", intent.Quantity))

	return *order, nil
}

// AmendOrder implements OrderRouter.
func (r *PaperRouter) AmendOrder(orderID string, price float64, quantity int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok {
		return errors.Newf(errors.ErrCodeOrderNotFound, "order %s not found", orderID)
	}

	if !order.IsOpen() {
		return errors.Newf(errors.ErrCodeAmendFailed, "order %s is %s", orderID, order.Status)
	}

	if price <= 0 || quantity <= 0 {
		return errors.Newf(errors.ErrCodeAmendFailed, "invalid amendment price=%f quantity=%d", price, quantity)
	}

	order.Price = price
	order.Quantity = quantity

	return nil
}

// CancelOrder implements OrderRouter. Cancelling an already terminal order is
// a no-op so the engine can cancel defensively without state bookkeeping.
func (r *PaperRouter) CancelOrder(orderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok {
		return errors.Newf(errors.ErrCodeOrderNotFound, "order %s not found", orderID)
	}

	if order.IsOpen() {
		order.Status = types.OrderStatusCancelled
	}

	return nil
}

// OrderStatus implements OrderRouter.
func (r *PaperRouter) OrderStatus(orderID string) (types.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok {
		return types.Order{}, errors.Newf(errors.ErrCodeOrderNotFound, "order %s not found", orderID)
	}

	return *order, nil
}

// ProcessTick records the last traded price and fills resting limit orders
// whose limit the tick crossed: buys fill at or below the limit, sells at or
// above. Fills execute at the resting limit price in placement order.
func (r *PaperRouter) ProcessTick(tick types.PriceTick) {
	if err := tick.Validate(); err != nil {
		r.log.Warn("paper venue skipping invalid tick", zap.Error(err))

		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastPrice[tick.Symbol] = tick.Price

	for _, orderID := range r.orderIDs {
		order := r.orders[orderID]
		if !order.IsOpen() || order.Symbol != tick.Symbol || order.OrderType != types.OrderTypeLimit {
			continue
		}

		crossed := (order.Side == types.PurchaseTypeBuy && tick.Price <= order.Price) ||
			(order.Side == types.PurchaseTypeSell && tick.Price >= order.Price)
		if !crossed {
			continue
		}

		fillSize := order.Quantity
		if r.config.FillChunk > 0 && fillSize > r.config.FillChunk {
			fillSize = r.config.FillChunk
		}

		r.fill(order, fillSize, order.Price, tick.Timestamp)
	}
}

// Account returns the accounting snapshot for a symbol.
func (r *PaperRouter) Account(symbol string) AccountSummary {
	r.mu.Lock()
	defer r.mu.Unlock()

	book := r.books[symbol]
	if book == nil {
		return AccountSummary{
			Symbol:      symbol,
			Position:    decimal.Zero,
			RealizedPnL: decimal.Zero,
		}
	}

	return AccountSummary{
		Symbol:      symbol,
		Position:    book.position,
		RealizedPnL: book.realized,
	}
}

// OpenOrders returns all resting orders in placement order.
func (r *PaperRouter) OpenOrders() []types.Order {
	r.mu.Lock()
	defer r.mu.Unlock()

	open := make([]types.Order, 0)

	for _, orderID := range r.orderIDs {
		if order := r.orders[orderID]; order.IsOpen() {
			open = append(open, *order)
		}
	}

	return open
}

// fill applies a fill of the given size and price to an order and the symbol
// book. Callers hold the router lock.
func (r *PaperRouter) fill(order *types.Order, size int64, price float64, at time.Time) {
	if size <= 0 {
		return
	}

	order.Quantity -= size
	order.FilledQuantity += size

	if order.Quantity <= 0 {
		order.Status = types.OrderStatusFilled
		order.FilledAt = optional.Some(at)
	}

	book := r.books[order.Symbol]
	if book == nil {
		book = &symbolBook{
			position: decimal.Zero,
			cost:     decimal.Zero,
			realized: decimal.Zero,
		}
		r.books[order.Symbol] = book
	}

	book.apply(order.Side, size, price)
}

// apply updates the signed average-cost book for one fill. Fills that cross
// through flat are split into a closing leg and an opening leg.
func (b *symbolBook) apply(side types.PurchaseType, size int64, price float64) {
	qty := decimal.NewFromInt(size)
	px := decimal.NewFromFloat(price)

	signed := qty
	if side == types.PurchaseTypeSell {
		signed = qty.Neg()
	}

	// Extending the current position (or opening from flat) just accrues cost.
	if b.position.IsZero() || b.position.Sign() == signed.Sign() {
		b.position = b.position.Add(signed)
		b.cost = b.cost.Add(px.Mul(qty))

		return
	}

	absPosition := b.position.Abs()
	avgCost := b.cost.Div(absPosition)

	closeQty := qty
	if closeQty.GreaterThan(absPosition) {
		closeQty = absPosition
	}

	// Realize PnL on the closed leg: longs gain when selling above average
	// cost, shorts when buying below it.
	legPnL := px.Sub(avgCost).Mul(closeQty)
	if b.position.Sign() < 0 {
		legPnL = legPnL.Neg()
	}

	b.realized = b.realized.Add(legPnL)
	b.cost = b.cost.Sub(avgCost.Mul(closeQty))

	if b.position.Sign() > 0 {
		b.position = b.position.Sub(closeQty)
	} else {
		b.position = b.position.Add(closeQty)
	}

	// Whatever exceeds the closed leg opens a new position on the other side.
	remainder := qty.Sub(closeQty)
	if remainder.Sign() > 0 {
		if side == types.PurchaseTypeBuy {
			b.position = b.position.Add(remainder)
		} else {
			b.position = b.position.Sub(remainder)
		}

		b.cost = b.cost.Add(px.Mul(remainder))
	}
}
