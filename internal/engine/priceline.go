// Package engine implements the order-laddering core: time-parameterized
// price lines, the ladder allocator, the market context tracker, the stop-out
// monitor, and the bot that orchestrates them tick by tick.
package engine

import (
	"math"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/ladder-trading/internal/execution"
	"github.com/rxtech-lab/ladder-trading/internal/logger"
	"github.com/rxtech-lab/ladder-trading/internal/types"
	"github.com/rxtech-lab/ladder-trading/pkg/errors"
	"go.uber.org/zap"
)

// slopeEpsilon separates genuinely sloped lines from horizontal ones when
// classifying direction. Slope is measured in price units per candle.
const slopeEpsilon = 1e-6

// PriceLine models one drawn trajectory as a linear price function of the
// signed candle index relative to now, and owns the single resting order for
// that trajectory.
//
// Anchor timestamps are converted to candle indices relative to the present
// on every evaluation (historical anchors negative, future anchors positive),
// so evaluating the fitted line always at index 0 keeps the projection
// consistent with real wall-clock time.
type PriceLine struct {
	id          string
	role        types.LineRole
	rank        int
	side        types.PurchaseType
	symbol      string
	anchorA     types.LinePoint
	anchorB     types.LinePoint
	barInterval time.Duration

	slope     float64
	intercept float64
	direction types.LineDirection

	targetShares int64
	currentOrder optional.Option[types.Order]
	filledOrders []types.Order

	log      *logger.Logger
	onPlaced func(order types.Order)
}

// NewPriceLine creates a price line from two anchors. Direction is classified
// from the anchor slope, which is invariant to the evaluation time.
func NewPriceLine(id string, role types.LineRole, rank int, side types.PurchaseType, symbol string, anchorA, anchorB types.LinePoint, barInterval time.Duration, log *logger.Logger) *PriceLine {
	line := &PriceLine{
		id:           id,
		role:         role,
		rank:         rank,
		side:         side,
		symbol:       symbol,
		anchorA:      anchorA,
		anchorB:      anchorB,
		barInterval:  barInterval,
		slope:        0,
		intercept:    0,
		direction:    types.LineDirectionHorizontal,
		targetShares: 0,
		currentOrder: optional.None[types.Order](),
		filledOrders: make([]types.Order, 0),
		log:          log,
		onPlaced:     nil,
	}

	line.refit(anchorA.Time)

	return line
}

// SetOrderPlacedHook registers a hook invoked after each successful placement.
func (l *PriceLine) SetOrderPlacedHook(hook func(order types.Order)) {
	l.onPlaced = hook
}

// ID returns the line id.
func (l *PriceLine) ID() string { return l.id }

// Role returns the line role.
func (l *PriceLine) Role() types.LineRole { return l.role }

// Rank returns the ladder rank.
func (l *PriceLine) Rank() int { return l.rank }

// Side returns the purchase side this line's orders use.
func (l *PriceLine) Side() types.PurchaseType { return l.side }

// Direction returns the drawn slope classification.
func (l *PriceLine) Direction() types.LineDirection { return l.direction }

// TargetShares returns the allocated share target.
func (l *PriceLine) TargetShares() int64 { return l.targetShares }

// SetTargetShares sets the allocated share target.
func (l *PriceLine) SetTargetShares(n int64) { l.targetShares = n }

// CurrentOrder returns the resting order, if any.
func (l *PriceLine) CurrentOrder() optional.Option[types.Order] {
	return l.currentOrder
}

// FilledOrders returns the retained fill history for this line.
func (l *PriceLine) FilledOrders() []types.Order {
	return l.filledOrders
}

// FilledShares returns the total filled size across retained orders plus any
// partial fill on the resting order.
func (l *PriceLine) FilledShares() int64 {
	var filled int64
	for _, order := range l.filledOrders {
		filled += order.FilledQuantity
	}

	if l.currentOrder.IsSome() {
		filled += l.currentOrder.Unwrap().FilledQuantity
	}

	return filled
}

// IsActive reports whether the line still has shares to work: a line is
// active iff its filled shares are below its target.
func (l *PriceLine) IsActive() bool {
	return l.FilledShares() < l.targetShares
}

// refit recomputes the candle indices of both anchors relative to now and
// fits slope and intercept. A degenerate fit (identical indices or a
// non-finite result) falls back to a horizontal line at the mean anchor price.
func (l *PriceLine) refit(now time.Time) {
	barSeconds := l.barInterval.Seconds()
	if barSeconds <= 0 {
		barSeconds = (time.Duration(types.DefaultBarIntervalMs) * time.Millisecond).Seconds()
	}

	x1 := l.anchorA.Time.Sub(now).Seconds() / barSeconds
	x2 := l.anchorB.Time.Sub(now).Seconds() / barSeconds
	p1 := l.anchorA.Price
	p2 := l.anchorB.Price

	if x1 == x2 {
		l.slope = 0
		l.intercept = (p1 + p2) / 2
	} else {
		l.slope = (p2 - p1) / (x2 - x1)
		l.intercept = p1 - l.slope*x1
	}

	if !isFinite(l.slope) || !isFinite(l.intercept) {
		l.slope = 0
		l.intercept = (p1 + p2) / 2
	}

	switch {
	case l.slope > slopeEpsilon:
		l.direction = types.LineDirectionUpward
	case l.slope < -slopeEpsilon:
		l.direction = types.LineDirectionDownward
	default:
		l.direction = types.LineDirectionHorizontal
	}
}

// CurrentPrice projects the line's price at the given instant. The anchors
// are re-indexed relative to now, so the fitted line is always evaluated at
// candle index 0.
func (l *PriceLine) CurrentPrice(now time.Time) float64 {
	l.refit(now)

	return l.intercept
}

// SyncOrder refreshes the resting order from the router's view, moving it to
// the retained fill history once it reaches a terminal status.
func (l *PriceLine) SyncOrder(router execution.OrderRouter) error {
	if l.currentOrder.IsNone() {
		return nil
	}

	current, err := router.OrderStatus(l.currentOrder.Unwrap().OrderID)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeLineUpdateFailed, err, "failed to sync order for line %s", l.id)
	}

	if current.IsOpen() {
		l.currentOrder = optional.Some(current)

		return nil
	}

	// Cancelled orders are retained too so their partial fills keep counting.
	l.filledOrders = append(l.filledOrders, current)
	l.currentOrder = optional.None[types.Order]()

	return nil
}

// UpdateOrder reconciles the resting order with the line's projected price
// and remaining size. maxSize caps the working size (position-limit headroom
// for entry lines, open shares for exit lines). An existing order is amended
// in place only when price or size actually changed; it is never blindly
// cancelled and replaced.
func (l *PriceLine) UpdateOrder(router execution.OrderRouter, now time.Time, maxSize int64) error {
	remaining := l.targetShares - l.FilledShares()
	if remaining > maxSize {
		remaining = maxSize
	}

	if remaining <= 0 {
		return l.CancelOrder(router)
	}

	price := l.CurrentPrice(now)
	if !isFinite(price) || price <= 0 {
		// Reject the projection and pull the resting order; the line stays
		// dormant until its anchors are corrected.
		if err := l.CancelOrder(router); err != nil {
			return err
		}

		return errors.Newf(errors.ErrCodeNonFiniteProjection, "line %s projected invalid price %f", l.id, price)
	}

	if l.currentOrder.IsNone() {
		intent := types.OrderIntent{
			LineID:    l.id,
			Symbol:    l.symbol,
			Side:      l.side,
			OrderType: types.OrderTypeLimit,
			Price:     price,
			Quantity:  remaining,
			Reason:    l.orderReason(),
		}

		order, err := router.PlaceOrder(intent)
		if err != nil {
			return errors.Wrapf(errors.ErrCodeOrderRejected, err, "failed to place order for line %s", l.id)
		}

		l.currentOrder = optional.Some(order)

		l.log.Debug("order placed",
			zap.String("line_id", l.id),
			zap.String("role", string(l.role)),
			zap.Float64("price", price),
			zap.Int64("quantity", remaining))

		if l.onPlaced != nil {
			l.onPlaced(order)
		}

		return nil
	}

	current := l.currentOrder.Unwrap()
	if current.Price == price && current.Quantity == remaining {
		return nil
	}

	if err := router.AmendOrder(current.OrderID, price, remaining); err != nil {
		return errors.Wrapf(errors.ErrCodeAmendFailed, err, "failed to amend order for line %s", l.id)
	}

	current.Price = price
	current.Quantity = remaining
	l.currentOrder = optional.Some(current)

	return nil
}

// CancelOrder pulls the resting order, retaining any partial fills.
func (l *PriceLine) CancelOrder(router execution.OrderRouter) error {
	if l.currentOrder.IsNone() {
		return nil
	}

	orderID := l.currentOrder.Unwrap().OrderID
	if err := router.CancelOrder(orderID); err != nil {
		return errors.Wrapf(errors.ErrCodeCancelFailed, err, "failed to cancel order for line %s", l.id)
	}

	return l.SyncOrder(router)
}

// Status returns the line's slice of a status snapshot.
func (l *PriceLine) Status() types.LineStatus {
	return types.LineStatus{
		ID:           l.id,
		Role:         l.role,
		Rank:         l.rank,
		Direction:    l.direction,
		TargetShares: l.targetShares,
		FilledShares: l.FilledShares(),
		CurrentOrder: l.currentOrder,
	}
}

func (l *PriceLine) orderReason() types.Reason {
	if l.role == types.LineRoleEntry {
		return types.Reason{
			Reason:  types.OrderReasonEntryLadder,
			Message: "entry trajectory resting order",
		}
	}

	return types.Reason{
		Reason:  types.OrderReasonExitLadder,
		Message: "exit ladder resting order",
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
