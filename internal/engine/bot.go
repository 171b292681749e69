package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/ladder-trading/internal/clock"
	"github.com/rxtech-lab/ladder-trading/internal/execution"
	"github.com/rxtech-lab/ladder-trading/internal/logger"
	"github.com/rxtech-lab/ladder-trading/internal/types"
	"github.com/rxtech-lab/ladder-trading/pkg/errors"
	"go.uber.org/zap"
)

// EventHandler receives lifecycle and error events from a bot. A nil handler
// drops events.
type EventHandler func(event types.BotEvent)

// OrderHandler receives every order the bot places. A nil handler drops them.
type OrderHandler func(botID string, order types.Order)

// LadderBot orchestrates a set of price lines through the allocator, the
// stop-out monitor, and the market context tracker. The scheduled timer tick
// and asynchronous price-tick delivery both funnel into the same serialized
// update path, so ticks are processed strictly in arrival order and control
// calls take effect before the next tick.
type LadderBot struct {
	mu sync.Mutex

	id     string
	config types.BotConfig
	router execution.OrderRouter
	clock  clock.Clock
	log    *logger.Logger

	assigner RoleAssigner
	events   EventHandler
	onOrder  OrderHandler

	entryLines []*PriceLine
	exitLines  []*PriceLine

	// Fill totals harvested from lines replaced by a wholesale rebuild, so
	// the derived ledger survives live line reassignment.
	enteredBase int64
	exitedBase  int64

	// Synthesized zero-out market orders, retained for the bot's lifetime.
	marketOrders []types.Order

	ledger  types.PositionLedger
	context *MarketContextTracker
	monitor *StopOutMonitor

	state          types.BotState
	configured     bool
	running        bool
	stoppedOut     bool
	marketedOut    bool
	emergencyBrake bool

	currentPrice    optional.Option[float64]
	startTime       optional.Option[time.Time]
	lastUpdateTime  optional.Option[time.Time]
	lastFilledTotal int64
}

// NewLadderBot creates an idle, unconfigured bot.
func NewLadderBot(id string, router execution.OrderRouter, clk clock.Clock, log *logger.Logger) *LadderBot {
	return &LadderBot{
		mu:              sync.Mutex{},
		id:              id,
		config:          types.BotConfig{}, //nolint:exhaustruct // set via Configure()
		router:          router,
		clock:           clk,
		log:             log,
		assigner:        LowestPriceAssigner{},
		events:          nil,
		onOrder:         nil,
		entryLines:      make([]*PriceLine, 0),
		exitLines:       make([]*PriceLine, 0),
		enteredBase:     0,
		exitedBase:      0,
		marketOrders:    make([]types.Order, 0),
		ledger:          types.PositionLedger{}, //nolint:exhaustruct // derived on every tick
		context:         NewMarketContextTracker(),
		monitor:         NewStopOutMonitor(log),
		state:           types.BotStateIdle,
		configured:      false,
		running:         false,
		stoppedOut:      false,
		marketedOut:     false,
		emergencyBrake:  false,
		currentPrice:    optional.None[float64](),
		startTime:       optional.None[time.Time](),
		lastUpdateTime:  optional.None[time.Time](),
		lastFilledTotal: 0,
	}
}

// ID returns the bot id.
func (b *LadderBot) ID() string { return b.id }

// SetEventHandler registers the lifecycle event sink.
func (b *LadderBot) SetEventHandler(handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.events = handler
}

// SetOrderHandler registers the order placement sink.
func (b *LadderBot) SetOrderHandler(handler OrderHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.onOrder = handler
	for _, line := range b.allLines() {
		b.hookLine(line)
	}
}

// SetRoleAssigner replaces the role assignment strategy. The default is the
// lowest-price rule; the change applies to the next AssignLines call.
func (b *LadderBot) SetRoleAssigner(assigner RoleAssigner) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.assigner = assigner
}

// Configure validates and applies a configuration. After a terminal state,
// reconfiguring re-arms the bot for another start.
func (b *LadderBot) Configure(config types.BotConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.config = config
	b.configured = true

	if !b.running && b.state != types.BotStateIdle {
		b.state = types.BotStateIdle
	}

	return nil
}

// AssignLines rebuilds all price lines wholesale from raw drawn lines. The
// configured role assigner chooses the entry line; the rest become exit lines
// ranked ascending by price. Fills on replaced lines are harvested first so
// the derived ledger is preserved. If the bot is running the allocator is
// re-run immediately.
func (b *LadderBot) AssignLines(rawLines []types.RawLine) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.configured {
		return errors.New(errors.ErrCodeNotConfigured, "assign lines requires a configuration")
	}

	for i := range rawLines {
		if err := rawLines[i].Validate(); err != nil {
			return err
		}
	}

	// Pull resting orders and retain their fills before discarding the old
	// lines; the rebuild is wholesale, never an incremental patch.
	b.cancelAllOrders()

	for _, line := range b.entryLines {
		b.enteredBase += line.FilledShares()
	}

	for _, line := range b.exitLines {
		b.exitedBase += line.FilledShares()
	}

	entries, exits := b.assigner.Assign(rawLines, b.config)

	b.entryLines = make([]*PriceLine, 0, len(entries))
	for _, raw := range entries {
		line := NewPriceLine(raw.ID, types.LineRoleEntry, 0, b.config.ChartSide, b.config.Symbol,
			raw.AnchorA(), raw.AnchorB(), b.config.BarInterval(), b.log)
		b.hookLine(line)
		b.entryLines = append(b.entryLines, line)
	}

	b.exitLines = make([]*PriceLine, 0, len(exits))
	for i, raw := range exits {
		line := NewPriceLine(raw.ID, types.LineRoleExit, i+1, b.config.ChartSide.Opposite(), b.config.Symbol,
			raw.AnchorA(), raw.AnchorB(), b.config.BarInterval(), b.log)
		b.hookLine(line)
		b.exitLines = append(b.exitLines, line)
	}

	b.log.Info("lines assigned",
		zap.String("bot_id", b.id),
		zap.Int("entry_lines", len(b.entryLines)),
		zap.Int("exit_lines", len(b.exitLines)))

	if b.running {
		b.recomputeLedger()
		AllocateEntries(b.entryLines, b.config.PositionSizePerEntry)
		AllocateExits(b.exitLines, b.config.ChartSide, b.ledger.SharesEntered)
	} else if b.state != types.BotStateIdle {
		b.state = types.BotStateIdle
	}

	return nil
}

// Start begins the tick loop. It requires a configuration and at least one
// entry line; missing exit lines are allowed with a warning. After a stop the
// bot must be reconfigured before starting again.
func (b *LadderBot) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.clock.Now()

	if b.running {
		b.log.Warn("start ignored: bot already running", zap.String("bot_id", b.id))

		return errors.Newf(errors.ErrCodeAlreadyRunning, "bot %s is already running", b.id)
	}

	if !b.configured {
		return errors.Newf(errors.ErrCodeNotConfigured, "bot %s has no configuration", b.id)
	}

	if b.state != types.BotStateIdle {
		b.log.Warn("start ignored: bot requires reconfiguration",
			zap.String("bot_id", b.id),
			zap.String("state", string(b.state)))

		return errors.Newf(errors.ErrCodeNotReconfigured, "bot %s must be reconfigured after %s", b.id, b.state)
	}

	if len(b.entryLines) == 0 {
		err := errors.Newf(errors.ErrCodeNoEntryLine, "bot %s has no entry line", b.id)
		b.emit(types.BotEventError, types.EventReasonNoEntryLine, err.Error(), now)

		return err
	}

	if len(b.exitLines) == 0 {
		b.log.Warn("starting without exit lines", zap.String("bot_id", b.id))
	}

	b.stoppedOut = false
	b.marketedOut = false
	b.emergencyBrake = false
	b.monitor.Reset()
	b.startTime = optional.Some(now)
	b.state = types.BotStateRunning
	b.running = true

	b.recomputeLedger()
	AllocateEntries(b.entryLines, b.config.PositionSizePerEntry)
	AllocateExits(b.exitLines, b.config.ChartSide, b.ledger.SharesEntered)

	b.emit(types.BotEventStarted, types.EventReasonStarted, "bot started", now)
	b.log.Info("bot started", zap.String("bot_id", b.id), zap.String("symbol", b.config.Symbol))

	return nil
}

// Stop halts the tick loop without cancelling resting orders or flattening
// the position. It takes effect before the next scheduled tick.
func (b *LadderBot) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == types.BotStateIdle {
		b.log.Warn("stop ignored: bot is idle", zap.String("bot_id", b.id))

		return errors.Newf(errors.ErrCodeNotRunning, "bot %s is not running", b.id)
	}

	b.running = false
	b.state = types.BotStateStopped
	b.emit(types.BotEventStopped, types.EventReasonUserStop, "bot stopped", b.clock.Now())
	b.log.Info("bot stopped", zap.String("bot_id", b.id))

	return nil
}

// EmergencyStop cancels every resting order and halts the loop immediately.
// Unlike a stop-out it does not synthesize a liquidating market order: a
// user-initiated abort deliberately leaves any open exposure untouched.
// It is accepted in any state and always succeeds.
func (b *LadderBot) EmergencyStop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.cancelAllOrders()
	b.emergencyBrake = true
	b.running = false
	b.state = types.BotStateEmergencyStopped

	b.emit(types.BotEventEmergencyStopped, types.EventReasonUserAbort, "emergency stop", b.clock.Now())
	b.log.Warn("emergency stop", zap.String("bot_id", b.id))
}

// OnPriceTick delivers an asynchronous price observation. Invalid prices are
// absorbed: the tick is skipped, the bot stays running, and the previous
// price stands until valid data resumes.
func (b *LadderBot) OnPriceTick(tick types.PriceTick) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := tick.Validate(); err != nil {
		b.log.Warn("skipping invalid price tick",
			zap.String("bot_id", b.id),
			zap.Float64("price", tick.Price),
			zap.Error(err))

		return
	}

	b.currentPrice = optional.Some(tick.Price)
	b.context.AddSample(tick.Price, tick.Timestamp)

	b.update(tick.Timestamp)
}

// OnTick runs one scheduled update at the given instant. The injected clock
// convention keeps the loop deterministic under test.
func (b *LadderBot) OnTick(now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.update(now)
}

// Status returns an immutable snapshot of the bot.
func (b *LadderBot) Status() types.BotStatus {
	b.mu.Lock()
	defer b.mu.Unlock()

	lines := make([]types.LineStatus, 0, len(b.entryLines)+len(b.exitLines))
	for _, line := range b.allLines() {
		lines = append(lines, line.Status())
	}

	return types.BotStatus{
		ID:             b.id,
		State:          b.state,
		IsRunning:      b.running,
		StoppedOut:     b.stoppedOut,
		MarketedOut:    b.marketedOut,
		EmergencyBrake: b.emergencyBrake,
		Ledger:         b.ledger,
		CurrentPrice:   b.currentPrice,
		MarketContext:  b.context.Context(),
		Lines:          lines,
		StartTime:      b.startTime,
		LastUpdateTime: b.lastUpdateTime,
	}
}

// Config returns the current configuration.
func (b *LadderBot) Config() types.BotConfig {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.config
}

// IsRunning reports whether the tick loop is active.
func (b *LadderBot) IsRunning() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.running
}

// update is the single serialized mutation path. Callers hold the bot lock.
func (b *LadderBot) update(now time.Time) {
	if !b.running || b.emergencyBrake {
		return
	}

	// 1. Refresh fills and derive the ledger. A failing line is reported and
	// skipped so it cannot block the others.
	for _, line := range b.allLines() {
		if err := line.SyncOrder(b.router); err != nil {
			b.reportLineError(line, err, now)
		}
	}

	b.recomputeLedger()

	// 2. Terminal check: target filled and flat, or force-liquidated and flat.
	if b.checkTerminal(now) {
		return
	}

	// 3. Without a usable price this tick is skipped, nothing more.
	if b.currentPrice.IsNone() {
		return
	}

	price := b.currentPrice.Unwrap()

	// 4. New fills since the last tick redistribute the exit ladder.
	filledTotal := b.ledger.SharesEntered + b.ledger.SharesExited + b.ledger.MarketSharesExited
	if filledTotal != b.lastFilledTotal {
		b.lastFilledTotal = filledTotal
		AllocateExits(b.exitLines, b.config.ChartSide, b.ledger.SharesEntered)
	}

	// 5. Risk check while exposure is open.
	if b.ledger.OpenShares > 0 && !b.stoppedOut && !b.marketedOut && len(b.entryLines) > 0 {
		entryPrice := b.entryLines[0].CurrentPrice(now)

		decision := b.monitor.Evaluate(b.config, entryPrice, price, now)
		if decision.Liquidate {
			b.zeroOut(now, decision)

			return
		}
	}

	// 6. Work only the currently eligible entry and exit line, never every
	// line at once.
	if entry := b.eligibleEntryLine(); entry != nil {
		headroom := b.config.MaxPosition - b.ledger.SharesEntered
		if headroom < 0 {
			headroom = 0
		}

		if err := entry.UpdateOrder(b.router, now, headroom); err != nil {
			b.reportLineError(entry, err, now)
		}
	}

	if exit := b.eligibleExitLine(); exit != nil {
		if err := exit.UpdateOrder(b.router, now, b.ledger.OpenShares); err != nil {
			b.reportLineError(exit, err, now)
		}
	}

	// 7.
	b.lastUpdateTime = optional.Some(now)
}

// checkTerminal stops the bot once its work is done: entry targets filled and
// flat means Completed; a forced liquidation that left the book flat settles
// into StoppedOut.
func (b *LadderBot) checkTerminal(now time.Time) bool {
	if b.stoppedOut || b.marketedOut {
		if b.ledger.IsFlat() {
			b.running = false
			b.state = types.BotStateStoppedOut

			return true
		}

		return false
	}

	var entryTarget, entryFilled int64
	for _, line := range b.entryLines {
		entryTarget += line.TargetShares()
		entryFilled += line.FilledShares()
	}

	if entryTarget > 0 && entryFilled >= entryTarget && b.ledger.SharesEntered > 0 && b.ledger.IsFlat() {
		b.cancelAllOrders()
		b.running = false
		b.state = types.BotStateCompleted
		b.emit(types.BotEventCompleted, types.EventReasonTargetReached, "entry target filled and position flat", now)
		b.log.Info("bot completed", zap.String("bot_id", b.id))

		return true
	}

	return false
}

// zeroOut flattens the open position: cancel every resting order, mark the
// bot stopped out, and synthesize one market order for the full open size on
// the side opposite the entry direction. The fill is recorded against
// marketSharesExited, never sharesExited, so the ledger invariants hold.
func (b *LadderBot) zeroOut(now time.Time, decision StopOutDecision) {
	b.cancelAllOrders()
	b.recomputeLedger()

	b.stoppedOut = true

	if b.ledger.OpenShares > 0 {
		intent := types.OrderIntent{
			LineID:    "",
			Symbol:    b.config.Symbol,
			Side:      b.config.ChartSide.Opposite(),
			OrderType: types.OrderTypeMarket,
			Price:     0,
			Quantity:  b.ledger.OpenShares,
			Reason: types.Reason{
				Reason:  types.OrderReasonZeroOut,
				Message: fmt.Sprintf("stop-out liquidation (%s, %.2f%% adverse)", decision.Reason, decision.Percent),
			},
		}

		order, err := b.router.PlaceOrder(intent)
		if err != nil {
			b.log.Error("zero-out market order failed",
				zap.String("bot_id", b.id),
				zap.Error(err))
			b.emit(types.BotEventError, types.EventReasonOrderFailed, err.Error(), now)
		} else {
			b.marketedOut = true
			b.marketOrders = append(b.marketOrders, order)

			if b.onOrder != nil {
				b.onOrder(b.id, order)
			}
		}
	}

	b.recomputeLedger()
	b.running = false
	b.state = types.BotStateStoppedOut
	b.emit(types.BotEventStoppedOut, decision.Reason,
		fmt.Sprintf("stop-out at %.2f%% adverse excursion", decision.Percent), now)
	b.log.Warn("bot stopped out",
		zap.String("bot_id", b.id),
		zap.String("reason", decision.Reason),
		zap.Float64("percent", decision.Percent))
}

// eligibleEntryLine returns the first active entry line the market context
// allows: upward lines need a non-bearish context, downward (dip-buy) lines a
// non-bullish one, horizontal lines are always eligible.
func (b *LadderBot) eligibleEntryLine() *PriceLine {
	trend := b.context.Context().Trend

	for _, line := range b.entryLines {
		if !line.IsActive() {
			continue
		}

		switch line.Direction() {
		case types.LineDirectionUpward:
			if trend != types.MarketTrendBearish {
				return line
			}
		case types.LineDirectionDownward:
			if trend != types.MarketTrendBullish {
				return line
			}
		case types.LineDirectionHorizontal:
			return line
		}
	}

	return nil
}

// eligibleExitLine returns the first active exit line in ladder order. Exit
// lines stay eligible in any market context once a position is open.
func (b *LadderBot) eligibleExitLine() *PriceLine {
	if b.ledger.OpenShares <= 0 {
		return nil
	}

	for _, line := range LadderOrder(b.exitLines, b.config.ChartSide) {
		if line.IsActive() {
			return line
		}
	}

	return nil
}

func (b *LadderBot) recomputeLedger() {
	entered := b.enteredBase
	for _, line := range b.entryLines {
		entered += line.FilledShares()
	}

	exited := b.exitedBase
	for _, line := range b.exitLines {
		exited += line.FilledShares()
	}

	var marketExited int64
	for _, order := range b.marketOrders {
		marketExited += order.FilledQuantity
	}

	b.ledger = types.DeriveLedger(entered, exited, marketExited)
}

func (b *LadderBot) cancelAllOrders() {
	for _, line := range b.allLines() {
		if err := line.CancelOrder(b.router); err != nil {
			b.log.Error("failed to cancel line order",
				zap.String("bot_id", b.id),
				zap.String("line_id", line.ID()),
				zap.Error(err))
		}
	}
}

func (b *LadderBot) allLines() []*PriceLine {
	lines := make([]*PriceLine, 0, len(b.entryLines)+len(b.exitLines))
	lines = append(lines, b.entryLines...)
	lines = append(lines, b.exitLines...)

	return lines
}

func (b *LadderBot) hookLine(line *PriceLine) {
	line.SetOrderPlacedHook(func(order types.Order) {
		if b.onOrder != nil {
			b.onOrder(b.id, order)
		}
	})
}

func (b *LadderBot) reportLineError(line *PriceLine, err error, now time.Time) {
	b.log.Error("line update failed",
		zap.String("bot_id", b.id),
		zap.String("line_id", line.ID()),
		zap.Error(err))

	if !errors.IsDataError(err) {
		b.emit(types.BotEventError, types.EventReasonLineFailed, err.Error(), now)
	}
}

func (b *LadderBot) emit(eventType types.BotEventType, reason, message string, now time.Time) {
	if b.events == nil {
		return
	}

	b.events(types.BotEvent{
		BotID: b.id,
		Type:  eventType,
		Reason: types.Reason{
			Reason:  reason,
			Message: message,
		},
		Time: now,
	})
}
