// Package orchestrator maintains the registry of order-laddering bots keyed
// by configuration id, routes price ticks to them, and fans lifecycle events
// out to the embedding service through an explicit callbacks struct.
package orchestrator

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rxtech-lab/ladder-trading/internal/clock"
	"github.com/rxtech-lab/ladder-trading/internal/engine"
	"github.com/rxtech-lab/ladder-trading/internal/execution"
	"github.com/rxtech-lab/ladder-trading/internal/logger"
	"github.com/rxtech-lab/ladder-trading/internal/types"
	"github.com/rxtech-lab/ladder-trading/pkg/errors"
	"go.uber.org/zap"
)

// Lifecycle callback types for the orchestrator's outbound fan-out.

// OnBotEventCallback is called for every lifecycle or error event a bot emits.
type OnBotEventCallback func(event types.BotEvent)

// OnOrderPlacedCallback is called when a bot places an order.
type OnOrderPlacedCallback func(botID string, order types.Order)

// OnStatusChangeCallback is called after a control call changes a bot's state.
type OnStatusChangeCallback func(botID string, status types.BotStatus)

// OnErrorCallback is called when a non-fatal orchestrator error occurs.
type OnErrorCallback func(err error)

// Callbacks holds all outbound callback functions for the orchestrator.
// All fields are pointers - nil means no callback will be invoked.
type Callbacks struct {
	// OnBotEvent is called for every lifecycle or error event a bot emits.
	OnBotEvent *OnBotEventCallback

	// OnOrderPlaced is called when a bot places an order.
	OnOrderPlaced *OnOrderPlacedCallback

	// OnStatusChange is called after a control call changes a bot's state.
	OnStatusChange *OnStatusChangeCallback

	// OnError is called when a non-fatal orchestrator error occurs.
	OnError *OnErrorCallback
}

// Orchestrator is the registry of bots keyed by configuration id. The
// registry is mutated only by UpsertBot/RemoveBot, never by tick processing;
// each bot exclusively owns its lines, ledger, and context tracker.
type Orchestrator struct {
	mu sync.RWMutex

	bots      map[string]*engine.LadderBot
	router    execution.OrderRouter
	clock     clock.Clock
	log       *logger.Logger
	callbacks Callbacks
	assigner  engine.RoleAssigner
}

// NewOrchestrator creates an orchestrator over the given order router.
func NewOrchestrator(router execution.OrderRouter, clk clock.Clock, log *logger.Logger, callbacks Callbacks) *Orchestrator {
	return &Orchestrator{
		mu:        sync.RWMutex{},
		bots:      make(map[string]*engine.LadderBot),
		router:    router,
		clock:     clk,
		log:       log,
		callbacks: callbacks,
		assigner:  nil,
	}
}

// SetRoleAssigner replaces the role assignment strategy used by bots created
// or updated from now on.
func (o *Orchestrator) SetRoleAssigner(assigner engine.RoleAssigner) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.assigner = assigner
	for _, bot := range o.bots {
		bot.SetRoleAssigner(assigner)
	}
}

// UpsertBot creates a bot for the configuration id or reconfigures the
// existing one.
func (o *Orchestrator) UpsertBot(configID string, config types.BotConfig) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	bot, exists := o.bots[configID]
	if !exists {
		bot = engine.NewLadderBot(configID, o.router, o.clock, o.log)
		bot.SetEventHandler(o.emitBotEvent)
		bot.SetOrderHandler(o.emitOrderPlaced)

		if o.assigner != nil {
			bot.SetRoleAssigner(o.assigner)
		}

		o.bots[configID] = bot
		o.log.Info("bot created", zap.String("config_id", configID), zap.String("symbol", config.Symbol))
	}

	if err := bot.Configure(config); err != nil {
		return err
	}

	o.notifyStatusChange(configID, bot)

	return nil
}

// RemoveBot stops and discards the bot for the configuration id. Removing an
// unknown id is a no-op.
func (o *Orchestrator) RemoveBot(configID string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	bot, exists := o.bots[configID]
	if !exists {
		return
	}

	if bot.IsRunning() {
		if err := bot.Stop(); err != nil {
			o.log.Warn("failed to stop bot on removal", zap.String("config_id", configID), zap.Error(err))
		}
	}

	delete(o.bots, configID)
	o.log.Info("bot removed", zap.String("config_id", configID))
}

// AssignLines delegates raw drawn lines to the bot for the configuration id.
func (o *Orchestrator) AssignLines(configID string, rawLines []types.RawLine) error {
	bot, err := o.lookup(configID)
	if err != nil {
		return err
	}

	if err := bot.AssignLines(rawLines); err != nil {
		return err
	}

	o.notifyStatusChange(configID, bot)

	return nil
}

// Start starts the bot for the configuration id.
func (o *Orchestrator) Start(configID string) error {
	bot, err := o.lookup(configID)
	if err != nil {
		return err
	}

	if err := bot.Start(); err != nil {
		o.emitError(err)

		return err
	}

	o.notifyStatusChange(configID, bot)

	return nil
}

// Stop stops the bot for the configuration id.
func (o *Orchestrator) Stop(configID string) error {
	bot, err := o.lookup(configID)
	if err != nil {
		return err
	}

	if err := bot.Stop(); err != nil {
		return err
	}

	o.notifyStatusChange(configID, bot)

	return nil
}

// EmergencyStop cancels all of the bot's resting orders and halts it
// immediately. It is accepted in any state and always succeeds.
func (o *Orchestrator) EmergencyStop(configID string) error {
	bot, err := o.lookup(configID)
	if err != nil {
		return err
	}

	bot.EmergencyStop()
	o.notifyStatusChange(configID, bot)

	return nil
}

// RouteTick forwards a price tick to the bot for the configuration id. Ticks
// for unknown or non-running bots are silently ignored.
func (o *Orchestrator) RouteTick(configID string, tick types.PriceTick) {
	o.mu.RLock()
	bot, exists := o.bots[configID]
	o.mu.RUnlock()

	if !exists || !bot.IsRunning() {
		return
	}

	bot.OnPriceTick(tick)
}

// Status returns an immutable snapshot of the bot for the configuration id.
func (o *Orchestrator) Status(configID string) (types.BotStatus, error) {
	bot, err := o.lookup(configID)
	if err != nil {
		return types.BotStatus{}, err
	}

	return bot.Status(), nil
}

// BotIDs returns the registered configuration ids in stable order.
func (o *Orchestrator) BotIDs() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()

	ids := make([]string, 0, len(o.bots))
	for id := range o.bots {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}

// RunTicker drives scheduled ticks for every registered bot from a single
// ticker until the context is cancelled. The bots themselves own no timers.
func (o *Orchestrator) RunTicker(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			o.TickAll(o.clock.Now())
		}
	}
}

// TickAll runs one scheduled update on every registered bot.
func (o *Orchestrator) TickAll(now time.Time) {
	o.mu.RLock()
	bots := make([]*engine.LadderBot, 0, len(o.bots))

	for _, bot := range o.bots {
		bots = append(bots, bot)
	}
	o.mu.RUnlock()

	for _, bot := range bots {
		bot.OnTick(now)
	}
}

func (o *Orchestrator) lookup(configID string) (*engine.LadderBot, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	bot, exists := o.bots[configID]
	if !exists {
		return nil, errors.Newf(errors.ErrCodeBotNotFound, "no bot for configuration %s", configID)
	}

	return bot, nil
}

func (o *Orchestrator) emitBotEvent(event types.BotEvent) {
	if o.callbacks.OnBotEvent != nil {
		(*o.callbacks.OnBotEvent)(event)
	}
}

func (o *Orchestrator) emitOrderPlaced(botID string, order types.Order) {
	if o.callbacks.OnOrderPlaced != nil {
		(*o.callbacks.OnOrderPlaced)(botID, order)
	}
}

func (o *Orchestrator) emitError(err error) {
	if o.callbacks.OnError != nil {
		(*o.callbacks.OnError)(err)
	}
}

func (o *Orchestrator) notifyStatusChange(configID string, bot *engine.LadderBot) {
	if o.callbacks.OnStatusChange != nil {
		(*o.callbacks.OnStatusChange)(configID, bot.Status())
	}
}
