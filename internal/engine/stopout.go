package engine

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/ladder-trading/internal/logger"
	"github.com/rxtech-lab/ladder-trading/internal/types"
	"go.uber.org/zap"
)

// HardStopGracePeriod is the noise-absorption window after the first hard
// breach of a breach episode. Nothing happens inside it; if the breach still
// holds on the first check after it elapses, the position is liquidated.
const HardStopGracePeriod = 30 * time.Second

// StopOutDecision is the monitor's verdict for one evaluation.
type StopOutDecision struct {
	// Liquidate requests a full zero-out of the position.
	Liquidate bool

	// Reason is the machine-readable reason code when Liquidate is set.
	Reason string

	// Percent is the adverse excursion evaluated, for logging and events.
	Percent float64
}

// StopOutMonitor evaluates the two-tier adverse-excursion rules.
//
// Soft: while the excursion exceeds the soft threshold a dwell timer runs;
// returning inside tolerance at any point resets it completely (no partial
// credit). Liquidation triggers only when the breach persists continuously
// for the configured time limit.
//
// Hard: the first breach of the hard threshold arms a fixed grace period. If
// the breach still holds when re-checked after the grace period, liquidation
// is immediate; recovering under the threshold clears the marker, so the rule
// is edge-triggered once per breach episode.
type StopOutMonitor struct {
	softBreachSince optional.Option[time.Time]
	hardBreachAt    optional.Option[time.Time]
	log             *logger.Logger
}

// NewStopOutMonitor creates a monitor with no active breach episodes.
func NewStopOutMonitor(log *logger.Logger) *StopOutMonitor {
	return &StopOutMonitor{
		softBreachSince: optional.None[time.Time](),
		hardBreachAt:    optional.None[time.Time](),
		log:             log,
	}
}

// Reset clears both breach episodes.
func (m *StopOutMonitor) Reset() {
	m.softBreachSince = optional.None[time.Time]()
	m.hardBreachAt = optional.None[time.Time]()
}

// PercentFromEntry returns the adverse excursion percent of price against the
// entry trajectory's current price. Positive always means the market moved
// against the position: falling prices hurt call-style configurations, rising
// prices hurt put-style ones.
func PercentFromEntry(chartRight types.ChartRight, entryPrice, price float64) float64 {
	if entryPrice == 0 {
		return 0
	}

	percent := 100 * (entryPrice - price) / entryPrice
	if chartRight == types.ChartRightPut {
		percent = -percent
	}

	return percent
}

// Evaluate runs the soft rule then the hard rule against the current adverse
// excursion. A zero threshold disables the corresponding rule.
func (m *StopOutMonitor) Evaluate(config types.BotConfig, entryPrice, price float64, now time.Time) StopOutDecision {
	percent := PercentFromEntry(config.ChartRight, entryPrice, price)

	decision := StopOutDecision{
		Liquidate: false,
		Reason:    "",
		Percent:   percent,
	}

	// Soft rule: continuous dwell above the threshold.
	if config.SoftStopOutPercent > 0 {
		if percent > config.SoftStopOutPercent {
			if m.softBreachSince.IsNone() {
				m.softBreachSince = optional.Some(now)

				m.log.Warn("soft stop-out dwell started",
					zap.Float64("percent", percent),
					zap.Float64("threshold", config.SoftStopOutPercent))
			} else if now.Sub(m.softBreachSince.Unwrap()) >= config.SoftStopOutTimeLimit() {
				decision.Liquidate = true
				decision.Reason = types.EventReasonSoftStopOut

				return decision
			}
		} else {
			// One in-tolerance observation resets the dwell timer entirely.
			m.softBreachSince = optional.None[time.Time]()
		}
	}

	// Hard rule: edge-triggered grace period per breach episode.
	if config.HardStopOutPercent > 0 {
		if percent > config.HardStopOutPercent {
			if m.hardBreachAt.IsNone() {
				m.hardBreachAt = optional.Some(now)

				m.log.Warn("hard stop-out grace period armed",
					zap.Float64("percent", percent),
					zap.Float64("threshold", config.HardStopOutPercent))
			} else if now.Sub(m.hardBreachAt.Unwrap()) >= HardStopGracePeriod {
				decision.Liquidate = true
				decision.Reason = types.EventReasonHardStopOut

				return decision
			}
		} else {
			m.hardBreachAt = optional.None[time.Time]()
		}
	}

	return decision
}
