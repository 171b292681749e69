package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/ladder-trading/pkg/errors"
)

// ChartRight indicates whether the chart annotation targets a call-style
// (profit on rise) or put-style (profit on fall) position.
type ChartRight string

const (
	ChartRightCall ChartRight = "CALL"
	ChartRightPut  ChartRight = "PUT"
)

// Default configuration values.
const (
	DefaultUpdateIntervalMs = 1000
	DefaultBarIntervalMs    = 60000
)

// BotConfig holds the configuration for a single order-laddering bot.
type BotConfig struct {
	// Symbol is the instrument the bot trades.
	Symbol string `yaml:"symbol" json:"symbol" jsonschema:"title=Symbol,description=Instrument symbol the bot trades,required" validate:"required"`

	// ChartSide is the side of the drawn chart: BUY ladders are reversed during allocation.
	ChartSide PurchaseType `yaml:"chart_side" json:"chart_side" jsonschema:"title=Chart Side,required,enum=BUY,enum=SELL" validate:"required,oneof=BUY SELL"`

	// ChartRight selects the adverse-excursion sign: CALL treats falling prices as adverse, PUT rising prices.
	ChartRight ChartRight `yaml:"chart_right" json:"chart_right" jsonschema:"title=Chart Right,required,enum=CALL,enum=PUT" validate:"required,oneof=CALL PUT"`

	// PositionSizePerEntry is the share target assigned to each entry line.
	PositionSizePerEntry int64 `yaml:"position_size_per_entry" json:"position_size_per_entry" jsonschema:"title=Position Size Per Entry,required" validate:"required,gt=0"`

	// MaxPosition caps the cumulative entered shares.
	MaxPosition int64 `yaml:"max_position" json:"max_position" jsonschema:"title=Max Position,required" validate:"required,gt=0"`

	// SoftStopOutPercent is the adverse-excursion percent that starts the soft dwell timer. Zero disables the rule.
	SoftStopOutPercent float64 `yaml:"soft_stop_out_percent" json:"soft_stop_out_percent" jsonschema:"title=Soft Stop-Out Percent" validate:"gte=0"`

	// SoftStopOutTimeLimitMinutes is how long the soft breach must persist continuously before liquidation.
	SoftStopOutTimeLimitMinutes float64 `yaml:"soft_stop_out_time_limit_minutes" json:"soft_stop_out_time_limit_minutes" jsonschema:"title=Soft Stop-Out Time Limit (minutes)" validate:"gte=0"`

	// HardStopOutPercent is the adverse-excursion percent that arms the hard grace period. Zero disables the rule.
	HardStopOutPercent float64 `yaml:"hard_stop_out_percent" json:"hard_stop_out_percent" jsonschema:"title=Hard Stop-Out Percent" validate:"gte=0"`

	// UpdateIntervalMs is the scheduled tick interval (default 1000).
	UpdateIntervalMs int64 `yaml:"update_interval_ms" json:"update_interval_ms" jsonschema:"title=Update Interval (ms),default=1000" validate:"gte=0"`

	// BarIntervalMs is the candle width used to convert anchor timestamps to
	// signed candle indices (default 60000, one-minute bars).
	BarIntervalMs int64 `yaml:"bar_interval_ms" json:"bar_interval_ms" jsonschema:"title=Bar Interval (ms),default=60000" validate:"gte=0"`
}

// Validate validates the BotConfig struct and applies interval defaults.
func (c *BotConfig) Validate() error {
	if c.UpdateIntervalMs == 0 {
		c.UpdateIntervalMs = DefaultUpdateIntervalMs
	}

	if c.BarIntervalMs == 0 {
		c.BarIntervalMs = DefaultBarIntervalMs
	}

	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, "invalid bot configuration", err)
	}

	return nil
}

// UpdateInterval returns the scheduled tick interval as a duration.
func (c BotConfig) UpdateInterval() time.Duration {
	interval := c.UpdateIntervalMs
	if interval <= 0 {
		interval = DefaultUpdateIntervalMs
	}

	return time.Duration(interval) * time.Millisecond
}

// BarInterval returns the candle width as a duration.
func (c BotConfig) BarInterval() time.Duration {
	interval := c.BarIntervalMs
	if interval <= 0 {
		interval = DefaultBarIntervalMs
	}

	return time.Duration(interval) * time.Millisecond
}

// SoftStopOutTimeLimit returns the soft dwell-time limit as a duration.
func (c BotConfig) SoftStopOutTimeLimit() time.Duration {
	return time.Duration(c.SoftStopOutTimeLimitMinutes * float64(time.Minute))
}
