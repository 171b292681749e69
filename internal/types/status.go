package types

import (
	"time"

	"github.com/moznion/go-optional"
)

// BotState is the lifecycle state of an order-laddering bot.
type BotState string

const (
	BotStateIdle             BotState = "IDLE"
	BotStateRunning          BotState = "RUNNING"
	BotStateCompleted        BotState = "COMPLETED"
	BotStateStoppedOut       BotState = "STOPPED_OUT"
	BotStateEmergencyStopped BotState = "EMERGENCY_STOPPED"
	BotStateStopped          BotState = "STOPPED"
)

// IsTerminal reports whether the state ends the bot's run. A terminal bot
// requires reconfiguration before it accepts start() again.
func (s BotState) IsTerminal() bool {
	switch s {
	case BotStateCompleted, BotStateStoppedOut, BotStateEmergencyStopped, BotStateStopped:
		return true
	case BotStateIdle, BotStateRunning:
		return false
	default:
		return false
	}
}

// LineStatus is the per-line slice of a status snapshot.
type LineStatus struct {
	ID           string                 `yaml:"id" json:"id"`
	Role         LineRole               `yaml:"role" json:"role"`
	Rank         int                    `yaml:"rank" json:"rank"`
	Direction    LineDirection          `yaml:"direction" json:"direction"`
	TargetShares int64                  `yaml:"target_shares" json:"target_shares"`
	FilledShares int64                  `yaml:"filled_shares" json:"filled_shares"`
	CurrentOrder optional.Option[Order] `yaml:"current_order" json:"current_order"`
}

// BotStatus is an immutable pull-based snapshot of a bot.
type BotStatus struct {
	ID             string                     `yaml:"id" json:"id"`
	State          BotState                   `yaml:"state" json:"state"`
	IsRunning      bool                       `yaml:"is_running" json:"is_running"`
	StoppedOut     bool                       `yaml:"stopped_out" json:"stopped_out"`
	MarketedOut    bool                       `yaml:"marketed_out" json:"marketed_out"`
	EmergencyBrake bool                       `yaml:"emergency_brake" json:"emergency_brake"`
	Ledger         PositionLedger             `yaml:"ledger" json:"ledger"`
	CurrentPrice   optional.Option[float64]   `yaml:"current_price" json:"current_price"`
	MarketContext  MarketContext              `yaml:"market_context" json:"market_context"`
	Lines          []LineStatus               `yaml:"lines" json:"lines"`
	StartTime      optional.Option[time.Time] `yaml:"start_time" json:"start_time"`
	LastUpdateTime optional.Option[time.Time] `yaml:"last_update_time" json:"last_update_time"`
}
