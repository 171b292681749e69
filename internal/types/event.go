package types

import "time"

// BotEventType identifies the lifecycle transition an event reports.
type BotEventType string

const (
	BotEventStarted          BotEventType = "STARTED"
	BotEventCompleted        BotEventType = "COMPLETED"
	BotEventStoppedOut       BotEventType = "STOPPED_OUT"
	BotEventEmergencyStopped BotEventType = "EMERGENCY_STOPPED"
	BotEventStopped          BotEventType = "STOPPED"
	BotEventError            BotEventType = "ERROR"
)

// Machine-readable event reason codes.
const (
	EventReasonStarted       = "started"
	EventReasonTargetReached = "target_reached"
	EventReasonSoftStopOut   = "soft_stop_out"
	EventReasonHardStopOut   = "hard_stop_out"
	EventReasonUserAbort     = "user_abort"
	EventReasonUserStop      = "user_stop"
	EventReasonNoEntryLine   = "no_entry_line"
	EventReasonLineFailed    = "line_failed"
	EventReasonOrderFailed   = "order_failed"
)

// BotEvent is a lifecycle or error notification published by a bot.
type BotEvent struct {
	BotID  string       `yaml:"bot_id" json:"bot_id"`
	Type   BotEventType `yaml:"type" json:"type"`
	Reason Reason       `yaml:"reason" json:"reason"`
	Time   time.Time    `yaml:"time" json:"time"`
}
