package types

// PositionLedger is the fully derived view of the bot's position. It is
// recomputed from filled orders on every tick and never set independently.
type PositionLedger struct {
	// SharesEntered is the cumulative filled size across entry lines.
	SharesEntered int64 `yaml:"shares_entered" json:"shares_entered"`

	// SharesExited is the cumulative filled size across exit lines.
	SharesExited int64 `yaml:"shares_exited" json:"shares_exited"`

	// MarketSharesExited is the cumulative size flattened by synthesized
	// market orders during stop-out liquidation.
	MarketSharesExited int64 `yaml:"market_shares_exited" json:"market_shares_exited"`

	// OpenShares is SharesEntered - (SharesExited + MarketSharesExited).
	OpenShares int64 `yaml:"open_shares" json:"open_shares"`
}

// DeriveLedger builds a ledger from the three fill counters, clamping open
// shares at zero.
func DeriveLedger(entered, exited, marketExited int64) PositionLedger {
	open := entered - (exited + marketExited)
	if open < 0 {
		open = 0
	}

	return PositionLedger{
		SharesEntered:      entered,
		SharesExited:       exited,
		MarketSharesExited: marketExited,
		OpenShares:         open,
	}
}

// IsFlat reports whether no shares remain open.
func (l PositionLedger) IsFlat() bool {
	return l.OpenShares == 0
}
