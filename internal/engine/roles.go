package engine

import (
	"github.com/rxtech-lab/ladder-trading/internal/types"
)

// RoleAssigner decides which drawn line opens the position and how the
// remaining lines are ranked for the exit ladder. Two heuristics exist in the
// wild; the lowest-price rule is the default and the direction-aware rule is
// available as a drop-in alternative.
type RoleAssigner interface {
	// Assign splits raw drawn lines into entry lines and price-ascending
	// exit lines. Either slice may be empty.
	Assign(lines []types.RawLine, config types.BotConfig) (entries []types.RawLine, exits []types.RawLine)
}

// LowestPriceAssigner sorts lines ascending by lower endpoint price and makes
// the single lowest-priced line the sole entry; all others become ranked exit
// lines.
type LowestPriceAssigner struct{}

// Assign implements RoleAssigner.
func (LowestPriceAssigner) Assign(lines []types.RawLine, _ types.BotConfig) ([]types.RawLine, []types.RawLine) {
	if len(lines) == 0 {
		return nil, nil
	}

	sorted := make([]types.RawLine, len(lines))
	copy(sorted, lines)
	types.SortRawLinesByLowerPrice(sorted)

	return sorted[:1], sorted[1:]
}

// DirectionAwareAssigner prefers an entry line whose drawn direction suits
// the configured chart side: a BUY chart enters on a downward (dip-buy) or
// horizontal line, a SELL chart on an upward or horizontal one. When no line
// qualifies it falls back to the lowest-price rule.
type DirectionAwareAssigner struct{}

// Assign implements RoleAssigner.
func (DirectionAwareAssigner) Assign(lines []types.RawLine, config types.BotConfig) ([]types.RawLine, []types.RawLine) {
	if len(lines) == 0 {
		return nil, nil
	}

	sorted := make([]types.RawLine, len(lines))
	copy(sorted, lines)
	types.SortRawLinesByLowerPrice(sorted)

	entryIndex := -1

	for i, line := range sorted {
		if directionSuitsSide(rawLineDirection(line), config.ChartSide) {
			entryIndex = i

			break
		}
	}

	if entryIndex < 0 {
		entryIndex = 0
	}

	entry := sorted[entryIndex]
	exits := make([]types.RawLine, 0, len(sorted)-1)
	exits = append(exits, sorted[:entryIndex]...)
	exits = append(exits, sorted[entryIndex+1:]...)

	return []types.RawLine{entry}, exits
}

// rawLineDirection classifies a raw line's drawn direction from its endpoint
// prices.
func rawLineDirection(line types.RawLine) types.LineDirection {
	a := line.AnchorA()
	b := line.AnchorB()

	switch {
	case b.Price > a.Price:
		return types.LineDirectionUpward
	case b.Price < a.Price:
		return types.LineDirectionDownward
	default:
		return types.LineDirectionHorizontal
	}
}

func directionSuitsSide(direction types.LineDirection, side types.PurchaseType) bool {
	if direction == types.LineDirectionHorizontal {
		return true
	}

	if side == types.PurchaseTypeBuy {
		return direction == types.LineDirectionDownward
	}

	return direction == types.LineDirectionUpward
}
