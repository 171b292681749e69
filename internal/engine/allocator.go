package engine

import (
	"sort"

	"github.com/rxtech-lab/ladder-trading/internal/types"
)

// LadderOrder returns exit lines in allocation order: ascending by rank,
// reversed when the chart side is BUY. The same order decides which exit line
// is currently eligible for a resting order.
func LadderOrder(exitLines []*PriceLine, chartSide types.PurchaseType) []*PriceLine {
	ordered := make([]*PriceLine, len(exitLines))
	copy(ordered, exitLines)

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Rank() < ordered[j].Rank()
	})

	if chartSide == types.PurchaseTypeBuy {
		for i, j := 0, len(ordered)-1; i < j; i, j = i+1, j-1 {
			ordered[i], ordered[j] = ordered[j], ordered[i]
		}
	}

	return ordered
}

// AllocateExits resets every exit line's target to zero and distributes the
// entered share count one unit at a time in round-robin order across the
// ladder. The distribution conserves shares exactly (the targets always sum
// to sharesEntered), hands remainders of non-divisible totals to the
// earliest lines in allocation order, and is idempotent for unchanged inputs.
func AllocateExits(exitLines []*PriceLine, chartSide types.PurchaseType, sharesEntered int64) {
	ordered := LadderOrder(exitLines, chartSide)

	for _, line := range ordered {
		line.SetTargetShares(0)
	}

	if len(ordered) == 0 || sharesEntered <= 0 {
		return
	}

	for unit := int64(0); unit < sharesEntered; unit++ {
		line := ordered[unit%int64(len(ordered))]
		line.SetTargetShares(line.TargetShares() + 1)
	}
}

// AllocateEntries assigns each entry line the configured per-entry size.
func AllocateEntries(entryLines []*PriceLine, positionSizePerEntry int64) {
	for _, line := range entryLines {
		line.SetTargetShares(positionSizePerEntry)
	}
}
