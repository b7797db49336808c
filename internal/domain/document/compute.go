package document

import "essenza/internal/core/types"

// Total sums line amounts at full precision and applies currency rounding
// exactly once on the sum. Rounding per line and then summing drifts by a
// cent on long documents, which reconciliation flags.
func Total(lines []Line) types.Money {
	sum := types.ZeroMoney()
	for _, l := range lines {
		sum = sum.Add(l.Amount())
	}
	return types.RoundMoney(sum)
}
