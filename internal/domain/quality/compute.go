package quality

import (
	"github.com/shopspring/decimal"

	"essenza/internal/core/types"
)

// PassQuantity returns checked − defective.
func PassQuantity(checked, defective types.Quantity) types.Quantity {
	return checked - defective
}

// DefectRate returns defective / checked as a ratio, zero when nothing was
// checked. The presentation layer formats it as a percentage.
func DefectRate(checked, defective types.Quantity) decimal.Decimal {
	return types.Ratio(defective, checked)
}
