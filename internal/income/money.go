package income

import "github.com/shopspring/decimal"

// FormatMoney renders an amount rounded half away from zero to two decimals.
// Display only; stored totals stay unrounded.
func FormatMoney(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
