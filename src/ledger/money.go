package ledger

import "github.com/shopspring/decimal"

// maxMoney bounds every stored amount and balance: money columns are
// NUMERIC(15,2), which hold at most 13 integer digits.
var maxMoney = decimal.New(1, 13)

// validateMoney rejects values that would be rounded or overflow when
// stored.
func validateMoney(field string, d decimal.Decimal) error {
	if !d.Equal(d.Round(2)) {
		return invalid(field, "must have at most 2 decimal places")
	}
	if d.Abs().GreaterThanOrEqual(maxMoney) {
		return invalid(field, "must be less than %s in magnitude", maxMoney)
	}
	return nil
}
