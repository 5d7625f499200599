package paynow

import (
	"github.com/shopspring/decimal"
)

// amountEpsilon is the absolute tolerance for amount reconciliation.
// 100.00 and 100.0001 are considered equal; the tolerance absorbs float
// artifacts introduced upstream, it is not a percentage.
var amountEpsilon = decimal.NewFromFloat(0.01)

// ValidateResponse checks that a raw callback payload is consistent with
// the order the caller initiated: the recovered order id must match and the
// amounts must agree within epsilon.
//
// This is an authenticity check only. A declined or cancelled transaction
// with a matching id and amount still validates; callers inspect the
// response's OrderStatus separately for the outcome.
func ValidateResponse(postData map[string]string, expectedOrderID string, expectedAmount decimal.Decimal) bool {
	response := NewResponse(postData)

	if len(postData) == 0 {
		return false
	}

	if expectedOrderID == "" || expectedOrderID != response.OrderID() {
		return false
	}

	return CheckEqualAmounts(response.Amount(), expectedAmount)
}

// CheckEqualAmounts compares two amounts within the reconciliation epsilon,
// ignoring insignificant decimal places.
func CheckEqualAmounts(amount1, amount2 decimal.Decimal) bool {
	return amount1.Sub(amount2).Abs().LessThanOrEqual(amountEpsilon)
}
