package paynow

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidateResponse(t *testing.T) {
	payload := func(reference, amount string) map[string]string {
		return map[string]string{
			KeyReference: reference,
			KeyAmount:    amount,
		}
	}

	tests := []struct {
		name           string
		postData       map[string]string
		expectedOrder  string
		expectedAmount decimal.Decimal
		want           bool
	}{
		{
			name:           "matching order and amount",
			postData:       payload("INV-1__2026082910", "100.00"),
			expectedOrder:  "INV-1",
			expectedAmount: decimal.NewFromInt(100),
			want:           true,
		},
		{
			name:           "amount within epsilon",
			postData:       payload("INV-1__2026082910", "100.001"),
			expectedOrder:  "INV-1",
			expectedAmount: decimal.NewFromInt(100),
			want:           true,
		},
		{
			name:           "amount outside epsilon",
			postData:       payload("INV-1__2026082910", "101.00"),
			expectedOrder:  "INV-1",
			expectedAmount: decimal.NewFromInt(100),
			want:           false,
		},
		{
			name:           "order id mismatch",
			postData:       payload("INV-2__2026082910", "100.00"),
			expectedOrder:  "INV-1",
			expectedAmount: decimal.NewFromInt(100),
			want:           false,
		},
		{
			name:           "empty expected order id",
			postData:       payload("INV-1__2026082910", "100.00"),
			expectedOrder:  "",
			expectedAmount: decimal.NewFromInt(100),
			want:           false,
		},
		{
			name:           "empty payload",
			postData:       map[string]string{},
			expectedOrder:  "INV-1",
			expectedAmount: decimal.NewFromInt(100),
			want:           false,
		},
		{
			// Reconciliation checks authenticity, not outcome
			name: "declined transaction still reconciles",
			postData: map[string]string{
				KeyReference: "INV-1__2026082910",
				KeyAmount:    "100.00",
				KeyReason:    "Transaction Declined",
			},
			expectedOrder:  "INV-1",
			expectedAmount: decimal.NewFromInt(100),
			want:           true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateResponse(tt.postData, tt.expectedOrder, tt.expectedAmount)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckEqualAmounts(t *testing.T) {
	tests := []struct {
		name string
		a, b decimal.Decimal
		want bool
	}{
		{"identical", decimal.NewFromInt(50), decimal.NewFromInt(50), true},
		{"exactly at epsilon", decimal.NewFromFloat(50.01), decimal.NewFromInt(50), true},
		{"just past epsilon", decimal.NewFromFloat(50.011), decimal.NewFromInt(50), false},
		{"float artifact", decimal.NewFromFloat(99.9999), decimal.NewFromInt(100), true},
		{"symmetric", decimal.NewFromInt(50), decimal.NewFromFloat(50.005), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckEqualAmounts(tt.a, tt.b))
		})
	}
}
