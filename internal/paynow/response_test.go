package paynow

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netcash/paynow-go/internal/domain/models"
)

func TestResponseClassification(t *testing.T) {
	tests := []struct {
		name     string
		postData map[string]string
		want     models.OrderStatus
	}{
		{
			name: "accepted with Success reason",
			postData: map[string]string{
				KeyTransactionAccepted: "true",
				KeyReason:              "Success",
			},
			want: models.StatusSuccess,
		},
		{
			name: "declined",
			postData: map[string]string{
				KeyTransactionAccepted: "false",
				KeyReason:              "Transaction Declined",
			},
			want: models.StatusDeclined,
		},
		{
			name: "cancelled on the hosted page",
			postData: map[string]string{
				KeyTransactionAccepted: "false",
				KeyReason:              "User Cancelled",
			},
			want: models.StatusCancelled,
		},
		{
			name: "pending offline settlement",
			postData: map[string]string{
				KeyTransactionAccepted: "true",
				KeyReason:              "Pending Investigation",
			},
			want: models.StatusPending,
		},
		{
			name: "cancelled overrides pending",
			postData: map[string]string{
				KeyReason: "Pending payment Cancelled by user",
			},
			want: models.StatusCancelled,
		},
		{
			name: "declined overrides cancelled",
			postData: map[string]string{
				KeyReason: "Cancelled: card Declined",
			},
			want: models.StatusDeclined,
		},
		{
			name: "matching is case-insensitive",
			postData: map[string]string{
				KeyReason: "TRANSACTION DECLINED",
			},
			want: models.StatusDeclined,
		},
		{
			name:     "empty payload stays unclassified",
			postData: map[string]string{},
			want:     models.StatusNone,
		},
		{
			name: "accepted alone is not success",
			postData: map[string]string{
				KeyTransactionAccepted: "true",
				KeyReason:              "Authorised",
			},
			want: models.StatusNone,
		},
		{
			name: "acceptance flag must be the literal lowercase string",
			postData: map[string]string{
				KeyTransactionAccepted: "True",
				KeyReason:              "Success",
			},
			want: models.StatusNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			response := NewResponse(tt.postData)
			assert.Equal(t, tt.want, response.OrderStatus())
		})
	}
}

func TestResponseStatusPredicates(t *testing.T) {
	declined := NewResponse(map[string]string{KeyReason: "Declined"})
	assert.True(t, declined.WasDeclined())
	assert.False(t, declined.WasCancelled())
	assert.False(t, declined.IsPending())

	pending := NewResponse(map[string]string{KeyReason: "Pending"})
	assert.True(t, pending.IsPending())

	cancelled := NewResponse(map[string]string{KeyReason: "Cancelled"})
	assert.True(t, cancelled.WasCancelled())
}

func TestResponseAccepted(t *testing.T) {
	response := NewResponse(map[string]string{
		KeyTransactionAccepted:  "true",
		KeySubscriptionAccepted: "true",
	})
	assert.True(t, response.WasAccepted())
	assert.True(t, response.WasSubscriptionAccepted())

	response = NewResponse(map[string]string{
		KeyTransactionAccepted: "false",
	})
	assert.False(t, response.WasAccepted())
	assert.False(t, response.WasSubscriptionAccepted())
}

func TestResponseMethod(t *testing.T) {
	t.Run("absent method", func(t *testing.T) {
		response := NewResponse(map[string]string{})
		_, ok := response.Method()
		assert.False(t, ok)
		assert.False(t, response.WasOfflineTransaction())
		assert.False(t, response.WasCreditCardTransaction())
	})

	t.Run("credit card", func(t *testing.T) {
		response := NewResponse(map[string]string{KeyMethod: "1"})
		method, ok := response.Method()
		require.True(t, ok)
		assert.Equal(t, models.MethodCreditCard, method)
		assert.True(t, response.WasCreditCardTransaction())
		assert.False(t, response.WasOfflineTransaction())
	})

	t.Run("EFT and retail settle offline", func(t *testing.T) {
		for _, code := range []string{"2", "3"} {
			response := NewResponse(map[string]string{KeyMethod: code})
			assert.True(t, response.WasOfflineTransaction(), "method %s", code)
		}
	})

	t.Run("numeric prefix wins over trailing text", func(t *testing.T) {
		response := NewResponse(map[string]string{KeyMethod: "3 - Retail"})
		assert.True(t, response.WasMethod(models.MethodRetail))
	})
}

func TestResponseAmount(t *testing.T) {
	response := NewResponse(map[string]string{KeyAmount: "150.75"})
	assert.True(t, response.Amount().Equal(decimal.NewFromFloat(150.75)))

	// Missing and unparseable amounts degrade to zero
	assert.True(t, NewResponse(nil).Amount().IsZero())
	assert.True(t, NewResponse(map[string]string{KeyAmount: "lots"}).Amount().IsZero())
}

func TestResponseOrderID(t *testing.T) {
	response := NewResponse(map[string]string{KeyReference: "INV-88__2026082910"})
	assert.Equal(t, "INV-88", response.OrderID())
	assert.Equal(t, "INV-88__2026082910", response.Reference())

	// A reference without the separator is returned whole
	response = NewResponse(map[string]string{KeyReference: "INV-88"})
	assert.Equal(t, "INV-88", response.OrderID())

	assert.Empty(t, NewResponse(nil).OrderID())
}

func TestResponseNormalization(t *testing.T) {
	t.Run("backslash escaping is stripped", func(t *testing.T) {
		response := NewResponse(map[string]string{
			KeyReason: `Payment for O\'Brien declined`,
		})
		assert.Equal(t, "Payment for O'Brien declined", response.Reason())
	})

	t.Run("empty values keep their defaults", func(t *testing.T) {
		response := NewResponse(map[string]string{KeyAmount: ""})
		assert.Equal(t, "0", response.Data()[KeyAmount])
	})

	t.Run("zero placeholders are treated as absent", func(t *testing.T) {
		response := NewResponse(map[string]string{
			KeyMethod:    "0",
			KeyCardToken: "0",
			KeyAmount:    "0",
		})
		_, ok := response.Method()
		assert.False(t, ok)
		assert.Empty(t, response.CreditCardToken())
		assert.True(t, response.Amount().IsZero())
	})
}

func TestResponseCardDetails(t *testing.T) {
	response := NewResponse(map[string]string{
		KeyCardToken:  "tok-abc123",
		KeyCardHolder: "J Smith",
		KeyCardExpiry: "112028",
		KeyCardMasked: "518791xxxxxx0117",
	})

	assert.Equal(t, "tok-abc123", response.CreditCardToken())
	assert.Equal(t, "J Smith", response.CreditCardHolder())
	assert.Equal(t, "112028", response.CreditCardExpiry())
	assert.Equal(t, "518791xxxxxx0117", response.CreditCardMaskedNumber())
}

func TestResponseExtras(t *testing.T) {
	response := NewResponse(map[string]string{
		KeyExtra1: "payment-1",
		KeyExtra2: "campaign-7",
	})

	assert.Equal(t, "payment-1", response.Extra(1))
	assert.Equal(t, "campaign-7", response.Extra(2))
	assert.Empty(t, response.Extra(3))
	assert.Empty(t, response.Extra(4))
}

func TestResponseDataIsACopy(t *testing.T) {
	response := NewResponse(map[string]string{KeyReason: "Success"})
	data := response.Data()
	data[KeyReason] = "tampered"
	assert.Equal(t, "Success", response.Reason())
}
