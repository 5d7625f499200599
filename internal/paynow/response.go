package paynow

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/netcash/paynow-go/internal/domain/models"
)

// Callback payload keys the gateway POSTs back.
const (
	KeyTransactionAccepted  = "TransactionAccepted"
	KeyReason               = "Reason"
	KeyCardHolderIPAddr     = "CardHolderIpAddr"
	KeyRequestTrace         = "RequestTrace"
	KeyReference            = "Reference"
	KeyExtra1               = "Extra1"
	KeyExtra2               = "Extra2"
	KeyExtra3               = "Extra3"
	KeyAmount               = "Amount"
	KeyMethod               = "Method"
	KeyType                 = "type"
	KeySubscriptionAccepted = "SubscriptionAccepted"
	KeySubscriptionReason   = "SubscriptionReason"
	KeyCardToken            = "ccToken"
	KeyCardHolder           = "ccHolder"
	KeyCardExpiry           = "ccExpiry"
	KeyCardMasked           = "ccMasked"
)

// Response classifies a raw gateway callback payload. Classification runs
// once, at construction; the result is immutable and never fails. Malformed
// or missing fields degrade to defaults and a "none" status.
type Response struct {
	orderStatus models.OrderStatus
	data        map[string]string
}

// NewResponse normalizes the POSTed payload and derives the order status.
//
// Empty and "0" values are dropped, transport backslash-escaping is
// stripped, and the payload is merged over a full default key set so
// accessors never need existence checks. The Reason text is then matched case-insensitively for
// "pending", "cancelled" and "declined" in that order; a later match
// overwrites an earlier one, so declined takes precedence over cancelled,
// which takes precedence over pending. The order is load-bearing for
// existing gateway behavior; do not reorder.
func NewResponse(postData map[string]string) *Response {
	r := &Response{
		orderStatus: models.StatusNone,
		data: map[string]string{
			KeyTransactionAccepted:  "",
			KeyReason:               "",
			KeyCardHolderIPAddr:     "",
			KeyRequestTrace:         "",
			KeyReference:            "",
			KeyExtra1:               "",
			KeyExtra2:               "",
			KeyExtra3:               "",
			KeyAmount:               "0",
			KeyMethod:               "",
			KeyType:                 "",
			KeySubscriptionAccepted: "",
			KeySubscriptionReason:   "",
		},
	}

	for key, value := range postData {
		// The gateway posts "0" for fields it did not populate; treat it
		// the same as absent.
		if value == "" || value == "0" {
			continue
		}
		r.data[key] = stripSlashes(value)
	}

	if reason := r.data[KeyReason]; reason != "" {
		lower := strings.ToLower(reason)

		if strings.Contains(lower, "pending") {
			r.orderStatus = models.StatusPending
		}
		// Cancelled by the user clicking the cancel link on the hosted page
		if strings.Contains(lower, "cancelled") {
			r.orderStatus = models.StatusCancelled
		}
		if strings.Contains(lower, "declined") {
			r.orderStatus = models.StatusDeclined
		}
	}

	if r.WasAccepted() && r.data[KeyReason] == "Success" {
		switch r.orderStatus {
		case models.StatusPending, models.StatusCancelled, models.StatusDeclined:
			// keep the unsuccessful state
		default:
			r.orderStatus = models.StatusSuccess
		}
	}

	return r
}

// OrderStatus returns the derived classification.
func (r *Response) OrderStatus() models.OrderStatus {
	return r.orderStatus
}

// WasAccepted reports whether the gateway accepted the transaction. The
// gateway sends the literal string "true".
func (r *Response) WasAccepted() bool {
	return r.data[KeyTransactionAccepted] == "true"
}

// WasSubscriptionAccepted reports whether the gateway accepted the
// subscription.
func (r *Response) WasSubscriptionAccepted() bool {
	return r.data[KeySubscriptionAccepted] == "true"
}

// IsPending reports whether the payment is still pending (EFT and retail
// payments settle later).
func (r *Response) IsPending() bool {
	return r.orderStatus == models.StatusPending
}

// WasDeclined reports whether the transaction was declined.
func (r *Response) WasDeclined() bool {
	return r.orderStatus == models.StatusDeclined
}

// WasCancelled reports whether the user cancelled on the hosted page.
func (r *Response) WasCancelled() bool {
	return r.orderStatus == models.StatusCancelled
}

// WasOfflineTransaction reports whether the payment method settles out of
// band (EFT or retail).
func (r *Response) WasOfflineTransaction() bool {
	method, ok := r.Method()
	return ok && method.IsOffline()
}

// WasCreditCardTransaction reports whether the payment method was a credit
// card.
func (r *Response) WasCreditCardTransaction() bool {
	return r.WasMethod(models.MethodCreditCard)
}

// WasMethod checks the payment method code.
func (r *Response) WasMethod(method models.PaymentMethod) bool {
	m, ok := r.Method()
	return ok && m == method
}

// Method returns the payment method code, if the callback carried one.
func (r *Response) Method() (models.PaymentMethod, bool) {
	raw := r.data[KeyMethod]
	if raw == "" {
		return 0, false
	}
	return models.PaymentMethod(atoiPrefix(raw)), true
}

// Amount returns the amount that was charged or attempted, zero when absent
// or unparseable.
func (r *Response) Amount() decimal.Decimal {
	amount, err := decimal.NewFromString(r.data[KeyAmount])
	if err != nil {
		return decimal.Zero
	}
	return amount
}

// OrderID recovers the caller's order id from the Reference field by taking
// everything before the first "__", undoing Form.SetOrderID's suffixing.
func (r *Response) OrderID() string {
	reference := r.data[KeyReference]
	if idx := strings.Index(reference, "__"); idx >= 0 {
		return reference[:idx]
	}
	return reference
}

// Reference returns the raw unique reference (p2 echo).
func (r *Response) Reference() string {
	return r.data[KeyReference]
}

// Reason returns the gateway's reason text for the transaction outcome.
func (r *Response) Reason() string {
	return r.data[KeyReason]
}

// SubscriptionReason returns the gateway's reason text for the subscription
// outcome.
func (r *Response) SubscriptionReason() string {
	return r.data[KeySubscriptionReason]
}

// Extra returns one of the three passthrough values. Index must be 1, 2 or
// 3; anything else returns the empty string.
func (r *Response) Extra(index int) string {
	switch index {
	case 1:
		return r.data[KeyExtra1]
	case 2:
		return r.data[KeyExtra2]
	case 3:
		return r.data[KeyExtra3]
	}
	return ""
}

// CreditCardToken returns the card token issued when m14 was set on the
// request.
func (r *Response) CreditCardToken() string {
	return r.data[KeyCardToken]
}

// CreditCardHolder returns the cardholder name.
func (r *Response) CreditCardHolder() string {
	return r.data[KeyCardHolder]
}

// CreditCardExpiry returns the card expiry as MMYYYY.
func (r *Response) CreditCardExpiry() string {
	return r.data[KeyCardExpiry]
}

// CreditCardMaskedNumber returns the masked card number.
func (r *Response) CreditCardMaskedNumber() string {
	return r.data[KeyCardMasked]
}

// Data returns a copy of the normalized payload.
func (r *Response) Data() map[string]string {
	out := make(map[string]string, len(r.data))
	for k, v := range r.data {
		out[k] = v
	}
	return out
}

// stripSlashes removes transport backslash-escaping from a value: \x becomes
// x, \\ becomes \.
func stripSlashes(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	escaped := false
	for _, c := range s {
		if !escaped && c == '\\' {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(c)
	}
	return b.String()
}

// atoiPrefix parses the leading integer of a string, zero when none.
func atoiPrefix(s string) int {
	n := 0
	seen := false
	for _, c := range s {
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
		seen = true
	}
	if !seen {
		return 0
	}
	return n
}
