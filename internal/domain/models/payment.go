package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the classification derived from a gateway callback. It is
// never set from external input directly.
type OrderStatus string

const (
	StatusNone      OrderStatus = "none"
	StatusPending   OrderStatus = "pending"
	StatusSuccess   OrderStatus = "success"
	StatusDeclined  OrderStatus = "declined"
	StatusCancelled OrderStatus = "cancelled"
)

// Payment represents a Pay Now checkout tracked by the service: created when
// the hosted-page form is rendered, updated when the gateway calls back.
type Payment struct {
	ID        string
	OrderID   string
	Reference string // unique id POSTed in p2, OrderID plus a same-day suffix
	Amount    decimal.Decimal
	Status    OrderStatus

	// Callback outcome
	Accepted             bool
	SubscriptionAccepted bool
	Reason               string
	SubscriptionReason   string
	Method               *PaymentMethod

	// Tokenized card details, present when m14 was set on the request
	CardToken        string
	CardHolder       string
	CardExpiry       string
	CardMaskedNumber string

	Extra1 string
	Extra2 string
	Extra3 string

	CreatedAt time.Time
	UpdatedAt time.Time
}
