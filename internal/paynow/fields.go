package paynow

// FieldType is a Pay Now wire field key. The key strings are the gateway's
// form contract and must be reproduced bit-exact.
//
// Documentation: https://api.netcash.co.za/inbound-payments/pay-now/pay-now-gateway/
type FieldType string

const (
	FieldServiceKey        FieldType = "m1" // Service Key
	FieldSoftwareVendorKey FieldType = "m2" // Software Vendor Key
	FieldUniqueID          FieldType = "p2" // Unique ID
	FieldDescription       FieldType = "p3" // Description of goods
	FieldAmount            FieldType = "p4" // Amount to be settled

	FieldBudget FieldType = "Budget" // Compulsory, must be Y or N

	FieldExtra1 FieldType = "m4" // An extra field
	FieldExtra2 FieldType = "m5" // An extra field
	FieldExtra3 FieldType = "m6" // An extra field

	FieldEmail        FieldType = "m9"  // Cardholder email
	FieldReturnString FieldType = "m10" // Data echoed back via the Accept & Decline URLs
	FieldCellphone    FieldType = "m11" // Cardholder mobile number (SA only, 10 digits starting with 0)

	FieldReturnCardDetail FieldType = "m14" // Whether to return card details
	FieldCardToken        FieldType = "m15" // A previously returned credit card token

	// Subscriptions
	FieldSubscriptionIsSubscription  FieldType = "m16" // Whether this is a subscription
	FieldSubscriptionCycle           FieldType = "m17" // Number of subscription payments to be made
	FieldSubscriptionFrequency       FieldType = "m18" // Frequency: monthly, weekly, bi-weekly, etc
	FieldSubscriptionStartDate       FieldType = "m19" // Date to start
	FieldSubscriptionRecurringAmount FieldType = "m20" // The subscription amount
)
