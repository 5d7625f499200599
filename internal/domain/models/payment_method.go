package models

// PaymentMethod is the numeric payment method code the gateway reports in
// the callback's Method field.
type PaymentMethod int

const (
	MethodCreditCard   PaymentMethod = 1
	MethodEFT          PaymentMethod = 2
	MethodRetail       PaymentMethod = 3
	MethodOzow         PaymentMethod = 4
	MethodMasterpass   PaymentMethod = 5
	MethodVisaCheckout PaymentMethod = 6
	MethodMasterpassQR PaymentMethod = 7
)

// OfflineMethods are the payment methods settled outside the hosted page.
// EFT and retail payments complete asynchronously, sometimes days later.
var OfflineMethods = []PaymentMethod{MethodEFT, MethodRetail}

var methodNames = map[PaymentMethod]string{
	MethodCreditCard:   "credit_card",
	MethodEFT:          "eft",
	MethodRetail:       "retail",
	MethodOzow:         "ozow",
	MethodMasterpass:   "masterpass",
	MethodVisaCheckout: "visa_checkout",
	MethodMasterpassQR: "masterpass_qr",
}

func (m PaymentMethod) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return "unknown"
}

// IsOffline reports whether the method settles out of band.
func (m PaymentMethod) IsOffline() bool {
	for _, o := range OfflineMethods {
		if m == o {
			return true
		}
	}
	return false
}
