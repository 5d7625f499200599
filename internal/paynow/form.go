package paynow

import (
	"fmt"
	"html"
	"net/mail"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/netcash/paynow-go/internal/domain/models"
	pkgerrors "github.com/netcash/paynow-go/pkg/errors"
	"github.com/netcash/paynow-go/pkg/timeutil"
)

// ActionURL is the hosted payment page the rendered form POSTs to.
const ActionURL = "https://paynow.netcash.co.za/site/paynow.aspx"

// startDateLayouts are the layouts SetSubscriptionStartDateString accepts.
var startDateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02 Jan 2006",
	"20060102",
	time.RFC3339,
}

// Form accumulates a validated Pay Now transaction request and renders it as
// the flat key/value set the hosted page expects.
//
// Domain setters validate and return *pkgerrors.ValidationError on bad
// input; the generic SetField is deliberately lenient and only reports
// whether the key was known. A Form is not safe for concurrent use; each
// instance owns its state exclusively.
type Form struct {
	testing bool
	fields  map[FieldType]string
}

// NewForm creates a form seeded with the documented defaults. The service
// key is mandatory; an empty key is rejected.
func NewForm(serviceKey string) (*Form, error) {
	f := &Form{
		fields: map[FieldType]string{
			FieldServiceKey:        "",
			FieldSoftwareVendorKey: "",
			FieldUniqueID:          "",
			FieldDescription:       "",
			FieldAmount:            "0",

			FieldBudget: "N",

			FieldExtra1: "",
			FieldExtra2: "",
			FieldExtra3: "",

			FieldEmail:        "",
			FieldReturnString: "",
			FieldCellphone:    "",

			FieldReturnCardDetail: "0",
			FieldCardToken:        "",

			FieldSubscriptionIsSubscription:  "0",
			FieldSubscriptionCycle:           "",
			FieldSubscriptionFrequency:       "",
			FieldSubscriptionStartDate:       "",
			FieldSubscriptionRecurringAmount: "",
		},
	}

	if err := f.SetServiceKey(serviceKey); err != nil {
		return nil, err
	}
	return f, nil
}

// SetTesting toggles test mode. It does not change the rendered fields; the
// gateway decides test behavior per service key.
func (f *Form) SetTesting(testing bool) {
	f.testing = testing
}

// Testing reports whether test mode is on.
func (f *Form) Testing() bool {
	return f.testing
}

// SetField sets a raw field value. Unknown keys are ignored and reported as
// false rather than rejected; this is the one lenient path, kept distinct
// from the strict domain setters.
func (f *Form) SetField(key FieldType, value string) bool {
	if _, ok := f.fields[key]; !ok {
		return false
	}
	f.fields[key] = value
	return true
}

// Field returns the current value for a field key.
func (f *Form) Field(key FieldType) string {
	return f.fields[key]
}

// Fields renders the request as wire-key to value pairs, defaults included.
func (f *Form) Fields() map[string]string {
	out := make(map[string]string, len(f.fields))
	for key, value := range f.fields {
		out[string(key)] = value
	}
	return out
}

// SetServiceKey sets the Pay Now service key (m1).
func (f *Form) SetServiceKey(key string) error {
	if key == "" {
		return pkgerrors.NewValidationError(string(FieldServiceKey), "service key is invalid")
	}
	f.SetField(FieldServiceKey, key)
	return nil
}

// SetVendorKey sets the software vendor key (m2).
func (f *Form) SetVendorKey(key string) error {
	if key == "" {
		return pkgerrors.NewValidationError(string(FieldSoftwareVendorKey), "vendor key is invalid")
	}
	f.SetField(FieldSoftwareVendorKey, key)
	return nil
}

// SetExtraField sets one of the three extra passthrough fields (m4-m6).
// Index must be 1, 2 or 3.
func (f *Form) SetExtraField(value string, index int) error {
	switch index {
	case 1:
		f.SetField(FieldExtra1, value)
	case 2:
		f.SetField(FieldExtra2, value)
	case 3:
		f.SetField(FieldExtra3, value)
	default:
		return pkgerrors.NewValidationError(string(FieldExtra1), fmt.Sprintf("index %d does not exist", index))
	}
	return nil
}

// SetOrderID stores the caller's order id as the unique reference (p2) with
// a same-day-unique suffix appended after "__". Response.OrderID recovers
// the original id by splitting on that separator; the two conventions must
// stay in lockstep.
func (f *Form) SetOrderID(orderID string) {
	uniqueID := orderID + "__" + timeutil.Now().Format("2006010205")
	f.SetField(FieldUniqueID, uniqueID)
}

// SetUniqueID sets the raw unique reference (p2) without suffixing. Callers
// that manage their own uniqueness (e.g. subscription updates keyed on the
// original invoice) use this instead of SetOrderID.
func (f *Form) SetUniqueID(id string) {
	f.SetField(FieldUniqueID, id)
}

// SetDescription sets the description of goods (p3).
func (f *Form) SetDescription(description string) {
	f.SetField(FieldDescription, description)
}

// SetBudget sets whether to offer the budget facility (Budget, Y/N).
func (f *Form) SetBudget(useBudget bool) {
	if useBudget {
		f.SetField(FieldBudget, "Y")
	} else {
		f.SetField(FieldBudget, "N")
	}
}

// SetReturnString sets the passthrough string (m10) the gateway echoes back
// in the callback.
func (f *Form) SetReturnString(s string) {
	f.SetField(FieldReturnString, s)
}

// SetAmount sets the transaction amount in ZAR (p4). Only an exact zero is
// rejected; a negative amount passes through to the gateway unchanged, as
// it always has.
func (f *Form) SetAmount(amount decimal.Decimal) error {
	if amount.IsZero() {
		return pkgerrors.NewValidationError(string(FieldAmount), "amount cannot be 0")
	}
	f.SetField(FieldAmount, amount.String())
	return nil
}

// SetEmail sets the cardholder email (m9).
func (f *Form) SetEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return pkgerrors.NewValidationError(string(FieldEmail), "email is invalid")
	}
	f.SetField(FieldEmail, email)
	return nil
}

// SetCellphone sets the cardholder mobile number (m11). Formatting
// characters are stripped and a leading 27 country code is rewritten to 0;
// the result must be 10 digits starting with 0.
func (f *Form) SetCellphone(cellphone string) error {
	stripped := strings.NewReplacer(" ", "", "+", "", "-", "", "(", "", ")", "").
		Replace(strings.TrimSpace(cellphone))

	formatted := stripped
	if strings.HasPrefix(stripped, "27") {
		formatted = "0" + stripped[2:]
	}

	if len(formatted) != 10 || !strings.HasPrefix(formatted, "0") {
		return pkgerrors.NewValidationError(string(FieldCellphone),
			fmt.Sprintf("cellphone number (%s) is invalid", cellphone))
	}
	f.SetField(FieldCellphone, formatted)
	return nil
}

// SetReturnCardDetail sets whether the gateway should return the tokenized
// card details (m14).
func (f *Form) SetReturnCardDetail(ret bool) {
	f.SetField(FieldReturnCardDetail, boolField(ret))
}

// SetCardToken sets a previously returned card token to charge (m15).
func (f *Form) SetCardToken(token string) {
	f.SetField(FieldCardToken, token)
}

// SetIsSubscription marks the request as a subscription (m16). A
// subscription forces ReturnCardDetail on; the gateway needs the token for
// recurring billing.
func (f *Form) SetIsSubscription(isSubscription bool) {
	f.SetField(FieldSubscriptionIsSubscription, boolField(isSubscription))
	if isSubscription {
		f.SetField(FieldReturnCardDetail, "1")
	}
}

// SetSubscriptionCycle sets how many times to bill (m17). Zero is accepted
// and means unlimited in gateway semantics.
func (f *Form) SetSubscriptionCycle(timesToBill int) error {
	if timesToBill < 0 {
		return pkgerrors.NewValidationError(string(FieldSubscriptionCycle),
			fmt.Sprintf("invalid subscription cycle value '%d'", timesToBill))
	}
	f.SetField(FieldSubscriptionCycle, fmt.Sprintf("%d", timesToBill))
	return nil
}

// SetSubscriptionFrequency sets the billing frequency (m18).
func (f *Form) SetSubscriptionFrequency(frequency models.SubscriptionFrequency) error {
	if !frequency.Valid() {
		return pkgerrors.NewValidationError(string(FieldSubscriptionFrequency),
			fmt.Sprintf("invalid subscription frequency value '%d'", int(frequency)))
	}
	f.SetField(FieldSubscriptionFrequency, fmt.Sprintf("%d", int(frequency)))
	return nil
}

// SetSubscriptionFrequencyString sets the billing frequency from either a
// numeric code or a case-insensitive name.
func (f *Form) SetSubscriptionFrequencyString(frequency string) error {
	parsed, err := models.ParseSubscriptionFrequency(frequency)
	if err != nil {
		return pkgerrors.NewValidationError(string(FieldSubscriptionFrequency),
			fmt.Sprintf("invalid subscription frequency value '%s'", frequency))
	}
	return f.SetSubscriptionFrequency(parsed)
}

// SetSubscriptionStartDate sets the first billing date (m19). The date is
// normalized to midnight UTC; any date before today is rejected, today
// itself is allowed.
func (f *Form) SetSubscriptionStartDate(date time.Time) error {
	day := timeutil.StartOfDay(date)
	today := timeutil.StartOfDay(timeutil.Now())
	if day.Before(today) {
		return pkgerrors.NewValidationError(string(FieldSubscriptionStartDate),
			"start date must be in the future "+day.Format("2006-01-02"))
	}
	f.SetField(FieldSubscriptionStartDate, day.Format("2006-01-02"))
	return nil
}

// SetSubscriptionStartDateString parses a date string and applies
// SetSubscriptionStartDate.
func (f *Form) SetSubscriptionStartDateString(date string) error {
	for _, layout := range startDateLayouts {
		if t, err := timeutil.ParseDate(layout, strings.TrimSpace(date)); err == nil {
			return f.SetSubscriptionStartDate(t)
		}
	}
	return pkgerrors.NewValidationError(string(FieldSubscriptionStartDate),
		"invalid subscription start date value "+date)
}

// SetSubscriptionAmount sets the recurring amount (m20). Zero is allowed.
func (f *Form) SetSubscriptionAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return pkgerrors.NewValidationError(string(FieldSubscriptionRecurringAmount),
			fmt.Sprintf("invalid subscription recurring amount '%s'", amount))
	}
	f.SetField(FieldSubscriptionRecurringAmount, amount.String())
	return nil
}

// CreateSubscription marks the form as a subscription and sets cycle,
// frequency, start date and recurring amount in that order. The setters are
// not transactional: a failure part-way leaves the earlier mutations
// applied.
func (f *Form) CreateSubscription(recurringAmount decimal.Decimal, frequency models.SubscriptionFrequency, startDate time.Time, cycle int) error {
	f.SetIsSubscription(true)

	if err := f.SetSubscriptionCycle(cycle); err != nil {
		return err
	}
	if err := f.SetSubscriptionFrequency(frequency); err != nil {
		return err
	}
	if err := f.SetSubscriptionStartDate(startDate); err != nil {
		return err
	}
	return f.SetSubscriptionAmount(recurringAmount)
}

// CreateAdHocSubscription is CreateSubscription plus a once-off amount (p4)
// charged immediately. A zero adhoc amount is skipped.
func (f *Form) CreateAdHocSubscription(adhocAmount, recurringAmount decimal.Decimal, frequency models.SubscriptionFrequency, startDate time.Time, cycle int) error {
	f.SetIsSubscription(true)

	if !adhocAmount.IsZero() {
		if err := f.SetAmount(adhocAmount); err != nil {
			return err
		}
	}
	return f.CreateSubscription(recurringAmount, frequency, startDate, cycle)
}

// InputFields renders the fields as hidden HTML inputs.
func (f *Form) InputFields() string {
	var b strings.Builder
	for _, key := range fieldOrder {
		fmt.Fprintf(&b, "<input type='hidden' name='%s' value='%s' />",
			html.EscapeString(string(key)), html.EscapeString(f.fields[key]))
	}
	return b.String()
}

// MakeForm renders a complete HTML form POSTing to the hosted payment page,
// optionally with a submit button.
func (f *Form) MakeForm(withSubmit bool, submitText string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<form id="%s" name="form" method="POST" action="%s" target="_top">`,
		"netcash-paynow-form", ActionURL)
	b.WriteString(f.InputFields())
	if withSubmit {
		fmt.Fprintf(&b, `<input id="netcash-paynow-submit" name="submit" type="submit" value="%s" />`,
			html.EscapeString(submitText))
	}
	b.WriteString("</form>")
	return b.String()
}

// fieldOrder keeps rendered HTML deterministic.
var fieldOrder = []FieldType{
	FieldServiceKey,
	FieldSoftwareVendorKey,
	FieldUniqueID,
	FieldDescription,
	FieldAmount,
	FieldBudget,
	FieldExtra1,
	FieldExtra2,
	FieldExtra3,
	FieldEmail,
	FieldReturnString,
	FieldCellphone,
	FieldReturnCardDetail,
	FieldCardToken,
	FieldSubscriptionIsSubscription,
	FieldSubscriptionCycle,
	FieldSubscriptionFrequency,
	FieldSubscriptionStartDate,
	FieldSubscriptionRecurringAmount,
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
