package netcash

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/netcash/paynow-go/internal/adapters/ports"
	"github.com/netcash/paynow-go/internal/domain/models"
	pkgerrors "github.com/netcash/paynow-go/pkg/errors"
	"github.com/netcash/paynow-go/pkg/timeutil"
)

const (
	updateSubscriptionsAction = "http://tempuri.org/IPayNow/UpdateSubscriptions"
	payNowAddressTo           = "https://ws.netcash.co.za/PayNow/PayNow.svc"

	updateSuccess = "000"
)

// updateStatusMessages maps the UpdateSubscriptionsResult codes.
// https://api.netcash.co.za/inbound-payments/pay-now/subscription-update-service/
var updateStatusMessages = map[string]string{
	"100": "Authentication failed. Ensure that the service key in the method call is correct",
	"200": "Web service error contact support@netcash.co.za",
	"311": "Merchant reference not found. Ensure that the value in P2 refers to an existing subscription",
	"313": "Invalid frequency. Ensure that M18 contains one of the permitted values",
	"314": "Invalid number of cycles. M17 must be greater than 0",
	"315": "Invalid subscription start date. Format is CCYYMMDD",
}

// UpdateSubscriptionRequest carries the parameters of a subscription
// update. Reference is the unique id (p2) the subscription was created
// under.
type UpdateSubscriptionRequest struct {
	ServiceKey string
	Reference  string
	Cycles     int
	Frequency  models.SubscriptionFrequency
	StartDate  time.Time
	Amount     decimal.Decimal
	Active     bool
}

// SubscriptionUpdater updates or deactivates existing Pay Now subscriptions
// through the Pay Now web service.
type SubscriptionUpdater struct {
	soapClient
	config Config
}

// NewSubscriptionUpdater creates a subscription updater with dependency
// injection.
func NewSubscriptionUpdater(config Config, httpClient ports.HTTPClient, logger *zap.Logger) *SubscriptionUpdater {
	return &SubscriptionUpdater{
		soapClient: soapClient{httpClient: httpClient, logger: logger},
		config:     config,
	}
}

// UpdateSubscription updates an existing subscription. Unlike the checkout
// form, the update service rejects a zero cycle count and a zero amount, so
// both are validated before the call.
func (u *SubscriptionUpdater) UpdateSubscription(ctx context.Context, req UpdateSubscriptionRequest) error {
	if req.ServiceKey == "" {
		return pkgerrors.NewValidationError("M1", "service key is required")
	}
	if req.Reference == "" {
		return pkgerrors.NewValidationError("P2", "merchant reference is required")
	}
	if req.Cycles < 1 {
		return pkgerrors.NewValidationError("M17", "cycle must be at least 1")
	}
	if !req.Frequency.Valid() {
		return pkgerrors.NewValidationError("M18", "invalid frequency")
	}
	if req.StartDate.IsZero() {
		return pkgerrors.NewValidationError("M19", "invalid start date")
	}
	if !req.Amount.IsPositive() {
		return pkgerrors.NewValidationError("M20", "amount must be positive")
	}

	envelope := newEnvelope(updateSubscriptionsAction, payNowAddressTo)
	envelope.Body.UpdateSubscriptions = &updateSubscriptionsCall{
		NS:     "http://tempuri.org/",
		Active: req.Active,
		M1:     req.ServiceKey,
		P2:     req.Reference,
		M17:    req.Cycles,
		M18:    int(req.Frequency),
		M19:    req.StartDate.Format("20060102"),
		M20:    req.Amount.String(),
	}

	body, err := u.call(ctx, "update_subscriptions", u.config.PayNowURL, envelope)
	if err != nil {
		return err
	}
	if body.UpdateSubscriptionsResponse == nil {
		return pkgerrors.NewGatewayError("EMPTY_RESPONSE", "could not update subscription", false)
	}

	code := body.UpdateSubscriptionsResponse.Result
	u.logger.Info("subscription update result",
		zap.String("reference", req.Reference),
		zap.String("code", code),
		zap.Bool("active", req.Active),
	)

	if code == updateSuccess {
		return nil
	}

	if msg, ok := updateStatusMessages[code]; ok {
		return &pkgerrors.GatewayError{
			Code:           code,
			Message:        "subscription update rejected",
			GatewayMessage: msg,
			IsRetriable:    code == "200",
		}
	}
	return pkgerrors.NewGatewayError(code, "could not update subscription", false)
}

// DeactivateSubscription turns a subscription off. The gateway has no
// dedicated deactivate call; an update with Active=false and minimal valid
// billing parameters is the documented way.
func (u *SubscriptionUpdater) DeactivateSubscription(ctx context.Context, serviceKey, reference string) error {
	return u.UpdateSubscription(ctx, UpdateSubscriptionRequest{
		ServiceKey: serviceKey,
		Reference:  reference,
		Cycles:     1,
		Frequency:  models.FrequencyAnnually,
		StartDate:  timeutil.Now(),
		Amount:     decimal.NewFromInt(1),
		Active:     false,
	})
}
