package netcash

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/netcash/paynow-go/internal/adapters/ports"
	pkgerrors "github.com/netcash/paynow-go/pkg/errors"
)

// Netcash service ids accepted by the partner validation service.
const (
	ServiceIDCreditorPayments = 2
	ServiceIDRiskReports      = 3
	ServiceIDAccountService   = 5
	ServiceIDSalaryPayments   = 10
	ServiceIDPayNow           = 14
)

// Bank account types used by account-service calls.
const (
	AccountTypeCurrentChecking = 1
	AccountTypeSavings         = 2
	AccountTypeTransmission    = 3
)

const (
	validateServiceKeyAction = "http://tempuri.org/INIWS_Partner/ValidateServiceKey"
	partnerAddressTo         = "https://ws.netcash.co.za/NIWS/NIWS_Partner.svc"

	statusOK = "001"
)

// accountStatusMessages maps the partner service's AccountStatus codes.
var accountStatusMessages = map[string]string{
	"001": "Authenticated",
	"103": "No active partner found for this Software vendor key",
	"104": "No active client found for this Account number",
	"200": "General service error - contact Netcash support",
	"201": "Account locked out for 10 minutes due to unsuccessful validation",
}

// serviceKeyStatusMessages maps the per-key ServiceStatus codes.
var serviceKeyStatusMessages = map[string]string{
	"001": "Validated",
	"105": "No active service found for this Account Number / Service ID combination",
	"106": "No active service key found for this Account Number / Service ID / Service Key combination",
}

// AccountStatusMessage returns the documented meaning of an AccountStatus
// code.
func AccountStatusMessage(code string) string {
	if msg, ok := accountStatusMessages[code]; ok {
		return msg
	}
	return "Unknown account error."
}

// ServiceKeyStatusMessage returns the documented meaning of a ServiceStatus
// code.
func ServiceKeyStatusMessage(code string) string {
	if msg, ok := serviceKeyStatusMessages[code]; ok {
		return msg
	}
	return "Unknown service key error."
}

// KeyValidation is the per-key outcome of a validation call.
type KeyValidation struct {
	Valid   bool
	Message string
}

// KeysValidator verifies merchant service keys against the NIWS partner
// service.
type KeysValidator struct {
	soapClient
	config Config
}

// NewKeysValidator creates a key validator with dependency injection.
func NewKeysValidator(config Config, httpClient ports.HTTPClient, logger *zap.Logger) *KeysValidator {
	return &KeysValidator{
		soapClient: soapClient{httpClient: httpClient, logger: logger},
		config:     config,
	}
}

// ValidateServiceKeys validates a set of service keys for a merchant
// account. Keys are given as service id to service key; the result maps
// each service key to its validation outcome.
//
// When the account itself fails authentication, every key is reported
// invalid with the account-level message.
func (v *KeysValidator) ValidateServiceKeys(ctx context.Context, merchantAccount string, keys map[int]string) (map[string]KeyValidation, error) {
	if len(keys) == 0 {
		return nil, pkgerrors.NewValidationError("ServiceInfoList", "at least one service key is required")
	}

	call := &validateServiceKeyCall{
		NS: "http://tempuri.org/",
		Request: validateServiceKeyRequest{
			SoftwareVendorKey: v.config.VendorKey,
			MerchantAccount:   merchantAccount,
		},
	}
	for id, key := range keys {
		call.Request.ServiceInfoList = append(call.Request.ServiceInfoList, serviceInfoItem{
			ServiceID:  id,
			ServiceKey: key,
		})
	}

	envelope := newEnvelope(validateServiceKeyAction, partnerAddressTo)
	envelope.Body.ValidateServiceKey = call

	start := time.Now()
	body, err := v.call(ctx, "validate_service_key", v.config.PartnerURL, envelope)
	if err != nil {
		return nil, err
	}
	if body.ValidateServiceKeyResponse == nil {
		return nil, pkgerrors.NewGatewayError("EMPTY_RESPONSE", "could not validate the service key", false)
	}

	result := body.ValidateServiceKeyResponse.Result
	v.logger.Info("validated service keys",
		zap.String("merchant_account", merchantAccount),
		zap.String("account_status", result.AccountStatus),
		zap.Int("keys", len(keys)),
		zap.Duration("elapsed", time.Since(start)),
	)

	out := make(map[string]KeyValidation, len(keys))

	// Continue only if the account is active
	if result.AccountStatus != statusOK {
		msg := AccountStatusMessage(result.AccountStatus)
		for _, key := range keys {
			out[key] = KeyValidation{Valid: false, Message: msg}
		}
		return out, nil
	}

	for _, info := range result.ServiceInfo {
		if info.ServiceStatus == statusOK {
			out[info.ServiceKey] = KeyValidation{Valid: true, Message: ServiceKeyStatusMessage(statusOK)}
		} else {
			out[info.ServiceKey] = KeyValidation{Valid: false, Message: ServiceKeyStatusMessage(info.ServiceStatus)}
		}
	}

	return out, nil
}

// ValidatePayNowServiceKey validates a single Pay Now service key. The
// returned message carries the gateway's explanation when invalid.
func (v *KeysValidator) ValidatePayNowServiceKey(ctx context.Context, merchantAccount, serviceKey string) (bool, string, error) {
	results, err := v.ValidateServiceKeys(ctx, merchantAccount, map[int]string{
		ServiceIDPayNow: serviceKey,
	})
	if err != nil {
		return false, "", err
	}

	result, ok := results[serviceKey]
	if !ok {
		return false, "Could not validate the service key.", nil
	}
	return result.Valid, result.Message, nil
}
