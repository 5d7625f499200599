package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/netcash/paynow-go/internal/adapters/postgres"
	"github.com/netcash/paynow-go/internal/domain/models"
	"github.com/netcash/paynow-go/internal/domain/ports"
	"github.com/netcash/paynow-go/internal/paynow"
	pkgerrors "github.com/netcash/paynow-go/pkg/errors"
	"github.com/netcash/paynow-go/pkg/observability"
	"github.com/netcash/paynow-go/pkg/timeutil"
)

// GatewayCredentials holds the merchant identifiers stamped onto every form
type GatewayCredentials struct {
	ServiceKey string
	VendorKey  string
	TestMode   bool
}

// CheckoutRequest describes a once-off payment to collect
type CheckoutRequest struct {
	OrderID      string
	Description  string
	Amount       decimal.Decimal
	Email        string
	Cellphone    string
	Budget       bool
	ReturnString string
	ReturnCard   bool
	CardToken    string
	Extra2       string
	Extra3       string
}

// CheckoutResponse carries the rendered gateway form and the stored payment
type CheckoutResponse struct {
	PaymentID string
	Reference string
	FormHTML  string
	Fields    map[string]string
}

// CallbackResult reports the outcome of processing a gateway callback
type CallbackResult struct {
	Payment    *models.Payment
	Reconciled bool
}

// Service builds checkout forms and applies gateway callbacks to stored payments
type Service struct {
	repo   ports.PaymentRepository
	creds  GatewayCredentials
	logger *zap.Logger
}

// NewService creates a new payment service
func NewService(repo ports.PaymentRepository, creds GatewayCredentials, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		creds:  creds,
		logger: logger,
	}
}

// newForm builds a gateway form carrying the merchant credentials
func (s *Service) newForm() (*paynow.Form, error) {
	form, err := paynow.NewForm(s.creds.ServiceKey)
	if err != nil {
		return nil, err
	}
	if s.creds.VendorKey != "" {
		if err := form.SetVendorKey(s.creds.VendorKey); err != nil {
			return nil, err
		}
	}
	form.SetTesting(s.creds.TestMode)
	return form, nil
}

// populateForm applies the request fields shared by all checkout types. The
// internal payment id rides along in the first extra field so callbacks can be
// tied back even if the order reference is reused.
func (s *Service) populateForm(form *paynow.Form, req CheckoutRequest, paymentID string) error {
	form.SetOrderID(req.OrderID)
	if err := form.SetExtraField(paymentID, 1); err != nil {
		return err
	}
	if req.Description != "" {
		form.SetDescription(req.Description)
	}
	if err := form.SetAmount(req.Amount); err != nil {
		return err
	}
	if req.Email != "" {
		if err := form.SetEmail(req.Email); err != nil {
			return err
		}
	}
	if req.Cellphone != "" {
		if err := form.SetCellphone(req.Cellphone); err != nil {
			return err
		}
	}
	form.SetBudget(req.Budget)
	if req.ReturnString != "" {
		form.SetReturnString(req.ReturnString)
	}
	if req.ReturnCard {
		form.SetReturnCardDetail(true)
	}
	if req.CardToken != "" {
		form.SetCardToken(req.CardToken)
	}
	if req.Extra2 != "" {
		if err := form.SetExtraField(req.Extra2, 2); err != nil {
			return err
		}
	}
	if req.Extra3 != "" {
		if err := form.SetExtraField(req.Extra3, 3); err != nil {
			return err
		}
	}
	return nil
}

// CreateCheckout builds a hosted payment page form for a once-off payment and
// records the pending payment. The returned HTML posts straight to the gateway.
func (s *Service) CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutResponse, error) {
	if req.OrderID == "" {
		return nil, pkgerrors.NewValidationError("order_id", "order_id is required")
	}

	form, err := s.newForm()
	if err != nil {
		return nil, err
	}

	paymentID := uuid.New().String()
	if err := s.populateForm(form, req, paymentID); err != nil {
		return nil, err
	}

	reference := form.Field(paynow.FieldUniqueID)

	payment := &models.Payment{
		ID:        paymentID,
		OrderID:   req.OrderID,
		Reference: reference,
		Amount:    req.Amount,
		Status:    models.StatusPending,
		Extra2:    req.Extra2,
		Extra3:    req.Extra3,
		CreatedAt: timeutil.Now(),
		UpdatedAt: timeutil.Now(),
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	s.logger.Info("checkout created",
		zap.String("payment_id", paymentID),
		zap.String("order_id", req.OrderID),
		zap.String("reference", reference),
		zap.String("amount", req.Amount.String()),
	)
	observability.RecordCheckoutCreated("once_off")

	return &CheckoutResponse{
		PaymentID: paymentID,
		Reference: reference,
		FormHTML:  form.MakeForm(true, "Pay Now"),
		Fields:    form.Fields(),
	}, nil
}

// HandleCallback classifies a gateway callback payload, reconciles it against
// the stored payment and persists the outcome. The gateway retries delivery
// until it receives a 200, so replays of an already-final payment are applied
// idempotently.
func (s *Service) HandleCallback(ctx context.Context, postData map[string]string) (*CallbackResult, error) {
	response := paynow.NewResponse(postData)

	orderID := response.OrderID()
	if orderID == "" {
		observability.RecordReconciliationFailure("empty_payload")
		return nil, pkgerrors.NewValidationError("Reference", "callback carries no order reference")
	}

	// The echoed p2 reference is an exact key for the payment we minted it
	// for. Forms built elsewhere carry a reference we never stored, so fall
	// back to the most recent payment for the order.
	payment, err := s.repo.GetByReference(ctx, response.Reference())
	if errors.Is(err, postgres.ErrNotFound) {
		payment, err = s.repo.GetByOrderID(ctx, orderID)
	}
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			observability.RecordReconciliationFailure("unknown_reference")
			s.logger.Warn("callback for unknown order",
				zap.String("order_id", orderID),
				zap.String("reference", response.Reference()),
			)
			return nil, pkgerrors.NewValidationError("Reference", "no payment recorded for this order")
		}
		return nil, fmt.Errorf("load payment for order %s: %w", orderID, err)
	}

	reconciled := paynow.ValidateResponse(response.Data(), payment.OrderID, payment.Amount)
	if !reconciled {
		observability.RecordReconciliationFailure("amount_mismatch")
		s.logger.Warn("callback failed reconciliation",
			zap.String("order_id", orderID),
			zap.String("expected_amount", payment.Amount.String()),
			zap.String("callback_amount", response.Amount().String()),
		)
		return &CallbackResult{Payment: payment, Reconciled: false}, nil
	}

	methodLabel := "unknown"
	method, hasMethod := response.Method()
	if hasMethod {
		methodLabel = method.String()
	}

	// Mutate under the repository's row lock so a concurrent redelivery of
	// the same callback cannot interleave with this one.
	payment, err = s.repo.ApplyOutcome(ctx, payment.ID, func(p *models.Payment) error {
		p.Status = response.OrderStatus()
		p.Accepted = response.WasAccepted()
		p.SubscriptionAccepted = response.WasSubscriptionAccepted()
		p.Reason = response.Reason()
		p.SubscriptionReason = response.SubscriptionReason()
		p.Extra2 = response.Extra(2)
		p.Extra3 = response.Extra(3)
		p.CardToken = response.CreditCardToken()
		p.CardHolder = response.CreditCardHolder()
		p.CardExpiry = response.CreditCardExpiry()
		p.CardMaskedNumber = response.CreditCardMaskedNumber()
		if hasMethod {
			m := method
			p.Method = &m
		}
		p.UpdatedAt = timeutil.Now()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update payment for order %s: %w", orderID, err)
	}

	s.logger.Info("callback applied",
		zap.String("payment_id", payment.ID),
		zap.String("order_id", orderID),
		zap.String("status", string(payment.Status)),
		zap.String("reason", payment.Reason),
	)
	observability.RecordCallback(string(payment.Status), methodLabel,
		response.Amount().Mul(decimal.NewFromInt(100)).IntPart())

	return &CallbackResult{Payment: payment, Reconciled: true}, nil
}
