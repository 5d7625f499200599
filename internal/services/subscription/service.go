package subscription

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/netcash/paynow-go/internal/adapters/netcash"
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

// CreateRequest describes a new subscription to set up on the hosted page.
// InitialAmount is charged on first presentment; when it is zero the first
// billing happens on StartDate for RecurringAmount.
type CreateRequest struct {
	OrderID         string
	Description     string
	Email           string
	InitialAmount   decimal.Decimal
	RecurringAmount decimal.Decimal
	Frequency       models.SubscriptionFrequency
	StartDate       time.Time
	Cycles          int
}

// CreateResponse carries the rendered subscription form
type CreateResponse struct {
	SubscriptionID string
	Reference      string
	FormHTML       string
	Fields         map[string]string
}

// Service builds subscription checkout forms and maintains existing
// subscriptions through the gateway web service.
type Service struct {
	repo    ports.PaymentRepository
	updater *netcash.SubscriptionUpdater
	creds   GatewayCredentials
	logger  *zap.Logger
}

// NewService creates a new subscription service
func NewService(repo ports.PaymentRepository, updater *netcash.SubscriptionUpdater, creds GatewayCredentials, logger *zap.Logger) *Service {
	return &Service{
		repo:    repo,
		updater: updater,
		creds:   creds,
		logger:  logger,
	}
}

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

// Create builds a subscription checkout form and records the pending payment.
// A non-zero InitialAmount produces an ad hoc subscription where the first
// charge differs from the recurring amount.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*CreateResponse, error) {
	if req.OrderID == "" {
		return nil, pkgerrors.NewValidationError("order_id", "order_id is required")
	}

	form, err := s.newForm()
	if err != nil {
		return nil, err
	}

	subscriptionID := uuid.New().String()
	form.SetOrderID(req.OrderID)
	if err := form.SetExtraField(subscriptionID, 1); err != nil {
		return nil, err
	}
	if req.Description != "" {
		form.SetDescription(req.Description)
	}
	if req.Email != "" {
		if err := form.SetEmail(req.Email); err != nil {
			return nil, err
		}
	}

	checkoutType := "subscription"
	if req.InitialAmount.IsZero() {
		err = form.CreateSubscription(req.RecurringAmount, req.Frequency, req.StartDate, req.Cycles)
	} else {
		checkoutType = "adhoc"
		err = form.CreateAdHocSubscription(req.InitialAmount, req.RecurringAmount, req.Frequency, req.StartDate, req.Cycles)
	}
	if err != nil {
		return nil, err
	}

	reference := form.Field(paynow.FieldUniqueID)

	payment := &models.Payment{
		ID:        subscriptionID,
		OrderID:   req.OrderID,
		Reference: reference,
		Amount:    req.InitialAmount,
		Status:    models.StatusPending,
		CreatedAt: timeutil.Now(),
		UpdatedAt: timeutil.Now(),
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("create subscription payment: %w", err)
	}

	s.logger.Info("subscription checkout created",
		zap.String("subscription_id", subscriptionID),
		zap.String("order_id", req.OrderID),
		zap.String("frequency", req.Frequency.String()),
		zap.Int("cycles", req.Cycles),
	)
	observability.RecordCheckoutCreated(checkoutType)

	return &CreateResponse{
		SubscriptionID: subscriptionID,
		Reference:      reference,
		FormHTML:       form.MakeForm(true, "Subscribe"),
		Fields:         form.Fields(),
	}, nil
}

// Update changes the billing schedule of an existing subscription through the
// gateway web service.
func (s *Service) Update(ctx context.Context, reference string, amount decimal.Decimal, frequency models.SubscriptionFrequency, startDate time.Time, cycles int) error {
	req := netcash.UpdateSubscriptionRequest{
		ServiceKey: s.creds.ServiceKey,
		Reference:  reference,
		Cycles:     cycles,
		Frequency:  frequency,
		StartDate:  startDate,
		Amount:     amount,
		Active:     true,
	}

	if err := s.updater.UpdateSubscription(ctx, req); err != nil {
		observability.RecordSubscriptionUpdate("update", "failed")
		return err
	}

	s.logger.Info("subscription updated",
		zap.String("reference", reference),
		zap.String("amount", amount.String()),
		zap.String("frequency", frequency.String()),
	)
	observability.RecordSubscriptionUpdate("update", "success")
	return nil
}

// Deactivate stops future billing for a subscription.
func (s *Service) Deactivate(ctx context.Context, reference string) error {
	if err := s.updater.DeactivateSubscription(ctx, s.creds.ServiceKey, reference); err != nil {
		observability.RecordSubscriptionUpdate("deactivate", "failed")
		return err
	}

	s.logger.Info("subscription deactivated", zap.String("reference", reference))
	observability.RecordSubscriptionUpdate("deactivate", "success")
	return nil
}
