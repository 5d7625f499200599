package ports

import (
	"context"

	"github.com/netcash/paynow-go/internal/domain/models"
)

// PaymentRepository defines persistence operations for payments
type PaymentRepository interface {
	// Create stores a new pending payment
	Create(ctx context.Context, payment *models.Payment) error

	// GetByReference retrieves a payment by its gateway reference (p2)
	GetByReference(ctx context.Context, reference string) (*models.Payment, error)

	// GetByOrderID retrieves the most recent payment for an order
	GetByOrderID(ctx context.Context, orderID string) (*models.Payment, error)

	// ApplyOutcome reloads the payment under a row lock, invokes apply to
	// mutate it, and persists the result in the same transaction. Concurrent
	// callback redeliveries serialize on the lock instead of overwriting
	// each other. Returns the persisted payment.
	ApplyOutcome(ctx context.Context, id string, apply func(*models.Payment) error) (*models.Payment, error)
}
