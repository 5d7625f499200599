package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/netcash/paynow-go/internal/domain/models"
)

// ErrNotFound is returned when no payment matches the lookup.
var ErrNotFound = errors.New("payment not found")

// PaymentRepository implements ports.PaymentRepository on PostgreSQL.
type PaymentRepository struct {
	db *DBExecutor
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *DBExecutor) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = `
	id, order_id, reference, amount, status,
	accepted, subscription_accepted, reason, subscription_reason, method,
	card_token, card_holder, card_expiry, card_masked_number,
	extra1, extra2, extra3, created_at, updated_at`

// Create stores a new pending payment
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	amount, err := decimalToPgNumeric(payment.Amount)
	if err != nil {
		return err
	}

	_, err = r.db.Pool().Exec(ctx, `
		INSERT INTO payments (
			id, order_id, reference, amount, status,
			accepted, subscription_accepted, reason, subscription_reason, method,
			card_token, card_holder, card_expiry, card_masked_number,
			extra1, extra2, extra3
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		payment.ID, payment.OrderID, payment.Reference, amount, string(payment.Status),
		payment.Accepted, payment.SubscriptionAccepted, nullText(payment.Reason),
		nullText(payment.SubscriptionReason), methodToNullInt(payment.Method),
		nullText(payment.CardToken), nullText(payment.CardHolder),
		nullText(payment.CardExpiry), nullText(payment.CardMaskedNumber),
		nullText(payment.Extra1), nullText(payment.Extra2), nullText(payment.Extra3),
	)
	if err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

// GetByReference retrieves a payment by its gateway reference (p2)
func (r *PaymentRepository) GetByReference(ctx context.Context, reference string) (*models.Payment, error) {
	row := r.db.Pool().QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE reference = $1`, reference)
	return r.scanPayment(row)
}

// GetByOrderID retrieves the most recent payment for an order
func (r *PaymentRepository) GetByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	row := r.db.Pool().QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE order_id = $1 ORDER BY created_at DESC LIMIT 1`, orderID)
	return r.scanPayment(row)
}

// ApplyOutcome reloads the payment under a row lock, applies the mutation
// and persists the result in the same transaction, so two callback
// redeliveries for the same payment cannot interleave.
func (r *PaymentRepository) ApplyOutcome(ctx context.Context, id string, apply func(*models.Payment) error) (*models.Payment, error) {
	var payment *models.Payment
	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		row := tx.QueryRow(ctx,
			`SELECT `+paymentColumns+` FROM payments WHERE id = $1 FOR UPDATE`, id)
		p, err := r.scanPayment(row)
		if err != nil {
			return err
		}
		if err := apply(p); err != nil {
			return err
		}
		if err := r.update(ctx, tx, p); err != nil {
			return err
		}
		payment = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// execer is satisfied by both pgxpool.Pool and pgx.Tx.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (r *PaymentRepository) update(ctx context.Context, q execer, payment *models.Payment) error {
	tag, err := q.Exec(ctx, `
		UPDATE payments SET
			status = $2,
			accepted = $3,
			subscription_accepted = $4,
			reason = $5,
			subscription_reason = $6,
			method = $7,
			card_token = $8,
			card_holder = $9,
			card_expiry = $10,
			card_masked_number = $11,
			extra1 = $12,
			extra2 = $13,
			extra3 = $14,
			updated_at = now()
		WHERE id = $1`,
		payment.ID, string(payment.Status), payment.Accepted, payment.SubscriptionAccepted,
		nullText(payment.Reason), nullText(payment.SubscriptionReason),
		methodToNullInt(payment.Method),
		nullText(payment.CardToken), nullText(payment.CardHolder),
		nullText(payment.CardExpiry), nullText(payment.CardMaskedNumber),
		nullText(payment.Extra1), nullText(payment.Extra2), nullText(payment.Extra3),
	)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PaymentRepository) scanPayment(row pgx.Row) (*models.Payment, error) {
	var (
		p              models.Payment
		amount         pgtype.Numeric
		status         string
		reason         pgtype.Text
		subReason      pgtype.Text
		method         pgtype.Int4
		cardToken      pgtype.Text
		cardHolder     pgtype.Text
		cardExpiry     pgtype.Text
		cardMasked     pgtype.Text
		extra1, extra2 pgtype.Text
		extra3         pgtype.Text
	)

	err := row.Scan(
		&p.ID, &p.OrderID, &p.Reference, &amount, &status,
		&p.Accepted, &p.SubscriptionAccepted, &reason, &subReason, &method,
		&cardToken, &cardHolder, &cardExpiry, &cardMasked,
		&extra1, &extra2, &extra3, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan payment: %w", err)
	}

	p.Amount, err = pgNumericToDecimal(amount)
	if err != nil {
		return nil, err
	}
	p.Status = models.OrderStatus(status)
	p.Reason = reason.String
	p.SubscriptionReason = subReason.String
	if method.Valid {
		m := models.PaymentMethod(method.Int32)
		p.Method = &m
	}
	p.CardToken = cardToken.String
	p.CardHolder = cardHolder.String
	p.CardExpiry = cardExpiry.String
	p.CardMaskedNumber = cardMasked.String
	p.Extra1 = extra1.String
	p.Extra2 = extra2.String
	p.Extra3 = extra3.String

	return &p, nil
}

func methodToNullInt(m *models.PaymentMethod) pgtype.Int4 {
	if m == nil {
		return pgtype.Int4{Valid: false}
	}
	n := int(*m)
	return nullInt(&n)
}
