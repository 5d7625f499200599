package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/netcash/paynow-go/internal/services/payment"
	pkgerrors "github.com/netcash/paynow-go/pkg/errors"
)

// PaymentService defines the checkout operations the handler depends on
type PaymentService interface {
	CreateCheckout(ctx context.Context, req payment.CheckoutRequest) (*payment.CheckoutResponse, error)
}

// Handler serves checkout form generation for once-off payments
// Endpoint: POST /api/v1/checkouts
type Handler struct {
	service PaymentService
	logger  *zap.Logger
}

// NewHandler creates a new checkout handler
func NewHandler(service PaymentService, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

type checkoutRequest struct {
	OrderID      string `json:"order_id"`
	Description  string `json:"description,omitempty"`
	Amount       string `json:"amount"`
	Email        string `json:"email,omitempty"`
	Cellphone    string `json:"cellphone,omitempty"`
	Budget       bool   `json:"budget,omitempty"`
	ReturnString string `json:"return_string,omitempty"`
	ReturnCard   bool   `json:"return_card,omitempty"`
	CardToken    string `json:"card_token,omitempty"`
	Extra2       string `json:"extra2,omitempty"`
	Extra3       string `json:"extra3,omitempty"`
	// Format selects the response body: "json" (default) returns the field
	// map, "html" returns a self-submitting form document.
	Format string `json:"format,omitempty"`
}

type checkoutResponse struct {
	PaymentID string            `json:"payment_id"`
	Reference string            `json:"reference"`
	Fields    map[string]string `json:"fields"`
}

// CreateCheckout generates a hosted payment page form for a once-off payment
func (h *Handler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid checkout request body", zap.Error(err))
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		http.Error(w, "amount must be a valid decimal number", http.StatusBadRequest)
		return
	}

	resp, err := h.service.CreateCheckout(r.Context(), payment.CheckoutRequest{
		OrderID:      req.OrderID,
		Description:  req.Description,
		Amount:       amount,
		Email:        req.Email,
		Cellphone:    req.Cellphone,
		Budget:       req.Budget,
		ReturnString: req.ReturnString,
		ReturnCard:   req.ReturnCard,
		CardToken:    req.CardToken,
		Extra2:       req.Extra2,
		Extra3:       req.Extra3,
	})
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if req.Format == "html" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(resp.FormHTML))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(checkoutResponse{
		PaymentID: resp.PaymentID,
		Reference: resp.Reference,
		Fields:    resp.Fields,
	})
}

// WriteServiceError maps service errors onto HTTP responses. Validation errors
// become 400s with the offending field named; everything else is a 500.
func WriteServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var verr *pkgerrors.ValidationError
	if errors.As(err, &verr) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error": verr.Message,
			"field": verr.Field,
		})
		return
	}

	logger.Error("checkout request failed", zap.Error(err))
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
