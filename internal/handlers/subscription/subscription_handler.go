package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/netcash/paynow-go/internal/domain/models"
	"github.com/netcash/paynow-go/internal/services/subscription"
	pkgerrors "github.com/netcash/paynow-go/pkg/errors"
	"github.com/netcash/paynow-go/pkg/timeutil"
)

// SubscriptionService defines the subscription operations the handler depends on
type SubscriptionService interface {
	Create(ctx context.Context, req subscription.CreateRequest) (*subscription.CreateResponse, error)
	Update(ctx context.Context, reference string, amount decimal.Decimal, frequency models.SubscriptionFrequency, startDate time.Time, cycles int) error
	Deactivate(ctx context.Context, reference string) error
}

// Handler serves subscription checkout and maintenance
// Endpoints:
//
//	POST   /api/v1/subscriptions
//	PUT    /api/v1/subscriptions/update
//	DELETE /api/v1/subscriptions/deactivate
type Handler struct {
	service SubscriptionService
	logger  *zap.Logger
}

// NewHandler creates a new subscription handler
func NewHandler(service SubscriptionService, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

type createRequest struct {
	OrderID         string `json:"order_id"`
	Description     string `json:"description,omitempty"`
	Email           string `json:"email,omitempty"`
	InitialAmount   string `json:"initial_amount,omitempty"`
	RecurringAmount string `json:"recurring_amount"`
	Frequency       string `json:"frequency"`
	StartDate       string `json:"start_date"` // YYYY-MM-DD
	Cycles          int    `json:"cycles"`     // 0 = until cancelled
	Format          string `json:"format,omitempty"`
}

type createResponse struct {
	SubscriptionID string            `json:"subscription_id"`
	Reference      string            `json:"reference"`
	Fields         map[string]string `json:"fields"`
}

type updateRequest struct {
	Reference string `json:"reference"`
	Amount    string `json:"amount"`
	Frequency string `json:"frequency"`
	StartDate string `json:"start_date"`
	Cycles    int    `json:"cycles"`
}

type deactivateRequest struct {
	Reference string `json:"reference"`
}

// Create generates a hosted payment page form that sets up a subscription
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid subscription request body", zap.Error(err))
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	initial := decimal.Zero
	if req.InitialAmount != "" {
		var err error
		initial, err = decimal.NewFromString(req.InitialAmount)
		if err != nil {
			http.Error(w, "initial_amount must be a valid decimal number", http.StatusBadRequest)
			return
		}
	}
	recurring, err := decimal.NewFromString(req.RecurringAmount)
	if err != nil {
		http.Error(w, "recurring_amount must be a valid decimal number", http.StatusBadRequest)
		return
	}
	frequency, err := models.ParseSubscriptionFrequency(req.Frequency)
	if err != nil {
		http.Error(w, "frequency is not a recognised billing frequency", http.StatusBadRequest)
		return
	}
	startDate, err := timeutil.ParseDate("2006-01-02", req.StartDate)
	if err != nil {
		http.Error(w, "start_date must be formatted YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	resp, err := h.service.Create(r.Context(), subscription.CreateRequest{
		OrderID:         req.OrderID,
		Description:     req.Description,
		Email:           req.Email,
		InitialAmount:   initial,
		RecurringAmount: recurring,
		Frequency:       frequency,
		StartDate:       startDate,
		Cycles:          req.Cycles,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	if req.Format == "html" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(resp.FormHTML))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(createResponse{
		SubscriptionID: resp.SubscriptionID,
		Reference:      resp.Reference,
		Fields:         resp.Fields,
	})
}

// Update changes the billing schedule of an existing subscription
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut && r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		http.Error(w, "amount must be a valid decimal number", http.StatusBadRequest)
		return
	}
	frequency, err := models.ParseSubscriptionFrequency(req.Frequency)
	if err != nil {
		http.Error(w, "frequency is not a recognised billing frequency", http.StatusBadRequest)
		return
	}
	startDate, err := timeutil.ParseDate("2006-01-02", req.StartDate)
	if err != nil {
		http.Error(w, "start_date must be formatted YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	if err := h.service.Update(r.Context(), req.Reference, amount, frequency, startDate, req.Cycles); err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "updated"})
}

// Deactivate stops future billing for a subscription
func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete && r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req deactivateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Reference == "" {
		http.Error(w, "reference is required", http.StatusBadRequest)
		return
	}

	if err := h.service.Deactivate(r.Context(), req.Reference); err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "deactivated"})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
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

	var gerr *pkgerrors.GatewayError
	if errors.As(err, &gerr) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{
			"error": gerr.Message,
			"code":  gerr.Code,
		})
		return
	}

	h.logger.Error("subscription request failed", zap.Error(err))
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
