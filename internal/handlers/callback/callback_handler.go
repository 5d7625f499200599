package callback

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/netcash/paynow-go/internal/services/payment"
	pkgerrors "github.com/netcash/paynow-go/pkg/errors"
)

// PaymentService defines the callback operations the handler depends on
type PaymentService interface {
	HandleCallback(ctx context.Context, postData map[string]string) (*payment.CallbackResult, error)
}

// Handler receives the gateway's asynchronous payment notification.
// The gateway POSTs form-encoded transaction results here and retries
// delivery until it gets a 2xx, so the handler answers 200 for every
// payload it has durably dealt with, including ones it rejects.
// Endpoint: POST /paynow/callback
type Handler struct {
	service PaymentService
	logger  *zap.Logger
}

// NewHandler creates a new callback handler
func NewHandler(service PaymentService, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// HandleCallback processes a gateway notification
func (h *Handler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.logger.Warn("callback with unparseable body", zap.Error(err))
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}

	postData := make(map[string]string, len(r.PostForm))
	for key := range r.PostForm {
		postData[key] = r.PostForm.Get(key)
	}

	result, err := h.service.HandleCallback(r.Context(), postData)
	if err != nil {
		// Malformed or unknown payloads are acknowledged so the gateway
		// stops redelivering them; only storage failures earn a retry.
		var verr *pkgerrors.ValidationError
		if errors.As(err, &verr) {
			h.logger.Warn("callback rejected", zap.Error(err))
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
			return
		}

		h.logger.Error("callback processing failed", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if !result.Reconciled {
		h.logger.Warn("callback acknowledged without reconciliation",
			zap.String("payment_id", result.Payment.ID),
		)
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
