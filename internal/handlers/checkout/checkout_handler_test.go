package checkout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/netcash/paynow-go/internal/services/payment"
	pkgerrors "github.com/netcash/paynow-go/pkg/errors"
)

type stubService struct {
	lastRequest payment.CheckoutRequest
	response    *payment.CheckoutResponse
	err         error
}

func (s *stubService) CreateCheckout(ctx context.Context, req payment.CheckoutRequest) (*payment.CheckoutResponse, error) {
	s.lastRequest = req
	return s.response, s.err
}

func postCheckout(t *testing.T, handler *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkouts", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.CreateCheckout(rec, req)
	return rec
}

func TestCreateCheckout(t *testing.T) {
	okResponse := &payment.CheckoutResponse{
		PaymentID: "pay-1",
		Reference: "INV-1__2026082910",
		FormHTML:  `<form id="netcash-paynow-form">...</form>`,
		Fields:    map[string]string{"m1": "svc-key", "p4": "100"},
	}

	t.Run("returns the field map as JSON", func(t *testing.T) {
		service := &stubService{response: okResponse}
		handler := NewHandler(service, zap.NewNop())

		rec := postCheckout(t, handler, `{"order_id":"INV-1","amount":"100.00","email":"buyer@example.com"}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp struct {
			PaymentID string            `json:"payment_id"`
			Reference string            `json:"reference"`
			Fields    map[string]string `json:"fields"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "pay-1", resp.PaymentID)
		assert.Equal(t, "INV-1__2026082910", resp.Reference)
		assert.Equal(t, "svc-key", resp.Fields["m1"])

		assert.Equal(t, "INV-1", service.lastRequest.OrderID)
		assert.Equal(t, "buyer@example.com", service.lastRequest.Email)
		assert.Equal(t, "100.00", service.lastRequest.Amount.String())
	})

	t.Run("returns the HTML form when requested", func(t *testing.T) {
		service := &stubService{response: okResponse}
		handler := NewHandler(service, zap.NewNop())

		rec := postCheckout(t, handler, `{"order_id":"INV-1","amount":"100.00","format":"html"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, rec.Body.String(), "netcash-paynow-form")
	})

	t.Run("rejects an unparseable amount", func(t *testing.T) {
		handler := NewHandler(&stubService{}, zap.NewNop())

		rec := postCheckout(t, handler, `{"order_id":"INV-1","amount":"lots"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects a malformed body", func(t *testing.T) {
		handler := NewHandler(&stubService{}, zap.NewNop())

		rec := postCheckout(t, handler, `{"order_id":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("maps validation errors to 400 with the field name", func(t *testing.T) {
		service := &stubService{err: pkgerrors.NewValidationError("p4", "amount cannot be 0")}
		handler := NewHandler(service, zap.NewNop())

		rec := postCheckout(t, handler, `{"order_id":"INV-1","amount":"0"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "p4", resp["field"])
	})

	t.Run("maps unexpected errors to 500", func(t *testing.T) {
		service := &stubService{err: assert.AnError}
		handler := NewHandler(service, zap.NewNop())

		rec := postCheckout(t, handler, `{"order_id":"INV-1","amount":"100.00"}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("rejects non-POST requests", func(t *testing.T) {
		handler := NewHandler(&stubService{}, zap.NewNop())

		req := httptest.NewRequest(http.MethodGet, "/api/v1/checkouts", nil)
		rec := httptest.NewRecorder()
		handler.CreateCheckout(rec, req)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}
