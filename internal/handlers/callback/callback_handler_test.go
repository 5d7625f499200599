package callback

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/netcash/paynow-go/internal/domain/models"
	"github.com/netcash/paynow-go/internal/services/payment"
	pkgerrors "github.com/netcash/paynow-go/pkg/errors"
)

type stubService struct {
	lastPostData map[string]string
	result       *payment.CallbackResult
	err          error
}

func (s *stubService) HandleCallback(ctx context.Context, postData map[string]string) (*payment.CallbackResult, error) {
	s.lastPostData = postData
	return s.result, s.err
}

func postCallback(t *testing.T, handler *Handler, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/paynow/callback", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.HandleCallback(rec, req)
	return rec
}

func TestHandleCallback(t *testing.T) {
	t.Run("acknowledges a processed callback", func(t *testing.T) {
		service := &stubService{result: &payment.CallbackResult{
			Payment:    &models.Payment{ID: "pay-1", Status: models.StatusSuccess},
			Reconciled: true,
		}}
		handler := NewHandler(service, zap.NewNop())

		rec := postCallback(t, handler, url.Values{
			"TransactionAccepted": {"true"},
			"Reason":              {"Success"},
			"Reference":           {"INV-1__2026082910"},
			"Amount":              {"100.00"},
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "OK", rec.Body.String())
		assert.Equal(t, "true", service.lastPostData["TransactionAccepted"])
		assert.Equal(t, "INV-1__2026082910", service.lastPostData["Reference"])
	})

	t.Run("acknowledges an unreconciled callback", func(t *testing.T) {
		service := &stubService{result: &payment.CallbackResult{
			Payment:    &models.Payment{ID: "pay-1", Status: models.StatusPending},
			Reconciled: false,
		}}
		handler := NewHandler(service, zap.NewNop())

		rec := postCallback(t, handler, url.Values{"Reference": {"INV-1__x"}})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("acknowledges rejected payloads so the gateway stops retrying", func(t *testing.T) {
		service := &stubService{err: pkgerrors.NewValidationError("Reference", "no payment recorded for this order")}
		handler := NewHandler(service, zap.NewNop())

		rec := postCallback(t, handler, url.Values{"Reference": {"NOPE__x"}})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "OK", rec.Body.String())
	})

	t.Run("storage failures earn a retry", func(t *testing.T) {
		service := &stubService{err: errors.New("connection refused")}
		handler := NewHandler(service, zap.NewNop())

		rec := postCallback(t, handler, url.Values{"Reference": {"INV-1__x"}})
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("rejects non-POST requests", func(t *testing.T) {
		handler := NewHandler(&stubService{}, zap.NewNop())

		req := httptest.NewRequest(http.MethodGet, "/paynow/callback", nil)
		rec := httptest.NewRecorder()
		handler.HandleCallback(rec, req)
		require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}
