package netcash

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"

	"time"

	"go.uber.org/zap"

	"github.com/netcash/paynow-go/internal/adapters/ports"
	pkgerrors "github.com/netcash/paynow-go/pkg/errors"
	"github.com/netcash/paynow-go/pkg/observability"
)

// Config contains configuration for the Netcash web-service clients.
type Config struct {
	// PartnerURL is the NIWS partner service endpoint (key validation).
	PartnerURL string

	// PayNowURL is the Pay Now service endpoint (subscription updates).
	PayNowURL string

	// VendorKey is the software vendor key used for partner calls.
	VendorKey string
}

// DefaultConfig returns the production endpoints.
func DefaultConfig(vendorKey string) Config {
	return Config{
		PartnerURL: "https://ws.netcash.co.za/niws/niws_partner.svc",
		PayNowURL:  "https://ws.netcash.co.za/PayNow/PayNow.svc",
		VendorKey:  vendorKey,
	}
}

// soapClient posts SOAP 1.2 envelopes and unwraps the response body. Shared
// by the key validator and the subscription updater.
type soapClient struct {
	httpClient ports.HTTPClient
	logger     *zap.Logger
}

func (c *soapClient) call(ctx context.Context, operation, endpoint string, envelope *soapEnvelope) (*soapResponseBody, error) {
	start := time.Now()
	defer func() {
		observability.ObserveGatewayCall(operation, time.Since(start).Seconds())
	}()

	payload, err := xml.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("marshal SOAP request: %w", err)
	}
	payload = append([]byte(xml.Header), payload...)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create SOAP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/soap+xml; charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.NewGatewayError("NETWORK_ERROR", "failed to reach Netcash web service", true)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read SOAP response: %w", err)
	}

	if resp.StatusCode >= 500 {
		c.logger.Error("Netcash web service error",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
		)
		return nil, pkgerrors.NewGatewayError("GATEWAY_ERROR", "Netcash web service error", true)
	}

	var parsed soapResponseEnvelope
	if err := xml.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse SOAP response (HTTP %d): %w", resp.StatusCode, err)
	}

	if parsed.Body.Fault != nil {
		return nil, &pkgerrors.SOAPFault{
			FaultCode:   parsed.Body.Fault.code(),
			FaultString: parsed.Body.Fault.reason(),
		}
	}

	return &parsed.Body, nil
}
