// Package collab provides the collaborator adapters behind the order
// flow's ports: HTTP clients for split deployments and in-process
// bindings for the all-in-one binary.
package collab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mercatohq/mercato/internal/config"
	"github.com/mercatohq/mercato/internal/observability/tracing"
	"github.com/mercatohq/mercato/internal/order/domain/port"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
)

type httpCaller struct {
	base    string
	client  *http.Client
	timeout time.Duration
	log     *zap.Logger
}

func newHTTPCaller(base string, timeout time.Duration, log *zap.Logger) httpCaller {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return httpCaller{
		base:    strings.TrimRight(base, "/"),
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
		log:     log,
	}
}

// do issues one JSON request and decodes the response envelope's data
// field into out. Non-2xx responses surface as *StatusError.
func (h httpCaller) do(ctx context.Context, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.base+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	tracing.InjectContext(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Body: string(raw)}
	}
	if out == nil {
		return nil
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return json.Unmarshal(envelope.Data, out)
}

// StatusError is a non-2xx collaborator response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("collaborator returned status %d", e.Code)
}

// HTTPInventoryClient talks to the inventory service over HTTP.
type HTTPInventoryClient struct {
	caller httpCaller
}

func NewHTTPInventoryClient(cfg config.Config, log *zap.Logger) *HTTPInventoryClient {
	return &HTTPInventoryClient{
		caller: newHTTPCaller(cfg.Collaborators.InventoryURL, cfg.Collaborators.CallTimeout, log.Named("collab.inventory")),
	}
}

func (c *HTTPInventoryClient) ReserveStock(ctx context.Context, productID string, quantity int64) error {
	body := map[string]any{"product_id": productID, "quantity": quantity}
	return c.caller.do(ctx, http.MethodPost, "/inventory/reserve", body, nil)
}

func (c *HTTPInventoryClient) ReleaseStock(ctx context.Context, productID string, quantity int64) error {
	body := map[string]any{"product_id": productID, "quantity": quantity}
	return c.caller.do(ctx, http.MethodPost, "/inventory/release", body, nil)
}

// HTTPPaymentClient talks to the payment service over HTTP.
type HTTPPaymentClient struct {
	caller httpCaller
}

func NewHTTPPaymentClient(cfg config.Config, log *zap.Logger) *HTTPPaymentClient {
	return &HTTPPaymentClient{
		caller: newHTTPCaller(cfg.Collaborators.PaymentURL, cfg.Collaborators.CallTimeout, log.Named("collab.payment")),
	}
}

func (c *HTTPPaymentClient) ProcessPayment(ctx context.Context, orderID string, amount float64) (port.PaymentResult, error) {
	body := map[string]any{"order_id": orderID, "amount": amount}
	var out struct {
		Status        string `json:"status"`
		TransactionID string `json:"transaction_id"`
	}
	if err := c.caller.do(ctx, http.MethodPost, "/payments", body, &out); err != nil {
		return port.PaymentResult{}, err
	}
	return port.PaymentResult{Status: out.Status, TransactionID: out.TransactionID}, nil
}

// HTTPProductClient talks to the catalog service over HTTP.
type HTTPProductClient struct {
	caller httpCaller
}

func NewHTTPProductClient(cfg config.Config, log *zap.Logger) *HTTPProductClient {
	return &HTTPProductClient{
		caller: newHTTPCaller(cfg.Collaborators.CatalogURL, cfg.Collaborators.CallTimeout, log.Named("collab.catalog")),
	}
}

func (c *HTTPProductClient) GetProduct(ctx context.Context, productID string) (*port.ProductInfo, error) {
	var out struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		QuotaLimit *int64 `json:"quota_limit"`
		RateLimit  *int64 `json:"rate_limit"`
	}
	if err := c.caller.do(ctx, http.MethodGet, "/products/"+productID, nil, &out); err != nil {
		return nil, err
	}
	return &port.ProductInfo{
		ID:         out.ID,
		Name:       out.Name,
		QuotaLimit: out.QuotaLimit,
		RateLimit:  out.RateLimit,
	}, nil
}

// HTTPCredentialClient talks to the credential service over HTTP.
type HTTPCredentialClient struct {
	caller httpCaller
}

func NewHTTPCredentialClient(cfg config.Config, log *zap.Logger) *HTTPCredentialClient {
	return &HTTPCredentialClient{
		caller: newHTTPCaller(cfg.Collaborators.CredentialURL, cfg.Collaborators.CallTimeout, log.Named("collab.credential")),
	}
}

type credentialPayload struct {
	ID         string `json:"id"`
	ProductID  string `json:"product_id"`
	Key        string `json:"key"`
	QuotaLimit int64  `json:"quota_limit"`
	RateLimit  int64  `json:"rate_limit"`
}

func (c *HTTPCredentialClient) IssueCredential(ctx context.Context, userID, productID, orderID string, quotaLimit, rateLimit *int64) (*port.Credential, error) {
	body := map[string]any{
		"user_id":    userID,
		"product_id": productID,
		"order_id":   orderID,
	}
	if quotaLimit != nil {
		body["quota_limit"] = *quotaLimit
	}
	if rateLimit != nil {
		body["rate_limit"] = *rateLimit
	}

	var out credentialPayload
	if err := c.caller.do(ctx, http.MethodPost, "/keys", body, &out); err != nil {
		return nil, err
	}
	return toPortCredential(out), nil
}

func (c *HTTPCredentialClient) GetCredentialsForOrder(ctx context.Context, orderID string) ([]port.Credential, error) {
	var out []credentialPayload
	if err := c.caller.do(ctx, http.MethodGet, "/orders/"+orderID+"/keys", nil, &out); err != nil {
		return nil, err
	}

	creds := make([]port.Credential, 0, len(out))
	for _, item := range out {
		creds = append(creds, *toPortCredential(item))
	}
	return creds, nil
}

func toPortCredential(p credentialPayload) *port.Credential {
	return &port.Credential{
		ID:         p.ID,
		ProductID:  p.ProductID,
		Key:        p.Key,
		QuotaLimit: p.QuotaLimit,
		RateLimit:  p.RateLimit,
	}
}
