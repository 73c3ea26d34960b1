package collab

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mercatohq/mercato/internal/config"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func collabConfig(url string) config.Config {
	return config.Config{
		Collaborators: config.CollaboratorConfig{
			InventoryURL:  url,
			PaymentURL:    url,
			CatalogURL:    url,
			CredentialURL: url,
			CallTimeout:   2 * time.Second,
		},
	}
}

func TestHTTPInventoryClientReserve(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"reserved":true}}`))
	}))
	defer ts.Close()

	client := NewHTTPInventoryClient(collabConfig(ts.URL), zap.NewNop())
	err := client.ReserveStock(context.Background(), "42", 3)
	require.NoError(t, err)
	require.Equal(t, "/inventory/reserve", gotPath)
	require.Equal(t, "42", gotBody["product_id"])
	require.EqualValues(t, 3, gotBody["quantity"])
}

func TestHTTPInventoryClientReserveConflict(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":{"type":"insufficient_stock"}}`))
	}))
	defer ts.Close()

	client := NewHTTPInventoryClient(collabConfig(ts.URL), zap.NewNop())
	err := client.ReserveStock(context.Background(), "42", 3)
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusConflict, statusErr.Code)
}

func TestHTTPPaymentClientProcess(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/payments", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"status":"success","transaction_id":"txn-1"}}`))
	}))
	defer ts.Close()

	client := NewHTTPPaymentClient(collabConfig(ts.URL), zap.NewNop())
	result, err := client.ProcessPayment(context.Background(), "7", 99.5)
	require.NoError(t, err)
	require.True(t, result.Succeeded())
	require.Equal(t, "txn-1", result.TransactionID)
}

func TestHTTPProductClientGet(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/products/42", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"id":"42","name":"Growth Plan","quota_limit":5000}}`))
	}))
	defer ts.Close()

	client := NewHTTPProductClient(collabConfig(ts.URL), zap.NewNop())
	info, err := client.GetProduct(context.Background(), "42")
	require.NoError(t, err)
	require.Equal(t, "Growth Plan", info.Name)
	require.NotNil(t, info.QuotaLimit)
	require.EqualValues(t, 5000, *info.QuotaLimit)
	require.Nil(t, info.RateLimit)
}

func TestHTTPCredentialClientIssueOmitsNilLimits(t *testing.T) {
	var gotBody map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"id":"1","product_id":"42","key":"sk_test","quota_limit":1000,"rate_limit":60}}`))
	}))
	defer ts.Close()

	client := NewHTTPCredentialClient(collabConfig(ts.URL), zap.NewNop())
	cred, err := client.IssueCredential(context.Background(), "9", "42", "7", nil, nil)
	require.NoError(t, err)
	require.Equal(t, "sk_test", cred.Key)

	_, hasQuota := gotBody["quota_limit"]
	require.False(t, hasQuota, "nil quota override must not be sent")
	_, hasRate := gotBody["rate_limit"]
	require.False(t, hasRate, "nil rate override must not be sent")
}

func TestHTTPCredentialClientListByOrder(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/orders/7/keys", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":"1","key":"sk_a"},{"id":"2","key":"sk_b"}]}`))
	}))
	defer ts.Close()

	client := NewHTTPCredentialClient(collabConfig(ts.URL), zap.NewNop())
	creds, err := client.GetCredentialsForOrder(context.Background(), "7")
	require.NoError(t, err)
	require.Len(t, creds, 2)
	require.Equal(t, "sk_a", creds[0].Key)
}

func TestHTTPCallerUnreachableCollaborator(t *testing.T) {
	client := NewHTTPPaymentClient(collabConfig("http://127.0.0.1:1"), zap.NewNop())
	_, err := client.ProcessPayment(context.Background(), "7", 10)
	require.Error(t, err)
}
