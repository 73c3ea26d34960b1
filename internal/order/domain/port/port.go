// Package port declares the collaborator interfaces the order flow
// depends on. Adapters in internal/order/collab satisfy them over HTTP
// or in process.
package port

import "context"

// InventoryClient manages stock reservations for order items.
type InventoryClient interface {
	ReserveStock(ctx context.Context, productID string, quantity int64) error
	ReleaseStock(ctx context.Context, productID string, quantity int64) error
}

// PaymentResult is the settled outcome of a charge attempt.
type PaymentResult struct {
	Status        string
	TransactionID string
}

// Succeeded reports whether the charge went through.
func (r PaymentResult) Succeeded() bool {
	return r.Status == "success"
}

// PaymentClient charges order totals.
type PaymentClient interface {
	ProcessPayment(ctx context.Context, orderID string, amount float64) (PaymentResult, error)
}

// ProductInfo carries the entitlement attributes of a purchased product.
// Nil limits mean the product does not override the defaults.
type ProductInfo struct {
	ID         string
	Name       string
	QuotaLimit *int64
	RateLimit  *int64
}

// ProductClient looks up catalog products.
type ProductClient interface {
	GetProduct(ctx context.Context, productID string) (*ProductInfo, error)
}

// Credential is an issued API key entitlement.
type Credential struct {
	ID         string
	ProductID  string
	Key        string
	QuotaLimit int64
	RateLimit  int64
}

// CredentialClient issues and fetches API key entitlements.
type CredentialClient interface {
	IssueCredential(ctx context.Context, userID, productID, orderID string, quotaLimit, rateLimit *int64) (*Credential, error)
	GetCredentialsForOrder(ctx context.Context, orderID string) ([]Credential, error)
}
