package collab

import (
	"context"

	catalogdomain "github.com/mercatohq/mercato/internal/catalog/domain"
	credentialdomain "github.com/mercatohq/mercato/internal/credential/domain"
	inventorydomain "github.com/mercatohq/mercato/internal/inventory/domain"
	"github.com/mercatohq/mercato/internal/order/domain/port"
	paymentdomain "github.com/mercatohq/mercato/internal/payment/domain"
)

// LocalInventoryClient binds the inventory service in process.
type LocalInventoryClient struct {
	svc inventorydomain.Service
}

func NewLocalInventoryClient(svc inventorydomain.Service) *LocalInventoryClient {
	return &LocalInventoryClient{svc: svc}
}

func (c *LocalInventoryClient) ReserveStock(ctx context.Context, productID string, quantity int64) error {
	return c.svc.Reserve(ctx, inventorydomain.ReservationRequest{ProductID: productID, Quantity: quantity})
}

func (c *LocalInventoryClient) ReleaseStock(ctx context.Context, productID string, quantity int64) error {
	return c.svc.Release(ctx, inventorydomain.ReservationRequest{ProductID: productID, Quantity: quantity})
}

// LocalPaymentClient binds the payment service in process.
type LocalPaymentClient struct {
	svc paymentdomain.Service
}

func NewLocalPaymentClient(svc paymentdomain.Service) *LocalPaymentClient {
	return &LocalPaymentClient{svc: svc}
}

func (c *LocalPaymentClient) ProcessPayment(ctx context.Context, orderID string, amount float64) (port.PaymentResult, error) {
	resp, err := c.svc.Process(ctx, paymentdomain.ProcessRequest{OrderID: orderID, Amount: amount})
	if err != nil {
		return port.PaymentResult{}, err
	}
	return port.PaymentResult{Status: resp.Status, TransactionID: resp.TransactionID}, nil
}

// LocalProductClient binds the catalog service in process.
type LocalProductClient struct {
	svc catalogdomain.Service
}

func NewLocalProductClient(svc catalogdomain.Service) *LocalProductClient {
	return &LocalProductClient{svc: svc}
}

func (c *LocalProductClient) GetProduct(ctx context.Context, productID string) (*port.ProductInfo, error) {
	resp, err := c.svc.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &port.ProductInfo{
		ID:         resp.ID,
		Name:       resp.Name,
		QuotaLimit: resp.QuotaLimit,
		RateLimit:  resp.RateLimit,
	}, nil
}

// LocalCredentialClient binds the credential service in process.
type LocalCredentialClient struct {
	svc credentialdomain.Service
}

func NewLocalCredentialClient(svc credentialdomain.Service) *LocalCredentialClient {
	return &LocalCredentialClient{svc: svc}
}

func (c *LocalCredentialClient) IssueCredential(ctx context.Context, userID, productID, orderID string, quotaLimit, rateLimit *int64) (*port.Credential, error) {
	resp, err := c.svc.Issue(ctx, credentialdomain.IssueRequest{
		UserID:     userID,
		ProductID:  productID,
		OrderID:    orderID,
		QuotaLimit: quotaLimit,
		RateLimit:  rateLimit,
	})
	if err != nil {
		return nil, err
	}
	return &port.Credential{
		ID:         resp.ID,
		ProductID:  resp.ProductID,
		Key:        resp.Key,
		QuotaLimit: resp.QuotaLimit,
		RateLimit:  resp.RateLimit,
	}, nil
}

func (c *LocalCredentialClient) GetCredentialsForOrder(ctx context.Context, orderID string) ([]port.Credential, error) {
	items, err := c.svc.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	creds := make([]port.Credential, 0, len(items))
	for _, item := range items {
		creds = append(creds, port.Credential{
			ID:         item.ID,
			ProductID:  item.ProductID,
			Key:        item.Key,
			QuotaLimit: item.QuotaLimit,
			RateLimit:  item.RateLimit,
		})
	}
	return creds, nil
}
