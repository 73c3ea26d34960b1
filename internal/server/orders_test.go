package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	orderdomain "github.com/mercatohq/mercato/internal/order/domain"
)

type fakeOrderService struct {
	placeResp  *orderdomain.Response
	placeErr   error
	placeCalls int
}

func (f *fakeOrderService) PlaceOrder(ctx context.Context, req orderdomain.PlaceOrderRequest) (*orderdomain.Response, error) {
	f.placeCalls++
	return f.placeResp, f.placeErr
}

func (f *fakeOrderService) GetOrder(ctx context.Context, orderID string) (*orderdomain.Response, error) {
	if f.placeResp != nil && f.placeResp.ID == orderID {
		return f.placeResp, nil
	}
	return nil, orderdomain.ErrNotFound
}

func (f *fakeOrderService) GetOrdersForUser(ctx context.Context, userID string) ([]orderdomain.Response, error) {
	return nil, nil
}

func (f *fakeOrderService) UpdateOrderStatus(ctx context.Context, orderID, status string) (*orderdomain.Response, error) {
	return nil, orderdomain.ErrInvalidStatus
}

func newOrdersRouter(svc orderdomain.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandlingMiddleware())

	srv := &Server{engine: router, orderSvc: svc}
	srv.registerOrderRoutes()
	return router
}

func placeOrderBody() *bytes.Buffer {
	return bytes.NewBufferString(`{
		"user_id": "1",
		"items": [{"product_id": "2", "quantity": 1, "price": 10}]
	}`)
}

func TestPlaceOrderHandlerPaid(t *testing.T) {
	svc := &fakeOrderService{
		placeResp: &orderdomain.Response{ID: "100", Status: orderdomain.StatusPaid},
	}
	router := newOrdersRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/orders", placeOrderBody())
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if svc.placeCalls != 1 {
		t.Fatalf("expected 1 service call, got %d", svc.placeCalls)
	}

	var body struct {
		Data orderdomain.Response `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Data.Status != orderdomain.StatusPaid {
		t.Fatalf("expected status paid, got %s", body.Data.Status)
	}
}

func TestPlaceOrderHandlerFailedOrderReturns400(t *testing.T) {
	svc := &fakeOrderService{
		placeResp: &orderdomain.Response{ID: "100", Status: orderdomain.StatusFailed},
	}
	router := newOrdersRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/orders", placeOrderBody())
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}

	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error.Message != "insufficient stock or payment failure" {
		t.Fatalf("unexpected error message %q", body.Error.Message)
	}
}

func TestPlaceOrderHandlerValidationError(t *testing.T) {
	svc := &fakeOrderService{placeErr: orderdomain.ErrNoItems}
	router := newOrdersRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/orders", placeOrderBody())
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestPlaceOrderHandlerMalformedBody(t *testing.T) {
	svc := &fakeOrderService{}
	router := newOrdersRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(`{`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
	if svc.placeCalls != 0 {
		t.Fatal("expected service not to be called")
	}
}

func TestGetOrderHandlerNotFound(t *testing.T) {
	router := newOrdersRouter(&fakeOrderService{})

	req := httptest.NewRequest(http.MethodGet, "/orders/999", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}
