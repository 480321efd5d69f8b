package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tastebite/storefront/internal/auth"
	"github.com/tastebite/storefront/internal/order"
)

type mockOrderService struct {
	CheckoutFunc   func(ctx context.Context, ident *auth.Identity, delivery order.DeliveryInfo, paymentMethod string) (*order.Order, error)
	AdvanceFunc    func(ctx context.Context, ident *auth.Identity, orderID uuid.UUID, target order.Status) (*order.Order, error)
	GetByIDFunc    func(ctx context.Context, ident *auth.Identity, id uuid.UUID) (*order.Order, error)
	ListByUserFunc func(ctx context.Context, ident *auth.Identity) ([]order.Order, error)
	ListAllFunc    func(ctx context.Context, ident *auth.Identity) ([]order.Order, error)
}

func (m *mockOrderService) Checkout(ctx context.Context, ident *auth.Identity, delivery order.DeliveryInfo, paymentMethod string) (*order.Order, error) {
	return m.CheckoutFunc(ctx, ident, delivery, paymentMethod)
}

func (m *mockOrderService) Advance(ctx context.Context, ident *auth.Identity, orderID uuid.UUID, target order.Status) (*order.Order, error) {
	return m.AdvanceFunc(ctx, ident, orderID, target)
}

func (m *mockOrderService) GetByID(ctx context.Context, ident *auth.Identity, id uuid.UUID) (*order.Order, error) {
	return m.GetByIDFunc(ctx, ident, id)
}

func (m *mockOrderService) ListByUser(ctx context.Context, ident *auth.Identity) ([]order.Order, error) {
	return m.ListByUserFunc(ctx, ident)
}

func (m *mockOrderService) ListAll(ctx context.Context, ident *auth.Identity) ([]order.Order, error) {
	return m.ListAllFunc(ctx, ident)
}

func orderRouter(svc order.Service) http.Handler {
	router := chi.NewRouter()
	NewOrderHandler(svc).RegisterRoutes(router)
	return router
}

func authed(req *http.Request, ident *auth.Identity) *http.Request {
	return req.WithContext(auth.WithIdentity(req.Context(), ident))
}

func validCheckoutBody(t *testing.T) *bytes.Buffer {
	t.Helper()

	body, err := json.Marshal(map[string]string{
		"full_name":      "Jamie Doe",
		"email":          "jamie@example.com",
		"phone":          "555-0101",
		"address":        "1 Main St",
		"city":           "Springfield",
		"zip":            "12345",
		"payment_method": "card",
	})
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func TestOrderHandler_Checkout(t *testing.T) {
	ident := &auth.Identity{UserID: uuid.Must(uuid.NewV4())}
	orderID := uuid.Must(uuid.NewV4())

	svc := &mockOrderService{
		CheckoutFunc: func(_ context.Context, gotIdent *auth.Identity, delivery order.DeliveryInfo, paymentMethod string) (*order.Order, error) {
			assert.Equal(t, ident.UserID, gotIdent.UserID)
			assert.Equal(t, "Jamie Doe", delivery.FullName)
			assert.Equal(t, "card", paymentMethod)
			return &order.Order{
				ID:          orderID,
				UserID:      gotIdent.UserID,
				Status:      order.StatusPending,
				TotalAmount: decimal.RequireFromString("328.49"),
				Delivery:    delivery,
			}, nil
		},
	}

	req := authed(httptest.NewRequest(http.MethodPost, "/checkout", validCheckoutBody(t)), ident)
	rr := httptest.NewRecorder()
	orderRouter(svc).ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var got order.Order
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, orderID, got.ID)
	assert.Equal(t, order.StatusPending, got.Status)
}

func TestOrderHandler_CheckoutValidation(t *testing.T) {
	svc := &mockOrderService{
		CheckoutFunc: func(context.Context, *auth.Identity, order.DeliveryInfo, string) (*order.Order, error) {
			t.Fatal("service must not be reached for an invalid payload")
			return nil, nil
		},
	}

	tests := []struct {
		name string
		body map[string]string
	}{
		{
			name: "missing_address",
			body: map[string]string{
				"full_name": "Jamie Doe", "email": "jamie@example.com", "phone": "555-0101",
				"city": "Springfield", "zip": "12345", "payment_method": "card",
			},
		},
		{
			name: "bad_email",
			body: map[string]string{
				"full_name": "Jamie Doe", "email": "not-an-email", "phone": "555-0101",
				"address": "1 Main St", "city": "Springfield", "zip": "12345", "payment_method": "card",
			},
		},
		{
			name: "unsupported_payment_method",
			body: map[string]string{
				"full_name": "Jamie Doe", "email": "jamie@example.com", "phone": "555-0101",
				"address": "1 Main St", "city": "Springfield", "zip": "12345", "payment_method": "crypto",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := json.Marshal(tt.body)
			require.NoError(t, err)

			req := authed(httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewBuffer(body)),
				&auth.Identity{UserID: uuid.Must(uuid.NewV4())})
			rr := httptest.NewRecorder()
			orderRouter(svc).ServeHTTP(rr, req)

			assert.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
		})
	}
}

func TestOrderHandler_CheckoutErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{name: "anonymous", err: auth.ErrUnauthenticated, wantCode: http.StatusUnauthorized},
		{name: "empty_cart", err: order.ErrEmptyCart, wantCode: http.StatusBadRequest},
		{name: "order_write_failed", err: order.ErrOrderPersist, wantCode: http.StatusInternalServerError},
		{name: "items_write_failed", err: order.ErrOrderItemsPersist, wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockOrderService{
				CheckoutFunc: func(context.Context, *auth.Identity, order.DeliveryInfo, string) (*order.Order, error) {
					return nil, tt.err
				},
			}

			req := authed(httptest.NewRequest(http.MethodPost, "/checkout", validCheckoutBody(t)),
				&auth.Identity{UserID: uuid.Must(uuid.NewV4())})
			rr := httptest.NewRecorder()
			orderRouter(svc).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantCode, rr.Code, rr.Body.String())
		})
	}
}

func TestOrderHandler_CheckoutPartialFailuresReadDifferently(t *testing.T) {
	responseFor := func(err error) string {
		svc := &mockOrderService{
			CheckoutFunc: func(context.Context, *auth.Identity, order.DeliveryInfo, string) (*order.Order, error) {
				return nil, err
			},
		}
		req := authed(httptest.NewRequest(http.MethodPost, "/checkout", validCheckoutBody(t)),
			&auth.Identity{UserID: uuid.Must(uuid.NewV4())})
		rr := httptest.NewRecorder()
		orderRouter(svc).ServeHTTP(rr, req)
		return rr.Body.String()
	}

	retryable := responseFor(order.ErrOrderPersist)
	dangling := responseFor(order.ErrOrderItemsPersist)

	assert.Contains(t, retryable, "retry")
	assert.Contains(t, dangling, "contact support")
	assert.NotEqual(t, retryable, dangling)
}

func TestOrderHandler_GetByID(t *testing.T) {
	orderID := uuid.Must(uuid.NewV4())
	ident := &auth.Identity{UserID: uuid.Must(uuid.NewV4())}

	svc := &mockOrderService{
		GetByIDFunc: func(_ context.Context, _ *auth.Identity, id uuid.UUID) (*order.Order, error) {
			assert.Equal(t, orderID, id)
			return &order.Order{ID: id, UserID: ident.UserID}, nil
		},
	}

	req := authed(httptest.NewRequest(http.MethodGet, "/orders/"+orderID.String(), nil), ident)
	rr := httptest.NewRecorder()
	orderRouter(svc).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestOrderHandler_GetByIDRejectsMalformedID(t *testing.T) {
	svc := &mockOrderService{
		GetByIDFunc: func(context.Context, *auth.Identity, uuid.UUID) (*order.Order, error) {
			t.Fatal("service must not be reached for a malformed id")
			return nil, nil
		},
	}

	req := authed(httptest.NewRequest(http.MethodGet, "/orders/not-a-uuid", nil),
		&auth.Identity{UserID: uuid.Must(uuid.NewV4())})
	rr := httptest.NewRecorder()
	orderRouter(svc).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestOrderHandler_UpdateStatus(t *testing.T) {
	orderID := uuid.Must(uuid.NewV4())

	svc := &mockOrderService{
		AdvanceFunc: func(_ context.Context, _ *auth.Identity, id uuid.UUID, target order.Status) (*order.Order, error) {
			assert.Equal(t, orderID, id)
			assert.Equal(t, order.StatusPreparing, target)
			return &order.Order{ID: id, Status: target}, nil
		},
	}

	body := bytes.NewBufferString(`{"status":"preparing"}`)
	req := authed(httptest.NewRequest(http.MethodPost, "/admin/orders/"+orderID.String()+"/status", body),
		&auth.Identity{UserID: uuid.Must(uuid.NewV4())})
	rr := httptest.NewRecorder()
	orderRouter(svc).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var got order.Order
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, order.StatusPreparing, got.Status)
}

func TestOrderHandler_UpdateStatusErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{name: "non_admin", err: auth.ErrUnauthorized, wantCode: http.StatusForbidden},
		{name: "unknown_order", err: order.ErrNotFound, wantCode: http.StatusNotFound},
		{name: "illegal_transition", err: order.ErrInvalidTransition, wantCode: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockOrderService{
				AdvanceFunc: func(context.Context, *auth.Identity, uuid.UUID, order.Status) (*order.Order, error) {
					return nil, tt.err
				},
			}

			body := bytes.NewBufferString(`{"status":"preparing"}`)
			req := authed(httptest.NewRequest(http.MethodPost, "/admin/orders/"+uuid.Must(uuid.NewV4()).String()+"/status", body),
				&auth.Identity{UserID: uuid.Must(uuid.NewV4())})
			rr := httptest.NewRecorder()
			orderRouter(svc).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantCode, rr.Code, rr.Body.String())
		})
	}
}

func TestOrderHandler_ListMine(t *testing.T) {
	ident := &auth.Identity{UserID: uuid.Must(uuid.NewV4())}

	svc := &mockOrderService{
		ListByUserFunc: func(_ context.Context, gotIdent *auth.Identity) ([]order.Order, error) {
			assert.Equal(t, ident.UserID, gotIdent.UserID)
			return []order.Order{{ID: uuid.Must(uuid.NewV4()), UserID: ident.UserID}}, nil
		},
	}

	req := authed(httptest.NewRequest(http.MethodGet, "/orders", nil), ident)
	rr := httptest.NewRecorder()
	orderRouter(svc).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var got []order.Order
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Len(t, got, 1)
}
