package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/prodataworld/prodata-backend/api/middleware"
	cartsvc "github.com/prodataworld/prodata-backend/internal/cart"
	"github.com/prodataworld/prodata-backend/internal/fulfillment"
	"github.com/prodataworld/prodata-backend/internal/orders"
	product "github.com/prodataworld/prodata-backend/internal/products"
	"github.com/prodataworld/prodata-backend/internal/wallet"
	"github.com/prodataworld/prodata-backend/pkg/config"
	"github.com/prodataworld/prodata-backend/pkg/db/models"
	"github.com/prodataworld/prodata-backend/pkg/enums"
	pkgerrors "github.com/prodataworld/prodata-backend/pkg/errors"
	"github.com/prodataworld/prodata-backend/pkg/pagination"
)

type stubOrders struct {
	orders.Service
	placed   orders.APIOrderInput
	placedBy uint
	order    *models.Order
	checkout *orders.CheckoutResult
	listed   orders.ListFilters
	page     pagination.Page[models.Order]
	bulkIDs  []uint
	repush   fulfillment.Outcome
	err      error
}

func (s *stubOrders) PlaceAPIOrder(_ context.Context, userID uint, input orders.APIOrderInput) (*models.Order, error) {
	s.placedBy = userID
	s.placed = input
	return s.order, s.err
}

func (s *stubOrders) Checkout(context.Context, uint) (*orders.CheckoutResult, error) {
	return s.checkout, s.err
}

func (s *stubOrders) List(_ context.Context, _ uint, filters orders.ListFilters, _ pagination.Params) (pagination.Page[models.Order], error) {
	s.listed = filters
	return s.page, s.err
}

func (s *stubOrders) ListAll(_ context.Context, filters orders.ListFilters, _ pagination.Params) (pagination.Page[models.Order], error) {
	s.listed = filters
	return s.page, s.err
}

func (s *stubOrders) BulkUpdateStatus(_ context.Context, ids []uint, _ enums.OrderStatus) (int64, error) {
	s.bulkIDs = ids
	return int64(len(ids)), s.err
}

func (s *stubOrders) Repush(context.Context, uint) (fulfillment.Outcome, error) {
	return s.repush, s.err
}

type stubProducts struct {
	product.Service
	role enums.UserRole
}

func (s *stubProducts) BundleSizes(_ context.Context, _ string, role enums.UserRole) ([]product.BundleSize, error) {
	s.role = role
	return []product.BundleSize{{VariantID: 1, Value: "1000", Label: "1 GB", Price: decimal.RequireFromString("5.00")}}, nil
}

type stubWallet struct {
	wallet.Service
	adjusted wallet.AdjustInput
}

func (s *stubWallet) AdminAdjust(_ context.Context, input wallet.AdjustInput) (*models.Transaction, error) {
	s.adjusted = input
	return &models.Transaction{ID: 3, UserID: input.UserID, Amount: input.Amount, Type: enums.TransactionTypeAdminCredit}, nil
}

type stubCart struct {
	cartsvc.Service
	summary *cartsvc.Summary
}

func (s *stubCart) List(context.Context, uint) (*cartsvc.Summary, error) {
	return s.summary, nil
}

type memorySettings map[string]bool

func (m memorySettings) Enabled(_ context.Context, key string, fallback bool) (bool, error) {
	if v, ok := m[key]; ok {
		return v, nil
	}
	return fallback, nil
}

func (m memorySettings) SetEnabled(_ context.Context, key string, enabled bool) error {
	m[key] = enabled
	return nil
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func authed(req *http.Request, userID uint, role enums.UserRole) *http.Request {
	return req.WithContext(middleware.WithIdentity(req.Context(), userID, role))
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, resp *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	return env
}

func sampleOrder() *models.Order {
	ref := "TX-1"
	return &models.Order{
		ID:                9,
		Status:            enums.OrderStatusPending,
		Total:             decimal.RequireFromString("4.50"),
		BeneficiaryNumber: "0241234567",
		Network:           "MTN",
		ReferenceID:       &ref,
		CreatedAt:         time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
		User:              &models.User{Name: "Ama", Email: "ama@example.com"},
		Items: []models.OrderItem{{
			Quantity: 1,
			Price:    decimal.RequireFromString("4.50"),
			Product:  &models.Product{Name: "MTN Data"},
			Variant:  &models.ProductVariant{Attributes: models.VariantAttributes{Size: "1gb"}},
		}},
	}
}

func TestNormalOrderPlace(t *testing.T) {
	svc := &stubOrders{order: sampleOrder()}
	body := `{"beneficiary_number":"0241234567","network_id":4,"size":"1gb"}`
	req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/normal-orders", strings.NewReader(body)), 7, enums.UserRoleAgent)
	resp := httptest.NewRecorder()

	NormalOrderPlace(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusCreated, resp.Code)
	require.Equal(t, uint(7), svc.placedBy)
	require.Equal(t, orders.APIOrderInput{BeneficiaryNumber: "0241234567", ProductID: 4, Size: "1gb"}, svc.placed)

	env := decodeEnvelope(t, resp)
	require.Equal(t, "Order created successfully", env.Message)
	var view orderView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	require.Equal(t, "TX-1", *view.ReferenceID)
	require.Equal(t, "ama@example.com", view.User.Email)
	require.Len(t, view.Products, 1)
	require.Equal(t, "1GB", view.Products[0].Size)
	require.Equal(t, "MTN Data", view.Products[0].Name)
}

func TestNormalOrderPlaceErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
		code   string
	}{
		{"missing fields", `{"size":"1gb"}`, nil, http.StatusBadRequest, string(pkgerrors.CodeValidation)},
		{"bad phone", `{"beneficiary_number":"call me","network_id":1,"size":"1gb"}`, nil, http.StatusBadRequest, string(pkgerrors.CodeValidation)},
		{"insufficient", `{"beneficiary_number":"0241234567","network_id":1,"size":"1gb"}`, pkgerrors.New(pkgerrors.CodeInsufficient, "Insufficient wallet balance"), http.StatusBadRequest, string(pkgerrors.CodeInsufficient)},
		{"unknown product", `{"beneficiary_number":"0241234567","network_id":1,"size":"1gb"}`, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found"), http.StatusNotFound, string(pkgerrors.CodeNotFound)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubOrders{err: tt.err}
			req := authed(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body)), 1, enums.UserRoleAgent)
			resp := httptest.NewRecorder()
			NormalOrderPlace(svc, nil).ServeHTTP(resp, req)
			require.Equal(t, tt.status, resp.Code)
			require.Equal(t, tt.code, decodeEnvelope(t, resp).Error.Code)
		})
	}
}

func TestNormalOrdersListParsesFilters(t *testing.T) {
	svc := &stubOrders{page: pagination.Page[models.Order]{Items: []models.Order{*sampleOrder()}, NextCursor: "next"}}
	req := authed(httptest.NewRequest(http.MethodGet, "/?status=Completed&beneficiary_number=024&order_id=9", nil), 1, enums.UserRoleCustomer)
	resp := httptest.NewRecorder()

	NormalOrdersList(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, enums.OrderStatusCompleted, svc.listed.Status)
	require.Equal(t, "024", svc.listed.BeneficiaryNumber)
	require.Equal(t, uint(9), svc.listed.OrderID)

	var page pageView[orderView]
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, resp).Data, &page))
	require.Len(t, page.Items, 1)
	require.Equal(t, "next", page.NextCursor)

	bad := authed(httptest.NewRequest(http.MethodGet, "/?status=lost", nil), 1, enums.UserRoleCustomer)
	resp = httptest.NewRecorder()
	NormalOrdersList(svc, nil).ServeHTTP(resp, bad)
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCheckoutReturnsMessage(t *testing.T) {
	svc := &stubOrders{checkout: &orders.CheckoutResult{Orders: []models.Order{*sampleOrder(), *sampleOrder()}, Message: "2 orders placed successfully!"}}
	req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil), 1, enums.UserRoleCustomer)
	resp := httptest.NewRecorder()

	Checkout(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusCreated, resp.Code)
	env := decodeEnvelope(t, resp)
	require.Equal(t, "2 orders placed successfully!", env.Message)
	var views []orderView
	require.NoError(t, json.Unmarshal(env.Data, &views))
	require.Len(t, views, 2)
}

func TestCartFetchUsesItemPrice(t *testing.T) {
	variantID := uint(2)
	svc := &stubCart{summary: &cartsvc.Summary{
		Items: []models.CartItem{{
			ID:                1,
			ProductVariantID:  &variantID,
			Quantity:          1,
			BeneficiaryNumber: "0241234567",
			Variant:           &models.ProductVariant{Price: decimal.RequireFromString("3.00")},
		}},
		Total: decimal.RequireFromString("3.00"),
	}}
	req := authed(httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil), 1, enums.UserRoleCustomer)
	resp := httptest.NewRecorder()

	CartFetch(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	var body cartResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, resp).Data, &body))
	require.Len(t, body.Items, 1)
	require.True(t, body.Items[0].Price.Equal(decimal.RequireFromString("3.00")))
	require.True(t, body.Total.Equal(decimal.RequireFromString("3.00")))
}

func TestBundleSizesUsesCallerRole(t *testing.T) {
	svc := &stubProducts{}
	resp := httptest.NewRecorder()
	BundleSizes(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/?network=mtn", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, enums.UserRole(""), svc.role)

	req := authed(httptest.NewRequest(http.MethodGet, "/?network=mtn", nil), 1, enums.UserRoleDealer)
	resp = httptest.NewRecorder()
	BundleSizes(svc, nil).ServeHTTP(resp, req)
	require.Equal(t, enums.UserRoleDealer, svc.role)
}

func TestAdminOrdersBulkStatus(t *testing.T) {
	svc := &stubOrders{}
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"order_ids":[1,2,3],"status":"completed"}`))
	resp := httptest.NewRecorder()
	AdminOrdersBulkStatus(svc, nil).ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, []uint{1, 2, 3}, svc.bulkIDs)

	req = httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"order_ids":[1],"status":"lost"}`))
	resp = httptest.NewRecorder()
	AdminOrdersBulkStatus(svc, nil).ServeHTTP(resp, req)
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestAdminOrderRepush(t *testing.T) {
	svc := &stubOrders{repush: fulfillment.Outcome{OrderID: 5, Status: enums.PusherStatusSuccess, Providers: []string{"jaybart"}, Succeeded: 1}}
	req := withURLParam(httptest.NewRequest(http.MethodPost, "/", nil), "id", "5")
	resp := httptest.NewRecorder()
	AdminOrderRepush(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	var body repushResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, resp).Data, &body))
	require.Equal(t, "success", body.Status)
	require.Equal(t, []string{"jaybart"}, body.Providers)

	closed := &stubOrders{err: pkgerrors.New(pkgerrors.CodeStateConflict, "order is already closed")}
	resp = httptest.NewRecorder()
	AdminOrderRepush(closed, nil).ServeHTTP(resp, withURLParam(httptest.NewRequest(http.MethodPost, "/", nil), "id", "5"))
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestAdminPushers(t *testing.T) {
	store := memorySettings{"foster_order_pusher_enabled": true, "jesco_order_pusher_enabled": false}

	resp := httptest.NewRecorder()
	AdminPushersList(store, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	var views []pusherView
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, resp).Data, &views))
	require.Len(t, views, 4)
	require.Equal(t, pusherView{Provider: "foster", Key: "foster_order_pusher_enabled", Enabled: true}, views[1])
	// No row for jaybart or codecraft: they push, so the list must say so.
	require.True(t, views[0].Enabled)
	require.True(t, views[2].Enabled)
	require.False(t, views[3].Enabled)

	req := withURLParam(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"enabled":false}`)), "provider", "Foster")
	resp = httptest.NewRecorder()
	AdminPusherUpdate(store, nil).ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	require.False(t, store["foster_order_pusher_enabled"])

	req = withURLParam(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"enabled":true}`)), "provider", "acme")
	resp = httptest.NewRecorder()
	AdminPusherUpdate(store, nil).ServeHTTP(resp, req)
	require.Equal(t, http.StatusNotFound, resp.Code)

	req = withURLParam(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{}`)), "provider", "jaybart")
	resp = httptest.NewRecorder()
	AdminPusherUpdate(store, nil).ServeHTTP(resp, req)
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestAdminWalletCredit(t *testing.T) {
	svc := &stubWallet{}
	req := withURLParam(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount":"12.50","note":"refund"}`)), "id", "4")
	resp := httptest.NewRecorder()
	AdminWalletCredit(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusCreated, resp.Code)
	require.Equal(t, uint(4), svc.adjusted.UserID)
	require.True(t, svc.adjusted.Credit)
	require.True(t, svc.adjusted.Amount.Equal(decimal.RequireFromString("12.50")))
	require.Equal(t, "Wallet credited", decodeEnvelope(t, resp).Message)
}

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}

	resp := httptest.NewRecorder()
	HealthReady(cfg, map[string]Pinger{"db": stubPinger{}, "redis": stubPinger{}}, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, resp.Code)

	resp = httptest.NewRecorder()
	HealthReady(cfg, map[string]Pinger{"db": stubPinger{}, "redis": stubPinger{err: errors.New("down")}}, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusServiceUnavailable, resp.Code)
	require.Equal(t, string(pkgerrors.CodeDependency), decodeEnvelope(t, resp).Error.Code)
}
