package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/prodataworld/prodata-backend/internal/alerts"
	"github.com/prodataworld/prodata-backend/internal/orders"
	product "github.com/prodataworld/prodata-backend/internal/products"
	pkgAuth "github.com/prodataworld/prodata-backend/pkg/auth"
	"github.com/prodataworld/prodata-backend/pkg/config"
	"github.com/prodataworld/prodata-backend/pkg/db/models"
	"github.com/prodataworld/prodata-backend/pkg/enums"
	"github.com/prodataworld/prodata-backend/pkg/logger"
	"github.com/prodataworld/prodata-backend/pkg/metrics"
	"github.com/prodataworld/prodata-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type memoryRedis struct {
	stubPinger
	data   map[string]string
	counts map[string]int64
}

func newMemoryRedis() *memoryRedis {
	return &memoryRedis{data: map[string]string{}, counts: map[string]int64{}}
}

func (m *memoryRedis) Get(_ context.Context, key string) (string, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (m *memoryRedis) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key], _ = value.(string)
	return true, nil
}

func (m *memoryRedis) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.data[key], _ = value.(string)
	return nil
}

func (m *memoryRedis) IdempotencyKey(scope, id string) string { return scope + ":" + id }

func (m *memoryRedis) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *memoryRedis) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	m.counts[scope]++
	return m.counts[scope] <= limit, m.counts[scope], nil
}

type stubProducts struct{ product.Service }

func (stubProducts) BundleSizes(context.Context, string, enums.UserRole) ([]product.BundleSize, error) {
	return []product.BundleSize{{VariantID: 1, Value: "1000", Label: "1 GB", Price: decimal.NewFromInt(5)}}, nil
}

type stubAlerts struct{}

func (stubAlerts) ListActive(context.Context) ([]models.Alert, error) {
	return []models.Alert{{ID: 1, Title: "Maintenance", Message: "MTN delays"}}, nil
}

type countingOrders struct {
	orders.Service
	placed int
}

func (c *countingOrders) PlaceAPIOrder(_ context.Context, userID uint, input orders.APIOrderInput) (*models.Order, error) {
	c.placed++
	return &models.Order{ID: uint(c.placed), UserID: userID, BeneficiaryNumber: input.BeneficiaryNumber, Status: enums.OrderStatusPending}, nil
}

func (c *countingOrders) ListAll(context.Context, orders.ListFilters, pagination.Params) (pagination.Page[models.Order], error) {
	return pagination.Page[models.Order]{}, nil
}

var _ alerts.Service = stubAlerts{}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "prodata", ExpirationMinutes: 60, APITokenTTLHours: 24},
		HTTP: config.HTTPConfig{
			CORSOrigins:         []string{"http://localhost:3000"},
			OrderRateWindow:     time.Minute,
			OrderUserLimit:      10,
			OrderRecipientLimit: 10,
		},
	}
}

func bearer(t *testing.T, cfg *config.Config, userID uint, role enums.UserRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{UserID: userID, Role: role})
	require.NoError(t, err)
	return "Bearer " + token
}

func newTestRouter(t *testing.T, ord *countingOrders) (http.Handler, *config.Config) {
	t.Helper()
	cfg := testConfig()
	reg := prometheus.NewRegistry()
	metrics.NewCronJobMetrics(reg).IncSuccess("boot")
	logg := logger.New(logger.Options{ServiceName: "routes-test", Output: &strings.Builder{}})
	return NewRouter(cfg, logg, Services{
		DB:       stubPinger{},
		Redis:    newMemoryRedis(),
		Metrics:  reg,
		Products: stubProducts{},
		Orders:   ord,
		Alerts:   stubAlerts{},
	}), cfg
}

func TestHealthAndMetrics(t *testing.T) {
	router, _ := newTestRouter(t, &countingOrders{})

	for _, path := range []string{"/health/live", "/health/ready"} {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, resp.Code, path)
		require.NotEmpty(t, resp.Header().Get("X-Request-Id"))
	}

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), "prodata_cron_job")
}

func TestBundleSizesIsPublic(t *testing.T) {
	router, _ := newTestRouter(t, &countingOrders{})
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/bundle-sizes?network=mtn", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), "1 GB")
}

func TestAuthenticatedRoutesRequireToken(t *testing.T) {
	router, cfg := newTestRouter(t, &countingOrders{})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/alerts", nil))
	require.Equal(t, http.StatusUnauthorized, resp.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/alerts", nil)
	req.Header.Set("Authorization", bearer(t, cfg, 1, enums.UserRoleCustomer))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), "Maintenance")
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	router, cfg := newTestRouter(t, &countingOrders{})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders", nil)
	req.Header.Set("Authorization", bearer(t, cfg, 1, enums.UserRoleAgent))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusForbidden, resp.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders", nil)
	req.Header.Set("Authorization", bearer(t, cfg, 2, enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
}

func TestOrderPlacementIsIdempotent(t *testing.T) {
	ord := &countingOrders{}
	router, cfg := newTestRouter(t, ord)
	token := bearer(t, cfg, 5, enums.UserRoleAgent)
	body := `{"beneficiary_number":"0241234567","network_id":1,"size":"1gb"}`

	missingKey := httptest.NewRequest(http.MethodPost, "/api/v1/normal-orders", strings.NewReader(body))
	missingKey.Header.Set("Authorization", token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, missingKey)
	require.Equal(t, http.StatusBadRequest, resp.Code)

	var bodies []string
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/normal-orders", strings.NewReader(body))
		req.Header.Set("Authorization", token)
		req.Header.Set("Idempotency-Key", "order-1")
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		require.Equal(t, http.StatusCreated, resp.Code)
		bodies = append(bodies, resp.Body.String())
	}

	require.Equal(t, 1, ord.placed)
	require.Equal(t, bodies[0], bodies[1])
}
