package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prodataworld/prodata-backend/pkg/config"
)

type counterStore struct {
	counts map[string]int64
}

func (c *counterStore) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	if c.counts == nil {
		c.counts = map[string]int64{}
	}
	c.counts[scope]++
	return c.counts[scope] <= limit, c.counts[scope], nil
}

func orderRequest(userID uint, beneficiary string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/normal-orders", strings.NewReader(`{"beneficiary_number":"`+beneficiary+`"}`))
	return req.WithContext(WithIdentity(req.Context(), userID, "agent"))
}

func TestOrderRateLimitPerRecipient(t *testing.T) {
	policy := NewOrderRateLimitPolicy(config.HTTPConfig{OrderRateWindow: time.Minute, OrderUserLimit: 10, OrderRecipientLimit: 2})
	store := &counterStore{}
	var bodies []string
	handler := OrderRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := new(strings.Builder)
		_, _ = io.Copy(buf, r.Body)
		bodies = append(bodies, buf.String())
		w.WriteHeader(http.StatusCreated)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, orderRequest(1, "0241234567"))
		codes = append(codes, resp.Code)
	}

	if codes[0] != http.StatusCreated || codes[1] != http.StatusCreated || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status sequence %v", codes)
	}
	if len(bodies) != 2 || !strings.Contains(bodies[0], "0241234567") {
		t.Fatalf("expected body forwarded intact, got %v", bodies)
	}

	if store.counts["orders:recipient:0241234567"] != 3 || store.counts["orders:user:1"] != 3 {
		t.Fatalf("unexpected limiter scopes %v", store.counts)
	}

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, orderRequest(1, "0551234567"))
	if resp.Code != http.StatusCreated {
		t.Fatalf("other recipient should pass, got %d", resp.Code)
	}
}

func TestOrderRateLimitPerUser(t *testing.T) {
	policy := NewOrderRateLimitPolicy(config.HTTPConfig{OrderRateWindow: time.Minute, OrderUserLimit: 1})
	handler := OrderRateLimit(policy, &counterStore{}, nil)(okHandler())

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, orderRequest(7, "0241111111"))
	second := httptest.NewRecorder()
	handler.ServeHTTP(second, orderRequest(7, "0242222222"))
	other := httptest.NewRecorder()
	handler.ServeHTTP(other, orderRequest(8, "0243333333"))

	if first.Code != http.StatusOK || second.Code != http.StatusTooManyRequests || other.Code != http.StatusOK {
		t.Fatalf("unexpected codes %d %d %d", first.Code, second.Code, other.Code)
	}
}

func TestOrderRateLimitDisabled(t *testing.T) {
	policy := NewOrderRateLimitPolicy(config.HTTPConfig{})
	handler := OrderRateLimit(policy, &counterStore{}, nil)(okHandler())
	for i := 0; i < 5; i++ {
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, orderRequest(1, "0241234567"))
		if resp.Code != http.StatusOK {
			t.Fatalf("expected limiter disabled, got %d", resp.Code)
		}
	}
}
