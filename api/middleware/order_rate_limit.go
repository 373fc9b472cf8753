package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prodataworld/prodata-backend/api/responses"
	"github.com/prodataworld/prodata-backend/pkg/config"
	pkgerrors "github.com/prodataworld/prodata-backend/pkg/errors"
	"github.com/prodataworld/prodata-backend/pkg/logger"
)

type rateLimiterStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// OrderRateLimitPolicy throttles order placement per caller and per recipient
// number so a runaway integration cannot drain a wallet in a burst.
type OrderRateLimitPolicy struct {
	window         time.Duration
	userLimit      int
	recipientLimit int
}

func NewOrderRateLimitPolicy(cfg config.HTTPConfig) OrderRateLimitPolicy {
	return OrderRateLimitPolicy{
		window:         cfg.OrderRateWindow,
		userLimit:      cfg.OrderUserLimit,
		recipientLimit: cfg.OrderRecipientLimit,
	}
}

func (p OrderRateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.userLimit > 0 || p.recipientLimit > 0)
}

func (p OrderRateLimitPolicy) userScope(userID uint) string {
	if userID == 0 {
		return ""
	}
	return fmt.Sprintf("orders:user:%d", userID)
}

func (p OrderRateLimitPolicy) recipientScope(number string) string {
	if number == "" {
		return ""
	}
	return fmt.Sprintf("orders:recipient:%s", number)
}

// OrderRateLimit enforces the policy. It must run after Auth.
func OrderRateLimit(policy OrderRateLimitPolicy, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if policy.userLimit > 0 {
				if scope := policy.userScope(UserIDFromContext(ctx)); scope != "" {
					if allowed, count, err := store.FixedWindowAllow(ctx, scope, int64(policy.userLimit), policy.window); err != nil {
						responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
						return
					} else if !allowed {
						respondRateLimited(ctx, logg, w, policy, "user", count, policy.userLimit)
						return
					}
				}
			}

			if policy.recipientLimit > 0 && r.Body != nil {
				body, err := io.ReadAll(r.Body)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request"))
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))

				if scope := policy.recipientScope(extractBeneficiary(body)); scope != "" {
					if allowed, count, err := store.FixedWindowAllow(ctx, scope, int64(policy.recipientLimit), policy.window); err != nil {
						responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
						return
					} else if !allowed {
						respondRateLimited(ctx, logg, w, policy, "recipient", count, policy.recipientLimit)
						return
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func respondRateLimited(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, policy OrderRateLimitPolicy, scope string, count int64, limit int) {
	if logg != nil {
		logCtx := logg.WithFields(ctx, map[string]any{
			"scope":          scope,
			"attempts":       count,
			"limit":          limit,
			"window_seconds": int(policy.window.Seconds()),
		})
		logg.Warn(logCtx, "orders.rate_limit.blocked")
	}
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "Too many orders, please slow down"))
}

func extractBeneficiary(payload []byte) string {
	var body struct {
		BeneficiaryNumber string `json:"beneficiary_number"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	return strings.TrimSpace(body.BeneficiaryNumber)
}
