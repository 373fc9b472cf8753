package settings

import (
	"context"
	stdErrors "errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/prodataworld/prodata-backend/pkg/db"
	"github.com/prodataworld/prodata-backend/pkg/db/models"
	"github.com/prodataworld/prodata-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	KeyJaybartPusher   = "jaybart_order_pusher_enabled"
	KeyFosterPusher    = "foster_order_pusher_enabled"
	KeyCodeCraftPusher = "codecraft_order_pusher_enabled"
	KeyJescoPusher     = "jesco_order_pusher_enabled"
	KeyAgentFee        = "agent_registration_fee"

	cacheScope = "settings"
)

// PusherEnabledByDefault is how a pusher flag reads when no row exists.
const PusherEnabledByDefault = true

// PusherKey returns the feature flag guarding a fulfillment provider.
func PusherKey(provider string) string {
	return fmt.Sprintf("%s_order_pusher_enabled", strings.ToLower(provider))
}

// Cache is the read-through store in front of the settings table.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CacheKey(scope, id string) string
}

// Service reads and writes key/value flags.
type Service struct {
	db       *gorm.DB
	cache    Cache
	cacheTTL time.Duration
	logg     *logger.Logger
}

// Params wires Service. Cache is optional.
type Params struct {
	DB       *gorm.DB
	Cache    Cache
	CacheTTL time.Duration
	Logger   *logger.Logger
}

func NewService(params Params) (*Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db required")
	}
	return &Service{db: params.DB, cache: params.Cache, cacheTTL: params.CacheTTL, logg: params.Logger}, nil
}

// Get returns the stored value for key, or fallback when the row is absent.
func (s *Service) Get(ctx context.Context, key, fallback string) (string, error) {
	if s.cache != nil && s.cacheTTL > 0 {
		cached, err := s.cache.Get(ctx, s.cache.CacheKey(cacheScope, key))
		switch {
		case err == nil:
			return cached, nil
		case !stdErrors.Is(err, redis.Nil):
			s.warn(ctx, key, "settings cache read failed", err)
		}
	}

	var setting models.Setting
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error
	value := setting.Value
	if err != nil {
		if !stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return "", err
		}
		value = fallback
	}

	if s.cache != nil && s.cacheTTL > 0 {
		if err := s.cache.Set(ctx, s.cache.CacheKey(cacheScope, key), value, s.cacheTTL); err != nil {
			s.warn(ctx, key, "settings cache write failed", err)
		}
	}
	return value, nil
}

// Enabled interprets a flag the way the dashboard stores them ("1", "0",
// "true", "false"). A missing row yields fallback.
func (s *Service) Enabled(ctx context.Context, key string, fallback bool) (bool, error) {
	def := "0"
	if fallback {
		def = "1"
	}
	value, err := s.Get(ctx, key, def)
	if err != nil {
		return fallback, err
	}
	return parseFlag(value, fallback), nil
}

// Set upserts a value and drops the cached copy.
func (s *Service) Set(ctx context.Context, key, value string) error {
	err := s.db.WithContext(ctx).Create(&models.Setting{Key: key, Value: value}).Error
	if db.IsUniqueViolation(err, "") {
		err = s.db.WithContext(ctx).
			Model(&models.Setting{}).
			Where("key = ?", key).
			Update("value", value).Error
	}
	if err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Del(ctx, s.cache.CacheKey(cacheScope, key)); err != nil {
			s.warn(ctx, key, "settings cache invalidation failed", err)
		}
	}
	return nil
}

// SetEnabled stores a boolean flag in the dashboard's "1"/"0" form.
func (s *Service) SetEnabled(ctx context.Context, key string, enabled bool) error {
	value := "0"
	if enabled {
		value = "1"
	}
	return s.Set(ctx, key, value)
}

func (s *Service) warn(ctx context.Context, key, msg string, err error) {
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithFields(ctx, map[string]any{"setting": key, "error": err.Error()})
	s.logg.Warn(ctx, msg)
}

func parseFlag(value string, fallback bool) bool {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	if parsed, err := strconv.ParseBool(trimmed); err == nil {
		return parsed
	}
	if n, err := strconv.Atoi(trimmed); err == nil {
		return n != 0
	}
	return fallback
}
