package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Fulfillment  FulfillmentConfig
	Jaybart      ProviderConfig `envconfig:"JAYBART"`
	Foster       ProviderConfig `envconfig:"FOSTER"`
	CodeCraft    ProviderConfig `envconfig:"CODECRAFT"`
	Jesco        ProviderConfig `envconfig:"JESCO"`
	SMS          SMSConfig
	Cron         CronConfig
	PubSub       PubSubConfig
	HTTP         HTTPConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	cfg.Foster.applyDefaultBaseURL(DefaultFosterBaseURL)
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PRODATA_APP_ENV" required:"true"`
	Port         string `envconfig:"PRODATA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PRODATA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PRODATA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"PRODATA_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"PRODATA_DB_DSN"`
	Driver string `envconfig:"PRODATA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PRODATA_DB_HOST"`
	LegacyPort     int    `envconfig:"PRODATA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PRODATA_DB_USER"`
	LegacyPassword string `envconfig:"PRODATA_DB_PASSWORD"`
	LegacyName     string `envconfig:"PRODATA_DB_NAME"`
	LegacySSLMode  string `envconfig:"PRODATA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PRODATA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PRODATA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PRODATA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PRODATA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PRODATA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PRODATA_REDIS_ADDR"`
	Password     string        `envconfig:"PRODATA_REDIS_PASSWORD"`
	DB           int           `envconfig:"PRODATA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PRODATA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PRODATA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PRODATA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PRODATA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PRODATA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"PRODATA_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"PRODATA_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"PRODATA_JWT_EXPIRATION_MINUTES" default:"60"`
	// API tokens handed to agents for programmatic ordering live much longer.
	APITokenTTLHours int `envconfig:"PRODATA_API_TOKEN_TTL_HOURS" default:"8760"`
}

// APITokenTTL returns the lifetime of agent API tokens.
func (j JWTConfig) APITokenTTL() time.Duration {
	if j.APITokenTTLHours <= 0 {
		return 0
	}
	return time.Duration(j.APITokenTTLHours) * time.Hour
}

// HTTPConfig covers the API surface: browser origins and order throttling.
type HTTPConfig struct {
	CORSOrigins         []string      `envconfig:"PRODATA_CORS_ORIGINS" default:"http://localhost:3000"`
	OrderRateWindow     time.Duration `envconfig:"PRODATA_ORDER_RATE_WINDOW" default:"1m"`
	OrderUserLimit      int           `envconfig:"PRODATA_ORDER_RATE_USER_LIMIT" default:"60"`
	OrderRecipientLimit int           `envconfig:"PRODATA_ORDER_RATE_RECIPIENT_LIMIT" default:"5"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"PRODATA_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"PRODATA_AUTO_MIGRATE" default:"false"`
}

type FulfillmentConfig struct {
	StaleOrderAge        time.Duration `envconfig:"PRODATA_FULFILLMENT_STALE_ORDER_AGE" default:"30m"`
	AutoCompleteNetworks []string      `envconfig:"PRODATA_FULFILLMENT_AUTO_COMPLETE_NETWORKS" default:"bigtime,telecel"`
	SettingsCacheTTL     time.Duration `envconfig:"PRODATA_FULFILLMENT_SETTINGS_CACHE_TTL" default:"30s"`
}

// ProviderConfig is shared by every upstream fulfillment vendor. Each vendor
// reads it under its own prefix, e.g. PRODATA_FOSTER_API_KEY.
type ProviderConfig struct {
	BaseURL          string        `envconfig:"BASE_URL"`
	APIKey           string        `envconfig:"API_KEY"`
	Timeout          time.Duration `envconfig:"TIMEOUT" default:"30s"`
	RatePerSecond    float64       `envconfig:"RATE_PER_SECOND" default:"5"`
	Burst            int           `envconfig:"BURST" default:"5"`
	BreakerFailures  uint32        `envconfig:"BREAKER_FAILURES" default:"5"`
	BreakerOpenFor   time.Duration `envconfig:"BREAKER_OPEN_FOR" default:"60s"`
	BreakerHalfOpens uint32        `envconfig:"BREAKER_HALF_OPEN_REQUESTS" default:"1"`
}

// Configured reports whether the vendor has enough settings to be called.
func (p ProviderConfig) Configured() bool {
	return strings.TrimSpace(p.BaseURL) != "" && strings.TrimSpace(p.APIKey) != ""
}

func (p *ProviderConfig) applyDefaultBaseURL(base string) {
	if strings.TrimSpace(p.BaseURL) == "" {
		p.BaseURL = base
	}
}

type SMSConfig struct {
	BaseURL  string        `envconfig:"PRODATA_SMS_BASE_URL" default:"https://api.moolre.com"`
	APIKey   string        `envconfig:"PRODATA_SMS_API_KEY"`
	SenderID string        `envconfig:"PRODATA_SMS_SENDER_ID" default:"PRODATAWLD"`
	Timeout  time.Duration `envconfig:"PRODATA_SMS_TIMEOUT" default:"30s"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"PRODATA_CRON_INTERVAL" default:"5m"`
	LockTTL  time.Duration `envconfig:"PRODATA_CRON_LOCK_TTL" default:"4m"`
}

type PubSubConfig struct {
	ProjectID          string `envconfig:"PRODATA_GCP_PROJECT_ID"`
	FulfillmentTopic   string `envconfig:"PRODATA_PUBSUB_FULFILLMENT_TOPIC"`
	CredentialsJSON    string `envconfig:"PRODATA_GCP_CREDENTIALS_JSON"`
	PublishTimeoutSecs int    `envconfig:"PRODATA_PUBSUB_PUBLISH_TIMEOUT_SECONDS" default:"10"`
}

// Enabled reports whether fulfillment events should be published.
func (p PubSubConfig) Enabled() bool {
	return strings.TrimSpace(p.ProjectID) != "" && strings.TrimSpace(p.FulfillmentTopic) != ""
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
