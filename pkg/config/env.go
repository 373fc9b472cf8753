package config

const (
	EnvPrefix = "PRODATA"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "PRODATA_APP_ENV"
	EnvPort     = "PRODATA_APP_PORT"
	EnvLogLevel = "PRODATA_LOG_LEVEL"

	EnvDBDSN  = "PRODATA_DB_DSN"
	EnvDBHost = "PRODATA_DB_HOST"
	EnvDBUser = "PRODATA_DB_USER"
	EnvDBName = "PRODATA_DB_NAME"

	EnvRedisURL = "PRODATA_REDIS_URL"

	EnvJWTSecret = "PRODATA_JWT_SECRET"
	EnvJWTIssuer = "PRODATA_JWT_ISSUER"

	EnvFosterAPIKey     = "PRODATA_FOSTER_API_KEY"
	EnvFosterBaseURL    = "PRODATA_FOSTER_BASE_URL"
	EnvJaybartBaseURL   = "PRODATA_JAYBART_BASE_URL"
	EnvJaybartAPIKey    = "PRODATA_JAYBART_API_KEY"
	EnvCronInterval     = "PRODATA_CRON_INTERVAL"
	EnvStaleOrderAge    = "PRODATA_FULFILLMENT_STALE_ORDER_AGE"
	EnvPubSubProjectID  = "PRODATA_GCP_PROJECT_ID"
	EnvPubSubFulfilment = "PRODATA_PUBSUB_FULFILLMENT_TOPIC"

	DefaultFosterBaseURL = "https://fgamall.researchershubgh.com/api/v1"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
