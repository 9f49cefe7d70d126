package config

const EnvPrefix = "SMARTWEAR"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv        = "SMARTWEAR_APP_ENV"
	EnvPort          = "SMARTWEAR_APP_PORT"
	EnvLogLevel      = "SMARTWEAR_LOG_LEVEL"
	EnvDBDSN         = "SMARTWEAR_DB_DSN"
	EnvDBHost        = "SMARTWEAR_DB_HOST"
	EnvDBUser        = "SMARTWEAR_DB_USER"
	EnvDBName        = "SMARTWEAR_DB_NAME"
	EnvDBPassword    = "SMARTWEAR_DB_PASSWORD"
	EnvSQLitePath    = "SMARTWEAR_SQLITE_PATH"
	EnvUseSQLite     = "SMARTWEAR_USE_SQLITE"
	EnvRedisURL      = "SMARTWEAR_REDIS_URL"
	EnvTaxRate       = "SMARTWEAR_TAX_RATE"
	EnvStockTracking = "SMARTWEAR_STOCK_TRACKING"
	EnvKafkaBrokers  = "SMARTWEAR_KAFKA_BROKERS"
	EnvSessionTTL    = "SMARTWEAR_SESSION_TTL"
)

var splitDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
