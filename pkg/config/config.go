package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Pricing      PricingConfig
	Session      SessionConfig
	Eventing     EventingConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if _, err := cfg.Pricing.Rate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SMARTWEAR_APP_ENV" required:"true"`
	Port         string `envconfig:"SMARTWEAR_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"SMARTWEAR_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SMARTWEAR_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"SMARTWEAR_LOG_FORMAT" default:"json"`

	CORSOrigins     []string      `envconfig:"SMARTWEAR_CORS_ORIGINS" default:"http://localhost:3000"`
	ShutdownTimeout time.Duration `envconfig:"SMARTWEAR_SHUTDOWN_TIMEOUT" default:"15s"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SMARTWEAR_DB_DSN"`
	Driver string `envconfig:"SMARTWEAR_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"SMARTWEAR_DB_HOST"`
	Port     int    `envconfig:"SMARTWEAR_DB_PORT" default:"5432"`
	User     string `envconfig:"SMARTWEAR_DB_USER"`
	Password string `envconfig:"SMARTWEAR_DB_PASSWORD"`
	Name     string `envconfig:"SMARTWEAR_DB_NAME"`
	SSLMode  string `envconfig:"SMARTWEAR_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"SMARTWEAR_SQLITE_PATH" default:"smartwear.db"`

	MaxOpenConns    int           `envconfig:"SMARTWEAR_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SMARTWEAR_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SMARTWEAR_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SMARTWEAR_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SMARTWEAR_REDIS_URL"`
	Address      string        `envconfig:"SMARTWEAR_REDIS_ADDR"`
	Password     string        `envconfig:"SMARTWEAR_REDIS_PASSWORD"`
	DB           int           `envconfig:"SMARTWEAR_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SMARTWEAR_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SMARTWEAR_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SMARTWEAR_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SMARTWEAR_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SMARTWEAR_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type FeatureFlagsConfig struct {
	UseSQLite     bool `envconfig:"SMARTWEAR_USE_SQLITE" default:"false"`
	AutoMigrate   bool `envconfig:"SMARTWEAR_AUTO_MIGRATE" default:"false"`
	SeedDemoData  bool `envconfig:"SMARTWEAR_SEED_DEMO_DATA" default:"false"`
	StockTracking bool `envconfig:"SMARTWEAR_STOCK_TRACKING" default:"true"`
	RedisSessions bool `envconfig:"SMARTWEAR_REDIS_SESSIONS" default:"false"`
}

type PricingConfig struct {
	TaxRate  string `envconfig:"SMARTWEAR_TAX_RATE" default:"0.10"`
	Currency string `envconfig:"SMARTWEAR_CURRENCY" default:"USD"`
}

// Rate parses the configured tax rate; it must lie in [0, 1].
func (p PricingConfig) Rate() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(strings.TrimSpace(p.TaxRate))
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing %s: %w", EnvTaxRate, err)
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Zero, fmt.Errorf("%s must be between 0 and 1, got %s", EnvTaxRate, rate)
	}
	return rate, nil
}

type SessionConfig struct {
	TTL     time.Duration `envconfig:"SMARTWEAR_SESSION_TTL" default:"12h"`
	LockTTL time.Duration `envconfig:"SMARTWEAR_SESSION_LOCK_TTL" default:"30s"`
}

type EventingConfig struct {
	KafkaBrokers []string `envconfig:"SMARTWEAR_KAFKA_BROKERS"`
	SaleTopic    string   `envconfig:"SMARTWEAR_KAFKA_SALE_TOPIC" default:"pos.sale.completed"`
	RefundTopic  string   `envconfig:"SMARTWEAR_KAFKA_REFUND_TOPIC" default:"pos.refund.processed"`
}

// KafkaEnabled reports whether outbound events should be published to Kafka.
func (e EventingConfig) KafkaEnabled() bool {
	for _, broker := range e.KafkaBrokers {
		if strings.TrimSpace(broker) != "" {
			return true
		}
	}
	return false
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if useSQLite {
		if db.SQLitePath == "" {
			return fmt.Errorf("%s is required when %s is set", EnvSQLitePath, EnvUseSQLite)
		}
		return nil
	}
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range splitDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
