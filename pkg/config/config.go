package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Ledger        LedgerConfig
	Maintenance   MaintenanceConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GARRISON_APP_ENV" required:"true"`
	Port         string `envconfig:"GARRISON_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"GARRISON_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GARRISON_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"GARRISON_DB_DSN"`
	Driver string `envconfig:"GARRISON_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GARRISON_DB_HOST"`
	LegacyPort     int    `envconfig:"GARRISON_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GARRISON_DB_USER"`
	LegacyPassword string `envconfig:"GARRISON_DB_PASSWORD"`
	LegacyName     string `envconfig:"GARRISON_DB_NAME"`
	LegacySSLMode  string `envconfig:"GARRISON_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GARRISON_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GARRISON_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GARRISON_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GARRISON_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// ensureDSN builds the DSN from the legacy host/port/user parts when a full
// DSN is not supplied.
func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.LegacyHost == "" || d.LegacyUser == "" || d.LegacyName == "" {
		return fmt.Errorf("either GARRISON_DB_DSN or GARRISON_DB_HOST/USER/NAME must be set")
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.LegacyUser, d.LegacyPassword),
		Host:   fmt.Sprintf("%s:%d", d.LegacyHost, d.LegacyPort),
		Path:   d.LegacyName,
	}
	q := u.Query()
	q.Set("sslmode", d.LegacySSLMode)
	u.RawQuery = q.Encode()
	d.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"GARRISON_REDIS_URL" required:"true"`
	Address      string        `envconfig:"GARRISON_REDIS_ADDR"`
	Password     string        `envconfig:"GARRISON_REDIS_PASSWORD"`
	DB           int           `envconfig:"GARRISON_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GARRISON_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GARRISON_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GARRISON_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GARRISON_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GARRISON_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"GARRISON_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"GARRISON_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"GARRISON_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"GARRISON_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"GARRISON_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"GARRISON_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"GARRISON_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"GARRISON_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"GARRISON_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"GARRISON_AUTO_MIGRATE" default:"false"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"GARRISON_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"GARRISON_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"GARRISON_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"GARRISON_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"GARRISON_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"GARRISON_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type MaintenanceConfig struct {
	Interval time.Duration `envconfig:"GARRISON_MAINTENANCE_INTERVAL" default:"24h"`
	// LockTTL should exceed the interval so a crashed holder cannot double-run
	// within one cadence.
	LockTTL time.Duration `envconfig:"GARRISON_MAINTENANCE_LOCK_TTL" default:"25h"`
}

type LedgerConfig struct {
	// TransferCommitRetries bounds transparent retries of the transfer-pair
	// commit on transient store contention before a Timeout is surfaced.
	TransferCommitRetries int           `envconfig:"GARRISON_LEDGER_TRANSFER_COMMIT_RETRIES" default:"3"`
	TransferCommitBackoff time.Duration `envconfig:"GARRISON_LEDGER_TRANSFER_COMMIT_BACKOFF" default:"25ms"`
	IdempotencyTTL        time.Duration `envconfig:"GARRISON_LEDGER_IDEMPOTENCY_TTL" default:"24h"`
}
