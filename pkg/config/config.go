package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = "SAHELPOS"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	PIN          PINConfig
	FeatureFlags FeatureFlagsConfig
	Eventing     EventingConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
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
	Env          string `envconfig:"SAHELPOS_APP_ENV" required:"true"`
	Port         string `envconfig:"SAHELPOS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SAHELPOS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SAHELPOS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"SAHELPOS_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"SAHELPOS_DB_DSN"`
	Driver string `envconfig:"SAHELPOS_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"SAHELPOS_DB_HOST"`
	Port     int    `envconfig:"SAHELPOS_DB_PORT" default:"5432"`
	User     string `envconfig:"SAHELPOS_DB_USER"`
	Password string `envconfig:"SAHELPOS_DB_PASSWORD"`
	Name     string `envconfig:"SAHELPOS_DB_NAME"`
	SSLMode  string `envconfig:"SAHELPOS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SAHELPOS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SAHELPOS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SAHELPOS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SAHELPOS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SAHELPOS_REDIS_URL"`
	Address      string        `envconfig:"SAHELPOS_REDIS_ADDR"`
	Password     string        `envconfig:"SAHELPOS_REDIS_PASSWORD"`
	DB           int           `envconfig:"SAHELPOS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SAHELPOS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SAHELPOS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SAHELPOS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SAHELPOS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SAHELPOS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret               string `envconfig:"SAHELPOS_JWT_SECRET" required:"true"`
	Issuer               string `envconfig:"SAHELPOS_JWT_ISSUER" required:"true"`
	ExpirationMinutes    int    `envconfig:"SAHELPOS_JWT_EXPIRATION_MINUTES" default:"480"`
	RefreshTokenTTLHours int    `envconfig:"SAHELPOS_JWT_REFRESH_TTL_HOURS" default:"720"`
}

// RefreshTokenTTL returns the refresh session lifetime.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	return time.Duration(j.RefreshTokenTTLHours) * time.Hour
}

// PINConfig tunes the Argon2id parameters used for cashier PIN hashes.
type PINConfig struct {
	ArgonMemoryKB    int `envconfig:"SAHELPOS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SAHELPOS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SAHELPOS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SAHELPOS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SAHELPOS_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SAHELPOS_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SAHELPOS_AUTO_MIGRATE" default:"false"`
}

type EventingConfig struct {
	ConsumerIdempotencyTTL time.Duration `envconfig:"SAHELPOS_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"SAHELPOS_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"SAHELPOS_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"SAHELPOS_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DomainTopic         string `envconfig:"SAHELPOS_PUBSUB_DOMAIN_TOPIC" default:"pos-domain-events"`
	AlertsSubscription  string `envconfig:"SAHELPOS_PUBSUB_ALERTS_SUBSCRIPTION"`
	DomainSubscription  string `envconfig:"SAHELPOS_PUBSUB_DOMAIN_SUBSCRIPTION"`
	PublishTimeoutSecs  int    `envconfig:"SAHELPOS_PUBSUB_PUBLISH_TIMEOUT_SECS" default:"15"`
	ReceiveMaxOutstand  int    `envconfig:"SAHELPOS_PUBSUB_MAX_OUTSTANDING" default:"100"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"SAHELPOS_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"SAHELPOS_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"SAHELPOS_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	parts := map[string]string{
		"SAHELPOS_DB_HOST": db.Host,
		"SAHELPOS_DB_USER": db.User,
		"SAHELPOS_DB_NAME": db.Name,
	}
	for _, key := range []string{"SAHELPOS_DB_HOST", "SAHELPOS_DB_USER", "SAHELPOS_DB_NAME"} {
		if parts[key] == "" {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either SAHELPOS_DB_DSN or %s are required", strings.Join(missing, ", "))
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
