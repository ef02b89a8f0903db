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
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Razorpay     RazorpayConfig
	Checkout     CheckoutConfig
	Cron         CronConfig
	Admin        AdminBootstrapConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Razorpay.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env            string   `envconfig:"FEASTLY_APP_ENV" required:"true"`
	Port           string   `envconfig:"FEASTLY_APP_PORT" required:"true"`
	LogLevel       string   `envconfig:"FEASTLY_LOG_LEVEL" default:"info"`
	LogWarnStack   bool     `envconfig:"FEASTLY_LOG_WARN_STACK" default:"false"`
	AllowedOrigins []string `envconfig:"FEASTLY_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"FEASTLY_DB_DSN"`
	Driver string `envconfig:"FEASTLY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FEASTLY_DB_HOST"`
	LegacyPort     int    `envconfig:"FEASTLY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FEASTLY_DB_USER"`
	LegacyPassword string `envconfig:"FEASTLY_DB_PASSWORD"`
	LegacyName     string `envconfig:"FEASTLY_DB_NAME"`
	LegacySSLMode  string `envconfig:"FEASTLY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FEASTLY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FEASTLY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FEASTLY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FEASTLY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FEASTLY_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FEASTLY_REDIS_ADDR"`
	Password     string        `envconfig:"FEASTLY_REDIS_PASSWORD"`
	DB           int           `envconfig:"FEASTLY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FEASTLY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FEASTLY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FEASTLY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FEASTLY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FEASTLY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"FEASTLY_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"FEASTLY_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"FEASTLY_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"FEASTLY_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"FEASTLY_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"FEASTLY_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"FEASTLY_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"FEASTLY_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"FEASTLY_ARGON_KEY_LEN" default:"32"`
}

type RazorpayConfig struct {
	KeyID         string `envconfig:"FEASTLY_RAZORPAY_KEY_ID" required:"true"`
	KeySecret     string `envconfig:"FEASTLY_RAZORPAY_KEY_SECRET" required:"true"`
	WebhookSecret string `envconfig:"FEASTLY_RAZORPAY_WEBHOOK_SECRET"`
	Currency      string `envconfig:"FEASTLY_RAZORPAY_CURRENCY" default:"INR"`
}

// validate fails fast on a missing webhook secret: silently accepting
// unverifiable webhooks is worse than refusing to boot.
func (r RazorpayConfig) validate() error {
	if strings.TrimSpace(r.WebhookSecret) == "" {
		return fmt.Errorf("FEASTLY_RAZORPAY_WEBHOOK_SECRET is required")
	}
	return nil
}

type CheckoutConfig struct {
	PendingPaymentTTL time.Duration `envconfig:"FEASTLY_CHECKOUT_PENDING_PAYMENT_TTL" default:"24h"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"FEASTLY_CRON_INTERVAL" default:"1h"`
	LockTTL  time.Duration `envconfig:"FEASTLY_CRON_LOCK_TTL" default:"10m"`
}

// AdminBootstrapConfig seeds a back-office account on startup when set.
type AdminBootstrapConfig struct {
	Email    string `envconfig:"FEASTLY_ADMIN_EMAIL"`
	Password string `envconfig:"FEASTLY_ADMIN_PASSWORD"`
	Name     string `envconfig:"FEASTLY_ADMIN_NAME" default:"Feastly Admin"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"FEASTLY_AUTO_MIGRATE" default:"false"`
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
