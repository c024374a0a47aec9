package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Presence      PresenceConfig
	Notifications NotificationsConfig
	Cron          CronConfig
	Seed          SeedConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string `envconfig:"STRINGMASTER_APP_ENV" required:"true"`
	Port         string `envconfig:"STRINGMASTER_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STRINGMASTER_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STRINGMASTER_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"STRINGMASTER_DB_DSN"`

	Host     string `envconfig:"STRINGMASTER_DB_HOST"`
	Port     int    `envconfig:"STRINGMASTER_DB_PORT" default:"5432"`
	User     string `envconfig:"STRINGMASTER_DB_USER"`
	Password string `envconfig:"STRINGMASTER_DB_PASSWORD"`
	Name     string `envconfig:"STRINGMASTER_DB_NAME"`
	SSLMode  string `envconfig:"STRINGMASTER_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STRINGMASTER_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STRINGMASTER_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STRINGMASTER_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STRINGMASTER_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STRINGMASTER_REDIS_URL" required:"true"`
	Address      string        `envconfig:"STRINGMASTER_REDIS_ADDR"`
	Password     string        `envconfig:"STRINGMASTER_REDIS_PASSWORD"`
	DB           int           `envconfig:"STRINGMASTER_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STRINGMASTER_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STRINGMASTER_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STRINGMASTER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STRINGMASTER_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STRINGMASTER_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"STRINGMASTER_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"STRINGMASTER_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"STRINGMASTER_JWT_EXPIRATION_MINUTES" default:"60"`
	SessionTTLMinutes int    `envconfig:"STRINGMASTER_SESSION_TTL_MINUTES" default:"43200"`
}

// SessionTTL returns the Redis session TTL configured in minutes.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.SessionTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.SessionTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"STRINGMASTER_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"STRINGMASTER_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"STRINGMASTER_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"STRINGMASTER_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"STRINGMASTER_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"STRINGMASTER_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"STRINGMASTER_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"STRINGMASTER_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"STRINGMASTER_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"STRINGMASTER_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"STRINGMASTER_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type PresenceConfig struct {
	Timeout       time.Duration `envconfig:"STRINGMASTER_PRESENCE_TIMEOUT" default:"5m"`
	SweepInterval time.Duration `envconfig:"STRINGMASTER_PRESENCE_SWEEP_INTERVAL" default:"1m"`
}

type NotificationsConfig struct {
	ObserverBuffer int `envconfig:"STRINGMASTER_NOTIFY_OBSERVER_BUFFER" default:"64"`
	RetentionDays  int `envconfig:"STRINGMASTER_NOTIFY_RETENTION_DAYS" default:"30"`
}

type CronConfig struct {
	Interval    time.Duration `envconfig:"STRINGMASTER_CRON_INTERVAL" default:"24h"`
	LockTTL     time.Duration `envconfig:"STRINGMASTER_CRON_LOCK_TTL" default:"25h"`
	MetricsPort string        `envconfig:"STRINGMASTER_CRON_METRICS_PORT" default:"9090"`
}

// SeedConfig holds the bootstrap admin credentials. When both values are
// set, the API creates the admin account on startup if it does not exist.
type SeedConfig struct {
	AdminEmail    string `envconfig:"STRINGMASTER_SEED_ADMIN_EMAIL"`
	AdminPassword string `envconfig:"STRINGMASTER_SEED_ADMIN_PASSWORD"`
	AdminName     string `envconfig:"STRINGMASTER_SEED_ADMIN_NAME" default:"Shop Admin"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"STRINGMASTER_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	parts := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range []string{EnvDBHost, EnvDBUser, EnvDBName} {
		if parts[env] == "" {
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
