package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	SMTP         SMTPConfig
	UltraMsg     UltraMsgConfig
	Dispatch     DispatchConfig
	Retention    RetentionConfig
	Cron         CronConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"NOTIFY_APP_ENV" required:"true"`
	Port         string `envconfig:"NOTIFY_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"NOTIFY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"NOTIFY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"NOTIFY_DB_DSN" required:"true"`
	Driver string `envconfig:"NOTIFY_DB_DRIVER" default:"postgres"`

	MaxOpenConns    int           `envconfig:"NOTIFY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"NOTIFY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"NOTIFY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"NOTIFY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"NOTIFY_REDIS_URL"`
	Address      string        `envconfig:"NOTIFY_REDIS_ADDR"`
	Password     string        `envconfig:"NOTIFY_REDIS_PASSWORD"`
	DB           int           `envconfig:"NOTIFY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"NOTIFY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"NOTIFY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"NOTIFY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"NOTIFY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"NOTIFY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// SMTPConfig carries email provider credentials. The variable names are part
// of the deployment contract and intentionally unprefixed.
type SMTPConfig struct {
	Host      string `envconfig:"SMTP_HOST"`
	Port      int    `envconfig:"SMTP_PORT" default:"587"`
	User      string `envconfig:"SMTP_USER"`
	Pass      string `envconfig:"SMTP_PASS"`
	FromEmail string `envconfig:"SMTP_FROM_EMAIL"`
	FromName  string `envconfig:"SMTP_FROM_NAME" default:"BrightPath CRM"`
}

// Configured reports whether real credentials are present. Without them the
// email sender runs in simulated mode.
func (s SMTPConfig) Configured() bool {
	return s.Host != "" && s.User != "" && s.Pass != ""
}

// From returns the RFC 5322 From header value.
func (s SMTPConfig) From() string {
	from := s.FromEmail
	if from == "" {
		from = s.User
	}
	if s.FromName == "" {
		return from
	}
	return fmt.Sprintf("%s <%s>", s.FromName, from)
}

// UltraMsgConfig carries the WhatsApp gateway credentials, unprefixed like
// SMTPConfig. Credentials live server-side only.
type UltraMsgConfig struct {
	InstanceID string `envconfig:"ULTRAMSG_INSTANCE_ID"`
	Token      string `envconfig:"ULTRAMSG_TOKEN"`
	BaseURL    string `envconfig:"NOTIFY_ULTRAMSG_BASE_URL" default:"https://api.ultramsg.com"`
}

// Configured reports whether real credentials are present. Without them the
// WhatsApp sender runs in simulated mode.
func (u UltraMsgConfig) Configured() bool {
	return u.InstanceID != "" && u.Token != ""
}

type DispatchConfig struct {
	IntervalMS  int  `envconfig:"NOTIFY_DISPATCH_INTERVAL_MS" default:"30000"`
	BatchSize   int  `envconfig:"NOTIFY_DISPATCH_BATCH_SIZE" default:"100"`
	MaxAttempts int  `envconfig:"NOTIFY_DISPATCH_MAX_ATTEMPTS" default:"3"`
	AutoStart   bool `envconfig:"NOTIFY_DISPATCH_AUTOSTART" default:"false"`
}

// Interval returns the polling interval as a duration, falling back to the
// 30s default for non-positive values.
func (d DispatchConfig) Interval() time.Duration {
	if d.IntervalMS <= 0 {
		return 30 * time.Second
	}
	return time.Duration(d.IntervalMS) * time.Millisecond
}

type RetentionConfig struct {
	NotificationDays int `envconfig:"NOTIFY_NOTIFICATION_RETENTION_DAYS" default:"30"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"NOTIFY_CRON_INTERVAL" default:"1h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"NOTIFY_AUTO_MIGRATE" default:"false"`
}
