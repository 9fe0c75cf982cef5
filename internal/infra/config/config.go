package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	App          AppSettings          `mapstructure:"app"`
	Postgres     PostgresSettings     `mapstructure:"postgres"`
	Redis        RedisSettings        `mapstructure:"redis"`
	Kafka        KafkaSettings        `mapstructure:"kafka"`
	Captcha      CaptchaSettings      `mapstructure:"captcha"`
	Registration RegistrationSettings `mapstructure:"registration"`
	Verification VerificationSettings `mapstructure:"verification"`
	RateLimit    RateLimitSettings    `mapstructure:"rate_limit"`
	CORS         CORSSettings         `mapstructure:"cors"`
}

type AppSettings struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type PostgresSettings struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	Database          string        `mapstructure:"database"`
	SSLMode           string        `mapstructure:"ssl_mode"`
	MaxConns          int32         `mapstructure:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
}

// RedisSettings configures Redis connection and TLS
type RedisSettings struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	DB         int    `mapstructure:"db"`
	Password   string `mapstructure:"password"`
	TLSEnabled bool   `mapstructure:"tls_enabled"`
	KeyPrefix  string `mapstructure:"key_prefix"`
}

// KafkaSettings configures the Kafka producer used for notification dispatch
type KafkaSettings struct {
	Enabled     bool     `mapstructure:"enabled"`
	Brokers     []string `mapstructure:"brokers"`
	TopicPrefix string   `mapstructure:"topic_prefix"`
}

// CaptchaSettings configures the captcha challenge flow. TimeoutWindow is the
// TTL applied to attempt records, PassTTL to the short-lived pass flag.
type CaptchaSettings struct {
	Enabled       bool          `mapstructure:"enabled"`
	Secret        string        `mapstructure:"secret"`
	VerifyURL     string        `mapstructure:"verify_url"`
	VerifyTimeout time.Duration `mapstructure:"verify_timeout"`
	AllowedIPMask string        `mapstructure:"allowed_ip_mask"`
	TimeoutWindow time.Duration `mapstructure:"timeout_window"`
	PassTTL       time.Duration `mapstructure:"pass_ttl"`
	MaxAttempts   int           `mapstructure:"max_attempts"`
}

// RegistrationSettings configures the registration pipeline and the
// duplicate-username guard.
type RegistrationSettings struct {
	Disabled          bool `mapstructure:"disabled"`
	RecentUsernames   int  `mapstructure:"recent_usernames"`
	MinSimilarity     int  `mapstructure:"min_similarity"`
	UsernameMaxLength int  `mapstructure:"username_max_length"`
	MinPasswordScore  int  `mapstructure:"min_password_score"`
}

// VerificationSettings configures resend-confirmation and password reset
// token lifetimes.
type VerificationSettings struct {
	TokenTTL       time.Duration `mapstructure:"token_ttl"`
	ResendCooldown time.Duration `mapstructure:"resend_cooldown"`
	ResetTokenTTL  time.Duration `mapstructure:"reset_token_ttl"`
	ActionsFreeze  time.Duration `mapstructure:"actions_freeze"`
	Languages      []string      `mapstructure:"languages"`
}

// RateLimitSettings configures sliding-window limits per endpoint
type RateLimitSettings struct {
	WindowDuration           time.Duration `mapstructure:"window_duration"`
	LoginMaxAttempts         int           `mapstructure:"login_max_attempts"`
	RegisterMaxAttempts      int           `mapstructure:"register_max_attempts"`
	PasswordResetMaxAttempts int           `mapstructure:"password_reset_max_attempts"`
}

type CORSSettings struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("ACCOUNTS")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"app.host",
		"app.port",
		"postgres.host",
		"postgres.port",
		"postgres.user",
		"postgres.password",
		"postgres.database",
		"postgres.ssl_mode",
		"postgres.max_conns",
		"postgres.min_conns",
		"postgres.max_conn_lifetime",
		"postgres.max_conn_idle_time",
		"postgres.health_check_period",
		"redis.host",
		"redis.port",
		"redis.db",
		"redis.password",
		"redis.tls_enabled",
		"redis.key_prefix",
		"kafka.enabled",
		"kafka.brokers",
		"kafka.topic_prefix",
		"captcha.enabled",
		"captcha.secret",
		"captcha.verify_url",
		"captcha.verify_timeout",
		"captcha.allowed_ip_mask",
		"captcha.timeout_window",
		"captcha.pass_ttl",
		"captcha.max_attempts",
		"registration.disabled",
		"registration.recent_usernames",
		"registration.min_similarity",
		"registration.username_max_length",
		"registration.min_password_score",
		"verification.token_ttl",
		"verification.resend_cooldown",
		"verification.reset_token_ttl",
		"verification.actions_freeze",
		"verification.languages",
		"rate_limit.window_duration",
		"rate_limit.login_max_attempts",
		"rate_limit.register_max_attempts",
		"rate_limit.password_reset_max_attempts",
		"cors.allowed_origins",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "accounts")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "accounts")
	v.SetDefault("postgres.database", "accounts")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 2)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "accounts")

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic_prefix", "account")

	v.SetDefault("captcha.enabled", false)
	v.SetDefault("captcha.verify_url", "https://www.google.com/recaptcha/api/siteverify")
	v.SetDefault("captcha.verify_timeout", 10*time.Second)
	v.SetDefault("captcha.allowed_ip_mask", `172\.\d{1,3}\.\d{1,3}\.\d{1,3}`)
	v.SetDefault("captcha.timeout_window", time.Hour)
	v.SetDefault("captcha.pass_ttl", 180*time.Second)
	v.SetDefault("captcha.max_attempts", 6)

	v.SetDefault("registration.disabled", false)
	v.SetDefault("registration.recent_usernames", 5)
	v.SetDefault("registration.min_similarity", 85)
	v.SetDefault("registration.username_max_length", 20)
	v.SetDefault("registration.min_password_score", 2)

	v.SetDefault("verification.token_ttl", 30*time.Minute)
	v.SetDefault("verification.resend_cooldown", 5*time.Minute)
	v.SetDefault("verification.reset_token_ttl", 30*time.Minute)
	v.SetDefault("verification.actions_freeze", 30*time.Minute)
	v.SetDefault("verification.languages", []string{"en", "es"})

	v.SetDefault("rate_limit.window_duration", time.Minute)
	v.SetDefault("rate_limit.login_max_attempts", 10)
	v.SetDefault("rate_limit.register_max_attempts", 5)
	v.SetDefault("rate_limit.password_reset_max_attempts", 5)

	v.SetDefault("cors.allowed_origins", []string{"*"})
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("bind env %s: %w", key, err)
		}
	}
	return nil
}
