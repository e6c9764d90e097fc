package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"

	MinSecretLength = 32
)

type Config struct {
	Env        string    `mapstructure:"env"`
	ListenAddr string    `mapstructure:"listen_addr"`
	BcryptCost int       `mapstructure:"bcrypt_cost"`
	Database   Database  `mapstructure:"database"`
	JWT        JWT       `mapstructure:"jwt"`
	OTP        OTP       `mapstructure:"otp"`
	Mail       Mail      `mapstructure:"mail"`
	Policy     Policy    `mapstructure:"policy"`
	Google     Google    `mapstructure:"google"`
	Redis      Redis     `mapstructure:"redis"`
	RateLimit  RateLimit `mapstructure:"rate_limit"`
	Log        Log       `mapstructure:"log"`
}

type Database struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	MySQL  MySQL  `mapstructure:"mysql"`
	Debug  bool   `mapstructure:"debug"`
	// MaxIDAttempts bounds account id regeneration on collision.
	MaxIDAttempts int `mapstructure:"max_id_attempts"`
}

type MySQL struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Pass         string `mapstructure:"pass"`
	DB           string `mapstructure:"db"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type JWT struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
	Issuer string        `mapstructure:"issuer"`
}

type OTP struct {
	TTL    time.Duration `mapstructure:"ttl"`
	Digits int           `mapstructure:"digits"`
}

// Mail with an empty Host falls back to a log-only sender.
type Mail struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	FromName string `mapstructure:"from_name"`
}

type Policy struct {
	// UserEmailDomain is the institutional suffix required for standard registrations.
	UserEmailDomain string `mapstructure:"user_email_domain"`
	DefaultCredits  int    `mapstructure:"default_credits"`
	// DeveloperRegistration enables the admin self-registration endpoints.
	DeveloperRegistration bool `mapstructure:"developer_registration"`
}

// Google with an empty ClientID disables third-party sign-in.
type Google struct {
	ClientID     string        `mapstructure:"client_id"`
	ClientSecret string        `mapstructure:"client_secret"`
	RedirectURL  string        `mapstructure:"redirect_url"`
	StateTTL     time.Duration `mapstructure:"state_ttl"`
}

func (g Google) Enabled() bool {
	return g.ClientID != ""
}

// Redis with an empty Addr disables rate limiting.
type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type RateLimit struct {
	Attempts int           `mapstructure:"attempts"`
	Window   time.Duration `mapstructure:"window"`
}

type Log struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// SetDefaults registers every key so environment overrides reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("env", EnvProduction)
	v.SetDefault("listen_addr", "0.0.0.0:8000")
	v.SetDefault("bcrypt_cost", 10)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "ride_booking.db")
	v.SetDefault("database.debug", false)
	v.SetDefault("database.max_id_attempts", 10)
	v.SetDefault("database.mysql.host", "127.0.0.1")
	v.SetDefault("database.mysql.port", 3306)
	v.SetDefault("database.mysql.user", "root")
	v.SetDefault("database.mysql.pass", "")
	v.SetDefault("database.mysql.db", "auth_db")
	v.SetDefault("database.mysql.max_open_conns", 8)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.ttl", 24*time.Hour)
	v.SetDefault("jwt.issuer", "ride-booking-api")

	v.SetDefault("otp.ttl", 5*time.Minute)
	v.SetDefault("otp.digits", 6)

	v.SetDefault("mail.host", "")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.from", "")
	v.SetDefault("mail.from_name", "Ride Booking")

	v.SetDefault("policy.user_email_domain", "bennett.edu.in")
	v.SetDefault("policy.default_credits", 500)
	v.SetDefault("policy.developer_registration", false)

	v.SetDefault("google.client_id", "")
	v.SetDefault("google.client_secret", "")
	v.SetDefault("google.redirect_url", "")
	v.SetDefault("google.state_ttl", 10*time.Minute)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("rate_limit.attempts", 5)
	v.SetDefault("rate_limit.window", 15*time.Minute)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}

// New returns a viper instance reading RIDES_* environment variables and,
// when path is non-empty, the given config file.
func New(path string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix("RIDES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file[%s]: %w", path, err)
		}
	}
	return v, nil
}

// Load decodes and validates the configuration. A missing signing secret is
// fatal: there is no built-in fallback.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Policy.UserEmailDomain = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(cfg.Policy.UserEmailDomain)), "@")
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	errs := []error{}
	switch c.Env {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		errs = append(errs, fmt.Errorf("env[%s] must be one of development, production, test", c.Env))
	}
	if len(c.JWT.Secret) < MinSecretLength {
		errs = append(errs, fmt.Errorf("jwt.secret must be set and at least %d bytes long", MinSecretLength))
	}
	if c.JWT.TTL <= 0 {
		errs = append(errs, fmt.Errorf("jwt.ttl must be positive"))
	}
	if c.OTP.TTL <= 0 {
		errs = append(errs, fmt.Errorf("otp.ttl must be positive"))
	}
	if c.OTP.Digits != 6 && c.OTP.Digits != 8 {
		errs = append(errs, fmt.Errorf("otp.digits must be 6 or 8"))
	}
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			errs = append(errs, fmt.Errorf("database.path is required for sqlite"))
		}
	case "mysql":
		if c.Database.MySQL.Host == "" {
			errs = append(errs, fmt.Errorf("database.mysql.host is required for mysql"))
		}
	default:
		errs = append(errs, fmt.Errorf("database.driver[%s] must be sqlite or mysql", c.Database.Driver))
	}
	if c.Database.MaxIDAttempts <= 0 {
		errs = append(errs, fmt.Errorf("database.max_id_attempts must be positive"))
	}
	if c.Policy.UserEmailDomain == "" {
		errs = append(errs, fmt.Errorf("policy.user_email_domain is required"))
	}
	if c.Policy.DefaultCredits < 0 {
		errs = append(errs, fmt.Errorf("policy.default_credits cannot be negative"))
	}
	if c.Mail.Host != "" && c.Mail.From == "" && c.Mail.Username == "" {
		errs = append(errs, fmt.Errorf("mail.from or mail.username is required when mail.host is set"))
	}
	if c.Google.Enabled() && (c.Google.ClientSecret == "" || c.Google.RedirectURL == "") {
		errs = append(errs, fmt.Errorf("google.client_secret and google.redirect_url are required when google.client_id is set"))
	}
	if c.Redis.Addr != "" && (c.RateLimit.Attempts <= 0 || c.RateLimit.Window <= 0) {
		errs = append(errs, fmt.Errorf("rate_limit.attempts and rate_limit.window must be positive"))
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{fmt.Errorf("invalid configuration")}, errs...)...)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}
