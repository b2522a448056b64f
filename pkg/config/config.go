package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Required unless running in dev mode
	SecretKey string `mapstructure:"secret_key"`

	// Optional API settings
	APIHost string `mapstructure:"api_host"`
	APIPort int    `mapstructure:"api_port"`
	// BaseURL is the public origin used in links sent by mail. Required
	// outside dev mode.
	BaseURL string `mapstructure:"base_url"`

	DBPath string `mapstructure:"db_path"`

	// Optional SSL settings
	SSLCert string `mapstructure:"ssl_cert"`
	SSLKey  string `mapstructure:"ssl_key"`

	// Optional CORS settings, applied to the JSON API
	CORSOrigins []string `mapstructure:"cors_origins"`

	// Optional logging settings
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"` // "console" or "json"

	// Token and session settings
	JWTAlgorithm     string        `mapstructure:"jwt_algorithm"`
	SessionLifetime  time.Duration `mapstructure:"session_lifetime"`
	ResetTokenMaxAge time.Duration `mapstructure:"reset_token_max_age"`
	ResetThrottle    time.Duration `mapstructure:"reset_throttle"`
	BcryptCost       int           `mapstructure:"bcrypt_cost"`
	CookieSecure     bool          `mapstructure:"cookie_secure"`

	DevMode bool `mapstructure:"dev_mode"`

	Redis RedisConfig `mapstructure:"redis"`
	Mail  MailConfig  `mapstructure:"mail"`

	ConfigPath string
	// GeneratedSecret is set when dev mode had to invent a secret
	GeneratedSecret bool
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type MailConfig struct {
	Driver       string `mapstructure:"driver"` // "log" or "smtp"
	From         string `mapstructure:"from"`
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUsername string `mapstructure:"smtp_username"`
	SMTPPassword string `mapstructure:"smtp_password"`
	Async        bool   `mapstructure:"async"`
	QueueSize    int    `mapstructure:"queue_size"`
}

const (
	DefaultAPIHost          = "0.0.0.0"
	DefaultAPIPort          = 5000
	DefaultDBPath           = "jobs.db"
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "console"
	DefaultJWTAlgorithm     = "HS256"
	DefaultSessionLifetime  = 30 * 24 * time.Hour
	DefaultResetTokenMaxAge = time.Hour
	DefaultResetThrottle    = time.Minute
	DefaultBcryptCost       = 10
	DefaultMailDriver       = "log"
	DefaultMailFrom         = "noreply@jobboard.local"
	DefaultSMTPPort         = 587
	DefaultMailQueueSize    = 64
	EnvPrefix               = "JOBBOARD"
)

// Load reads configPath (YAML) when given, then applies JOBBOARD_*
// environment overrides. Without a path only defaults and the environment
// are used.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("secret_key", "")
	v.SetDefault("api_host", DefaultAPIHost)
	v.SetDefault("api_port", DefaultAPIPort)
	v.SetDefault("base_url", "")
	v.SetDefault("db_path", DefaultDBPath)
	v.SetDefault("ssl_cert", "")
	v.SetDefault("ssl_key", "")
	v.SetDefault("cors_origins", []string{})
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_format", DefaultLogFormat)
	v.SetDefault("jwt_algorithm", DefaultJWTAlgorithm)
	v.SetDefault("session_lifetime", DefaultSessionLifetime)
	v.SetDefault("reset_token_max_age", DefaultResetTokenMaxAge)
	v.SetDefault("reset_throttle", DefaultResetThrottle)
	v.SetDefault("bcrypt_cost", DefaultBcryptCost)
	v.SetDefault("cookie_secure", false)
	v.SetDefault("dev_mode", false)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("mail.driver", DefaultMailDriver)
	v.SetDefault("mail.from", DefaultMailFrom)
	v.SetDefault("mail.smtp_host", "")
	v.SetDefault("mail.smtp_port", DefaultSMTPPort)
	v.SetDefault("mail.smtp_username", "")
	v.SetDefault("mail.smtp_password", "")
	v.SetDefault("mail.async", false)
	v.SetDefault("mail.queue_size", DefaultMailQueueSize)

	// Allow environment variable overrides, e.g. JOBBOARD_MAIL_SMTP_HOST
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.ConfigPath = configPath

	if cfg.SecretKey == "" && cfg.DevMode {
		secret, err := randomSecret()
		if err != nil {
			return nil, err
		}
		cfg.SecretKey = secret
		cfg.GeneratedSecret = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return errors.New("secret_key is required (set JOBBOARD_SECRET_KEY)")
	}

	switch c.JWTAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("jwt_algorithm must be HS256, HS384 or HS512")
	}

	if c.APIPort <= 0 || c.APIPort > 65535 {
		return fmt.Errorf("api_port out of range: %d", c.APIPort)
	}

	if c.DBPath == "" {
		return errors.New("db_path is required")
	}

	if c.BaseURL == "" {
		if !c.DevMode {
			return errors.New("base_url is required outside dev mode (set JOBBOARD_BASE_URL)")
		}
	} else if err := validateBaseURL(c.BaseURL); err != nil {
		return err
	}

	if c.SessionLifetime <= 0 {
		return errors.New("session_lifetime must be positive")
	}
	if c.ResetTokenMaxAge <= 0 {
		return errors.New("reset_token_max_age must be positive")
	}

	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("log_format must be 'console' or 'json'")
	}

	switch c.Mail.Driver {
	case "log":
	case "smtp":
		if c.Mail.SMTPHost == "" {
			return errors.New("mail.smtp_host is required for the smtp mail driver")
		}
	default:
		return fmt.Errorf("mail.driver must be 'log' or 'smtp'")
	}

	// Validate SSL config if provided
	if c.SSLCert != "" || c.SSLKey != "" {
		if c.SSLCert == "" || c.SSLKey == "" {
			return errors.New("both ssl_cert and ssl_key must be provided")
		}
		if _, err := os.Stat(c.SSLCert); os.IsNotExist(err) {
			return fmt.Errorf("ssl_cert file does not exist: %s", c.SSLCert)
		}
		if _, err := os.Stat(c.SSLKey); os.IsNotExist(err) {
			return fmt.Errorf("ssl_key file does not exist: %s", c.SSLKey)
		}
	}

	return nil
}

func (c *Config) IsDevMode() bool {
	return c.DevMode
}

// SecureCookies reports whether cookies must carry the Secure attribute.
func (c *Config) SecureCookies() bool {
	return c.CookieSecure || c.SSLCert != ""
}

// PublicURL is the origin mailed links point at. In dev mode without a
// base_url it is derived from the listen address, never from a request.
func (c *Config) PublicURL() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}

	scheme := "http"
	if c.SSLCert != "" {
		scheme = "https"
	}
	host := c.APIHost
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return scheme + "://" + net.JoinHostPort(host, strconv.Itoa(c.APIPort))
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("base_url must be an absolute http(s) URL: %q", raw)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("base_url must not carry a query or fragment: %q", raw)
	}
	return nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
