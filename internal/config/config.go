package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`

	JWTSecret     string        `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	JWTIssuer     string        `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`
	JWTAudience   string        `mapstructure:"jwt_audience" yaml:"jwt_audience"`
	TokenTTL      time.Duration `mapstructure:"token_ttl" yaml:"token_ttl"`
	SessionCookie string        `mapstructure:"session_cookie" yaml:"session_cookie"`

	UploadDir      string `mapstructure:"upload_dir" yaml:"upload_dir"`
	PublicPrefix   string `mapstructure:"public_prefix" yaml:"public_prefix"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes" yaml:"max_upload_bytes"`

	// Websocket chat
	MaxMessageBytes int64         `mapstructure:"max_message_bytes" yaml:"max_message_bytes"`
	WSIdleTimeout   time.Duration `mapstructure:"ws_idle_timeout" yaml:"ws_idle_timeout"`
	WSWriteTimeout  time.Duration `mapstructure:"ws_write_timeout" yaml:"ws_write_timeout"`
	WSRateLimit     int           `mapstructure:"ws_rate_limit" yaml:"ws_rate_limit"`
	EnforceSender   bool          `mapstructure:"enforce_sender" yaml:"enforce_sender"`

	DemoMode bool `mapstructure:"demo_mode" yaml:"demo_mode"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		LogFormat:         "console",
		DatabasePath:      "sweatmarket.db",
		JWTSecret:         "dev-secret",
		JWTIssuer:         "sweatmarket",
		JWTAudience:       "sweatmarket",
		TokenTTL:          24 * time.Hour,
		SessionCookie:     "sweatmarket_session",
		UploadDir:         "static",
		PublicPrefix:      "/static",
		MaxUploadBytes:    5 << 20,
		MaxMessageBytes:   64 << 10,
		WSIdleTimeout:     5 * time.Minute,
		WSWriteTimeout:    5 * time.Second,
		WSRateLimit:       120,
		EnforceSender:     true,
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
// Booleans are left alone since their zero value is meaningful.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.LogFormat != "" {
		c.LogFormat = other.LogFormat
	}
	if other.DatabasePath != "" {
		c.DatabasePath = other.DatabasePath
	}
	if other.JWTSecret != "" {
		c.JWTSecret = other.JWTSecret
	}
	if other.UploadDir != "" {
		c.UploadDir = other.UploadDir
	}
}
