package config

import (
	"crypto/tls"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

type ServerConfig struct {
	Port         int    `toml:"port"`
	DataDir      string `toml:"data_dir"`
	TemplatesDir string `toml:"templates_dir"`
	LocalesDir   string `toml:"locales_dir"`
}

type AuthConfig struct {
	JWTSecret      string `toml:"jwt_secret"`
	SessionHours   int    `toml:"session_hours"`
	AllowRegister  bool   `toml:"allow_register"`
	MinPasswordLen int    `toml:"min_password_len"`
}

type ChatConfig struct {
	Endpoint    string `toml:"endpoint"`
	APIKey      string `toml:"api_key"`
	Model       string `toml:"model"`
	Persona     string `toml:"persona"`
	MaxTokens   int    `toml:"max_tokens"`
	MaxHistory  int    `toml:"max_history"`
	TimeoutSecs int    `toml:"timeout_secs"`
}

type RateLimitConfig struct {
	Requests int `toml:"requests"`
	Seconds  int `toml:"seconds"`
}

type SSLConfig struct {
	Enabled  bool   `toml:"enabled"`
	CertFile string `toml:"cert_file"` // Path to fullchain.pem
	KeyFile  string `toml:"key_file"`  // Path to privkey.pem
	Port     int    `toml:"port"`
}

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Auth      AuthConfig      `toml:"auth"`
	Chat      ChatConfig      `toml:"chat"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	SSL       SSLConfig       `toml:"ssl"`
}

// DefaultPersona is the companion instruction used when the config file
// does not override it.
const DefaultPersona = "You are Amara, a warm and thoughtful companion on Everlove. " +
	"You help people put their feelings into words: love letters, anniversaries, " +
	"apologies, and everything in between. Keep replies kind, encouraging, and short."

func LoadConfig(filepath string) (*Config, error) {
	var config Config

	// Set default values
	config.Server.Port = 3000
	config.Server.DataDir = "./data"
	config.Server.TemplatesDir = "./templates"
	config.Server.LocalesDir = "./locales"

	config.Auth.SessionHours = 24
	config.Auth.AllowRegister = true
	config.Auth.MinPasswordLen = 8

	config.Chat.Endpoint = "http://localhost:11434/v1"
	config.Chat.Model = "llama3"
	config.Chat.MaxTokens = 256
	config.Chat.MaxHistory = 20
	config.Chat.TimeoutSecs = 60

	config.RateLimit.Requests = 100
	config.RateLimit.Seconds = 60

	config.SSL.Port = 443

	// Load config file
	_, err := toml.DecodeFile(filepath, &config)
	if err != nil {
		return nil, err
	}

	if config.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("auth.jwt_secret is required")
	}

	if config.Chat.Persona == "" {
		config.Chat.Persona = DefaultPersona
	}

	// Validate SSL configuration if enabled
	if config.SSL.Enabled {
		if err := config.ValidateSSL(); err != nil {
			return nil, fmt.Errorf("SSL configuration error: %w", err)
		}
	}

	return &config, nil
}

// SessionTTL returns the configured session lifetime.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Auth.SessionHours) * time.Hour
}

// Timeout returns the outbound chat request timeout.
func (c *ChatConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// ValidateSSL checks if the SSL configuration is valid
func (c *Config) ValidateSSL() error {
	if !c.SSL.Enabled {
		return nil
	}

	if c.SSL.CertFile == "" {
		return fmt.Errorf("SSL certificate file path is required")
	}

	if c.SSL.KeyFile == "" {
		return fmt.Errorf("SSL key file path is required")
	}

	// Try loading the certificates to verify they're valid
	_, err := tls.LoadX509KeyPair(c.SSL.CertFile, c.SSL.KeyFile)
	if err != nil {
		return fmt.Errorf("failed to load SSL certificates: %w", err)
	}

	return nil
}
