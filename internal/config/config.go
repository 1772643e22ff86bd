package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/matheus3301/wppmcp/internal/paths"
)

// Defaults match the layout of a bridge checkout next to the server.
const (
	DefaultBridgeURL      = "http://localhost:8080/api"
	DefaultMessagesDBPath = "../whatsapp-bridge/store/messages.db"
	DefaultWhatsAppDBPath = "../whatsapp-bridge/store/whatsapp.db"
	DefaultSSEAddr        = "127.0.0.1:8081"
	DefaultLogLevel       = "info"
)

// Config represents ~/.wpp-mcp/config.toml after environment overrides.
type Config struct {
	Bridge BridgeConfig `toml:"bridge"`
	Store  StoreConfig  `toml:"store"`
	Server ServerConfig `toml:"server"`
	Log    LogConfig    `toml:"log"`
}

// BridgeConfig locates the external WhatsApp bridge.
type BridgeConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key,omitempty"`
}

// StoreConfig locates the two SQLite files written by the bridge.
type StoreConfig struct {
	MessagesDB string `toml:"messages_db"`
	WhatsAppDB string `toml:"whatsapp_db"`
}

// ServerConfig controls the daemon listeners.
type ServerConfig struct {
	SSEAddr    string  `toml:"sse_addr"`
	PublicURL  string  `toml:"public_url,omitempty"`
	SocketPath string  `toml:"socket_path,omitempty"`
	RateLimit  float64 `toml:"rate_limit"`
	RateBurst  int     `toml:"rate_burst"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level string `toml:"level"`
	Dir   string `toml:"dir,omitempty"`
}

// Default returns a config with every field populated.
func Default() *Config {
	return &Config{
		Bridge: BridgeConfig{BaseURL: DefaultBridgeURL},
		Store: StoreConfig{
			MessagesDB: DefaultMessagesDBPath,
			WhatsAppDB: DefaultWhatsAppDBPath,
		},
		Server: ServerConfig{
			SSEAddr:   DefaultSSEAddr,
			RateLimit: 20,
			RateBurst: 40,
		},
		Log: LogConfig{Level: DefaultLogLevel},
	}
}

// Load reads config from the given path on top of Default. Returns error if file missing.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Resolve builds the process configuration: defaults, then the TOML file if
// it exists, then a .env file in the working directory, then the environment.
func Resolve(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg, err = Default(), nil
	}
	if err != nil {
		return nil, err
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	cfg.ApplyEnv(os.LookupEnv)
	return cfg, nil
}

// ApplyEnv overlays the variables understood by the bridge tooling.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(&c.Bridge.BaseURL, "WHATSAPP_API_BASE_URL")
	set(&c.Bridge.APIKey, "API_KEY")
	set(&c.Store.MessagesDB, "MESSAGES_DB_PATH")
	set(&c.Store.WhatsAppDB, "WHATSAPP_DB_PATH")
	set(&c.Server.SSEAddr, "WPPMCP_SSE_ADDR")
	set(&c.Log.Level, "WPPMCP_LOG_LEVEL")
	c.Bridge.BaseURL = strings.TrimRight(c.Bridge.BaseURL, "/")
}

// Socket returns the configured gRPC socket, or the default under BaseDir.
func (c *Config) Socket() string {
	if c.Server.SocketPath != "" {
		return c.Server.SocketPath
	}
	return paths.SocketPath()
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
