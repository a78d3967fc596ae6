package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override; "__" separates levels,
// so TOOLCHAT_GEMINI__API_KEY sets gemini.api_key.
const EnvPrefix = "TOOLCHAT_"

// DefaultPath is read when no explicit config file is given. It is optional.
const DefaultPath = "config.yaml"

// ErrMissingAPIKey is returned by Validate when no Gemini key is configured.
var ErrMissingAPIKey = errors.New("gemini API key is required (set TOOLCHAT_GEMINI__API_KEY, GEMINI_API_KEY or GOOGLE_API_KEY)")

// apiKeyFallbacks are consulted in order when gemini.api_key is unset.
var apiKeyFallbacks = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Gemini    GeminiConfig    `koanf:"gemini"`
	Chat      ChatConfig      `koanf:"chat"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Log       LogConfig       `koanf:"log"`
}

type ServerConfig struct {
	Port            int           `koanf:"port"`
	RequestTimeout  time.Duration `koanf:"request_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	// RequestsPerSecond limits inbound chat requests; zero disables the limit.
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	Burst             int     `koanf:"burst"`
}

type GeminiConfig struct {
	APIKey            string        `koanf:"api_key"`
	Model             string        `koanf:"model"`
	CallTimeout       time.Duration `koanf:"call_timeout"`
	MaxRetries        int           `koanf:"max_retries"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	Burst             int           `koanf:"burst"`
	Temperature       float32       `koanf:"temperature"`
}

type ChatConfig struct {
	SystemInstruction string `koanf:"system_instruction"`
	ToolCallPolicy    string `koanf:"tool_call_policy"` // first, all
	MaxHistoryTokens  int    `koanf:"max_history_tokens"`
	Locale            string `koanf:"locale"` // empty: taken from the host environment
}

type CatalogConfig struct {
	Type string `koanf:"type"` // memory, sqlite
	Path string `koanf:"path"`
}

type TelemetryConfig struct {
	Enabled bool `koanf:"enabled"`
}

type LogConfig struct {
	Level string `koanf:"level"` // debug, info, warn, error
}

var defaults = map[string]any{
	"server.port":                8080,
	"server.request_timeout":     "60s",
	"server.shutdown_timeout":    "15s",
	"server.requests_per_second": 0,
	"server.burst":               10,
	"gemini.model":               "gemini-2.5-flash",
	"gemini.call_timeout":        "30s",
	"gemini.max_retries":         1,
	"gemini.requests_per_second": 0,
	"gemini.burst":               1,
	"gemini.temperature":         0.7,
	"chat.tool_call_policy":      "first",
	"chat.max_history_tokens":    0,
	"catalog.type":               "memory",
	"catalog.path":               "catalog.db",
	"telemetry.enabled":          false,
	"log.level":                  "info",
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Load reads path (DefaultPath when empty, where a missing file is fine),
// then TOOLCHAT_ environment overrides, then defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if explicit || !os.IsNotExist(err) {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	for key, value := range defaults {
		if !k.Exists(key) {
			k.Set(key, value)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.Gemini.APIKey = substituteEnvVars(cfg.Gemini.APIKey)
	if cfg.Gemini.APIKey == "" {
		for _, name := range apiKeyFallbacks {
			if v := os.Getenv(name); v != "" {
				cfg.Gemini.APIKey = v
				break
			}
		}
	}

	return &cfg, nil
}

// Validate fails fast on settings the service cannot start with.
func (c *Config) Validate() error {
	if c.Gemini.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.Gemini.Model == "" {
		return errors.New("gemini.model must not be empty")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", c.Server.Port)
	}
	if c.Gemini.MaxRetries < 0 {
		return fmt.Errorf("gemini.max_retries must not be negative")
	}

	switch c.Chat.ToolCallPolicy {
	case "first", "all":
	default:
		return fmt.Errorf("chat.tool_call_policy %q must be \"first\" or \"all\"", c.Chat.ToolCallPolicy)
	}

	switch c.Catalog.Type {
	case "memory":
	case "sqlite":
		if c.Catalog.Path == "" {
			return errors.New("catalog.path is required for the sqlite catalog")
		}
	default:
		return fmt.Errorf("catalog.type %q must be \"memory\" or \"sqlite\"", c.Catalog.Type)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	return nil
}

func substituteEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}
