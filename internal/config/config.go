package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultTablePath     = "table.txt"
	DefaultMatchDistance = 2
	DefaultMaxDistance   = 2
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "json"
	DefaultHTTPPort      = 8080
	DefaultAuthHeader    = "x-api-key"
)

// Config is the top-level configuration shared by unitconv and
// unitconv-server. Fields map 1:1 to config.example.yaml.
type Config struct {
	Table    TableConfig    `yaml:"table"`
	Resolver ResolverConfig `yaml:"resolver"`
	Log      LogConfig      `yaml:"log"`
	Server   ServerConfig   `yaml:"server"`
}

// TableConfig controls where the equivalence table comes from and how it
// is parsed.
type TableConfig struct {
	// Path is the equivalence table file.
	Path string `yaml:"path"`

	// Strict aborts loading on the first malformed line instead of skipping it.
	Strict bool `yaml:"strict"`

	// MatchDistance is the edit distance tolerated when a unit mentioned
	// without an abbreviation is matched against earlier mentions.
	MatchDistance int `yaml:"match_distance"`

	// Watch rebuilds the graph whenever the table file changes (server only).
	Watch bool `yaml:"watch"`
}

// ResolverConfig controls query token resolution.
type ResolverConfig struct {
	// MaxDistance is the edit distance tolerated for query tokens longer
	// than three characters. 0 disables fuzzy matching.
	MaxDistance int `yaml:"max_distance"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	// Level is one of: debug | info | warn | error.
	Level string `yaml:"level"`

	// Format is one of: json | text.
	Format string `yaml:"format"`
}

// ServerConfig holds unitconv-server settings.
type ServerConfig struct {
	// HTTPPort is the port the REST API, WebSocket endpoint and /metrics
	// listen on.
	HTTPPort int `yaml:"http_port"`

	// Auth configures API key checking on /api/ and /ws/ routes.
	Auth AuthConfig `yaml:"auth"`
}

// AuthConfig controls client authentication on the server.
type AuthConfig struct {
	// Mode is one of: apikey | none.
	Mode string `yaml:"mode"`

	// KeyEnv is the name of the environment variable that holds the
	// expected API key. Used when Mode == "apikey".
	KeyEnv string `yaml:"key_env"`

	// Header is the HTTP header to read the key from. Defaults to x-api-key.
	Header string `yaml:"header"`
}

// Key returns the expected API key resolved from the environment.
// Returns empty string if KeyEnv is unset or the variable is not found.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// EffectiveHeader returns the configured header name, or the default.
func (a AuthConfig) EffectiveHeader() string {
	if a.Header != "" {
		return a.Header
	}
	return DefaultAuthHeader
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config pre-populated with default values. It is also
// what the CLI uses when no config file is given.
func Default() *Config {
	return &Config{
		Table: TableConfig{
			Path:          DefaultTablePath,
			MatchDistance: DefaultMatchDistance,
		},
		Resolver: ResolverConfig{
			MaxDistance: DefaultMaxDistance,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Server: ServerConfig{
			HTTPPort: DefaultHTTPPort,
		},
	}
}

// Validate checks required fields and enums. Flag overrides are applied
// before calling it, so it is exported.
func (cfg *Config) Validate() error {
	if strings.TrimSpace(cfg.Table.Path) == "" {
		return fmt.Errorf("table.path is required")
	}
	if cfg.Table.MatchDistance < 0 {
		return fmt.Errorf("table.match_distance must not be negative")
	}
	if cfg.Resolver.MaxDistance < 0 {
		return fmt.Errorf("resolver.max_distance must not be negative")
	}
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q unknown: want debug|info|warn|error", cfg.Log.Level)
	}
	switch cfg.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format %q unknown: want json|text", cfg.Log.Format)
	}
	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", cfg.Server.HTTPPort)
	}
	switch cfg.Server.Auth.Mode {
	case "apikey", "none", "":
	default:
		return fmt.Errorf("server.auth.mode %q unknown: want apikey|none", cfg.Server.Auth.Mode)
	}
	if cfg.Server.Auth.Mode == "apikey" && cfg.Server.Auth.KeyEnv == "" {
		return fmt.Errorf("server.auth.key_env is required when mode is apikey")
	}
	return nil
}
