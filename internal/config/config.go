package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/spigell/contest-guide/internal/secrets"
)

const (
	App     = "contest-guide"
	Service = "contest-guide-api"
	Version = "1.0.0"
)

type Mode string

const (
	ModeReal Mode = "real"
	ModeMock Mode = "mock"
)

type Config struct {
	Debug  bool          `mapstructure:"debug"`
	JSON   bool          `mapstructure:"json"`
	AI     *AIConfig     `mapstructure:"ai"`
	Server *ServerConfig `mapstructure:"server"`
}

type AIConfig struct {
	APIKey       string  `mapstructure:"api-key" json:"-"`
	APIKeyFile   string  `mapstructure:"api-key-file"`
	Model        string  `mapstructure:"model"`
	VisionModel  string  `mapstructure:"vision-model"`
	MaxTokens    int     `mapstructure:"max-tokens"`
	Temperature  float64 `mapstructure:"temperature"`
	Timeout      int     `mapstructure:"timeout"`
	MaxRetries   int     `mapstructure:"max-retries"`
	KeyPrefix    string  `mapstructure:"key-prefix"`
	KeyMinLength int     `mapstructure:"key-min-length"`
	MaxLogLength int     `mapstructure:"max-log-length"`
}

type ServerConfig struct {
	Port        int      `mapstructure:"port"`
	CORSOrigins []string `mapstructure:"cors-origins"`
	ServerIP    string   `mapstructure:"server-ip"`
}

var defaultCORSOrigins = []string{
	"http://localhost:5173",
	"http://localhost:3000",
	"http://127.0.0.1:5173",
	"http://contest-guide.ac.kr",
	"https://contest-guide.ac.kr",
}

var envBindings = map[string]string{
	"ai.api-key":          "GEMINI_API_KEY",
	"ai.api-key-file":     "GEMINI_API_KEY_FILE",
	"ai.model":            "GEMINI_MODEL",
	"ai.vision-model":     "GEMINI_VISION_MODEL",
	"ai.max-tokens":       "AI_MAX_TOKENS",
	"ai.temperature":      "AI_TEMPERATURE",
	"ai.timeout":          "API_TIMEOUT",
	"ai.max-retries":      "AI_MAX_RETRIES",
	"ai.key-prefix":       "AI_KEY_PREFIX",
	"ai.key-min-length":   "AI_KEY_MIN_LENGTH",
	"ai.max-log-length":   "AI_MAX_LOG_LENGTH",
	"server.port":         "PORT",
	"server.cors-origins": "CORS_ORIGINS",
	"server.server-ip":    "SERVER_IP",
}

// SetDefaults registers defaults and environment bindings on v.
func SetDefaults(v *viper.Viper) error {
	v.SetDefault("ai.model", "gemini-2.5-flash")
	v.SetDefault("ai.max-tokens", 4096)
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.timeout", 60)
	v.SetDefault("ai.max-retries", 2)
	v.SetDefault("ai.key-prefix", "AIza")
	v.SetDefault("ai.key-min-length", 20)
	v.SetDefault("ai.max-log-length", 200)
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.cors-origins", defaultCORSOrigins)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("binding %s environment variable: %w", env, err)
		}
	}
	return nil
}

// LoadDotEnv loads the first readable .env file. A missing file is not an error.
func LoadDotEnv(paths ...string) (string, error) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		err := godotenv.Load(path)
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("loading %s: %w", path, err)
		}
	}
	return "", nil
}

// Load unmarshals v into a Config and resolves the model credential.
func Load(v *viper.Viper) (*Config, error) {
	var cfg *Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.AI == nil {
		cfg.AI = &AIConfig{}
	}
	if cfg.Server == nil {
		cfg.Server = &ServerConfig{}
	}

	key, err := secrets.LoadOptional(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.AI.APIKey,
		File:  cfg.AI.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (check ai.api-key-file or GEMINI_API_KEY_FILE)", err)
	}
	cfg.AI.APIKey = key

	if strings.TrimSpace(cfg.AI.VisionModel) == "" {
		cfg.AI.VisionModel = cfg.AI.Model
	}

	return cfg, nil
}

// CredentialPlausible reports whether the key looks usable: non-empty, with
// the expected prefix and longer than the minimum length. It never contacts
// the provider.
func (c *AIConfig) CredentialPlausible() bool {
	if c == nil {
		return false
	}
	key := strings.TrimSpace(c.APIKey)
	return key != "" && strings.HasPrefix(key, c.KeyPrefix) && len(key) > c.KeyMinLength
}

// Mode is the configured operating mode. Individual requests may still fall
// back to mock at runtime.
func (c *AIConfig) Mode() Mode {
	if c.CredentialPlausible() {
		return ModeReal
	}
	return ModeMock
}

func (c *AIConfig) RequestTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// AllowedOrigins returns the CORS allow-list with the server IP origin appended.
func (c *ServerConfig) AllowedOrigins() []string {
	origins := make([]string, 0, len(c.CORSOrigins)+1)
	for _, o := range c.CORSOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if ip := strings.TrimSpace(c.ServerIP); ip != "" {
		origins = append(origins, "http://"+ip)
	}
	return origins
}

func (c *ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
