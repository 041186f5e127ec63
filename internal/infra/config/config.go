package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP              HTTPConfig              `yaml:"http"`
	LLM               LLMConfig               `yaml:"llm"`
	BackgroundRemoval BackgroundRemovalConfig `yaml:"backgroundRemoval"`
	Weather           WeatherConfig           `yaml:"weather"`
	Wardrobe          WardrobeConfig          `yaml:"wardrobe"`
	Storage           StorageConfig           `yaml:"storage"`
	Valkey            ValkeyConfig            `yaml:"valkey"`
	Settings          SettingsConfig          `yaml:"settings"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// LLMConfig holds the default model settings used until a user saves their own.
type LLMConfig struct {
	Provider      string        `yaml:"provider"`
	APIKey        string        `yaml:"apiKey"`
	BaseURL       string        `yaml:"baseUrl"`
	Model         string        `yaml:"model"`
	Temperature   float32       `yaml:"temperature"`
	VisionTimeout time.Duration `yaml:"visionTimeout"`
	TextTimeout   time.Duration `yaml:"textTimeout"`
}

// BackgroundRemovalConfig selects and tunes the cutout backends.
type BackgroundRemovalConfig struct {
	Method        string        `yaml:"method"`
	APIKey        string        `yaml:"apiKey"`
	RequireRemote bool          `yaml:"requireRemote"`
	BaseURL       string        `yaml:"baseUrl"`
	Timeout       time.Duration `yaml:"timeout"`
	MaxDimension  int           `yaml:"maxDimension"`
}

// WeatherConfig configures the QWeather client and reading cache.
type WeatherConfig struct {
	APIKey          string        `yaml:"apiKey"`
	APIHost         string        `yaml:"apiHost"`
	DefaultLocation string        `yaml:"defaultLocation"`
	Timeout         time.Duration `yaml:"timeout"`
	CacheTTL        time.Duration `yaml:"cacheTtl"`
}

// WardrobeConfig controls uploads and item persistence.
type WardrobeConfig struct {
	MaxImageBytes int64          `yaml:"maxImageBytes"`
	Postgres      PostgresConfig `yaml:"postgres"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// StorageConfig selects where garment images live.
type StorageConfig struct {
	R2 R2Config `yaml:"r2"`
}

// R2Config holds S3-compatible object storage credentials. An empty endpoint keeps images in memory.
type R2Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
}

// ValkeyConfig contains connection information for the cache and settings store.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Prefix  string `yaml:"prefix"`
}

// SettingsConfig protects persisted runtime settings.
type SettingsConfig struct {
	EncryptionSecret string `yaml:"encryptionSecret"`
}

// Load reads configuration from a YAML file and environment variables. Variables from a
// .env file (or ENV_FILE) fill in whatever the process environment does not set.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func loadDotEnv() error {
	path := os.Getenv("ENV_FILE")
	if path == "" {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setBool := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" {
			*dst = v == "1" || strings.EqualFold(v, "true")
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil {
				*dst = parsed
			}
		}
	}
	setInt32 := func(key string, dst *int32) {
		if v := os.Getenv(key); v != "" {
			if parsed, err := strconv.ParseInt(v, 10, 32); err == nil {
				*dst = int32(parsed)
			}
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if v := os.Getenv(key); v != "" {
			if parsed, err := time.ParseDuration(v); err == nil {
				*dst = parsed
			}
		}
	}

	setString("HTTP_ADDRESS", &cfg.HTTP.Address)
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	setBool("HTTP_RATE_LIMIT_ENABLED", &cfg.HTTP.RateLimit.Enabled)
	setInt("HTTP_RATE_LIMIT_RPM", &cfg.HTTP.RateLimit.RequestsPerMinute)
	setInt("HTTP_RATE_LIMIT_BURST", &cfg.HTTP.RateLimit.Burst)

	setString("LLM_PROVIDER", &cfg.LLM.Provider)
	setString("LLM_API_KEY", &cfg.LLM.APIKey)
	setString("LLM_BASE_URL", &cfg.LLM.BaseURL)
	setString("LLM_MODEL", &cfg.LLM.Model)
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}
	setDuration("LLM_VISION_TIMEOUT", &cfg.LLM.VisionTimeout)
	setDuration("LLM_TEXT_TIMEOUT", &cfg.LLM.TextTimeout)

	setString("BG_REMOVAL_METHOD", &cfg.BackgroundRemoval.Method)
	setString("REMOVEBG_API_KEY", &cfg.BackgroundRemoval.APIKey)
	setBool("BG_REMOVAL_REQUIRE_REMOTE", &cfg.BackgroundRemoval.RequireRemote)
	setString("REMOVEBG_BASE_URL", &cfg.BackgroundRemoval.BaseURL)
	setDuration("BG_REMOVAL_TIMEOUT", &cfg.BackgroundRemoval.Timeout)
	setInt("BG_REMOVAL_MAX_DIMENSION", &cfg.BackgroundRemoval.MaxDimension)

	setString("QWEATHER_API_KEY", &cfg.Weather.APIKey)
	setString("QWEATHER_API_HOST", &cfg.Weather.APIHost)
	setString("WEATHER_DEFAULT_LOCATION", &cfg.Weather.DefaultLocation)
	setDuration("WEATHER_TIMEOUT", &cfg.Weather.Timeout)
	setDuration("WEATHER_CACHE_TTL", &cfg.Weather.CacheTTL)

	if v := os.Getenv("WARDROBE_MAX_IMAGE_BYTES"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Wardrobe.MaxImageBytes = parsed
		}
	}
	setString("WARDROBE_POSTGRES_DSN", &cfg.Wardrobe.Postgres.DSN)
	setInt32("WARDROBE_POSTGRES_MAX_CONNS", &cfg.Wardrobe.Postgres.MaxConns)
	setInt32("WARDROBE_POSTGRES_MIN_CONNS", &cfg.Wardrobe.Postgres.MinConns)

	setString("R2_ENDPOINT", &cfg.Storage.R2.Endpoint)
	setString("R2_ACCESS_KEY", &cfg.Storage.R2.AccessKey)
	setString("R2_SECRET_KEY", &cfg.Storage.R2.SecretKey)
	setString("R2_BUCKET", &cfg.Storage.R2.Bucket)
	setString("R2_REGION", &cfg.Storage.R2.Region)

	setBool("VALKEY_ENABLED", &cfg.Valkey.Enabled)
	setString("VALKEY_ADDR", &cfg.Valkey.Addr)
	setString("VALKEY_PREFIX", &cfg.Valkey.Prefix)

	setString("SETTINGS_ENCRYPTION_SECRET", &cfg.Settings.EncryptionSecret)
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:     ":8080",
			ReadTimeout: 30 * time.Second,
			// Uploads chain background removal and vision analysis.
			WriteTimeout: 150 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
			AllowedOrigins: []string{
				"http://localhost:5173",
				"http://127.0.0.1:5173",
			},
		},
		LLM: LLMConfig{
			Provider:      "openai",
			BaseURL:       "https://api.openai.com/v1",
			Model:         "gpt-4o-mini",
			Temperature:   0.7,
			VisionTimeout: 60 * time.Second,
			TextTimeout:   30 * time.Second,
		},
		BackgroundRemoval: BackgroundRemovalConfig{
			Method:       "local",
			BaseURL:      "https://api.remove.bg/v1.0",
			Timeout:      60 * time.Second,
			MaxDimension: 1024,
		},
		Weather: WeatherConfig{
			DefaultLocation: "101020100",
			Timeout:         10 * time.Second,
			CacheTTL:        10 * time.Minute,
		},
		Wardrobe: WardrobeConfig{
			MaxImageBytes: 10 << 20,
			Postgres: PostgresConfig{
				MaxConns: 4,
			},
		},
		Storage: StorageConfig{
			R2: R2Config{
				Bucket: "wardrobe",
				Region: "auto",
			},
		},
		Valkey: ValkeyConfig{
			Prefix: "wardrobe",
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return errors.New("llm.temperature must be between 0 and 2")
	}
	if c.LLM.VisionTimeout <= 0 || c.LLM.TextTimeout <= 0 {
		return errors.New("llm timeouts must be positive")
	}
	switch strings.ToLower(strings.TrimSpace(c.BackgroundRemoval.Method)) {
	case "local", "removebg":
	default:
		return fmt.Errorf("backgroundRemoval.method %q must be local or removebg", c.BackgroundRemoval.Method)
	}
	if c.BackgroundRemoval.Timeout <= 0 {
		return errors.New("backgroundRemoval.timeout must be positive")
	}
	if c.BackgroundRemoval.MaxDimension <= 0 {
		return errors.New("backgroundRemoval.maxDimension must be positive")
	}
	if c.Weather.Timeout <= 0 {
		return errors.New("weather.timeout must be positive")
	}
	if c.Weather.CacheTTL < 0 {
		return errors.New("weather.cacheTtl cannot be negative")
	}
	if strings.TrimSpace(c.Weather.DefaultLocation) == "" {
		return errors.New("weather.defaultLocation cannot be empty")
	}
	if c.Wardrobe.MaxImageBytes <= 0 {
		return errors.New("wardrobe.maxImageBytes must be positive")
	}
	if c.Storage.R2.Endpoint != "" && (c.Storage.R2.AccessKey == "" || c.Storage.R2.SecretKey == "" || c.Storage.R2.Bucket == "") {
		return errors.New("storage.r2 requires accessKey, secretKey and bucket when endpoint is set")
	}
	if c.Valkey.Enabled {
		if strings.TrimSpace(c.Valkey.Addr) == "" {
			return errors.New("valkey.addr cannot be empty when valkey is enabled")
		}
		if strings.TrimSpace(c.Settings.EncryptionSecret) == "" {
			return errors.New("settings.encryptionSecret is required when valkey is enabled")
		}
	}
	return nil
}
