package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/ai-wardrobe/internal/domain/bgremoval"
	"github.com/yanqian/ai-wardrobe/internal/domain/garment"
	"github.com/yanqian/ai-wardrobe/internal/domain/recommendation"
	"github.com/yanqian/ai-wardrobe/internal/domain/settings"
	"github.com/yanqian/ai-wardrobe/internal/domain/weather"
	"github.com/yanqian/ai-wardrobe/internal/infra/config"
	"github.com/yanqian/ai-wardrobe/internal/infra/cutout"
	"github.com/yanqian/ai-wardrobe/internal/infra/imagestore"
	"github.com/yanqian/ai-wardrobe/internal/infra/llm"
	"github.com/yanqian/ai-wardrobe/internal/infra/removebg"
	"github.com/yanqian/ai-wardrobe/internal/infra/settingsstore"
	"github.com/yanqian/ai-wardrobe/internal/infra/wardroberepo"
	"github.com/yanqian/ai-wardrobe/internal/infra/weather/qweather"
	"github.com/yanqian/ai-wardrobe/internal/infra/weathercache"
)

func provideLLMFactory(cfg *config.Config) llm.Factory {
	timeout := cfg.LLM.VisionTimeout
	if cfg.LLM.TextTimeout > timeout {
		timeout = cfg.LLM.TextTimeout
	}
	return llm.NewFactory(timeout)
}

func provideModelLister(cfg *config.Config) llm.ModelLister {
	return llm.NewModelLister(cfg.LLM.TextTimeout)
}

func provideGarmentConfig(cfg *config.Config) garment.Config {
	return garment.Config{
		MaxImageBytes: cfg.Wardrobe.MaxImageBytes,
		VisionTimeout: cfg.LLM.VisionTimeout,
	}
}

func provideBackgroundRemovalConfig(cfg *config.Config) bgremoval.Config {
	return bgremoval.Config{RemoteTimeout: cfg.BackgroundRemoval.Timeout}
}

func provideCutoutRemover(cfg *config.Config) (*cutout.Remover, error) {
	cutoutCfg := cutout.DefaultConfig()
	cutoutCfg.MaxDimension = cfg.BackgroundRemoval.MaxDimension
	return cutout.NewRemover(cutoutCfg)
}

func provideRemoveBGClient(cfg *config.Config) *removebg.Client {
	return removebg.NewClient(cfg.BackgroundRemoval.BaseURL, cfg.BackgroundRemoval.Timeout)
}

func provideWeatherConfig(cfg *config.Config) weather.Config {
	return weather.Config{
		DefaultLocation: cfg.Weather.DefaultLocation,
		Timeout:         cfg.Weather.Timeout,
		CacheTTL:        cfg.Weather.CacheTTL,
	}
}

func provideQWeatherClient(cfg *config.Config) *qweather.Client {
	return qweather.NewClient(cfg.Weather.Timeout)
}

func provideRecommendationConfig(cfg *config.Config) recommendation.Config {
	return recommendation.Config{
		TextTimeout: cfg.LLM.TextTimeout,
		Temperature: cfg.LLM.Temperature,
	}
}

func providePicker() recommendation.Picker {
	return recommendation.NewPicker(time.Now().UnixNano())
}

// provideSettingsDefaults seeds runtime settings from the static config.
func provideSettingsDefaults(cfg *config.Config) settings.Settings {
	return settings.Settings{
		Provider:        cfg.LLM.Provider,
		APIBase:         cfg.LLM.BaseURL,
		APIKey:          cfg.LLM.APIKey,
		Model:           cfg.LLM.Model,
		Temperature:     cfg.LLM.Temperature,
		RemoveBGAPIKey:  cfg.BackgroundRemoval.APIKey,
		BGRemovalMethod: strings.ToLower(strings.TrimSpace(cfg.BackgroundRemoval.Method)),
		RequireRemote:   cfg.BackgroundRemoval.RequireRemote,
		QWeatherAPIKey:  cfg.Weather.APIKey,
		QWeatherAPIHost: cfg.Weather.APIHost,
	}
}

// provideValkeyClient returns nil when valkey is disabled or unreachable; dependants fall back to memory.
func provideValkeyClient(cfg *config.Config, logger *slog.Logger) valkey.Client {
	if !cfg.Valkey.Enabled {
		return nil
	}
	opt, err := buildValkeyOptions(cfg)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory", "error", err)
		return nil
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory", "error", err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory", "error", err)
		client.Close()
		return nil
	}
	logger.Info("valkey enabled", "addr", cfg.Valkey.Addr)
	return client
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	if strings.Contains(cfg.Valkey.Addr, "://") {
		return valkey.ParseURL(cfg.Valkey.Addr)
	}
	return valkey.ClientOption{InitAddress: []string{cfg.Valkey.Addr}}, nil
}

func provideWeatherCache(cfg *config.Config, client valkey.Client, logger *slog.Logger) weather.Cache {
	if client == nil {
		return weathercache.NewMemoryCache()
	}
	logger.Info("weather valkey cache enabled")
	return weathercache.NewValkeyCache(client, cfg.Valkey.Prefix)
}

func provideSettingsStore(cfg *config.Config, client valkey.Client, logger *slog.Logger) settings.Store {
	if client == nil {
		return settingsstore.NewMemoryStore()
	}
	store, err := settingsstore.NewValkeyStore(client, cfg.Valkey.Prefix, cfg.Settings.EncryptionSecret)
	if err != nil {
		logger.Error("failed to initialize valkey settings store, using memory store", "error", err)
		return settingsstore.NewMemoryStore()
	}
	logger.Info("settings valkey store enabled")
	return store
}

func provideWardrobeRepository(cfg *config.Config, logger *slog.Logger) garment.Repository {
	fallback := wardroberepo.NewMemoryRepository()
	dsn := strings.TrimSpace(cfg.Wardrobe.Postgres.DSN)
	if dsn == "" {
		logger.Info("wardrobe postgres dsn not set, using memory repository")
		return fallback
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repository", "error", err)
		return fallback
	}
	if cfg.Wardrobe.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Wardrobe.Postgres.MaxConns
	}
	if cfg.Wardrobe.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Wardrobe.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repository", "error", err)
		return fallback
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repository", "error", err)
		pool.Close()
		return fallback
	}
	repo := wardroberepo.NewPostgresRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Error("failed to create wardrobe schema, using memory repository", "error", err)
		pool.Close()
		return fallback
	}
	logger.Info("wardrobe postgres repository enabled")
	return repo
}

func provideImageStorage(cfg *config.Config, logger *slog.Logger) garment.ImageStorage {
	r2 := cfg.Storage.R2
	if strings.TrimSpace(r2.Endpoint) == "" {
		logger.Info("r2 endpoint not set, keeping images in memory")
		return imagestore.NewMemoryStorage()
	}
	storage, err := imagestore.NewR2Storage(r2.Endpoint, r2.AccessKey, r2.SecretKey, r2.Bucket, r2.Region, logger)
	if err != nil {
		logger.Error("failed to initialize r2 storage, keeping images in memory", "error", err)
		return imagestore.NewMemoryStorage()
	}
	logger.Info("r2 image storage enabled", "bucket", r2.Bucket)
	return storage
}
