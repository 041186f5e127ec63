// Package weather resolves current conditions with a simulated fallback.
package weather

import (
	"context"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/yanqian/ai-wardrobe/pkg/errors"
	"github.com/yanqian/ai-wardrobe/pkg/util"
)

const (
	// DefaultLocation is Shanghai.
	DefaultLocation = "101020100"

	maxCityResults = 20
)

// Service answers weather queries.
type Service struct {
	cfg      Config
	provider Provider
	cache    Cache
	logger   *slog.Logger
	now      func() time.Time
}

// NewService wires the weather service. cache may be nil.
func NewService(cfg Config, provider Provider, cache Cache, logger *slog.Logger) *Service {
	if strings.TrimSpace(cfg.DefaultLocation) == "" {
		cfg.DefaultLocation = DefaultLocation
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Service{
		cfg:      cfg,
		provider: provider,
		cache:    cache,
		logger:   logger.With("component", "weather.service"),
		now:      util.NowUTC,
	}
}

// Current returns the reading for location. Provider failures degrade to a simulated reading
// so callers always get a value.
func (s *Service) Current(ctx context.Context, creds Credentials, location string) Reading {
	location = strings.TrimSpace(location)
	if location == "" {
		location = s.cfg.DefaultLocation
	}
	if !creds.Configured() {
		s.logger.Warn("weather api key not configured, using simulated reading", "location", location)
		return s.simulated(location)
	}
	if cached, ok := s.fromCache(ctx, location); ok {
		return cached
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	reading, err := s.provider.Now(callCtx, creds, location)
	if err != nil {
		s.logger.Warn("weather lookup failed, using simulated reading", "location", location, "error", err)
		return s.simulated(location)
	}
	reading.Location = location
	if s.cache != nil && s.cfg.CacheTTL > 0 {
		if err := s.cache.Set(ctx, location, reading, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("weather cache write failed", "location", location, "error", err)
		}
	}
	return reading
}

// SearchCities looks up locations by keyword, falling back to the built-in city list.
func (s *Service) SearchCities(ctx context.Context, creds Credentials, query string, limit int) ([]City, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "query cannot be empty", nil)
	}
	if limit < 1 || limit > maxCityResults {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "limit must be between 1 and 20", nil)
	}
	if creds.Configured() {
		callCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
		cities, err := s.provider.LookupCity(callCtx, creds, query, limit)
		cancel()
		if err == nil && len(cities) > 0 {
			return cities, nil
		}
		if err != nil {
			s.logger.Warn("city lookup failed, using built-in list", "query", query, "error", err)
		}
	}
	cities := searchBuiltin(query, limit)
	if len(cities) == 0 {
		return nil, apperrors.Wrap(apperrors.CodeNotFound, "no matching city", nil)
	}
	return cities, nil
}

func (s *Service) fromCache(ctx context.Context, location string) (Reading, bool) {
	if s.cache == nil || s.cfg.CacheTTL <= 0 {
		return Reading{}, false
	}
	reading, ok, err := s.cache.Get(ctx, location)
	if err != nil {
		s.logger.Warn("weather cache read failed", "location", location, "error", err)
		return Reading{}, false
	}
	return reading, ok
}

func (s *Service) simulated(location string) Reading {
	return Reading{
		Temperature: 20,
		FeelsLike:   22,
		Condition:   "晴",
		Icon:        "100",
		Humidity:    60,
		WindDir:     "南风",
		WindScale:   "2",
		Location:    location,
		ObsTime:     util.FormatObsTime(s.now()),
		Simulated:   true,
	}
}
