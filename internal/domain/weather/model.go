package weather

import (
	"context"
	"strings"
	"time"
)

// Reading is one observation of current conditions. Temperatures are in °C.
type Reading struct {
	Temperature float64 `json:"temperature"`
	FeelsLike   float64 `json:"feelsLike"`
	Condition   string  `json:"condition"`
	Icon        string  `json:"icon"`
	Humidity    float64 `json:"humidity"`
	WindDir     string  `json:"windDir"`
	WindScale   string  `json:"windScale"`
	Location    string  `json:"location"`
	ObsTime     string  `json:"obsTime"`
	Simulated   bool    `json:"simulated,omitempty"`
}

// City is a location search hit.
type City struct {
	Name    string `json:"name"`
	ID      string `json:"id"`
	Adm1    string `json:"adm1"`
	Adm2    string `json:"adm2"`
	Country string `json:"country"`
	Lat     string `json:"lat"`
	Lon     string `json:"lon"`
}

// Credentials authenticate against the weather provider.
type Credentials struct {
	APIKey  string
	APIHost string
}

// Configured reports whether an API key is present.
func (c Credentials) Configured() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// Provider fetches live weather data.
type Provider interface {
	Now(ctx context.Context, creds Credentials, location string) (Reading, error)
	LookupCity(ctx context.Context, creds Credentials, query string, limit int) ([]City, error)
}

// Cache stores recent readings keyed by location.
type Cache interface {
	Get(ctx context.Context, location string) (Reading, bool, error)
	Set(ctx context.Context, location string, reading Reading, ttl time.Duration) error
}

// Config controls provider access.
type Config struct {
	DefaultLocation string
	Timeout         time.Duration
	CacheTTL        time.Duration
}
