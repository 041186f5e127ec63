// Package qweather reads current conditions and city lookups from the QWeather API.
package qweather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yanqian/ai-wardrobe/internal/domain/weather"
	apperrors "github.com/yanqian/ai-wardrobe/pkg/errors"
	"github.com/yanqian/ai-wardrobe/pkg/util"
)

const defaultHost = "devapi.qweather.com"

// Client implements weather.Provider.
type Client struct {
	httpClient *http.Client
}

// NewClient builds an API client.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{httpClient: &http.Client{Timeout: timeout}}
}

// Now fetches the current observation for a LocationID or "lon,lat" pair.
func (c *Client) Now(ctx context.Context, creds weather.Credentials, location string) (weather.Reading, error) {
	params := url.Values{}
	params.Set("location", location)

	var raw nowResponse
	if err := c.get(ctx, creds, "/v7/weather/now", params, &raw); err != nil {
		return weather.Reading{}, err
	}
	if raw.Code != "200" {
		return weather.Reading{}, apperrors.Wrap(apperrors.CodeWeather, fmt.Sprintf("qweather returned code %s", raw.Code), nil)
	}

	temp, err := parseFloat("temp", raw.Now.Temp)
	if err != nil {
		return weather.Reading{}, err
	}
	feels, err := parseFloat("feelsLike", raw.Now.FeelsLike)
	if err != nil {
		return weather.Reading{}, err
	}
	humidity, err := parseFloat("humidity", raw.Now.Humidity)
	if err != nil {
		return weather.Reading{}, err
	}
	return weather.Reading{
		Temperature: temp,
		FeelsLike:   feels,
		Condition:   raw.Now.Text,
		Icon:        raw.Now.Icon,
		Humidity:    humidity,
		WindDir:     raw.Now.WindDir,
		WindScale:   raw.Now.WindScale,
		Location:    location,
		ObsTime:     raw.Now.ObsTime,
	}, nil
}

// LookupCity searches the GeoAPI for matching locations.
func (c *Client) LookupCity(ctx context.Context, creds weather.Credentials, query string, limit int) ([]weather.City, error) {
	params := url.Values{}
	params.Set("location", query)
	params.Set("number", strconv.Itoa(limit))
	params.Set("lang", "zh")

	var raw geoResponse
	if err := c.get(ctx, creds, "/geo/v2/city/lookup", params, &raw); err != nil {
		return nil, err
	}
	if raw.Code != "200" {
		return nil, apperrors.Wrap(apperrors.CodeWeather, fmt.Sprintf("qweather geo returned code %s", raw.Code), nil)
	}
	cities := make([]weather.City, 0, len(raw.Location))
	for _, loc := range raw.Location {
		cities = append(cities, weather.City{
			Name:    loc.Name,
			ID:      loc.ID,
			Adm1:    loc.Adm1,
			Adm2:    loc.Adm2,
			Country: loc.Country,
			Lat:     loc.Lat,
			Lon:     loc.Lon,
		})
	}
	return cities, nil
}

func (c *Client) get(ctx context.Context, creds weather.Credentials, path string, params url.Values, out any) error {
	endpoint := BaseURL(creds.APIHost) + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build qweather request: %w", err)
	}
	// Never put the key in the URL: transport errors echo it.
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(creds.APIKey))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("qweather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return apperrors.Upstream("qweather request failed", resp.StatusCode, util.Truncate(string(payload), util.DiagnosticLimit))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read qweather response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode qweather response: %w", err)
	}
	return nil
}

// BaseURL turns a configured API host into an absolute base URL.
func BaseURL(host string) string {
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	if host == "" {
		host = defaultHost
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}
	return host
}

func parseFloat(field, value string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeWeather, fmt.Sprintf("qweather field %s is not numeric", field), err)
	}
	return v, nil
}

type nowResponse struct {
	Code       string  `json:"code"`
	UpdateTime string  `json:"updateTime"`
	Now        nowData `json:"now"`
}

type nowData struct {
	ObsTime   string `json:"obsTime"`
	Temp      string `json:"temp"`
	FeelsLike string `json:"feelsLike"`
	Icon      string `json:"icon"`
	Text      string `json:"text"`
	WindDir   string `json:"windDir"`
	WindScale string `json:"windScale"`
	Humidity  string `json:"humidity"`
}

type geoResponse struct {
	Code     string        `json:"code"`
	Location []geoLocation `json:"location"`
}

type geoLocation struct {
	Name    string `json:"name"`
	ID      string `json:"id"`
	Lat     string `json:"lat"`
	Lon     string `json:"lon"`
	Adm2    string `json:"adm2"`
	Adm1    string `json:"adm1"`
	Country string `json:"country"`
}

var _ weather.Provider = (*Client)(nil)
