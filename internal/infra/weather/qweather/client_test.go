package qweather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/ai-wardrobe/internal/domain/weather"
	apperrors "github.com/yanqian/ai-wardrobe/pkg/errors"
)

func TestNow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v7/weather/now", r.URL.Path)
		require.Equal(t, "101010100", r.URL.Query().Get("location"))
		require.Empty(t, r.URL.Query().Get("key"))
		require.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"code":"200","updateTime":"2024-07-01T10:00+08:00","now":{"obsTime":"2024-07-01T09:50+08:00","temp":"22","feelsLike":"24","icon":"100","text":"晴","windDir":"东南风","windScale":"3","humidity":"55"}}`))
	}))
	defer srv.Close()

	reading, err := NewClient(time.Second).Now(context.Background(), weather.Credentials{APIKey: "key", APIHost: srv.URL}, "101010100")
	require.NoError(t, err)
	require.Equal(t, weather.Reading{
		Temperature: 22,
		FeelsLike:   24,
		Condition:   "晴",
		Icon:        "100",
		Humidity:    55,
		WindDir:     "东南风",
		WindScale:   "3",
		Location:    "101010100",
		ObsTime:     "2024-07-01T09:50+08:00",
	}, reading)
}

func TestNowErrors(t *testing.T) {
	cases := map[string]struct {
		status int
		body   string
		code   string
	}{
		"api code":    {status: http.StatusOK, body: `{"code":"401"}`, code: apperrors.CodeWeather},
		"bad number":  {status: http.StatusOK, body: `{"code":"200","now":{"temp":"n/a","feelsLike":"1","humidity":"1"}}`, code: apperrors.CodeWeather},
		"http status": {status: http.StatusUnauthorized, body: `denied`, code: apperrors.CodeUpstream},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := NewClient(time.Second).Now(context.Background(), weather.Credentials{APIKey: "key", APIHost: srv.URL}, "x")
			require.True(t, apperrors.IsCode(err, tc.code))
		})
	}
}

func TestTransportErrorOmitsKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	host := srv.URL
	srv.Close()

	_, err := NewClient(time.Second).Now(context.Background(), weather.Credentials{APIKey: "SUPERSECRETKEY123", APIHost: host}, "101020100")
	require.Error(t, err)
	require.Contains(t, err.Error(), "/v7/weather/now")
	require.NotContains(t, err.Error(), "SUPERSECRETKEY123")
}

func TestLookupCity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/geo/v2/city/lookup", r.URL.Path)
		require.Equal(t, "5", r.URL.Query().Get("number"))
		require.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"code":"200","location":[{"name":"北京","id":"101010100","lat":"39.90","lon":"116.40","adm2":"北京","adm1":"北京市","country":"中国"}]}`))
	}))
	defer srv.Close()

	cities, err := NewClient(time.Second).LookupCity(context.Background(), weather.Credentials{APIKey: "key", APIHost: srv.URL + "/"}, "bei", 5)
	require.NoError(t, err)
	require.Len(t, cities, 1)
	require.Equal(t, "101010100", cities[0].ID)
	require.Equal(t, "39.90", cities[0].Lat)
}

func TestBaseURL(t *testing.T) {
	require.Equal(t, "https://devapi.qweather.com", BaseURL(""))
	require.Equal(t, "https://api.qweather.com", BaseURL("api.qweather.com/"))
	require.Equal(t, "http://localhost:8080", BaseURL("http://localhost:8080"))
}
