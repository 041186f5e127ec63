package settings

import (
	"context"
	"strings"

	"github.com/yanqian/ai-wardrobe/internal/domain/bgremoval"
	"github.com/yanqian/ai-wardrobe/internal/domain/weather"
	"github.com/yanqian/ai-wardrobe/internal/infra/llm"
	"github.com/yanqian/ai-wardrobe/internal/infra/removebg"
	"github.com/yanqian/ai-wardrobe/pkg/util"
)

// Removal method values accepted from clients.
const (
	MethodLocal    = "local"
	MethodRemoveBG = "removebg"
)

// Settings is the runtime configuration a user can change without a restart.
type Settings struct {
	Provider        string  `json:"provider"`
	APIBase         string  `json:"api_base"`
	APIKey          string  `json:"api_key"`
	Model           string  `json:"model"`
	Temperature     float32 `json:"temperature"`
	RemoveBGAPIKey  string  `json:"removebg_api_key"`
	BGRemovalMethod string  `json:"bg_removal_method"`
	RequireRemote   bool    `json:"require_remote"`
	QWeatherAPIKey  string  `json:"qweather_api_key"`
	QWeatherAPIHost string  `json:"qweather_api_host"`
}

// ModelConfig is the per-call model configuration.
func (s Settings) ModelConfig() llm.ModelConfig {
	return llm.ModelConfig{
		Provider:    llm.ParseProvider(s.Provider),
		BaseURL:     s.APIBase,
		APIKey:      s.APIKey,
		Model:       s.Model,
		Temperature: s.Temperature,
	}
}

// BackendConfig is the per-call background removal selection.
func (s Settings) BackendConfig() bgremoval.BackendConfig {
	return bgremoval.BackendConfig{
		Preferred:     bgremoval.ParseBackend(s.BGRemovalMethod),
		RemoteAPIKey:  s.RemoveBGAPIKey,
		RequireRemote: s.RequireRemote,
	}
}

// WeatherCredentials are the weather provider credentials.
func (s Settings) WeatherCredentials() weather.Credentials {
	return weather.Credentials{APIKey: s.QWeatherAPIKey, APIHost: s.QWeatherAPIHost}
}

// Masked is the client-facing view with secrets hidden.
type Masked struct {
	Provider             string `json:"provider"`
	APIBase              string `json:"api_base"`
	APIKeyMasked         string `json:"api_key_masked"`
	HasAPIKey            bool   `json:"has_api_key"`
	Model                string `json:"model"`
	RemoveBGAPIKeyMasked string `json:"removebg_api_key_masked"`
	HasRemoveBGKey       bool   `json:"has_removebg_key"`
	BGRemovalMethod      string `json:"bg_removal_method"`
	RequireRemote        bool   `json:"require_remote"`
	QWeatherAPIKeyMasked string `json:"qweather_api_key_masked"`
	HasQWeatherKey       bool   `json:"has_qweather_key"`
	QWeatherAPIHost      string `json:"qweather_api_host"`
}

// Mask hides every secret.
func (s Settings) Mask() Masked {
	return Masked{
		Provider:             s.Provider,
		APIBase:              s.APIBase,
		APIKeyMasked:         util.MaskSecret(s.APIKey),
		HasAPIKey:            s.APIKey != "",
		Model:                s.Model,
		RemoveBGAPIKeyMasked: util.MaskSecret(s.RemoveBGAPIKey),
		HasRemoveBGKey:       s.RemoveBGAPIKey != "",
		BGRemovalMethod:      s.BGRemovalMethod,
		RequireRemote:        s.RequireRemote,
		QWeatherAPIKeyMasked: util.MaskSecret(s.QWeatherAPIKey),
		HasQWeatherKey:       s.QWeatherAPIKey != "",
		QWeatherAPIHost:      s.QWeatherAPIHost,
	}
}

// Update is a partial change. Nil fields are left untouched.
type Update struct {
	Provider        *string  `json:"provider"`
	APIBase         *string  `json:"api_base"`
	APIKey          *string  `json:"api_key"`
	Model           *string  `json:"model"`
	Temperature     *float32 `json:"temperature"`
	RemoveBGAPIKey  *string  `json:"removebg_api_key"`
	BGRemovalMethod *string  `json:"bg_removal_method"`
	RequireRemote   *bool    `json:"require_remote"`
	QWeatherAPIKey  *string  `json:"qweather_api_key"`
	QWeatherAPIHost *string  `json:"qweather_api_host"`
}

func (u Update) apply(s Settings) Settings {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&s.Provider, u.Provider)
	set(&s.APIBase, u.APIBase)
	set(&s.APIKey, u.APIKey)
	set(&s.Model, u.Model)
	set(&s.RemoveBGAPIKey, u.RemoveBGAPIKey)
	set(&s.BGRemovalMethod, u.BGRemovalMethod)
	set(&s.QWeatherAPIKey, u.QWeatherAPIKey)
	set(&s.QWeatherAPIHost, u.QWeatherAPIHost)
	if u.Temperature != nil {
		s.Temperature = *u.Temperature
	}
	if u.RequireRemote != nil {
		s.RequireRemote = *u.RequireRemote
	}
	return s
}

// Store persists the settings document.
type Store interface {
	Load(ctx context.Context) (Settings, bool, error)
	Save(ctx context.Context, s Settings) error
}

// ConnectionReport is the result of a connectivity probe.
type ConnectionReport struct {
	Success         bool              `json:"success"`
	Message         string            `json:"message"`
	ModelCount      int               `json:"model_count,omitempty"`
	RemoveBGCredits *removebg.Credits `json:"removebg_credits,omitempty"`
}
