// Package settings manages runtime credentials and model selection.
package settings

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yanqian/ai-wardrobe/internal/infra/llm"
	"github.com/yanqian/ai-wardrobe/internal/infra/llm/chatgpt"
	"github.com/yanqian/ai-wardrobe/internal/infra/removebg"
	apperrors "github.com/yanqian/ai-wardrobe/pkg/errors"
)

// CreditChecker reports the remaining remote background removal credits.
type CreditChecker interface {
	Credits(ctx context.Context, apiKey string) (removebg.Credits, error)
}

// Service reads and updates settings layered over static defaults.
type Service struct {
	defaults Settings
	store    Store
	models   llm.ModelLister
	credits  CreditChecker
	logger   *slog.Logger
}

// NewService wires the settings service. credits may be nil.
func NewService(defaults Settings, store Store, models llm.ModelLister, credits CreditChecker, logger *slog.Logger) *Service {
	return &Service{
		defaults: defaults,
		store:    store,
		models:   models,
		credits:  credits,
		logger:   logger.With("component", "settings.service"),
	}
}

// Current returns the stored settings or the defaults when nothing was saved.
func (s *Service) Current(ctx context.Context) (Settings, error) {
	stored, ok, err := s.store.Load(ctx)
	if err != nil {
		return Settings{}, apperrors.Wrap(apperrors.CodeStorage, "failed to load settings", err)
	}
	if !ok {
		return s.defaults, nil
	}
	return stored, nil
}

// Update applies a partial change and persists the result.
func (s *Service) Update(ctx context.Context, update Update) (Settings, error) {
	if update.BGRemovalMethod != nil {
		method := strings.TrimSpace(*update.BGRemovalMethod)
		if method != MethodLocal && method != MethodRemoveBG {
			return Settings{}, apperrors.Wrap(apperrors.CodeInvalidInput, "bg_removal_method must be local or removebg", nil)
		}
	}
	if update.Provider != nil {
		provider := strings.ToLower(strings.TrimSpace(*update.Provider))
		if provider != "" && provider != string(llm.ProviderOpenAI) && provider != string(llm.ProviderGemini) {
			return Settings{}, apperrors.Wrap(apperrors.CodeInvalidInput, "provider must be openai or gemini", nil)
		}
		update.Provider = &provider
	}
	if update.Temperature != nil && (*update.Temperature < 0 || *update.Temperature > 2) {
		return Settings{}, apperrors.Wrap(apperrors.CodeInvalidInput, "temperature must be between 0 and 2", nil)
	}

	current, err := s.Current(ctx)
	if err != nil {
		return Settings{}, err
	}
	next := update.apply(current)
	if err := s.store.Save(ctx, next); err != nil {
		return Settings{}, apperrors.Wrap(apperrors.CodeStorage, "failed to save settings", err)
	}
	s.logger.Info("settings updated", "provider", next.Provider, "model", next.Model, "bg_removal_method", next.BGRemovalMethod)
	return next, nil
}

// ListModels returns the models advertised by the configured endpoint.
func (s *Service) ListModels(ctx context.Context) ([]chatgpt.Model, error) {
	current, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	cfg := current.ModelConfig()
	if !cfg.Configured() {
		return nil, apperrors.Wrap(apperrors.CodeConfiguration, "model api key is not configured", nil)
	}
	models, err := s.models(ctx, cfg)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeUpstream) {
			return nil, err
		}
		return nil, apperrors.Wrap(apperrors.CodeUpstream, "failed to list models", err)
	}
	return models, nil
}

// TestConnection probes the model endpoint and, when configured, the remove.bg account.
// Failures are reported in the result rather than returned.
func (s *Service) TestConnection(ctx context.Context) (ConnectionReport, error) {
	current, err := s.Current(ctx)
	if err != nil {
		return ConnectionReport{}, err
	}
	if !current.ModelConfig().Configured() {
		return ConnectionReport{Message: "api key is not configured"}, nil
	}

	report := ConnectionReport{}
	models, err := s.ListModels(ctx)
	switch {
	case err != nil:
		report.Message = fmt.Sprintf("connection failed: %v", err)
	case len(models) == 0:
		report.Message = "connected but no models were listed, check the api base url"
	default:
		report.Success = true
		report.ModelCount = len(models)
		report.Message = fmt.Sprintf("connected, %d models available", len(models))
	}

	if s.credits != nil && current.RemoveBGAPIKey != "" {
		credits, err := s.credits.Credits(ctx, current.RemoveBGAPIKey)
		if err != nil {
			s.logger.Warn("remove.bg credit check failed", "error", err)
		} else {
			report.RemoveBGCredits = &credits
		}
	}
	return report, nil
}
