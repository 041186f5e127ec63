// Package bgremoval selects and falls back between background removal backends.
package bgremoval

import (
	"context"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/yanqian/ai-wardrobe/pkg/errors"
)

// Backend names a background removal implementation.
type Backend string

const (
	BackendLocal  Backend = "local"
	BackendRemote Backend = "remote"
)

// ParseBackend maps configuration values onto a backend. Anything unrecognised is local.
func ParseBackend(value string) Backend {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "remote", "removebg", "remove.bg":
		return BackendRemote
	default:
		return BackendLocal
	}
}

// BackendConfig is the per-call selection input.
type BackendConfig struct {
	Preferred    Backend
	RemoteAPIKey string
	// RequireRemote surfaces remote configuration failures instead of falling back.
	RequireRemote bool
}

// LocalRemover runs in process without network access.
type LocalRemover interface {
	Remove(ctx context.Context, image []byte) ([]byte, error)
}

// RemoteRemover calls a hosted background removal API.
type RemoteRemover interface {
	Remove(ctx context.Context, image []byte, apiKey string) ([]byte, error)
}

// Config tunes the selector.
type Config struct {
	RemoteTimeout time.Duration
}

type strategy struct {
	backend Backend
	run     func(ctx context.Context, image []byte) ([]byte, error)
}

// Service produces a background-free PNG from an arbitrary image.
type Service struct {
	local         LocalRemover
	remote        RemoteRemover
	remoteTimeout time.Duration
	logger        *slog.Logger
}

// NewService wires the selector.
func NewService(cfg Config, local LocalRemover, remote RemoteRemover, logger *slog.Logger) *Service {
	timeout := cfg.RemoteTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Service{
		local:         local,
		remote:        remote,
		remoteTimeout: timeout,
		logger:        logger.With("component", "bgremoval.service"),
	}
}

// Remove tries each strategy in order. Only the last failure is terminal.
func (s *Service) Remove(ctx context.Context, image []byte, cfg BackendConfig) ([]byte, error) {
	if len(image) == 0 {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "image cannot be empty", nil)
	}
	strategies, err := s.plan(cfg)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for i, st := range strategies {
		out, err := st.run(ctx, image)
		if err == nil {
			if i > 0 {
				s.logger.Info("background removed by fallback backend", "backend", st.backend)
			}
			return out, nil
		}
		lastErr = err
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, apperrors.Wrap(apperrors.CodeBackgroundRemoval, "background removal cancelled", ctxErr)
		}
		if st.backend == BackendRemote && cfg.RequireRemote && apperrors.IsCode(err, apperrors.CodeConfiguration) {
			return nil, apperrors.Wrap(apperrors.CodeBackgroundRemoval, "remote background removal is misconfigured", err)
		}
		if i < len(strategies)-1 {
			s.logger.Warn("background removal backend failed, falling back",
				"backend", st.backend,
				"next", strategies[i+1].backend,
				"error", err,
			)
		}
	}
	return nil, apperrors.Wrap(apperrors.CodeBackgroundRemoval, "background removal failed", lastErr)
}

func (s *Service) plan(cfg BackendConfig) ([]strategy, error) {
	local := strategy{backend: BackendLocal, run: s.local.Remove}
	if cfg.Preferred != BackendRemote || s.remote == nil {
		return []strategy{local}, nil
	}
	key := strings.TrimSpace(cfg.RemoteAPIKey)
	if key == "" {
		missing := apperrors.Wrap(apperrors.CodeConfiguration, "remote background removal api key is not configured", nil)
		if cfg.RequireRemote {
			return nil, apperrors.Wrap(apperrors.CodeBackgroundRemoval, "remote background removal is misconfigured", missing)
		}
		s.logger.Warn("remote background removal preferred without api key, using local backend")
		return []strategy{local}, nil
	}
	remote := strategy{
		backend: BackendRemote,
		run: func(ctx context.Context, image []byte) ([]byte, error) {
			ctx, cancel := context.WithTimeout(ctx, s.remoteTimeout)
			defer cancel()
			return s.remote.Remove(ctx, image, key)
		},
	}
	return []strategy{remote, local}, nil
}
