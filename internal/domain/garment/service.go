package garment

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/yanqian/ai-wardrobe/internal/domain/bgremoval"
	"github.com/yanqian/ai-wardrobe/internal/infra/llm"
	apperrors "github.com/yanqian/ai-wardrobe/pkg/errors"
	"github.com/yanqian/ai-wardrobe/pkg/util"
)

// BackgroundRemover strips the background from a raw photo.
type BackgroundRemover interface {
	Remove(ctx context.Context, image []byte, cfg bgremoval.BackendConfig) ([]byte, error)
}

// SemanticAnalyzer derives Semantics from a processed image.
type SemanticAnalyzer interface {
	Analyze(ctx context.Context, image []byte, model llm.ModelConfig) (Semantics, error)
}

// Service orchestrates the upload pipeline and wardrobe management.
type Service struct {
	cfg      Config
	repo     Repository
	storage  ImageStorage
	remover  BackgroundRemover
	analyzer SemanticAnalyzer
	logger   *slog.Logger
	newKey   func() string
}

// NewService constructs a Service.
func NewService(cfg Config, repo Repository, storage ImageStorage, remover BackgroundRemover, analyzer SemanticAnalyzer, logger *slog.Logger) *Service {
	if cfg.ImageURLPrefix == "" {
		cfg.ImageURLPrefix = "/api/v1/images/"
	}
	return &Service{
		cfg:      cfg,
		repo:     repo,
		storage:  storage,
		remover:  remover,
		analyzer: analyzer,
		logger:   logger.With("component", "garment.service"),
		newKey:   func() string { return uuid.NewString() + ".png" },
	}
}

// Upload removes the background, analyzes the garment, stores the PNG and persists the item.
// Nothing is written until analysis succeeds.
func (s *Service) Upload(ctx context.Context, req UploadRequest, bg bgremoval.BackendConfig, model llm.ModelConfig) (Item, error) {
	if len(req.Content) == 0 {
		return Item{}, apperrors.Wrap(apperrors.CodeInvalidInput, "image content cannot be empty", nil)
	}
	if s.cfg.MaxImageBytes > 0 && int64(len(req.Content)) > s.cfg.MaxImageBytes {
		return Item{}, apperrors.Wrap(apperrors.CodeInvalidInput, "image exceeds maximum allowed size", nil)
	}
	if mime := strings.TrimSpace(req.MimeType); mime != "" && !strings.HasPrefix(mime, "image/") {
		return Item{}, apperrors.Wrap(apperrors.CodeInvalidInput, "only image uploads are supported", nil)
	}

	processed, err := s.remover.Remove(ctx, req.Content, bg)
	if err != nil {
		return Item{}, err
	}
	sem, err := s.analyzer.Analyze(ctx, processed, model)
	if err != nil {
		return Item{}, err
	}

	key := s.newKey()
	if _, err := s.storage.Put(ctx, key, processed, "image/png"); err != nil {
		return Item{}, apperrors.Wrap(apperrors.CodeStorage, "failed to store processed image", err)
	}
	item, err := s.repo.Create(ctx, Item{Semantics: sem, ImageKey: key, CreatedAt: util.NowUTC()})
	if err != nil {
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			s.logger.Warn("orphaned image cleanup failed", "key", key, "error", delErr)
		}
		return Item{}, apperrors.Wrap(apperrors.CodeStorage, "failed to persist garment", err)
	}
	s.logger.Info("garment uploaded", "id", item.ID, "category", item.Category, "item", item.Item)
	return s.decorate(item), nil
}

// List returns every item, newest first.
func (s *Service) List(ctx context.Context) ([]Item, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, "failed to list wardrobe", err)
	}
	return s.decorateAll(items), nil
}

// Wardrobe returns the items grouped by category.
func (s *Service) Wardrobe(ctx context.Context) (Wardrobe, error) {
	items, err := s.List(ctx)
	if err != nil {
		return Wardrobe{}, err
	}
	out := Wardrobe{Tops: []Item{}, Bottoms: []Item{}, Shoes: []Item{}}
	for _, item := range items {
		switch item.Category {
		case CategoryTop:
			out.Tops = append(out.Tops, item)
		case CategoryBottom:
			out.Bottoms = append(out.Bottoms, item)
		case CategoryShoes:
			out.Shoes = append(out.Shoes, item)
		}
	}
	return out, nil
}

// ByCategory lists items of one category.
func (s *Service) ByCategory(ctx context.Context, category string) ([]Item, error) {
	cat := Category(strings.ToLower(strings.TrimSpace(category)))
	if !cat.Valid() {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "category must be top, bottom or shoes", nil)
	}
	items, err := s.repo.ListByCategory(ctx, cat)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, "failed to list wardrobe", err)
	}
	return s.decorateAll(items), nil
}

// Get fetches one item.
func (s *Service) Get(ctx context.Context, id int64) (Item, error) {
	item, ok, err := s.repo.Get(ctx, id)
	if err != nil {
		return Item{}, apperrors.Wrap(apperrors.CodeStorage, "failed to load garment", err)
	}
	if !ok {
		return Item{}, apperrors.Wrap(apperrors.CodeNotFound, "garment not found", nil)
	}
	return s.decorate(item), nil
}

// Update replaces the semantics of an item.
func (s *Service) Update(ctx context.Context, id int64, sem Semantics) (Item, error) {
	normalized, err := sem.Normalize()
	if err != nil {
		return Item{}, apperrors.Wrap(apperrors.CodeInvalidInput, err.Error(), nil)
	}
	item, ok, err := s.repo.Update(ctx, id, normalized)
	if err != nil {
		return Item{}, apperrors.Wrap(apperrors.CodeStorage, "failed to update garment", err)
	}
	if !ok {
		return Item{}, apperrors.Wrap(apperrors.CodeNotFound, "garment not found", nil)
	}
	return s.decorate(item), nil
}

// Delete removes an item and its stored image.
func (s *Service) Delete(ctx context.Context, id int64) error {
	item, ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeStorage, "failed to delete garment", err)
	}
	if !ok {
		return apperrors.Wrap(apperrors.CodeNotFound, "garment not found", nil)
	}
	if item.ImageKey != "" {
		if err := s.storage.Delete(ctx, item.ImageKey); err != nil {
			s.logger.Warn("image delete failed", "id", id, "key", item.ImageKey, "error", err)
		}
	}
	return nil
}

// Image opens a stored garment image.
func (s *Service) Image(ctx context.Context, key string) (io.ReadCloser, error) {
	key = strings.TrimSpace(key)
	if key == "" || strings.Contains(key, "/") || strings.Contains(key, "..") {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "invalid image key", nil)
	}
	rc, err := s.storage.Get(ctx, key)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeNotFound, "image not found", err)
	}
	return rc, nil
}

func (s *Service) decorate(item Item) Item {
	if item.ImageKey != "" {
		item.ImageURL = s.cfg.ImageURLPrefix + item.ImageKey
	}
	return item
}

func (s *Service) decorateAll(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, item := range items {
		out = append(out, s.decorate(item))
	}
	return out
}
