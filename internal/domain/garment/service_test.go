package garment_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/ai-wardrobe/internal/domain/bgremoval"
	"github.com/yanqian/ai-wardrobe/internal/domain/garment"
	"github.com/yanqian/ai-wardrobe/internal/infra/imagestore"
	"github.com/yanqian/ai-wardrobe/internal/infra/llm"
	"github.com/yanqian/ai-wardrobe/internal/infra/wardroberepo"
	apperrors "github.com/yanqian/ai-wardrobe/pkg/errors"
)

func TestUploadPipeline(t *testing.T) {
	fx := newFixture()
	fx.analyzer.sem = garment.Semantics{Category: garment.CategoryTop, Item: "T恤", SeasonSemantics: []string{"summer"}}

	item, err := fx.svc.Upload(context.Background(), garment.UploadRequest{MimeType: "image/jpeg", Content: []byte("raw")},
		bgremoval.BackendConfig{Preferred: bgremoval.BackendLocal}, llm.ModelConfig{APIKey: "sk"})
	require.NoError(t, err)
	require.Equal(t, int64(1), item.ID)
	require.True(t, strings.HasPrefix(item.ImageURL, "/api/v1/images/"))
	require.True(t, strings.HasSuffix(item.ImageURL, ".png"))
	require.Equal(t, []byte("raw"), fx.remover.got)
	require.Equal(t, []byte("cutout"), fx.analyzer.got)

	key := strings.TrimPrefix(item.ImageURL, "/api/v1/images/")
	rc, err := fx.svc.Image(context.Background(), key)
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	require.Equal(t, "cutout", string(data))
}

func TestUploadValidation(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	_, err := fx.svc.Upload(ctx, garment.UploadRequest{}, bgremoval.BackendConfig{}, llm.ModelConfig{})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	_, err = fx.svc.Upload(ctx, garment.UploadRequest{MimeType: "text/plain", Content: []byte("x")}, bgremoval.BackendConfig{}, llm.ModelConfig{})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	_, err = fx.svc.Upload(ctx, garment.UploadRequest{MimeType: "image/png", Content: make([]byte, 2048)}, bgremoval.BackendConfig{}, llm.ModelConfig{})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
	require.Zero(t, fx.remover.calls)
}

func TestUploadAnalysisFailureStoresNothing(t *testing.T) {
	fx := newFixture()
	fx.analyzer.err = apperrors.Wrap(apperrors.CodeSemanticValidation, "bad", nil)

	_, err := fx.svc.Upload(context.Background(), garment.UploadRequest{MimeType: "image/png", Content: []byte("raw")},
		bgremoval.BackendConfig{}, llm.ModelConfig{APIKey: "sk"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeSemanticValidation))

	items, err := fx.svc.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestUploadRemovalFailurePropagates(t *testing.T) {
	fx := newFixture()
	fx.remover.err = apperrors.Wrap(apperrors.CodeBackgroundRemoval, "background removal failed", errors.New("boom"))

	_, err := fx.svc.Upload(context.Background(), garment.UploadRequest{Content: []byte("raw")}, bgremoval.BackendConfig{}, llm.ModelConfig{})
	require.True(t, apperrors.IsCode(err, apperrors.CodeBackgroundRemoval))
	require.Zero(t, fx.analyzer.calls)
}

func TestWardrobeCRUD(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	for _, sem := range []garment.Semantics{
		{Category: garment.CategoryTop, Item: "衬衫"},
		{Category: garment.CategoryBottom, Item: "西裤"},
		{Category: garment.CategoryShoes, Item: "皮鞋"},
	} {
		fx.analyzer.sem = sem
		_, err := fx.svc.Upload(ctx, garment.UploadRequest{Content: []byte("raw")}, bgremoval.BackendConfig{}, llm.ModelConfig{APIKey: "sk"})
		require.NoError(t, err)
	}

	wardrobe, err := fx.svc.Wardrobe(ctx)
	require.NoError(t, err)
	require.Len(t, wardrobe.Tops, 1)
	require.Len(t, wardrobe.Bottoms, 1)
	require.Len(t, wardrobe.Shoes, 1)

	shoes, err := fx.svc.ByCategory(ctx, "SHOES")
	require.NoError(t, err)
	require.Equal(t, "皮鞋", shoes[0].Item)

	_, err = fx.svc.ByCategory(ctx, "hats")
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	updated, err := fx.svc.Update(ctx, 1, garment.Semantics{Category: "上衣", Item: "亚麻衬衫", SeasonSemantics: []string{"夏"}})
	require.NoError(t, err)
	require.Equal(t, "亚麻衬衫", updated.Item)
	require.Equal(t, []string{garment.SeasonSummer}, updated.SeasonSemantics)

	_, err = fx.svc.Update(ctx, 1, garment.Semantics{Category: "hat"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	_, err = fx.svc.Update(ctx, 42, garment.Semantics{Category: garment.CategoryTop})
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	got, err := fx.svc.Get(ctx, 1)
	require.NoError(t, err)
	key := strings.TrimPrefix(got.ImageURL, "/api/v1/images/")

	require.NoError(t, fx.svc.Delete(ctx, 1))
	_, err = fx.svc.Get(ctx, 1)
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
	_, err = fx.svc.Image(ctx, key)
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	err = fx.svc.Delete(ctx, 1)
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestImageRejectsTraversal(t *testing.T) {
	fx := newFixture()
	_, err := fx.svc.Image(context.Background(), "../secret")
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

type fixture struct {
	svc      *garment.Service
	remover  *stubRemover
	analyzer *stubAnalyzer
}

func newFixture() fixture {
	remover := &stubRemover{out: []byte("cutout")}
	analyzer := &stubAnalyzer{sem: garment.Semantics{Category: garment.CategoryTop}}
	svc := garment.NewService(
		garment.Config{MaxImageBytes: 1024},
		wardroberepo.NewMemoryRepository(),
		imagestore.NewMemoryStorage(),
		remover,
		analyzer,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return fixture{svc: svc, remover: remover, analyzer: analyzer}
}

type stubRemover struct {
	out   []byte
	err   error
	got   []byte
	calls int
}

func (s *stubRemover) Remove(_ context.Context, image []byte, _ bgremoval.BackendConfig) ([]byte, error) {
	s.calls++
	s.got = image
	return s.out, s.err
}

type stubAnalyzer struct {
	sem   garment.Semantics
	err   error
	got   []byte
	calls int
}

func (s *stubAnalyzer) Analyze(_ context.Context, image []byte, _ llm.ModelConfig) (garment.Semantics, error) {
	s.calls++
	s.got = image
	if s.err != nil {
		return garment.Semantics{}, s.err
	}
	return s.sem.Normalize()
}
