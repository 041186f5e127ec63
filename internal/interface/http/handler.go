package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/ai-wardrobe/internal/domain/bgremoval"
	"github.com/yanqian/ai-wardrobe/internal/domain/garment"
	"github.com/yanqian/ai-wardrobe/internal/domain/recommendation"
	"github.com/yanqian/ai-wardrobe/internal/domain/settings"
	"github.com/yanqian/ai-wardrobe/internal/domain/weather"
	"github.com/yanqian/ai-wardrobe/internal/infra/llm"
	"github.com/yanqian/ai-wardrobe/internal/infra/llm/chatgpt"
)

const defaultCityLimit = 10

// WardrobeService is the garment pipeline and CRUD surface.
type WardrobeService interface {
	Upload(ctx context.Context, req garment.UploadRequest, bg bgremoval.BackendConfig, model llm.ModelConfig) (garment.Item, error)
	List(ctx context.Context) ([]garment.Item, error)
	Wardrobe(ctx context.Context) (garment.Wardrobe, error)
	ByCategory(ctx context.Context, category string) ([]garment.Item, error)
	Get(ctx context.Context, id int64) (garment.Item, error)
	Update(ctx context.Context, id int64, sem garment.Semantics) (garment.Item, error)
	Delete(ctx context.Context, id int64) error
	Image(ctx context.Context, key string) (io.ReadCloser, error)
}

// WeatherService resolves readings and cities.
type WeatherService interface {
	Current(ctx context.Context, creds weather.Credentials, location string) weather.Reading
	SearchCities(ctx context.Context, creds weather.Credentials, query string, limit int) ([]weather.City, error)
}

// Recommender composes outfit recommendations.
type Recommender interface {
	Recommend(ctx context.Context, reading weather.Reading, items []garment.Item, model llm.ModelConfig) recommendation.Result
}

// SettingsService manages runtime settings.
type SettingsService interface {
	Current(ctx context.Context) (settings.Settings, error)
	Update(ctx context.Context, update settings.Update) (settings.Settings, error)
	ListModels(ctx context.Context) ([]chatgpt.Model, error)
	TestConnection(ctx context.Context) (settings.ConnectionReport, error)
}

// Handler wires the HTTP transport to domain services.
type Handler struct {
	wardrobe    WardrobeService
	weather     WeatherService
	recommender Recommender
	settings    SettingsService
	logger      *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(wardrobe WardrobeService, weatherSvc WeatherService, recommender Recommender, settingsSvc SettingsService, logger *slog.Logger) *Handler {
	return &Handler{
		wardrobe:    wardrobe,
		weather:     weatherSvc,
		recommender: recommender,
		settings:    settingsSvc,
		logger:      logger.With("component", "http.handler"),
	}
}

// Upload accepts a multipart garment photo in the "file" field.
func (h *Handler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "multipart field \"file\" is required", err))
		return
	}
	file, err := header.Open()
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	defer file.Close()
	content, err := io.ReadAll(file)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	current, ok := h.currentSettings(c)
	if !ok {
		return
	}
	item, err := h.wardrobe.Upload(c.Request.Context(), garment.UploadRequest{
		Filename: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Content:  content,
	}, current.BackendConfig(), current.ModelConfig())
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, item)
}

// Wardrobe lists every item grouped by category.
func (h *Handler) Wardrobe(c *gin.Context) {
	wardrobe, err := h.wardrobe.Wardrobe(c.Request.Context())
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, wardrobe)
}

// WardrobeCategory lists the items of one category.
func (h *Handler) WardrobeCategory(c *gin.Context) {
	items, err := h.wardrobe.ByCategory(c.Request.Context(), c.Param("category"))
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetClothes returns one item.
func (h *Handler) GetClothes(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	item, err := h.wardrobe.Get(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, item)
}

// UpdateClothes replaces the semantic attributes of an item.
func (h *Handler) UpdateClothes(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var sem garment.Semantics
	if err := c.ShouldBindJSON(&sem); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	item, err := h.wardrobe.Update(c.Request.Context(), id, sem)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteClothes removes an item and its image.
func (h *Handler) DeleteClothes(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.wardrobe.Delete(c.Request.Context(), id); err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "deleted": true})
}

// Image streams a stored garment PNG.
func (h *Handler) Image(c *gin.Context) {
	body, err := h.wardrobe.Image(c.Request.Context(), c.Param("key"))
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	defer body.Close()
	c.DataFromReader(http.StatusOK, -1, "image/png", body, map[string]string{
		"Cache-Control": "public, max-age=86400",
	})
}

// Weather returns the current reading for the location query parameter.
func (h *Handler) Weather(c *gin.Context) {
	current, ok := h.currentSettings(c)
	if !ok {
		return
	}
	reading := h.weather.Current(c.Request.Context(), current.WeatherCredentials(), c.Query("location"))
	c.JSON(http.StatusOK, reading)
}

// WeatherSuggestion returns a short clothing hint for the current weather.
func (h *Handler) WeatherSuggestion(c *gin.Context) {
	current, ok := h.currentSettings(c)
	if !ok {
		return
	}
	reading := h.weather.Current(c.Request.Context(), current.WeatherCredentials(), c.Query("location"))
	c.JSON(http.StatusOK, recommendation.Suggest(reading))
}

// Cities searches locations by keyword.
func (h *Handler) Cities(c *gin.Context) {
	limit := defaultCityLimit
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "limit must be an integer", err))
			return
		}
		limit = parsed
	}
	current, ok := h.currentSettings(c)
	if !ok {
		return
	}
	cities, err := h.weather.SearchCities(c.Request.Context(), current.WeatherCredentials(), c.Query("query"), limit)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"cities": cities})
}

// Recommendation composes an outfit for the weather at the location query parameter.
func (h *Handler) Recommendation(c *gin.Context) {
	ctx := c.Request.Context()
	current, ok := h.currentSettings(c)
	if !ok {
		return
	}
	items, err := h.wardrobe.List(ctx)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	reading := h.weather.Current(ctx, current.WeatherCredentials(), c.Query("location"))
	c.JSON(http.StatusOK, h.recommender.Recommend(ctx, reading, items, current.ModelConfig()))
}

// GetConfig returns the runtime settings with secrets masked.
func (h *Handler) GetConfig(c *gin.Context) {
	current, ok := h.currentSettings(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, current.Mask())
}

// UpdateConfig applies a partial settings change.
func (h *Handler) UpdateConfig(c *gin.Context) {
	var update settings.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	next, err := h.settings.Update(c.Request.Context(), update)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, next.Mask())
}

// Models lists the models offered by the configured endpoint.
func (h *Handler) Models(c *gin.Context) {
	models, err := h.settings.ListModels(c.Request.Context())
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"models": models})
}

// TestConnection probes the configured model endpoint.
func (h *Handler) TestConnection(c *gin.Context) {
	report, err := h.settings.TestConnection(c.Request.Context())
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) currentSettings(c *gin.Context) (settings.Settings, bool) {
	current, err := h.settings.Current(c.Request.Context())
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return settings.Settings{}, false
	}
	return current, true
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "id must be a positive integer", err))
		return 0, false
	}
	return id, true
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
