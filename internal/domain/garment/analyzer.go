package garment

import (
	"context"
	"encoding/base64"
	"log/slog"
	"strings"
	"time"

	"github.com/yanqian/ai-wardrobe/internal/infra/llm"
	"github.com/yanqian/ai-wardrobe/internal/infra/llm/chatgpt"
	apperrors "github.com/yanqian/ai-wardrobe/pkg/errors"
	"github.com/yanqian/ai-wardrobe/pkg/jsonextract"
	"github.com/yanqian/ai-wardrobe/pkg/util"
)

// DefaultPrompt asks the vision model for the garment semantics schema.
const DefaultPrompt = `You are a garment semantics assistant for a smart wardrobe, not an object detector.
Describe the clothing item in the image at the semantic level. Ignore pixels, position and background.
Return ONLY one JSON object, no explanation, using exactly this schema:
{
  "category": "top | bottom | shoes",
  "item": "concrete item name, e.g. T-shirt, jeans, sneakers",
  "style_semantics": ["style tags, e.g. casual, formal, sporty"],
  "season_semantics": ["spring", "summer", "autumn", "winter"],
  "usage_semantics": ["commute", "daily", "sport", "date"],
  "color_semantics": "color family, e.g. dark / light / neutral",
  "description": "one sentence summary"
}
Write free-text values in Simplified Chinese. If something cannot be determined, use "unknown".`

const maxVisionTokens = 1000

// Analyzer turns a background-free garment image into Semantics using a vision model.
type Analyzer struct {
	newClient llm.Factory
	prompt    string
	timeout   time.Duration
	logger    *slog.Logger
}

// NewAnalyzer wires the semantic analyzer.
func NewAnalyzer(cfg Config, factory llm.Factory, logger *slog.Logger) *Analyzer {
	prompt := strings.TrimSpace(cfg.Prompt)
	if prompt == "" {
		prompt = DefaultPrompt
	}
	timeout := cfg.VisionTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Analyzer{
		newClient: factory,
		prompt:    prompt,
		timeout:   timeout,
		logger:    logger.With("component", "garment.analyzer"),
	}
}

// Analyze sends the PNG image to the configured model and validates the reply.
func (a *Analyzer) Analyze(ctx context.Context, image []byte, model llm.ModelConfig) (Semantics, error) {
	if !model.Configured() {
		return Semantics{}, apperrors.Wrap(apperrors.CodeConfiguration, "model api key is not configured", nil)
	}
	if len(image) == 0 {
		return Semantics{}, apperrors.Wrap(apperrors.CodeInvalidInput, "image cannot be empty", nil)
	}
	client, err := a.newClient(ctx, model)
	if err != nil {
		return Semantics{}, apperrors.Wrap(apperrors.CodeConfiguration, "invalid model configuration", err)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	dataURI := "data:image/png;base64," + base64.StdEncoding.EncodeToString(image)
	completion, err := client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model: model.Model,
		Messages: []chatgpt.Message{{
			Role:  "user",
			Parts: []chatgpt.ContentPart{chatgpt.TextPart(a.prompt), chatgpt.ImagePart(dataURI)},
		}},
		MaxTokens: maxVisionTokens,
	})
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeUpstream) {
			return Semantics{}, err
		}
		return Semantics{}, apperrors.Wrap(apperrors.CodeUpstream, "vision request failed", err)
	}
	if usage := completion.TokenUsage(); !usage.IsZero() {
		a.logger.Info("vision analysis completed", "model", model.Model, "usage", usage)
	}

	content, _ := completion.FirstContent()
	raw, err := jsonextract.Extract(content)
	if err != nil {
		a.logger.Warn("vision reply carried no json", "model", model.Model, "reply", util.Truncate(content, util.DiagnosticLimit))
		return Semantics{}, err
	}
	sem, err := coerceSemantics(raw)
	if err != nil {
		return Semantics{}, apperrors.WithDetail(apperrors.CodeSemanticValidation, "model output failed validation", util.Truncate(string(raw), util.DiagnosticLimit), err)
	}
	return sem, nil
}
