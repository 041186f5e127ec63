// Package recommendation composes weather-conditioned outfit suggestions.
package recommendation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yanqian/ai-wardrobe/internal/domain/garment"
	"github.com/yanqian/ai-wardrobe/internal/domain/weather"
	"github.com/yanqian/ai-wardrobe/internal/infra/llm"
	"github.com/yanqian/ai-wardrobe/internal/infra/llm/chatgpt"
)

const (
	systemPersona      = "你是一位专业的时尚穿搭顾问，擅长根据天气提供实用的穿搭建议。"
	defaultTemperature = 0.7
)

// Engine builds recommendations. It never fails: model problems fall back to BasicText.
type Engine struct {
	newClient   llm.Factory
	picker      Picker
	timeout     time.Duration
	temperature float32
	logger      *slog.Logger
}

// NewEngine wires the engine.
func NewEngine(cfg Config, factory llm.Factory, picker Picker, logger *slog.Logger) *Engine {
	timeout := cfg.TextTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	temperature := cfg.Temperature
	if temperature <= 0 {
		temperature = defaultTemperature
	}
	if picker == nil {
		picker = NewPicker(time.Now().UnixNano())
	}
	return &Engine{
		newClient:   factory,
		picker:      picker,
		timeout:     timeout,
		temperature: temperature,
		logger:      logger.With("component", "recommendation.engine"),
	}
}

// Recommend filters the wardrobe for the reading and picks one top and one bottom.
func (e *Engine) Recommend(ctx context.Context, reading weather.Reading, items []garment.Item, model llm.ModelConfig) Result {
	seasons := DeriveSeasons(reading.Temperature)
	tops := filterBySeason(items, garment.CategoryTop, seasons)
	bottoms := filterBySeason(items, garment.CategoryBottom, seasons)

	return Result{
		Weather:            snapshotOf(reading),
		RecommendationText: e.text(ctx, reading, seasons, len(tops), len(bottoms), model),
		SuggestedTop:       e.pick(tops),
		SuggestedBottom:    e.pick(bottoms),
	}
}

func (e *Engine) pick(items []garment.Item) *garment.Item {
	if len(items) == 0 {
		return nil
	}
	chosen := items[e.picker.Intn(len(items))]
	return &chosen
}

func (e *Engine) text(ctx context.Context, reading weather.Reading, seasons []string, tops, bottoms int, model llm.ModelConfig) string {
	if !model.Configured() {
		return BasicText(reading)
	}
	client, err := e.newClient(ctx, model)
	if err != nil {
		e.logger.Warn("recommendation model unavailable, using rule-based text", "error", err)
		return BasicText(reading)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	temperature := e.temperature
	if model.Temperature > 0 {
		temperature = model.Temperature
	}
	resp, err := client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model: model.Model,
		Messages: []chatgpt.Message{
			{Role: "system", Content: systemPersona},
			{Role: "user", Content: BuildPrompt(reading, seasons, tops, bottoms)},
		},
		Temperature: temperature,
	})
	if err != nil {
		e.logger.Warn("recommendation text generation failed, using rule-based text", "model", model.Model, "error", err)
		return BasicText(reading)
	}
	if usage := resp.TokenUsage(); !usage.IsZero() {
		e.logger.Info("recommendation text generated", "model", model.Model, "usage", usage)
	}
	content, ok := resp.FirstContent()
	if !ok {
		e.logger.Warn("recommendation model returned empty text, using rule-based text", "model", model.Model)
		return BasicText(reading)
	}
	text := stripMarkdownFence(content)
	if text == "" {
		e.logger.Warn("recommendation model returned an empty code block, using rule-based text", "model", model.Model)
		return BasicText(reading)
	}
	return text
}

// BuildPrompt renders the user prompt for the text model.
func BuildPrompt(r weather.Reading, seasons []string, tops, bottoms int) string {
	var sb strings.Builder
	sb.WriteString("请根据以下天气信息，为用户提供穿搭建议：\n\n")
	sb.WriteString("当前天气：\n")
	fmt.Fprintf(&sb, "- 温度：%g°C\n", r.Temperature)
	fmt.Fprintf(&sb, "- 体感温度：%g°C\n", r.FeelsLike)
	fmt.Fprintf(&sb, "- 天气状况：%s\n", r.Condition)
	fmt.Fprintf(&sb, "- 湿度：%g%%\n", r.Humidity)
	fmt.Fprintf(&sb, "- 风向风力：%s %s级\n\n", r.WindDir, r.WindScale)
	fmt.Fprintf(&sb, "适合的季节：%s\n\n", strings.Join(seasons, ", "))
	fmt.Fprintf(&sb, "用户衣橱中有 %d 件上衣和 %d 件裤子可供选择。\n\n", tops, bottoms)
	sb.WriteString("请生成一段友好、实用的穿搭推荐（150词左右），使用 Markdown 格式：\n")
	sb.WriteString("1. **针对当前天气的穿搭建议**（使用粗体强调重点衣物）\n")
	sb.WriteString("2. **需要注意的事项**（如防晒、保暖、防雨等）\n")
	sb.WriteString("3. **穿搭风格建议**\n\n")
	sb.WriteString("请直接输出 Markdown 文本，不要包含代码块标记。")
	return sb.String()
}

func stripMarkdownFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") || !strings.HasSuffix(trimmed, "```") || len(trimmed) < 6 {
		return trimmed
	}
	inner := strings.TrimSuffix(trimmed, "```")
	if idx := strings.IndexByte(inner, '\n'); idx >= 0 {
		inner = inner[idx+1:]
	} else {
		inner = strings.TrimPrefix(inner, "```")
	}
	return strings.TrimSpace(inner)
}
