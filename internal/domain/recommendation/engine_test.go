package recommendation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/ai-wardrobe/internal/domain/garment"
	"github.com/yanqian/ai-wardrobe/internal/domain/weather"
	"github.com/yanqian/ai-wardrobe/internal/infra/llm"
	"github.com/yanqian/ai-wardrobe/internal/infra/llm/chatgpt"
	apperrors "github.com/yanqian/ai-wardrobe/pkg/errors"
)

func TestRecommendWithoutCredentials(t *testing.T) {
	reading := weather.Reading{Temperature: 22, FeelsLike: 24, Condition: "晴", Humidity: 50}
	items := []garment.Item{
		item(1, garment.CategoryTop, garment.SeasonSummer),
		item(2, garment.CategoryTop, garment.SeasonWinter),
		item(3, garment.CategoryBottom, garment.SeasonWinter),
		item(4, garment.CategoryBottom, garment.SeasonSpring),
	}
	chat := &stubChat{}
	engine := newTestEngine(chat, &fixedPicker{})

	result := engine.Recommend(context.Background(), reading, items, llm.ModelConfig{})
	require.Equal(t, feelsLikeBands[3].detailed, result.RecommendationText)
	require.NotNil(t, result.SuggestedTop)
	require.Equal(t, int64(1), result.SuggestedTop.ID)
	require.NotNil(t, result.SuggestedBottom)
	require.Contains(t, []int64{3, 4}, result.SuggestedBottom.ID)
	require.Equal(t, 24.0, result.Weather.FeelsLike)
	require.Zero(t, chat.calls)
}

func TestRecommendEmptyWardrobe(t *testing.T) {
	engine := newTestEngine(&stubChat{}, &fixedPicker{})

	result := engine.Recommend(context.Background(), weather.Reading{Temperature: 5, FeelsLike: 2}, nil, llm.ModelConfig{})
	require.Nil(t, result.SuggestedTop)
	require.Nil(t, result.SuggestedBottom)
	require.NotEmpty(t, result.RecommendationText)
}

func TestRecommendUsesModelText(t *testing.T) {
	chat := &stubChat{reply: "```markdown\n**穿短袖**\n```"}
	engine := newTestEngine(chat, &fixedPicker{})
	reading := weather.Reading{Temperature: 12, FeelsLike: 11, Condition: "多云", WindDir: "北风", WindScale: "3"}
	items := []garment.Item{item(1, garment.CategoryTop, garment.SeasonAutumn)}

	result := engine.Recommend(context.Background(), reading, items, llm.ModelConfig{APIKey: "sk", Model: "gpt-test"})
	require.Equal(t, "**穿短袖**", result.RecommendationText)
	require.Equal(t, 1, chat.calls)
	require.True(t, chat.hadDeadline)
	require.Len(t, chat.last.Messages, 2)
	require.Equal(t, "system", chat.last.Messages[0].Role)
	require.Contains(t, chat.last.Messages[1].Content, "1 件上衣和 0 件裤子")
	require.Contains(t, chat.last.Messages[1].Content, "spring, autumn")
	require.InDelta(t, 0.7, chat.last.Temperature, 1e-6)
	require.Nil(t, result.SuggestedBottom)
}

func TestRecommendFallsBackOnModelFailure(t *testing.T) {
	reading := weather.Reading{Temperature: 3, FeelsLike: -2, Condition: "小雪"}
	cases := map[string]*stubChat{
		"upstream":     {err: apperrors.Upstream("chat completion failed", 500, "")},
		"network":      {err: errors.New("connection refused")},
		"empty":        {reply: "   "},
		"empty fence":  {reply: "```\n```"},
		"bare fences":  {reply: "``````"},
		"tagged fence": {reply: "```markdown\n```"},
	}
	for name, chat := range cases {
		t.Run(name, func(t *testing.T) {
			engine := newTestEngine(chat, &fixedPicker{})
			result := engine.Recommend(context.Background(), reading, nil, llm.ModelConfig{APIKey: "sk"})
			require.Equal(t, BasicText(reading), result.RecommendationText)
		})
	}
}

func TestRecommendFactoryFailureFallsBack(t *testing.T) {
	engine := NewEngine(Config{}, func(context.Context, llm.ModelConfig) (llm.ChatClient, error) {
		return nil, errors.New("bad config")
	}, &fixedPicker{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	reading := weather.Reading{FeelsLike: 15}
	result := engine.Recommend(context.Background(), reading, nil, llm.ModelConfig{APIKey: "sk"})
	require.Equal(t, BasicText(reading), result.RecommendationText)
}

func TestPickerIndexIsHonoured(t *testing.T) {
	items := []garment.Item{
		item(1, garment.CategoryTop, garment.SeasonSummer),
		item(2, garment.CategoryTop, garment.SeasonSummer),
		item(3, garment.CategoryTop, garment.SeasonSummer),
	}
	engine := newTestEngine(&stubChat{}, &fixedPicker{index: 2})

	result := engine.Recommend(context.Background(), weather.Reading{Temperature: 25}, items, llm.ModelConfig{})
	require.Equal(t, int64(3), result.SuggestedTop.ID)
}

func TestNewPickerConcurrentUse(t *testing.T) {
	picker := NewPicker(42)
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				n := picker.Intn(5)
				if n < 0 || n >= 5 {
					panic("index out of range")
				}
			}
		}()
	}
	for i := 0; i < 8; i++ {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("picker goroutines did not finish")
		}
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(weather.Reading{Temperature: 22.5, FeelsLike: 24, Condition: "晴", Humidity: 40, WindDir: "东风", WindScale: "2"}, []string{"summer"}, 3, 2)
	require.Contains(t, prompt, "温度：22.5°C")
	require.Contains(t, prompt, "湿度：40%")
	require.Contains(t, prompt, "东风 2级")
	require.Contains(t, prompt, "3 件上衣和 2 件裤子")
}

func newTestEngine(chat *stubChat, picker Picker) *Engine {
	return NewEngine(Config{}, func(context.Context, llm.ModelConfig) (llm.ChatClient, error) {
		return chat, nil
	}, picker, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type fixedPicker struct {
	index int
}

func (p *fixedPicker) Intn(n int) int {
	if p.index >= n {
		return n - 1
	}
	return p.index
}

type stubChat struct {
	reply       string
	err         error
	calls       int
	hadDeadline bool
	last        chatgpt.ChatCompletionRequest
}

func (s *stubChat) CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error) {
	s.calls++
	s.last = req
	_, s.hadDeadline = ctx.Deadline()
	if s.err != nil {
		return chatgpt.ChatCompletionResponse{}, s.err
	}
	return chatgpt.ChatCompletionResponse{
		Choices: []struct {
			Message chatgpt.Message `json:"message"`
		}{
			{Message: chatgpt.Message{Role: "assistant", Content: s.reply}},
		},
	}, nil
}
