package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/yanqian/ai-wardrobe/internal/infra/llm/chatgpt"
	apperrors "github.com/yanqian/ai-wardrobe/pkg/errors"
	"github.com/yanqian/ai-wardrobe/pkg/util"
)

// Client adapts the Google GenAI SDK to the chat completion shape used by the domain.
type Client struct {
	client *genai.Client
}

// NewClient constructs a Gemini API client.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini api key cannot be empty")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  strings.TrimSpace(apiKey),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("init gemini client: %w", err)
	}
	return &Client{client: client}, nil
}

// CreateChatCompletion sends the request through GenerateContent.
func (c *Client) CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error) {
	var out chatgpt.ChatCompletionResponse
	contents, system, err := toContents(req.Messages)
	if err != nil {
		return out, err
	}
	cfg := &genai.GenerateContentConfig{SystemInstruction: system}
	if req.Temperature > 0 {
		temp := req.Temperature
		cfg.Temperature = &temp
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}

	result, err := c.client.Models.GenerateContent(ctx, req.Model, contents, cfg)
	if err != nil {
		return out, upstreamError("gemini generate content", err)
	}
	if result.PromptFeedback != nil && result.PromptFeedback.BlockReason != "" {
		return out, fmt.Errorf("gemini blocked prompt: %s", result.PromptFeedback.BlockReason)
	}

	out.Choices = append(out.Choices, struct {
		Message chatgpt.Message `json:"message"`
	}{Message: chatgpt.Message{Role: "assistant", Content: result.Text()}})
	if meta := result.UsageMetadata; meta != nil {
		out.Usage = &chatgpt.Usage{
			PromptTokens:     int(meta.PromptTokenCount),
			CompletionTokens: int(meta.CandidatesTokenCount),
			TotalTokens:      int(meta.TotalTokenCount),
		}
	}
	return out, nil
}

// ListModels returns the first page of models visible to the API key.
func (c *Client) ListModels(ctx context.Context) ([]chatgpt.Model, error) {
	page, err := c.client.Models.List(ctx, &genai.ListModelsConfig{})
	if err != nil {
		return nil, upstreamError("gemini list models", err)
	}
	models := make([]chatgpt.Model, 0, len(page.Items))
	for _, m := range page.Items {
		if m == nil {
			continue
		}
		id := strings.TrimPrefix(m.Name, "models/")
		name := m.DisplayName
		if name == "" {
			name = id
		}
		models = append(models, chatgpt.Model{ID: id, Name: name})
	}
	return models, nil
}

// upstreamError keeps the HTTP status and server message of an API failure.
func upstreamError(op string, err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apperrors.Upstream(op+" failed", apiErr.Code, util.Truncate(apiErr.Message, util.DiagnosticLimit))
	}
	return fmt.Errorf("%s: %w", op, err)
}

func toContents(messages []chatgpt.Message) ([]*genai.Content, *genai.Content, error) {
	var (
		contents []*genai.Content
		system   *genai.Content
	)
	for _, msg := range messages {
		parts, err := toParts(msg)
		if err != nil {
			return nil, nil, err
		}
		switch msg.Role {
		case "system":
			system = &genai.Content{Parts: parts}
		case "assistant":
			contents = append(contents, &genai.Content{Role: "model", Parts: parts})
		default:
			contents = append(contents, &genai.Content{Role: "user", Parts: parts})
		}
	}
	return contents, system, nil
}

func toParts(msg chatgpt.Message) ([]*genai.Part, error) {
	if len(msg.Parts) == 0 {
		return []*genai.Part{{Text: msg.Content}}, nil
	}
	parts := make([]*genai.Part, 0, len(msg.Parts))
	for _, part := range msg.Parts {
		switch {
		case part.ImageURL != nil:
			mime, data, err := decodeDataURI(part.ImageURL.URL)
			if err != nil {
				return nil, err
			}
			parts = append(parts, &genai.Part{InlineData: &genai.Blob{MIMEType: mime, Data: data}})
		default:
			parts = append(parts, &genai.Part{Text: part.Text})
		}
	}
	return parts, nil
}

// decodeDataURI splits "data:<mime>;base64,<payload>".
func decodeDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, errors.New("gemini client only supports inline data images")
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return "", nil, errors.New("malformed data uri")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data uri: %w", err)
	}
	return strings.TrimSuffix(header, ";base64"), data, nil
}
