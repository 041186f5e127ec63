package chatgpt

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/ai-wardrobe/pkg/errors"
)

func TestNormalizeBaseURL(t *testing.T) {
	tests := map[string]string{
		"":                         defaultBaseURL,
		"https://x.example":        "https://x.example/v1",
		"https://x.example/":       "https://x.example/v1",
		"https://x.example/v1":     "https://x.example/v1",
		"https://x.example/v1/":    "https://x.example/v1",
		" https://x.example/api  ": "https://x.example/api/v1",
	}
	for in, want := range tests {
		require.Equal(t, want, NormalizeBaseURL(in), in)
	}
}

func TestMessageMarshalMultimodal(t *testing.T) {
	msg := Message{Role: "user", Parts: []ContentPart{TextPart("describe"), ImagePart("data:image/png;base64,AAAA")}}
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	require.JSONEq(t, `{"role":"user","content":[{"type":"text","text":"describe"},{"type":"image_url","image_url":{"url":"data:image/png;base64,AAAA"}}]}`, string(data))

	plain, err := json.Marshal(Message{Role: "system", Content: "be brief"})
	require.NoError(t, err)
	require.JSONEq(t, `{"role":"system","content":"be brief"}`, string(plain))
}

func TestMessageUnmarshalArrayContent(t *testing.T) {
	var msg Message
	require.NoError(t, json.Unmarshal([]byte(`{"role":"assistant","content":[{"type":"text","text":"a"},{"type":"text","text":"b"}]}`), &msg))
	require.Equal(t, "ab", msg.Content)
}

func TestCreateChatCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		var req map[string]any
		require.NoError(t, json.Unmarshal(body, &req))
		require.Equal(t, "vision-model", req["model"])
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":" hello "}}],"usage":{"prompt_tokens":3,"completion_tokens":1,"total_tokens":4}}`))
	}))
	defer server.Close()

	client, err := NewClient("sk-test", server.URL, time.Second)
	require.NoError(t, err)
	resp, err := client.CreateChatCompletion(context.Background(), ChatCompletionRequest{
		Model:    "vision-model",
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	content, ok := resp.FirstContent()
	require.True(t, ok)
	require.Equal(t, "hello", content)
	require.Equal(t, 4, resp.TokenUsage().TotalTokens)
}

func TestCreateChatCompletionUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"overloaded"}`))
	}))
	defer server.Close()

	client, err := NewClient("sk-test", server.URL+"/v1/", time.Second)
	require.NoError(t, err)
	_, err = client.CreateChatCompletion(context.Background(), ChatCompletionRequest{Model: "m"})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeUpstream))
	require.Equal(t, http.StatusServiceUnavailable, apperrors.StatusOf(err))
	require.NotContains(t, err.Error(), "sk-test")
}

func TestListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/models", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[{"id":"gpt-4o"},{"id":"gemini-flash","name":"Gemini Flash"}]}`))
	}))
	defer server.Close()

	client, err := NewClient("sk-test", server.URL, time.Second)
	require.NoError(t, err)
	models, err := client.ListModels(context.Background())
	require.NoError(t, err)
	require.Equal(t, []Model{{ID: "gpt-4o", Name: "gpt-4o"}, {ID: "gemini-flash", Name: "Gemini Flash"}}, models)
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient("  ", "", time.Second)
	require.Error(t, err)
}
