package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nexxia-ai/reasonchain/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func completionBody(content string) string {
	body, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "test-model",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
		"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
	})
	return string(body)
}

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestChatCompletion_Success(t *testing.T) {
	var captured capturedRequest
	var authHeader string
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		authHeader = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, completionBody("ML is pattern learning from data..."))
	})

	model := NewModel("deepseek-chat", "secret-key", srv.URL).WithTemperature(0.7).WithMaxTokens(1000)
	msg, err := model.Call(context.Background(), []ai.Message{
		ai.SystemMessage{Role: ai.SystemRole, Content: "system text"},
		ai.UserMessage{Role: ai.UserRole, Content: "user text"},
	})

	require.NoError(t, err)
	assert.Equal(t, "ML is pattern learning from data...", msg.Content)
	assert.Equal(t, ai.AssistantRole, msg.Role)
	assert.Equal(t, "stop", msg.Response.FinishReason)
	assert.Equal(t, 15, msg.Response.Usage.TotalTokens)

	assert.Equal(t, "Bearer secret-key", authHeader)
	assert.Equal(t, "deepseek-chat", captured.Model)
	assert.Equal(t, 0.7, captured.Temperature)
	assert.Equal(t, 1000, captured.MaxTokens)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "system text", captured.Messages[0].Content)
	assert.Equal(t, "user", captured.Messages[1].Role)
	assert.Equal(t, "user text", captured.Messages[1].Content)
}

func TestChatCompletion_NonSuccessStatusIsNotRetried(t *testing.T) {
	var calls int32
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		io.WriteString(w, `{"error":{"message":"upstream overloaded","type":"server_error"}}`)
	})

	model := NewModel("gpt-3.5-turbo", "k", srv.URL)
	_, err := model.Call(context.Background(), []ai.Message{ai.UserMessage{Role: ai.UserRole, Content: "hi"}})

	require.Error(t, err)
	var statusErr ai.StatusError
	require.True(t, errors.As(err, &statusErr), "expected StatusError, got %T: %v", err, err)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.Contains(t, statusErr.ErrorMessage, "upstream overloaded")
	assert.False(t, errors.Is(err, ai.ErrTransport))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestChatCompletion_EmptyContent(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, completionBody("   "))
	})

	model := NewModel("gpt-3.5-turbo", "k", srv.URL)
	_, err := model.Call(context.Background(), []ai.Message{ai.UserMessage{Role: ai.UserRole, Content: "hi"}})
	assert.ErrorIs(t, err, ai.ErrEmptyResponse)
}

func TestChatCompletion_NoChoices(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`)
	})

	model := NewModel("gpt-3.5-turbo", "k", srv.URL)
	_, err := model.Call(context.Background(), []ai.Message{ai.UserMessage{Role: ai.UserRole, Content: "hi"}})
	assert.ErrorIs(t, err, ai.ErrMalformedResponse)
}

func TestChatCompletion_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	model := NewModel("deepseek-chat", "k", baseURL)
	_, err := model.Call(context.Background(), []ai.Message{ai.UserMessage{Role: ai.UserRole, Content: "hi"}})

	require.Error(t, err)
	assert.ErrorIs(t, err, ai.ErrTransport)
}

func TestChatCompletion_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	model := NewModel("deepseek-chat", "k", srv.URL).WithTimeout(50 * time.Millisecond)
	_, err := model.Call(context.Background(), []ai.Message{ai.UserMessage{Role: ai.UserRole, Content: "hi"}})

	require.Error(t, err)
	assert.ErrorIs(t, err, ai.ErrTransport)
}

func TestStandardProvidersRegistered(t *testing.T) {
	for _, name := range []string{"openai", "deepseek"} {
		info, err := ai.LookupProvider(name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, info.BaseURL)
		assert.NotEmpty(t, info.APIKeyName)
		assert.NotEmpty(t, info.DisplayName)
	}

	model, err := ai.New("deepseek", "deepseek-chat", "k", "")
	require.NoError(t, err)
	assert.Equal(t, DeepSeekBaseURL, model.BaseURL)
}

func TestToChatMessages_Unsupported(t *testing.T) {
	_, err := toChatMessages([]ai.Message{unsupportedMessage{}})
	assert.Error(t, err)
}

type unsupportedMessage struct{}

func (unsupportedMessage) Value() (ai.MessageRole, string) { return "other", "" }

func TestOpenAI_StandardSuite(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, completionBody("Paris"))
	})

	suite := ai.ModelTestSuite{
		NewModel: func() *ai.Model {
			return NewModel("gpt-3.5-turbo", "k", srv.URL)
		},
		Name: "OpenAICompatible",
	}
	ai.RunModelTestSuite(t, suite)
}
