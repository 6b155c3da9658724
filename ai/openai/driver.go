package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/nexxia-ai/reasonchain/ai"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	OpenAIBaseURL   = "https://api.openai.com/v1"
	DeepSeekBaseURL = "https://api.deepseek.com/v1"
)

func init() {
	registerStandardProviders()
}

func registerStandardProviders() {
	providers := []struct {
		name        string
		displayName string
		baseURL     string
		aPIKeyName  string
	}{
		{"openai", "ChatGPT", OpenAIBaseURL, "OPENAI_API_KEY"},
		{"deepseek", "DeepSeek", DeepSeekBaseURL, "DEEPSEEK_API_KEY"},
	}

	for _, p := range providers {
		err := ai.RegisterProvider(ai.ProviderInfo{
			Name:        p.name,
			DisplayName: p.displayName,
			BaseURL:     p.baseURL,
			APIKeyName:  p.aPIKeyName,
			NewModel:    NewModel,
		})
		if err != nil {
			slog.Error("failed to register provider", "provider", p.name, "error", err)
		}
	}
}

// NewModel returns a model talking to an OpenAI-compatible chat completions endpoint.
// An empty baseURL targets OpenAI.
func NewModel(modelName, apiKey, baseURL string) *ai.Model {
	if baseURL == "" {
		baseURL = OpenAIBaseURL
	}

	model := &ai.Model{
		ModelName: modelName,
		APIKey:    apiKey,
		BaseURL:   baseURL,
	}
	model.SetCallFunc(openaiGenerate)
	return model
}

func openaiGenerate(ctx context.Context, model *ai.Model, messages []ai.Message) (ai.AIMessage, error) {
	client := createClient(model)
	return callChatAPI(ctx, client, model, messages)
}

func createClient(model *ai.Model) openai.Client {
	opts := []option.RequestOption{
		option.WithAPIKey(model.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: model.EffectiveTimeout()}),
		// one attempt per call, failures go straight back to the pipeline
		option.WithMaxRetries(0),
	}

	if model.BaseURL != "" && model.BaseURL != OpenAIBaseURL {
		opts = append(opts, option.WithBaseURL(model.BaseURL))
	}

	return openai.NewClient(opts...)
}

// classifyError maps client errors onto the ai error taxonomy.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return ai.StatusError{
			StatusCode:   apiErr.StatusCode,
			Status:       http.StatusText(apiErr.StatusCode),
			ErrorMessage: diagnosticText(apiErr),
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &ai.TransportError{Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return &ai.TransportError{Err: err}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &ai.TransportError{Err: err}
	}

	return fmt.Errorf("%w: %v", ai.ErrMalformedResponse, err)
}

func diagnosticText(apiErr *openai.Error) string {
	if raw := strings.TrimSpace(apiErr.RawJSON()); raw != "" {
		return raw
	}
	return apiErr.Error()
}
