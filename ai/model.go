package ai

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

const DefaultTimeout = 60 * time.Second

// RecordedResponse represents a recorded AI response with error information
type RecordedResponse struct {
	Model     string    `json:"model"`
	AIMessage AIMessage `json:"ai_message"`
	Error     string    `json:"error,omitempty"` // Empty string if no error
	Timestamp string    `json:"timestamp"`
}

// CallFunc is the provider specific implementation behind a Model.
type CallFunc func(ctx context.Context, model *Model, messages []Message) (AIMessage, error)

// Model represents a generic model container that uses function variables for provider-specific logic
type Model struct {
	ModelName string
	APIKey    string
	BaseURL   string
	Timeout   time.Duration

	// callFunc is the implementation for each provider
	callFunc CallFunc

	// Options pointer variables - use nil to represent option not set
	Temperature *float64
	MaxTokens   *int

	// Recording functionality
	RecordFilename string // If set, record responses to this file
}

// Call makes exactly one request to the provider. There is no retry: a failed call
// is reported to the caller as is.
func (m *Model) Call(ctx context.Context, messages []Message) (AIMessage, error) {
	if m.callFunc == nil {
		return AIMessage{}, ErrNoCallFunc
	}

	response, err := m.callFunc(ctx, m, messages)

	if m.RecordFilename != "" {
		m.recordAIMessage(response, err)
	}

	return response, err
}

// EffectiveTimeout returns the per call timeout, falling back to DefaultTimeout.
func (m *Model) EffectiveTimeout() time.Duration {
	if m.Timeout > 0 {
		return m.Timeout
	}
	return DefaultTimeout
}

// WithTemperature sets the temperature for the model and returns the model for chaining
func (m *Model) WithTemperature(temperature float64) *Model {
	m.Temperature = &temperature
	return m
}

// WithMaxTokens sets the maximum tokens for the model and returns the model for chaining
func (m *Model) WithMaxTokens(maxTokens int) *Model {
	m.MaxTokens = &maxTokens
	return m
}

// WithTimeout sets the request timeout for the model and returns the model for chaining
func (m *Model) WithTimeout(timeout time.Duration) *Model {
	m.Timeout = timeout
	return m
}

// WithRecording appends every call to filename as JSONL
func (m *Model) WithRecording(filename string) *Model {
	m.RecordFilename = filename
	return m
}

// SetCallFunc sets the provider implementation. Drivers call this from their constructor.
func (m *Model) SetCallFunc(callFunc CallFunc) {
	m.callFunc = callFunc
}

// recordAIMessage records an AI response to the specified file
func (m *Model) recordAIMessage(response AIMessage, err error) {
	recorded := RecordedResponse{
		Model:     m.ModelName,
		AIMessage: response,
		Timestamp: time.Now().Format(time.RFC3339),
	}

	if err != nil {
		recorded.Error = err.Error()
	}

	jsonData, marshalErr := json.Marshal(recorded)
	if marshalErr != nil {
		return // Silently fail if we can't marshal
	}

	file, openErr := os.OpenFile(m.RecordFilename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if openErr != nil {
		return // Silently fail if we can't open file
	}
	defer file.Close()

	file.Write(jsonData)
	file.WriteString("\n")
}

// LoadRecords loads recorded responses from a file, e.g. to replay them with a dummy model
func LoadRecords(filename string) ([]RecordedResponse, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open recorded responses file: %w", err)
	}
	defer file.Close()

	var records []RecordedResponse
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var record RecordedResponse
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal recorded response: %w", err)
		}

		records = append(records, record)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading recorded responses file: %w", err)
	}

	return records, nil
}
