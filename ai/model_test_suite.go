package ai

// This file contains the test suite for the ai package.
// It is used by packages that implement the ai models to test the ai models and its implementations.
// It is not used in the main package.
import (
	"context"
	"testing"
)

// ModelTestSuite defines a test suite for a model implementation
type ModelTestSuite struct {
	NewModel  func() *Model
	Name      string
	SkipTests []string // List of test names to skip
}

// RunModelTestSuite runs all standard tests against a model implementation
func RunModelTestSuite(t *testing.T, suite ModelTestSuite) {
	shouldSkipTest := func(testName string) bool {
		for _, skipTest := range suite.SkipTests {
			if skipTest == testName {
				return true
			}
		}
		return false
	}

	tests := []struct {
		name string
		fn   func(t *testing.T, model *Model)
	}{
		{"GenerateSimple", TestGenerateSimple},
		{"SystemAndUser", TestSystemAndUser},
		{"ChainingAndOverwriting", TestChainingAndOverwriting},
		{"CancelledContext", TestCancelledContext},
	}

	t.Run(suite.Name, func(t *testing.T) {
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if shouldSkipTest(tt.name) {
					t.Skipf("Skipping %s test for %s", tt.name, suite.Name)
				}
				tt.fn(t, suite.NewModel())
			})
		}
	})
}

func TestGenerateSimple(t *testing.T, model *Model) {
	response, err := model.Call(context.Background(), []Message{
		UserMessage{Role: UserRole, Content: "What is the capital of France?"},
	})
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if response.Content == "" {
		t.Error("Expected response content, got empty string")
	}
	if response.Role != AssistantRole {
		t.Errorf("Expected role %s, got %s", AssistantRole, response.Role)
	}
}

func TestSystemAndUser(t *testing.T, model *Model) {
	response, err := model.Call(context.Background(), []Message{
		SystemMessage{Role: SystemRole, Content: "You are an AI assistant that provides clear step-by-step reasoning."},
		UserMessage{Role: UserRole, Content: "Explain why the sky is blue."},
	})
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if response.Content == "" {
		t.Error("Expected response content, got empty string")
	}
}

func TestChainingAndOverwriting(t *testing.T, model *Model) {
	result := model.
		WithTemperature(0.5).
		WithMaxTokens(100).
		WithTemperature(0.8). // Overwrite previous value
		WithMaxTokens(200)    // Overwrite previous value

	if result != model {
		t.Error("With methods should return the same model instance for chaining")
	}

	if model.Temperature == nil || *model.Temperature != 0.8 {
		t.Errorf("Expected temperature 0.8, got %v", model.Temperature)
	}
	if model.MaxTokens == nil || *model.MaxTokens != 200 {
		t.Errorf("Expected max tokens 200, got %v", model.MaxTokens)
	}
}

func TestCancelledContext(t *testing.T, model *Model) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := model.Call(ctx, []Message{
		UserMessage{Role: UserRole, Content: "What is the capital of France?"},
	})
	if err == nil {
		t.Error("Expected error for cancelled context, got none")
	}
}
