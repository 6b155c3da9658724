package reasonchain

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/nexxia-ai/reasonchain/ai"
	"gopkg.in/yaml.v3"
)

var ErrMissingAPIKey = errors.New("API key not configured")

// ProviderSettings configures one stage. APIKey is never serialized.
type ProviderSettings struct {
	Provider     string        `yaml:"provider" json:"provider"`
	Model        string        `yaml:"model" json:"model"`
	DisplayName  string        `yaml:"display_name" json:"display_name"`
	BaseURL      string        `yaml:"base_url" json:"base_url"`
	APIKeyEnv    string        `yaml:"api_key_env" json:"api_key_env"`
	Temperature  float64       `yaml:"temperature" json:"temperature"`
	MaxTokens    int           `yaml:"max_tokens" json:"max_tokens"`
	Timeout      time.Duration `yaml:"timeout" json:"timeout"`
	SystemPrompt string        `yaml:"system_prompt" json:"system_prompt"`
	UserTemplate string        `yaml:"user_template" json:"user_template"`
	RecordFile   string        `yaml:"record_file" json:"record_file"`
	// ReplayFile serves responses recorded by RecordFile instead of calling the provider.
	ReplayFile string `yaml:"replay_file" json:"replay_file"`

	APIKey string `yaml:"-" json:"-"`
}

type ResultSettings struct {
	File      string        `yaml:"file" json:"file"`
	Directory string        `yaml:"directory" json:"directory"`
	MaxFiles  int           `yaml:"max_files" json:"max_files"`
	Retention time.Duration `yaml:"retention" json:"retention"`
}

// Settings is the root configuration document.
type Settings struct {
	LogLevel     string           `yaml:"log_level" json:"log_level"`
	StageTimeout time.Duration    `yaml:"stage_timeout" json:"stage_timeout"`
	Reasoning    ProviderSettings `yaml:"reasoning" json:"reasoning"`
	Answer       ProviderSettings `yaml:"answer" json:"answer"`
	Results      ResultSettings   `yaml:"results" json:"results"`
}

// DefaultSettings mirrors the stock DeepSeek -> OpenAI setup. The key variable and
// display name are left empty so they follow the provider from the registry.
func DefaultSettings() Settings {
	return Settings{
		LogLevel:     "info",
		StageTimeout: DefaultStageTimeout,
		Reasoning: ProviderSettings{
			Provider:    "deepseek",
			Model:       "deepseek-chat",
			Temperature: 0.7,
			MaxTokens:   1000,
		},
		Answer: ProviderSettings{
			Provider:    "openai",
			Model:       "gpt-3.5-turbo",
			Temperature: 0.7,
			MaxTokens:   1000,
		},
		Results: ResultSettings{
			File:      "reasoning_results.json",
			MaxFiles:  10,
			Retention: 7 * 24 * time.Hour,
		},
	}
}

// LoadSettings reads a YAML file over DefaultSettings. An empty path returns the defaults.
// API keys are resolved from the environment afterwards.
func LoadSettings(path string) (Settings, error) {
	if path == "" {
		s := DefaultSettings()
		s.ApplyEnv()
		return s, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return Settings{}, fmt.Errorf("error opening config file: %w", err)
	}
	defer f.Close()

	s, err := DecodeSettingsYAML(f)
	if err != nil {
		return Settings{}, fmt.Errorf("error parsing config file %s: %w", path, err)
	}
	s.ApplyEnv()
	return s, nil
}

// DecodeSettingsYAML decodes YAML from an io.Reader for tests and programmatic use.
// Unknown fields are rejected.
func DecodeSettingsYAML(r io.Reader) (Settings, error) {
	s := DefaultSettings()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return Settings{}, err
	}
	return s, nil
}

// ApplyEnv fills API keys from the configured environment variables and honours
// REASONCHAIN_LOG_LEVEL.
func (s *Settings) ApplyEnv() {
	s.Reasoning.APIKey = envKey(s.Reasoning)
	s.Answer.APIKey = envKey(s.Answer)
	if lvl := os.Getenv("REASONCHAIN_LOG_LEVEL"); lvl != "" {
		s.LogLevel = lvl
	}
}

func envKey(p ProviderSettings) string {
	name := p.keyEnv()
	if name == "" {
		return p.APIKey
	}
	if v := os.Getenv(name); v != "" {
		return v
	}
	return p.APIKey
}

// keyEnv is the variable holding the API key: api_key_env, else the provider's own.
func (p ProviderSettings) keyEnv() string {
	if p.APIKeyEnv != "" {
		return p.APIKeyEnv
	}
	if info, err := ai.LookupProvider(p.Provider); err == nil {
		return info.APIKeyName
	}
	return ""
}

func (s Settings) Validate() error {
	var errs []error
	errs = append(errs, s.Reasoning.validate("reasoning"), s.Answer.validate("answer"))
	if s.StageTimeout < 0 {
		errs = append(errs, fmt.Errorf("stage_timeout must not be negative"))
	}
	if _, err := ParseLogLevel(s.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if s.Results.MaxFiles < 0 {
		errs = append(errs, fmt.Errorf("results.max_files must not be negative"))
	}
	return errors.Join(errs...)
}

func (p ProviderSettings) validate(stage string) error {
	var errs []error
	if p.Provider == "" {
		errs = append(errs, fmt.Errorf("%s: %w", stage, ai.ErrEmptyProviderName))
	}
	if p.Model == "" {
		errs = append(errs, fmt.Errorf("%s: %w", stage, ai.ErrEmptyModelName))
	}
	if p.Temperature < 0 || p.Temperature > 2 {
		errs = append(errs, fmt.Errorf("%s: temperature %.2f outside [0, 2]", stage, p.Temperature))
	}
	if p.MaxTokens < 0 {
		errs = append(errs, fmt.Errorf("%s: max_tokens must not be negative", stage))
	}
	if p.APIKey == "" && p.ReplayFile == "" {
		if env := p.keyEnv(); env != "" {
			errs = append(errs, fmt.Errorf("%s: %w: set %s", stage, ErrMissingAPIKey, env))
		} else {
			errs = append(errs, fmt.Errorf("%s: %w", stage, ErrMissingAPIKey))
		}
	}
	return errors.Join(errs...)
}

func (p ProviderSettings) name() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	if info, err := ai.LookupProvider(p.Provider); err == nil && info.DisplayName != "" {
		return info.DisplayName
	}
	return p.Provider
}

func (p ProviderSettings) newModel(defaultTimeout time.Duration) (*ai.Model, error) {
	if p.ReplayFile != "" {
		replay, err := ai.ReplayFunction(p.ReplayFile)
		if err != nil {
			return nil, err
		}
		model := ai.NewDummyModel(replay)
		model.ModelName = p.Model
		return model, nil
	}

	model, err := ai.New(p.Provider, p.Model, p.APIKey, p.BaseURL)
	if err != nil {
		return nil, err
	}
	model.WithTemperature(p.Temperature)
	if p.MaxTokens > 0 {
		model.WithMaxTokens(p.MaxTokens)
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	model.WithTimeout(timeout)
	if p.RecordFile != "" {
		model.WithRecording(p.RecordFile)
	}
	return model, nil
}

// NewFromSettings builds model-backed providers for both stages. The provider drivers
// must be registered, e.g. by importing ai/openai.
func NewFromSettings(s Settings, logger *slog.Logger) (*Pipeline, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	timeout := s.StageTimeout
	if timeout <= 0 {
		timeout = DefaultStageTimeout
	}

	reasoningModel, err := s.Reasoning.newModel(timeout)
	if err != nil {
		return nil, fmt.Errorf("reasoning model: %w", err)
	}
	reasoning, err := NewReasoningProvider(s.Reasoning.name(), reasoningModel, Instructions{
		SystemPrompt: s.Reasoning.SystemPrompt,
		UserTemplate: s.Reasoning.UserTemplate,
	})
	if err != nil {
		return nil, err
	}

	answerModel, err := s.Answer.newModel(timeout)
	if err != nil {
		return nil, fmt.Errorf("answer model: %w", err)
	}
	answer, err := NewAnswerProvider(s.Answer.name(), answerModel, Instructions{
		SystemPrompt: s.Answer.SystemPrompt,
		UserTemplate: s.Answer.UserTemplate,
	})
	if err != nil {
		return nil, err
	}

	return New(Config{
		Reasoning:     reasoning,
		Answer:        answer,
		ReasoningName: s.Reasoning.name(),
		AnswerName:    s.Answer.name(),
		StageTimeout:  timeout,
		Logger:        logger,
	})
}

// ParseLogLevel maps a config string onto a slog level.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}
