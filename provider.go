package reasonchain

import (
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/nexxia-ai/reasonchain/ai"
)

// ReasoningProvider produces a narrative explanation for a prompt.
type ReasoningProvider interface {
	FetchReasoning(ctx context.Context, prompt string) (string, error)
}

// AnswerProvider produces the final answer for a prompt grounded on reference text.
type AnswerProvider interface {
	FetchAnswer(ctx context.Context, prompt, referenceText string) (string, error)
}

// ReasoningFunc adapts a function to ReasoningProvider.
type ReasoningFunc func(ctx context.Context, prompt string) (string, error)

func (f ReasoningFunc) FetchReasoning(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// AnswerFunc adapts a function to AnswerProvider.
type AnswerFunc func(ctx context.Context, prompt, referenceText string) (string, error)

func (f AnswerFunc) FetchAnswer(ctx context.Context, prompt, referenceText string) (string, error) {
	return f(ctx, prompt, referenceText)
}

const (
	DefaultReasoningSystemPrompt = "You are an AI assistant that provides clear step-by-step reasoning. " +
		"Focus on explaining the thinking process and logical steps in a natural, flowing manner."

	DefaultReasoningTemplate = `Explain your reasoning process for this question in a natural, flowing way:
{{.Prompt}}

Provide your thinking as a coherent narrative, walking through your reasoning steps naturally without using bullet points, section headers, or artificial structure. Just explain your thought process as you would in a conversation, moving from understanding the question to analyzing it and finally reaching a conclusion.`

	DefaultAnswerSystemPrompt = "You are an expert at providing clear, direct answers to questions with the help of references."

	DefaultAnswerTemplate = `I need you to answer this question: "{{.Prompt}}"

Please use the following reference to help you craft a comprehensive answer:

REFERENCE:
{{.Reference}}

Your task is to directly answer the question asked. Use the reference material to inform your answer, but respond in your own words in a natural, conversational style. Don't mention that you're using a reference.
Just provide a clear, helpful answer to the question as if you're having a conversation.`
)

// Instructions is the wording sent to a provider. Empty fields select the defaults.
type Instructions struct {
	SystemPrompt string
	UserTemplate string // text/template over {{.Prompt}} and {{.Reference}}
}

type templateData struct {
	Prompt    string
	Reference string
}

type modelProvider struct {
	name   string
	model  *ai.Model
	system string
	user   *template.Template
}

func newModelProvider(name string, model *ai.Model, in Instructions, defSystem, defTemplate string) (*modelProvider, error) {
	if model == nil {
		return nil, fmt.Errorf("provider %s: nil model", name)
	}
	system := in.SystemPrompt
	if system == "" {
		system = defSystem
	}
	text := in.UserTemplate
	if text == "" {
		text = defTemplate
	}
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("provider %s: invalid user template: %w", name, err)
	}
	return &modelProvider{name: name, model: model, system: system, user: tmpl}, nil
}

func (p *modelProvider) complete(ctx context.Context, data templateData) (string, error) {
	var sb strings.Builder
	if err := p.user.Execute(&sb, data); err != nil {
		return "", &ProviderError{Provider: p.name, Kind: KindResponse, Message: err.Error(), Err: err}
	}

	msg, err := p.model.Call(ctx, []ai.Message{
		ai.SystemMessage{Role: ai.SystemRole, Content: p.system},
		ai.UserMessage{Role: ai.UserRole, Content: sb.String()},
	})
	if err != nil {
		return "", newProviderError(p.name, err)
	}
	if strings.TrimSpace(msg.Content) == "" {
		return "", emptyContentError(p.name)
	}
	return msg.Content, nil
}

// ModelReasoningProvider calls a chat model for the reasoning stage.
type ModelReasoningProvider struct {
	*modelProvider
}

// NewReasoningProvider wraps model as the reasoning stage. name is used in error messages.
func NewReasoningProvider(name string, model *ai.Model, in Instructions) (*ModelReasoningProvider, error) {
	p, err := newModelProvider(name, model, in, DefaultReasoningSystemPrompt, DefaultReasoningTemplate)
	if err != nil {
		return nil, err
	}
	return &ModelReasoningProvider{p}, nil
}

func (p *ModelReasoningProvider) FetchReasoning(ctx context.Context, prompt string) (string, error) {
	return p.complete(ctx, templateData{Prompt: prompt})
}

// ModelAnswerProvider calls a chat model for the answer stage.
type ModelAnswerProvider struct {
	*modelProvider
}

func NewAnswerProvider(name string, model *ai.Model, in Instructions) (*ModelAnswerProvider, error) {
	p, err := newModelProvider(name, model, in, DefaultAnswerSystemPrompt, DefaultAnswerTemplate)
	if err != nil {
		return nil, err
	}
	return &ModelAnswerProvider{p}, nil
}

func (p *ModelAnswerProvider) FetchAnswer(ctx context.Context, prompt, referenceText string) (string, error) {
	return p.complete(ctx, templateData{Prompt: prompt, Reference: referenceText})
}
