package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/nexxia-ai/reasonchain/ai"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/shared"
)

func callChatAPI(ctx context.Context, client openai.Client, model *ai.Model, messages []ai.Message) (ai.AIMessage, error) {
	chatMsgs, err := toChatMessages(messages)
	if err != nil {
		return ai.AIMessage{}, fmt.Errorf("failed to convert messages: %w", err)
	}

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(model.ModelName),
		Messages: chatMsgs,
	}

	if model.Temperature != nil {
		params.Temperature = openai.Opt(*model.Temperature)
	}
	if model.MaxTokens != nil {
		params.MaxTokens = openai.Opt(int64(*model.MaxTokens))
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return ai.AIMessage{}, classifyError(err)
	}

	return fromChatResponse(resp)
}

func toChatMessages(msgs []ai.Message) ([]openai.ChatCompletionMessageParamUnion, error) {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, msg := range msgs {
		switch m := msg.(type) {
		case ai.UserMessage:
			result = append(result, openai.UserMessage(m.Content))
		case ai.SystemMessage:
			result = append(result, openai.SystemMessage(m.Content))
		case ai.AIMessage:
			result = append(result, openai.AssistantMessage(m.Content))
		default:
			return nil, fmt.Errorf("unsupported message type: %T", msg)
		}
	}
	return result, nil
}

func fromChatResponse(resp *openai.ChatCompletion) (ai.AIMessage, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return ai.AIMessage{}, fmt.Errorf("%w: no choices in completion", ai.ErrMalformedResponse)
	}
	choice := resp.Choices[0]

	aiMsg := ai.AIMessage{
		Role:    ai.AssistantRole,
		Content: choice.Message.Content,
		Response: ai.Response{
			ID:           resp.ID,
			Model:        string(resp.Model),
			Created:      resp.Created,
			FinishReason: string(choice.FinishReason),
			Usage: ai.Usage{
				PromptTokens:     int(resp.Usage.PromptTokens),
				CompletionTokens: int(resp.Usage.CompletionTokens),
				TotalTokens:      int(resp.Usage.TotalTokens),
			},
		},
	}

	if strings.TrimSpace(aiMsg.Content) == "" {
		return aiMsg, fmt.Errorf("%w: completion %q has no content", ai.ErrEmptyResponse, resp.ID)
	}

	return aiMsg, nil
}
