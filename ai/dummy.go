package ai

import (
	"context"
	"errors"
	"sync"
)

// NewDummyModel is useful for testing purposes. It allows you to mock the model's response.
func NewDummyModel(responseFunc func(ctx context.Context, messages []Message) (AIMessage, error)) *Model {
	return &Model{
		ModelName: "dummy",
		callFunc: func(ctx context.Context, model *Model, messages []Message) (AIMessage, error) {
			return responseFunc(ctx, messages)
		},
	}
}

// ReplayFunction returns a response function that replays recorded responses in order.
// Recorded errors are replayed as plain errors.
func ReplayFunction(filename string) (func(ctx context.Context, messages []Message) (AIMessage, error), error) {
	records, err := LoadRecords(filename)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	next := 0
	return func(ctx context.Context, messages []Message) (AIMessage, error) {
		mu.Lock()
		defer mu.Unlock()
		if next >= len(records) {
			return AIMessage{}, errors.New("no more recorded responses")
		}
		rec := records[next]
		next++
		if rec.Error != "" {
			return AIMessage{}, errors.New(rec.Error)
		}
		return rec.AIMessage, nil
	}, nil
}
