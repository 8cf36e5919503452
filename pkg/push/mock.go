package push

import (
	"context"
	"errors"
	"sync"
)

// MockClient records every message it is asked to deliver. Tokens added to
// FailTokens fail individually; FailNext fails the next call regardless.
type MockClient struct {
	mu    sync.Mutex
	Calls []Message

	FailNext   bool
	FailTokens map[string]bool
}

func NewMockClient() *MockClient {
	return &MockClient{
		Calls:      make([]Message, 0),
		FailTokens: make(map[string]bool),
	}
}

func (m *MockClient) SendSingle(ctx context.Context, msg Message) (*SendResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, msg)

	if m.FailNext {
		m.FailNext = false
		err := errors.New("mock push send failure")
		return &SendResult{Delivered: false, Err: err}, err
	}

	if m.FailTokens[msg.Token] {
		err := errors.New("mock push send failure for token " + msg.Token)
		return &SendResult{Delivered: false, Err: err}, err
	}

	return &SendResult{Delivered: true}, nil
}

func (m *MockClient) SendBatch(ctx context.Context, msgs []Message) (*BatchResult, error) {
	result := &BatchResult{
		Responses: make([]SendResult, 0, len(msgs)),
	}

	for _, batch := range chunk(msgs, 500) {
		for _, msg := range batch {
			res, _ := m.SendSingle(ctx, msg)
			result.Responses = append(result.Responses, *res)
			if res.Delivered {
				result.SuccessCount++
			} else {
				result.FailureCount++
			}
		}
	}

	return result, nil
}

// SentTokens lists the device tokens in call order.
func (m *MockClient) SentTokens() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	tokens := make([]string, 0, len(m.Calls))
	for _, c := range m.Calls {
		tokens = append(tokens, c.Token)
	}
	return tokens
}
