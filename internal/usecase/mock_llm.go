package usecase

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/shopassist/backend/internal/domain"
)

const defaultMockLatency = 500 * time.Millisecond

// Words removed from a message to form the mock search query
var mockSearchWordsRegex = regexp.MustCompile(`(?i)search|find|for`)

// MockLLM answers the chat completion contract with canned replies. It stands
// in for a real model provider in demos.
type MockLLM struct {
	latency time.Duration
}

// NewMockLLM creates a mock responder. A negative latency disables the delay,
// zero selects the default.
func NewMockLLM(latency time.Duration) *MockLLM {
	if latency == 0 {
		latency = defaultMockLatency
	}
	if latency < 0 {
		latency = 0
	}
	return &MockLLM{latency: latency}
}

// Respond waits for the simulated latency and returns a canned reply chosen
// from the message keywords
func (m *MockLLM) Respond(ctx context.Context, request *domain.AssistantRequest) (*domain.RemoteReply, error) {
	if request == nil || strings.TrimSpace(request.Message) == "" {
		return nil, domain.ErrInvalidRequest
	}

	if m.latency > 0 {
		timer := time.NewTimer(m.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	reply := &domain.RemoteReply{
		Content:    "I'm your AI shopping assistant. How can I help you today?",
		ModelUsed:  domain.DefaultRemoteModel,
		SystemUsed: domain.DefaultRemoteSystem,
	}

	lower := strings.ToLower(request.Message)
	switch {
	case strings.Contains(lower, "search") || strings.Contains(lower, "find"):
		query := strings.TrimSpace(mockSearchWordsRegex.ReplaceAllString(lower, ""))
		reply.Content = `I found some interesting products related to "` + query + `". Would you like to see more details about any of these?`
		reply.Action = searchAction(query)
	case strings.Contains(lower, "cart"):
		reply.Content = "Your cart currently has some great items! Would you like me to show you what's in there, or help you add something new?"
	case strings.Contains(lower, "wishlist") || strings.Contains(lower, "favorite"):
		reply.Content = "I can help you manage your wishlist. Would you like to see what you've saved, or add a new item?"
	case strings.Contains(lower, "recommend") || strings.Contains(lower, "suggest"):
		reply.Content = "Based on your browsing history and preferences, I think you might like these products. Would you like to see more details?"
		reply.Action = searchAction("recommended")
	}

	return reply, nil
}

func searchAction(query string) *domain.RemoteAction {
	// Marshal of a plain struct with string fields cannot fail
	data, _ := json.Marshal(domain.RemoteSearchData{Query: query})
	return &domain.RemoteAction{Type: domain.ActionSearch, Data: data}
}
