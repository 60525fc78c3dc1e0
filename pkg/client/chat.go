package client

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// Chat roles forwarded to the assistant.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// HistoryItem is one prior turn sent alongside a chat message.
type HistoryItem struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of a chat call.
type ChatRequest struct {
	Message        string        `json:"message"`
	DogID          string        `json:"dog_id,omitempty"`
	ConversationID string        `json:"conversation_id,omitempty"`
	History        []HistoryItem `json:"history,omitempty"`
}

// Chat sends a message to the support assistant and returns its reply.
// History items with roles other than user and assistant are dropped.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (string, error) {
	if strings.TrimSpace(req.Message) == "" {
		return "", errors.New("client: chat message is required")
	}
	history := make([]HistoryItem, 0, len(req.History))
	for _, item := range req.History {
		if item.Role == RoleUser || item.Role == RoleAssistant {
			history = append(history, item)
		}
	}
	req.History = history

	var resp struct {
		Reply string `json:"reply"`
	}
	if err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/chat/", Body: req}, &resp); err != nil {
		return "", err
	}
	return resp.Reply, nil
}
