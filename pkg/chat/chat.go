// Package chat keeps the transcript of a support conversation with the remote
// assistant. Messages are appended optimistically and rolled back when the
// assistant cannot be reached.
package chat

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-pawhealth/pkg/client"
)

// HistoryWindow is the number of prior confirmed turns sent with a message.
const HistoryWindow = 4

// ErrEmptyMessage is returned by Send for blank text.
var ErrEmptyMessage = errors.New("chat: message is empty")

// Status tracks delivery of a message.
type Status int

const (
	Pending Status = iota
	Confirmed
	Failed
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Confirmed:
		return "confirmed"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Message is one transcript entry.
type Message struct {
	ID      string
	Role    string
	Content string
	Status  Status
	At      time.Time
}

// Assistant answers chat requests.
type Assistant interface {
	Chat(ctx context.Context, req client.ChatRequest) (string, error)
}

// Conversation is a transcript bound to an optional dog. Sends are
// serialised; reads never block on an outstanding send.
type Conversation struct {
	id        string
	dogID     string
	assistant Assistant
	now       func() time.Time
	logger    *zap.Logger

	sendMu sync.Mutex

	mu       sync.RWMutex
	messages []Message
}

// Option configures a Conversation.
type Option func(*Conversation)

// WithDog scopes the conversation to a dog.
func WithDog(dogID string) Option {
	return func(c *Conversation) { c.dogID = strings.TrimSpace(dogID) }
}

// WithConversationID resumes an existing conversation id.
func WithConversationID(id string) Option {
	return func(c *Conversation) {
		if id != "" {
			c.id = id
		}
	}
}

// WithClock overrides the message timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Conversation) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Conversation) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New starts a conversation with a fresh id.
func New(assistant Assistant, options ...Option) *Conversation {
	c := &Conversation{
		id:        uuid.NewString(),
		assistant: assistant,
		now:       time.Now,
		logger:    zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// ID returns the conversation id sent with every message.
func (c *Conversation) ID() string { return c.id }

// Messages returns a copy of the transcript.
func (c *Conversation) Messages() []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.messages)
}

// history returns the last HistoryWindow confirmed user and assistant turns.
func (c *Conversation) history() []client.HistoryItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []client.HistoryItem
	for i := len(c.messages) - 1; i >= 0 && len(out) < HistoryWindow; i-- {
		m := c.messages[i]
		if m.Status != Confirmed || (m.Role != client.RoleUser && m.Role != client.RoleAssistant) {
			continue
		}
		out = append(out, client.HistoryItem{Role: m.Role, Content: m.Content})
	}
	slices.Reverse(out)
	return out
}

// Send appends text as a pending user message and asks the assistant. On
// success the message is confirmed and the reply appended. On failure the
// message is removed from the transcript and returned with status Failed.
func (c *Conversation) Send(ctx context.Context, text string) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrEmptyMessage
	}
	if c.assistant == nil {
		return Message{}, errors.New("chat: no assistant configured")
	}

	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	history := c.history()
	pending := Message{
		ID:      uuid.NewString(),
		Role:    client.RoleUser,
		Content: text,
		Status:  Pending,
		At:      c.now(),
	}
	c.mu.Lock()
	c.messages = append(c.messages, pending)
	c.mu.Unlock()

	reply, err := c.assistant.Chat(ctx, client.ChatRequest{
		Message:        text,
		DogID:          c.dogID,
		ConversationID: c.id,
		History:        history,
	})
	if err != nil {
		c.remove(pending.ID)
		pending.Status = Failed
		c.logger.Warn("chat send failed",
			zap.String("conversation_id", c.id),
			zap.Error(err),
		)
		return pending, fmt.Errorf("chat: send: %w", err)
	}

	answer := Message{
		ID:      uuid.NewString(),
		Role:    client.RoleAssistant,
		Content: reply,
		Status:  Confirmed,
		At:      c.now(),
	}
	c.mu.Lock()
	if idx := c.indexLocked(pending.ID); idx >= 0 {
		c.messages[idx].Status = Confirmed
	}
	c.messages = append(c.messages, answer)
	c.mu.Unlock()
	return answer, nil
}

func (c *Conversation) remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if idx := c.indexLocked(id); idx >= 0 {
		c.messages = slices.Delete(c.messages, idx, idx+1)
	}
}

func (c *Conversation) indexLocked(id string) int {
	return slices.IndexFunc(c.messages, func(m Message) bool { return m.ID == id })
}
