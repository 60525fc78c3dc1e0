package session

import (
	"slices"
	"sync"
	"time"

	"github.com/goliatone/go-pawhealth/pkg/client"
)

// Level grades a notice.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notice is a message shown to the user.
type Notice struct {
	Level Level
	Text  string
	At    time.Time
}

// Messages is the single queue of user facing notices. Every failure the
// user should see goes through Error.
type Messages struct {
	mu      sync.Mutex
	notices []Notice
}

func (m *Messages) push(level Level, text string) Notice {
	n := Notice{Level: level, Text: text, At: time.Now()}
	m.mu.Lock()
	m.notices = append(m.notices, n)
	m.mu.Unlock()
	return n
}

// Info queues an informational notice.
func (m *Messages) Info(text string) Notice { return m.push(LevelInfo, text) }

// Success queues a success notice.
func (m *Messages) Success(text string) Notice { return m.push(LevelSuccess, text) }

// Error queues the user facing message of err.
func (m *Messages) Error(err error) Notice { return m.push(LevelError, client.Message(err)) }

// Drain returns and removes the queued notices.
func (m *Messages) Drain() []Notice {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.notices
	m.notices = nil
	return out
}

// Pending returns a copy of the queued notices.
func (m *Messages) Pending() []Notice {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.notices)
}

// Clear drops the queued notices.
func (m *Messages) Clear() {
	m.mu.Lock()
	m.notices = nil
	m.mu.Unlock()
}
