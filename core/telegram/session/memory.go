package session

import (
	"sync"

	"github.com/flizix/flizixbot/core/telegram/commands"
)

// Manager orchestrates per-conversation sessions.
type Manager interface {
	// Resolve finds the command a token dispatches to for the given chat,
	// creating the session on first contact.
	Resolve(chatID int64, token string) (*commands.Command, bool)
	// Last returns the most recently executed non-transient command, or nil.
	Last(chatID int64) *commands.Command
	// Apply records a command execution and updates the navigation state.
	Apply(chatID int64, executed *commands.Command)
	// Clear removes the session when a conversation ends.
	Clear(chatID int64)
}

type memoryManager struct {
	mu       sync.RWMutex
	defaults map[string]*commands.Command
	sessions map[int64]*Session
}

// NewMemoryManager constructs an in-memory Manager. New sessions start with
// the provided default command set.
func NewMemoryManager(defaults map[string]*commands.Command) Manager {
	return &memoryManager{
		defaults: defaults,
		sessions: make(map[int64]*Session),
	}
}

func (m *memoryManager) get(chatID int64) *Session {
	if sess, ok := m.sessions[chatID]; ok {
		return sess
	}
	sess := &Session{Available: m.defaults}
	m.sessions[chatID] = sess
	return sess
}

// Resolve looks up a token in the chat's currently available commands.
func (m *memoryManager) Resolve(chatID int64, token string) (*commands.Command, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.get(chatID).Resolve(token)
}

// Last returns the chat's last executed command if the session exists.
func (m *memoryManager) Last(chatID int64) *commands.Command {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if sess, ok := m.sessions[chatID]; ok {
		return sess.Last
	}
	return nil
}

// Apply updates the chat's session after a command execution.
func (m *memoryManager) Apply(chatID int64, executed *commands.Command) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.get(chatID).Apply(executed)
}

// Clear removes the entire session for a chat.
func (m *memoryManager) Clear(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, chatID)
}
