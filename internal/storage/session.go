package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"gentherapist/pkg"
	"gentherapist/src/logger"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"
)

// ErrSessionNotFound is returned when a session does not exist or has expired.
var ErrSessionNotFound = errors.New("session not found")

const sentimentKey = "sentiment"

// SessionManager stores per-session conversation history
type SessionManager interface {
	GetHistory(ctx context.Context, sessionID string) ([]pkg.ConversationTurn, error)
	AppendTurns(ctx context.Context, sessionID string, turns ...pkg.ConversationTurn) error
	Clear(ctx context.Context, sessionID string) error
	Ping(ctx context.Context) error
}

type memorySession struct {
	messages  []*schema.Message
	updatedAt time.Time
}

// MemorySessionManager is an in-memory implementation for development and the CLI
type MemorySessionManager struct {
	mu        sync.Mutex
	sessions  map[string]*memorySession
	ttl       time.Duration
	maxTurns  int
	now       func() time.Time
	lastSweep time.Time
	log       zerolog.Logger
}

// NewMemorySessionManager creates a new in-memory session manager
func NewMemorySessionManager(ttl time.Duration, maxTurns int) *MemorySessionManager {
	return &MemorySessionManager{
		sessions: make(map[string]*memorySession),
		ttl:      ttl,
		maxTurns: maxTurns,
		now:      time.Now,
		log:      logger.Component("storage"),
	}
}

// GetHistory returns the session's turns, oldest first. Unknown and expired
// sessions have an empty history.
func (m *MemorySessionManager) GetHistory(ctx context.Context, sessionID string) ([]pkg.ConversationTurn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, err := m.lookup(sessionID)
	if errors.Is(err, ErrSessionNotFound) {
		return []pkg.ConversationTurn{}, nil
	}
	return fromMessages(session.messages), nil
}

// AppendTurns adds turns to the session and keeps only the most recent maxTurns
func (m *MemorySessionManager) AppendTurns(ctx context.Context, sessionID string, turns ...pkg.ConversationTurn) error {
	if sessionID == "" {
		return errors.New("session ID cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweepExpired()
	session, err := m.lookup(sessionID)
	if err != nil {
		session = &memorySession{}
		m.sessions[sessionID] = session
	}

	session.messages = trimTail(append(session.messages, toMessages(turns)...), m.maxTurns)
	session.updatedAt = m.now()
	return nil
}

// Clear removes a session
func (m *MemorySessionManager) Clear(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, sessionID)
	return nil
}

// Ping always succeeds for the in-memory store
func (m *MemorySessionManager) Ping(ctx context.Context) error {
	return nil
}

// lookup must be called with mu held. An expired session is deleted.
func (m *MemorySessionManager) lookup(sessionID string) (*memorySession, error) {
	session, exists := m.sessions[sessionID]
	if !exists {
		return nil, ErrSessionNotFound
	}
	if m.expired(session, m.now()) {
		delete(m.sessions, sessionID)
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// sweepExpired drops sessions nobody came back for. It runs at most once per
// TTL and must be called with mu held.
func (m *MemorySessionManager) sweepExpired() {
	now := m.now()
	if m.ttl <= 0 || now.Sub(m.lastSweep) < m.ttl {
		return
	}
	swept := 0
	for id, session := range m.sessions {
		if m.expired(session, now) {
			delete(m.sessions, id)
			swept++
		}
	}
	m.lastSweep = now
	if swept > 0 {
		m.log.Debug().Int("swept", swept).Int("remaining", len(m.sessions)).Msg("Expired sessions removed")
	}
}

func (m *MemorySessionManager) expired(session *memorySession, now time.Time) bool {
	return m.ttl > 0 && now.Sub(session.updatedAt) > m.ttl
}

func trimTail(messages []*schema.Message, maxTurns int) []*schema.Message {
	if maxTurns <= 0 || len(messages) <= maxTurns {
		return messages
	}
	return messages[len(messages)-maxTurns:]
}

func toMessages(turns []pkg.ConversationTurn) []*schema.Message {
	messages := make([]*schema.Message, 0, len(turns))
	for _, turn := range turns {
		role := schema.User
		if turn.Role == pkg.RoleAssistant {
			role = schema.Assistant
		}
		messages = append(messages, &schema.Message{
			Role:    role,
			Content: turn.Content,
			Extra:   map[string]any{sentimentKey: string(turn.Sentiment)},
		})
	}
	return messages
}

func fromMessages(messages []*schema.Message) []pkg.ConversationTurn {
	turns := make([]pkg.ConversationTurn, 0, len(messages))
	for _, msg := range messages {
		role := pkg.RoleUser
		if msg.Role == schema.Assistant {
			role = pkg.RoleAssistant
		}
		label := pkg.SentimentNeutral
		if s, ok := msg.Extra[sentimentKey].(string); ok && s != "" {
			label = pkg.Sentiment(s)
		}
		turns = append(turns, pkg.ConversationTurn{Role: role, Content: msg.Content, Sentiment: label})
	}
	return turns
}
