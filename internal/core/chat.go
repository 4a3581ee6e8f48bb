package core

import (
	"context"
	"fmt"

	"gentherapist/pkg"
	"gentherapist/src/logger"
)

// HistoryStore is the part of the session store the chat service reads
// directly; writes happen inside the flow nodes.
type HistoryStore interface {
	GetHistory(ctx context.Context, sessionID string) ([]pkg.ConversationTurn, error)
	Clear(ctx context.Context, sessionID string) error
	Ping(ctx context.Context) error
}

// ChatService runs chat turns through the graph processor and manages
// session history.
type ChatService struct {
	processor GraphProcessor
	history   HistoryStore
}

// NewChatService creates a chat service
func NewChatService(processor GraphProcessor, history HistoryStore) *ChatService {
	return &ChatService{processor: processor, history: history}
}

// Send processes one user message. Empty messages fail with ErrEmptyMessage.
func (c *ChatService) Send(ctx context.Context, sessionID, message string) (*ProcessorOutput, error) {
	output, err := c.processor.Execute(ctx, ProcessorInput{UserMessage: message, SessionID: sessionID})
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("session_id", sessionID).
		Str("intent", output.Result.Intent).
		Int64("processing_ms", output.ProcessingTime).
		Msg("Chat turn processed")

	return output, nil
}

// Clear empties the session's history
func (c *ChatService) Clear(ctx context.Context, sessionID string) error {
	if err := c.history.Clear(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to clear conversation: %w", err)
	}
	logger.Info().Str("session_id", sessionID).Msg("Conversation cleared")
	return nil
}

// History returns the session's turns, oldest first
func (c *ChatService) History(ctx context.Context, sessionID string) ([]pkg.ConversationTurn, error) {
	turns, err := c.history.GetHistory(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	return turns, nil
}

// Ping checks the history backend
func (c *ChatService) Ping(ctx context.Context) error {
	return c.history.Ping(ctx)
}
