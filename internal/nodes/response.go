package nodes

import (
	"context"
	"fmt"

	"gentherapist/internal/core"
	"gentherapist/internal/storage"
	"gentherapist/pkg"
)

// Responder composes a reply for a message
type Responder interface {
	GenerateResponse(text string, history []pkg.ConversationTurn) string
}

// ResponseNode generates the reply and records it as the assistant's turn
type ResponseNode struct {
	responder  Responder
	sessionMgr storage.SessionManager
}

// NewResponseNode creates a new response generation node
func NewResponseNode(responder Responder, sessionMgr storage.SessionManager) *ResponseNode {
	return &ResponseNode{responder: responder, sessionMgr: sessionMgr}
}

// Execute generates a reply from the message and history
func (r *ResponseNode) Execute(ctx context.Context, input core.NodeInput) (core.NodeOutput, error) {
	reply := r.responder.GenerateResponse(input.UserMessage, input.History)

	turn := pkg.ConversationTurn{
		Role:      pkg.RoleAssistant,
		Content:   reply,
		Sentiment: pkg.SentimentNeutral,
	}
	if err := r.sessionMgr.AppendTurns(ctx, input.SessionID, turn); err != nil {
		return core.NodeOutput{}, fmt.Errorf("failed to record reply: %w", err)
	}

	return core.NodeOutput{
		Data: map[string]any{
			core.DataReply:          reply,
			core.DataSessionUpdated: true,
			"length":                len(reply),
		},
	}, nil
}

// GetName returns the node name
func (r *ResponseNode) GetName() string {
	return core.NodeResponse
}

// GetType returns the node type
func (r *ResponseNode) GetType() core.NodeType {
	return core.NodeTypeResponse
}
