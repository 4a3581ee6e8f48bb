package nodes

import (
	"context"
	"errors"
	"fmt"

	"gentherapist/internal/core"
	"gentherapist/internal/storage"
	"gentherapist/pkg"
	"gentherapist/src/logger"
)

// RoutingNode loads the session history and records the user's turn
type RoutingNode struct {
	sessionMgr storage.SessionManager
}

// NewRoutingNode creates a new routing node
func NewRoutingNode(sessionMgr storage.SessionManager) *RoutingNode {
	return &RoutingNode{sessionMgr: sessionMgr}
}

// Execute appends the user turn and passes the history, including that turn,
// to the response node.
func (r *RoutingNode) Execute(ctx context.Context, input core.NodeInput) (core.NodeOutput, error) {
	if input.Analysis == nil {
		return core.NodeOutput{}, errors.New("no analysis available")
	}

	history, err := r.sessionMgr.GetHistory(ctx, input.SessionID)
	if err != nil {
		return core.NodeOutput{}, fmt.Errorf("failed to load history: %w", err)
	}

	turn := pkg.ConversationTurn{
		Role:      pkg.RoleUser,
		Content:   input.UserMessage,
		Sentiment: input.Analysis.Sentiment,
	}
	if err := r.sessionMgr.AppendTurns(ctx, input.SessionID, turn); err != nil {
		return core.NodeOutput{}, fmt.Errorf("failed to record user turn: %w", err)
	}
	history = append(history, turn)

	logger.Debug().Str("session_id", input.SessionID).Int("turns", len(history)).Msg("Routing completed")

	return core.NodeOutput{
		Data: map[string]any{
			core.DataHistory:        history,
			core.DataSessionUpdated: true,
		},
	}, nil
}

// GetName returns the node name
func (r *RoutingNode) GetName() string {
	return core.NodeRouting
}

// GetType returns the node type
func (r *RoutingNode) GetType() core.NodeType {
	return core.NodeTypeRouting
}
