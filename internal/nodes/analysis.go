package nodes

import (
	"context"
	"strings"

	"gentherapist/internal/core"
	"gentherapist/pkg"
	"gentherapist/src/logger"
)

// Classifier labels a single message
type Classifier interface {
	Analyze(text string) pkg.Analysis
}

// AnalysisNode validates the message and classifies it
type AnalysisNode struct {
	classifier Classifier
}

// NewAnalysisNode creates a new analysis node
func NewAnalysisNode(classifier Classifier) *AnalysisNode {
	return &AnalysisNode{classifier: classifier}
}

// Execute rejects empty messages and attaches intent, sentiment, crisis flag
// and keywords for the following nodes.
func (a *AnalysisNode) Execute(ctx context.Context, input core.NodeInput) (core.NodeOutput, error) {
	message := strings.TrimSpace(input.UserMessage)
	if message == "" {
		return core.NodeOutput{}, core.ErrEmptyMessage
	}

	analysis := a.classifier.Analyze(message)

	event := logger.Info()
	if analysis.IsCrisis {
		event = logger.Warn()
	}
	event.
		Str("session_id", input.SessionID).
		Str("intent", analysis.Intent).
		Str("sentiment", string(analysis.Sentiment)).
		Bool("is_crisis", analysis.IsCrisis).
		Msg("Message analyzed")

	return core.NodeOutput{
		Data: map[string]any{
			core.DataMessage:  message,
			core.DataAnalysis: &analysis,
			"is_crisis":       analysis.IsCrisis,
		},
	}, nil
}

// GetName returns the node name
func (a *AnalysisNode) GetName() string {
	return core.NodeAnalysis
}

// GetType returns the node type
func (a *AnalysisNode) GetType() core.NodeType {
	return core.NodeTypeAnalysis
}
