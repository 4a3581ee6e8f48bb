package core

import (
	"context"
	"errors"
	"testing"

	"gentherapist/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubNode struct {
	name   string
	output NodeOutput
	err    error
	seen   *NodeInput
}

func (s *stubNode) Execute(ctx context.Context, input NodeInput) (NodeOutput, error) {
	in := input
	s.seen = &in
	return s.output, s.err
}

func (s *stubNode) GetName() string { return s.name }
func (s *stubNode) GetType() NodeType { return NodeType(s.name) }

func linearFlow(names ...string) GraphFlow {
	edges := make(map[string][]GraphEdge)
	for i := 0; i < len(names)-1; i++ {
		edges[names[i]] = []GraphEdge{{To: names[i+1], Priority: 1}}
	}
	return GraphFlow{StartNode: names[0], Edges: edges}
}

func newProcessor(t *testing.T, flow GraphFlow, nodes ...Node) GraphProcessor {
	t.Helper()
	p := NewGraphProcessor(Config{Graph: GraphConfig{DefaultFlow: flow}})
	for _, n := range nodes {
		require.NoError(t, p.AddNode(n))
	}
	return p
}

func TestExecuteMergesNodeOutput(t *testing.T) {
	analysis := &pkg.Analysis{Intent: "stress", Sentiment: pkg.SentimentNegative}
	history := []pkg.ConversationTurn{{Role: pkg.RoleUser, Content: "hi"}}
	set := pkg.TechniqueSet{Title: "Stress Management Techniques"}

	first := &stubNode{name: "a", output: NodeOutput{Data: map[string]any{
		DataMessage:  "trimmed",
		DataAnalysis: analysis,
		"custom":     42,
	}}}
	second := &stubNode{name: "b", output: NodeOutput{Data: map[string]any{
		DataHistory:        history,
		DataSessionUpdated: true,
		DataReply:          "reply text",
	}}}
	third := &stubNode{name: "c", output: NodeOutput{Data: map[string]any{DataTechniques: set}}}

	p := newProcessor(t, linearFlow("a", "b", "c"), first, second, third)
	out, err := p.Execute(context.Background(), ProcessorInput{UserMessage: "  trimmed ", SessionID: "s1"})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, out.Metadata["execution_path"])
	assert.Equal(t, 42, out.Metadata["a_custom"])
	assert.True(t, out.SessionUpdated)
	assert.Equal(t, pkg.ChatResult{
		Reply:      "reply text",
		Sentiment:  pkg.SentimentNegative,
		Intent:     "stress",
		Techniques: set,
	}, out.Result)

	require.NotNil(t, third.seen)
	assert.Equal(t, "trimmed", third.seen.UserMessage)
	assert.Equal(t, "s1", third.seen.SessionID)
	assert.Equal(t, analysis, third.seen.Analysis)
	assert.Equal(t, history, third.seen.History)
	assert.Equal(t, "reply text", third.seen.Reply)
	assert.Equal(t, 42, third.seen.Metadata["custom"])
}

func TestExecuteWrapsNodeErrors(t *testing.T) {
	failing := &stubNode{name: "a", err: ErrEmptyMessage}
	p := newProcessor(t, linearFlow("a", "b"), failing)

	_, err := p.Execute(context.Background(), ProcessorInput{})
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestExecuteRecordsNonFatalErrors(t *testing.T) {
	warn := &stubNode{name: "a", output: NodeOutput{Error: errors.New("soft failure")}}
	next := &stubNode{name: "b"}
	p := newProcessor(t, linearFlow("a", "b"), warn, next)

	out, err := p.Execute(context.Background(), ProcessorInput{})
	require.NoError(t, err)
	assert.Equal(t, []string{"soft failure"}, out.Metadata["errors"])
	assert.NotNil(t, next.seen)
}

func TestExecuteMissingNode(t *testing.T) {
	p := newProcessor(t, linearFlow("a", "ghost"), &stubNode{name: "a"})

	_, err := p.Execute(context.Background(), ProcessorInput{})
	assert.ErrorContains(t, err, "node not found: ghost")
}

func TestExecuteStopsOnComplete(t *testing.T) {
	done := &stubNode{name: "a", output: NodeOutput{Complete: true}}
	skipped := &stubNode{name: "b"}
	p := newProcessor(t, linearFlow("a", "b"), done, skipped)

	out, err := p.Execute(context.Background(), ProcessorInput{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, out.Metadata["execution_path"])
	assert.Nil(t, skipped.seen)
}

func TestExecuteHonoursCancelledContext(t *testing.T) {
	p := newProcessor(t, linearFlow("a"), &stubNode{name: "a"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Execute(ctx, ProcessorInput{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetNextNodeUsesConditionsByPriority(t *testing.T) {
	flow := GraphFlow{
		StartNode: "a",
		Edges: map[string][]GraphEdge{
			"a": {
				{To: "fallback", Priority: 2},
				{To: "crisis", Condition: map[string]any{"is_crisis": true}, Priority: 1},
			},
		},
	}
	g := &DefaultGraphProcessor{flow: flow}

	assert.Equal(t, "crisis", g.getNextNode("a", NodeOutput{Data: map[string]any{"is_crisis": true}}))
	assert.Equal(t, "fallback", g.getNextNode("a", NodeOutput{Data: map[string]any{"is_crisis": false}}))
	assert.Equal(t, NodeComplete, g.getNextNode("unknown", NodeOutput{}))
}

func TestAddNodeAndSetFlowValidation(t *testing.T) {
	p := NewGraphProcessor(Config{})

	assert.Error(t, p.AddNode(nil))
	assert.Error(t, p.AddNode(&stubNode{}))
	assert.Error(t, p.SetFlow(GraphFlow{}))

	require.NoError(t, p.AddNode(&stubNode{name: "a"}))
	node, err := p.GetNode("a")
	require.NoError(t, err)
	assert.Equal(t, "a", node.GetName())

	_, err = p.GetNode("b")
	assert.Error(t, err)
}
