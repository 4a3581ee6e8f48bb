package core

import (
	"context"
	"errors"
	"time"

	"gentherapist/pkg"
)

// ErrEmptyMessage is returned when a chat message is empty after trimming.
var ErrEmptyMessage = errors.New("message cannot be empty")

// Node represents a single processing unit in the graph flow
type Node interface {
	Execute(ctx context.Context, input NodeInput) (NodeOutput, error)
	GetName() string
	GetType() NodeType
}

// NodeType defines the different types of nodes in the graph
type NodeType string

const (
	NodeTypeAnalysis   NodeType = "analysis"
	NodeTypeRouting    NodeType = "routing"
	NodeTypeResponse   NodeType = "response"
	NodeTypeTechniques NodeType = "techniques"
)

// Node names used by the default chat flow
const (
	NodeAnalysis   = "analysis"
	NodeRouting    = "routing"
	NodeResponse   = "response"
	NodeTechniques = "techniques"
	NodeComplete   = "complete"
)

// Keys understood by the processor when merging node output
const (
	DataMessage        = "message"
	DataAnalysis       = "analysis"
	DataHistory        = "history"
	DataReply          = "reply"
	DataTechniques     = "techniques"
	DataSessionUpdated = "session_updated"
)

// NodeInput contains the input data for a node
type NodeInput struct {
	UserMessage string                 `json:"user_message"`
	SessionID   string                 `json:"session_id"`
	History     []pkg.ConversationTurn `json:"history"`
	Analysis    *pkg.Analysis          `json:"analysis,omitempty"`
	Reply       string                 `json:"reply,omitempty"`
	Metadata    map[string]any         `json:"metadata"`
}

// NodeOutput contains the output data from a node
type NodeOutput struct {
	Data     map[string]any `json:"data"`
	NextNode string         `json:"next_node,omitempty"`
	Error    error          `json:"error,omitempty"`
	Complete bool           `json:"complete"`
}

// GraphProcessor orchestrates the execution of nodes in a graph flow
type GraphProcessor interface {
	Execute(ctx context.Context, input ProcessorInput) (*ProcessorOutput, error)
	AddNode(node Node) error
	GetNode(name string) (Node, error)
	SetFlow(flow GraphFlow) error
}

// ProcessorInput is the main input for the graph processor
type ProcessorInput struct {
	UserMessage string `json:"user_message"`
	SessionID   string `json:"session_id"`
}

// ProcessorOutput is the main output from the graph processor
type ProcessorOutput struct {
	Result         pkg.ChatResult `json:"result"`
	SessionUpdated bool           `json:"session_updated"`
	ProcessingTime int64          `json:"processing_time_ms"`
	Metadata       map[string]any `json:"metadata"`
}

// GraphFlow defines the execution flow between nodes
type GraphFlow struct {
	StartNode string                 `json:"start_node"`
	Edges     map[string][]GraphEdge `json:"edges"` // node_name -> possible next nodes
}

// GraphEdge represents a connection between two nodes with conditions
type GraphEdge struct {
	To        string         `json:"to"`
	Condition map[string]any `json:"condition,omitempty"`
	Priority  int            `json:"priority"`
}

// Config holds all configuration for the graph processor
type Config struct {
	Session SessionConfig `json:"session"`
	Graph   GraphConfig   `json:"graph"`
}

// SessionConfig holds conversation history settings
type SessionConfig struct {
	Backend  string        `json:"backend"`
	RedisURL string        `json:"redis_url"`
	TTL      time.Duration `json:"ttl"`
	MaxTurns int           `json:"max_turns"`
}

// GraphConfig holds graph flow configuration
type GraphConfig struct {
	DefaultFlow GraphFlow `json:"default_flow"`
}
