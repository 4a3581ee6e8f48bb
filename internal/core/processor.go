package core

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"gentherapist/pkg"
	"gentherapist/src/logger"
)

// DefaultGraphProcessor implements the GraphProcessor interface
type DefaultGraphProcessor struct {
	nodes  map[string]Node
	config Config
	flow   GraphFlow
}

// NewGraphProcessor creates a new graph processor
func NewGraphProcessor(config Config) GraphProcessor {
	return &DefaultGraphProcessor{
		nodes:  make(map[string]Node),
		config: config,
		flow:   config.Graph.DefaultFlow,
	}
}

// Execute runs the graph flow with the given input
func (g *DefaultGraphProcessor) Execute(ctx context.Context, input ProcessorInput) (*ProcessorOutput, error) {
	startTime := time.Now()

	logger.Debug().Str("session_id", input.SessionID).Msg("Starting graph execution")

	nodeInput := NodeInput{
		UserMessage: input.UserMessage,
		SessionID:   input.SessionID,
		Metadata:    make(map[string]any),
	}

	currentNode := g.flow.StartNode
	output := &ProcessorOutput{
		Metadata: make(map[string]any),
	}

	var executionPath []string

	for currentNode != "" && currentNode != NodeComplete {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		executionPath = append(executionPath, currentNode)

		node, exists := g.nodes[currentNode]
		if !exists {
			return nil, fmt.Errorf("node not found: %s", currentNode)
		}

		nodeOutput, err := node.Execute(ctx, nodeInput)
		if err != nil {
			logger.Debug().Err(err).Str("node", currentNode).Msg("Node execution failed")
			return nil, fmt.Errorf("error executing node %s: %w", currentNode, err)
		}

		// Non-fatal node errors are recorded and the flow continues
		if nodeOutput.Error != nil {
			logger.Warn().Err(nodeOutput.Error).Str("node", currentNode).Msg("Node returned error")
			errs, _ := output.Metadata["errors"].([]string)
			output.Metadata["errors"] = append(errs, nodeOutput.Error.Error())
		}

		g.processNodeOutput(currentNode, nodeOutput, output, &nodeInput)

		if nodeOutput.Complete {
			break
		}

		nextNode := nodeOutput.NextNode
		if nextNode == "" {
			nextNode = g.getNextNode(currentNode, nodeOutput)
		}

		currentNode = nextNode
	}

	processingTime := time.Since(startTime)
	output.ProcessingTime = processingTime.Milliseconds()
	output.Metadata["execution_path"] = executionPath

	logger.Debug().
		Str("session_id", input.SessionID).
		Strs("path", executionPath).
		Dur("duration", processingTime).
		Msg("Graph execution completed")

	return output, nil
}

// AddNode adds a node to the processor
func (g *DefaultGraphProcessor) AddNode(node Node) error {
	if node == nil {
		return fmt.Errorf("node cannot be nil")
	}

	nodeName := node.GetName()
	if nodeName == "" {
		return fmt.Errorf("node name cannot be empty")
	}

	g.nodes[nodeName] = node
	logger.Debug().Str("node", nodeName).Str("type", string(node.GetType())).Msg("Added node")

	return nil
}

// GetNode retrieves a node by name
func (g *DefaultGraphProcessor) GetNode(name string) (Node, error) {
	node, exists := g.nodes[name]
	if !exists {
		return nil, fmt.Errorf("node not found: %s", name)
	}
	return node, nil
}

// SetFlow sets the execution flow
func (g *DefaultGraphProcessor) SetFlow(flow GraphFlow) error {
	if flow.StartNode == "" {
		return fmt.Errorf("start node cannot be empty")
	}

	g.flow = flow
	return nil
}

// processNodeOutput merges node data into the result and the next node's input
func (g *DefaultGraphProcessor) processNodeOutput(nodeName string, nodeOutput NodeOutput, globalOutput *ProcessorOutput, nodeInput *NodeInput) {
	for key, value := range nodeOutput.Data {
		switch key {
		case DataMessage:
			if msg, ok := value.(string); ok {
				nodeInput.UserMessage = msg
			}
		case DataAnalysis:
			if analysis, ok := value.(*pkg.Analysis); ok {
				nodeInput.Analysis = analysis
				globalOutput.Result.Intent = analysis.Intent
				globalOutput.Result.Sentiment = analysis.Sentiment
				globalOutput.Result.IsCrisis = analysis.IsCrisis
			}
		case DataHistory:
			if history, ok := value.([]pkg.ConversationTurn); ok {
				nodeInput.History = history
			}
		case DataReply:
			if reply, ok := value.(string); ok {
				nodeInput.Reply = reply
				globalOutput.Result.Reply = reply
			}
		case DataTechniques:
			if set, ok := value.(pkg.TechniqueSet); ok {
				globalOutput.Result.Techniques = set
			}
		case DataSessionUpdated:
			if updated, ok := value.(bool); ok {
				globalOutput.SessionUpdated = globalOutput.SessionUpdated || updated
			}
		default:
			globalOutput.Metadata[fmt.Sprintf("%s_%s", nodeName, key)] = value
			nodeInput.Metadata[key] = value
		}
	}
}

// getNextNode determines the next node based on flow edges and conditions
func (g *DefaultGraphProcessor) getNextNode(currentNode string, nodeOutput NodeOutput) string {
	edges, exists := g.flow.Edges[currentNode]
	if !exists || len(edges) == 0 {
		return NodeComplete
	}

	// Lower number = higher priority
	sorted := slices.SortedStableFunc(slices.Values(edges), func(a, b GraphEdge) int {
		return cmp.Compare(a.Priority, b.Priority)
	})
	for _, edge := range sorted {
		if evaluateCondition(edge.Condition, nodeOutput) {
			return edge.To
		}
	}

	return edges[0].To
}

// evaluateCondition reports whether every condition key matches the node data
func evaluateCondition(condition map[string]any, nodeOutput NodeOutput) bool {
	for key, expectedValue := range condition {
		actualValue, exists := nodeOutput.Data[key]
		if !exists || actualValue != expectedValue {
			return false
		}
	}
	return true
}
