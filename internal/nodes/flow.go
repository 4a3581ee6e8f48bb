package nodes

import (
	"fmt"

	"gentherapist/internal/core"
	"gentherapist/internal/storage"
)

// Engine classifies messages and composes replies
type Engine interface {
	Classifier
	Responder
}

// NewChatProcessor registers the chat nodes on a processor running cfg's flow
func NewChatProcessor(cfg core.Config, engine Engine, catalog TechniqueCatalog, sessionMgr storage.SessionManager) (core.GraphProcessor, error) {
	processor := core.NewGraphProcessor(cfg)

	for _, node := range []core.Node{
		NewAnalysisNode(engine),
		NewRoutingNode(sessionMgr),
		NewResponseNode(engine, sessionMgr),
		NewTechniquesNode(catalog),
	} {
		if err := processor.AddNode(node); err != nil {
			return nil, fmt.Errorf("failed to add node %s: %w", node.GetName(), err)
		}
	}

	return processor, nil
}
