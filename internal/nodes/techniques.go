package nodes

import (
	"context"
	"errors"

	"gentherapist/internal/core"
	"gentherapist/pkg"
)

// TechniqueCatalog resolves the technique set for an intent
type TechniqueCatalog interface {
	GetTechniquesByIntent(intent string) pkg.TechniqueSet
}

// TechniquesNode attaches the CBT techniques for the detected intent
type TechniquesNode struct {
	catalog TechniqueCatalog
}

// NewTechniquesNode creates a new techniques node
func NewTechniquesNode(catalog TechniqueCatalog) *TechniquesNode {
	return &TechniquesNode{catalog: catalog}
}

// Execute looks up the techniques and ends the flow
func (t *TechniquesNode) Execute(ctx context.Context, input core.NodeInput) (core.NodeOutput, error) {
	if input.Analysis == nil {
		return core.NodeOutput{}, errors.New("no analysis available")
	}

	set := t.catalog.GetTechniquesByIntent(input.Analysis.Intent)

	return core.NodeOutput{
		Data:     map[string]any{core.DataTechniques: set},
		Complete: true,
	}, nil
}

// GetName returns the node name
func (t *TechniquesNode) GetName() string {
	return core.NodeTechniques
}

// GetType returns the node type
func (t *TechniquesNode) GetType() core.NodeType {
	return core.NodeTypeTechniques
}
