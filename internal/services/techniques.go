package services

import (
	"context"
	"slices"
	"strings"

	"gentherapist/internal/config"
	"gentherapist/pkg"
)

// TechniqueMatch is an exercise found by SearchTechniques together with the
// intent whose set contains it.
type TechniqueMatch struct {
	Intent   string                `json:"intent"`
	Exercise pkg.TechniqueExercise `json:"exercise"`
}

// TechniqueService serves the CBT technique catalog. It is read-only after
// construction.
type TechniqueService struct {
	sets    map[string]pkg.TechniqueSet
	intents []string
}

// NewTechniqueService creates the catalog from the knowledge base
func NewTechniqueService(k *config.Knowledge) *TechniqueService {
	sets := k.Techniques()
	intents := make([]string, 0, len(sets))
	for name := range sets {
		intents = append(intents, name)
	}
	slices.Sort(intents)

	return &TechniqueService{sets: sets, intents: intents}
}

// GetTechniquesByIntent returns the technique set for intent, or the general
// set for intents without one.
func (ts *TechniqueService) GetTechniquesByIntent(intent string) pkg.TechniqueSet {
	set, ok := ts.sets[intent]
	if !ok {
		set = ts.sets[pkg.IntentGeneral]
	}
	return pkg.TechniqueSet{Title: set.Title, Exercises: slices.Clone(set.Exercises)}
}

// Intents lists the intents that have their own technique set, sorted.
func (ts *TechniqueService) Intents() []string {
	return slices.Clone(ts.intents)
}

// SearchTechniques finds exercises whose name, description or instructions
// contain query, case-insensitively. An empty query returns every exercise.
func (ts *TechniqueService) SearchTechniques(ctx context.Context, query string) []TechniqueMatch {
	queryLower := strings.ToLower(strings.TrimSpace(query))

	var results []TechniqueMatch
	for _, intent := range ts.intents {
		if ctx.Err() != nil {
			return results
		}
		for _, ex := range ts.sets[intent].Exercises {
			if queryLower == "" ||
				strings.Contains(strings.ToLower(ex.Name), queryLower) ||
				strings.Contains(strings.ToLower(ex.Description), queryLower) ||
				strings.Contains(strings.ToLower(ex.Instructions), queryLower) {
				results = append(results, TechniqueMatch{Intent: intent, Exercise: ex})
			}
		}
	}

	return results
}
