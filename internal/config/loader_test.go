package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gentherapist/internal/core"
	"gentherapist/pkg"
	"gentherapist/src/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalKnowledge = `
intents:
  - name: anxiety
    keywords: [anxious]
    questions: ["Why?"]
  - name: greeting
    keywords: [hello]
    responses: ["Hi"]
validations:
  general: ["I'm listening."]
crisis:
  keywords: [suicide]
  response: "Call someone."
techniques:
  general:
    title: General
    exercises:
      - name: Breathe
`

func TestDefaultKnowledge(t *testing.T) {
	k, err := DefaultKnowledge()
	require.NoError(t, err)

	var names []string
	for _, intent := range k.Intents() {
		names = append(names, intent.Name)
	}
	assert.Equal(t, []string{"anxiety", "depression", "stress", "greeting", "gratitude", "goodbye"}, names)

	for _, intent := range k.Intents()[:3] {
		assert.Len(t, intent.Questions, 5, intent.Name)
		assert.Len(t, k.CopingSuggestions()[intent.Name], 4, intent.Name)
	}
	assert.Len(t, k.Intents()[3].Responses, 4)
	assert.Len(t, k.Intents()[4].Responses, 3)
	assert.Len(t, k.Intents()[5].Responses, 3)

	for _, category := range []string{"anxiety", "depression", "stress", "general"} {
		assert.Len(t, k.Validations()[category], 4, category)
	}

	assert.Len(t, k.Topics(), 4)
	assert.Equal(t, "I'm glad to hear some positivity in your message!", k.Encouragement())
	assert.Contains(t, k.StopWords(), "through")

	crisis := k.Crisis()
	assert.Contains(t, crisis.Keywords, "kill myself")
	assert.Contains(t, crisis.Keywords, "hopeless")
	assert.Contains(t, crisis.Response, "9152987821")
	assert.Contains(t, crisis.Response, "Your life matters.")

	techniques := k.Techniques()
	assert.Len(t, techniques, 4)
	assert.Equal(t, "General Wellness Techniques", techniques[pkg.IntentGeneral].Title)
	for name, set := range techniques {
		assert.Len(t, set.Exercises, 3, name)
	}

	assert.Empty(t, k.UncoveredIntents())
}

func TestKnowledgeAccessorsReturnCopies(t *testing.T) {
	k, err := DefaultKnowledge()
	require.NoError(t, err)

	intents := k.Intents()
	intents[0].Keywords[0] = "mutated"
	techniques := k.Techniques()
	techniques[pkg.IntentAnxiety].Exercises[0].Name = "mutated"
	k.Validations()[pkg.IntentGeneral][0] = "mutated"

	assert.Equal(t, "anxious", k.Intents()[0].Keywords[0])
	assert.Equal(t, "4-7-8 Breathing", k.Techniques()[pkg.IntentAnxiety].Exercises[0].Name)
	assert.NotEqual(t, "mutated", k.Validations()[pkg.IntentGeneral][0])
}

func TestLoadKnowledge(t *testing.T) {
	t.Run("empty path uses embedded default", func(t *testing.T) {
		k, err := LoadKnowledge("")
		require.NoError(t, err)
		assert.Len(t, k.Intents(), 6)
	})

	t.Run("override file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "knowledge.yaml")
		require.NoError(t, os.WriteFile(path, []byte(minimalKnowledge), 0o600))

		k, err := LoadKnowledge(path)
		require.NoError(t, err)
		assert.Len(t, k.Intents(), 2)
		assert.Equal(t, []string{"anxiety"}, k.UncoveredIntents())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadKnowledge(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestParseKnowledgeRejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"bad yaml", "intents: [unterminated"},
		{"no intents", "validations: {general: [x]}"},
		{"duplicate intent", `
intents:
  - {name: anxiety, keywords: [a]}
  - {name: anxiety, keywords: [b]}
`},
		{"reserved general intent", `
intents:
  - {name: general, keywords: [a]}
`},
		{"greeting without responses", `
intents:
  - {name: greeting, keywords: [hello]}
validations: {general: [x]}
crisis: {keywords: [suicide], response: help}
techniques: {general: {title: G, exercises: [{name: B}]}}
`},
		{"no crisis keywords", `
intents:
  - {name: anxiety, keywords: [a]}
validations: {general: [x]}
crisis: {response: help}
techniques: {general: {title: G, exercises: [{name: B}]}}
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseKnowledge([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestParseKnowledgeRequiresGeneralTechniques(t *testing.T) {
	doc := `
intents:
  - {name: anxiety, keywords: [a]}
validations: {general: [x]}
crisis: {keywords: [suicide], response: help}
techniques: {anxiety: {title: A, exercises: [{name: B}]}}
`
	_, err := ParseKnowledge([]byte(doc))
	assert.ErrorIs(t, err, ErrNoGeneralTechniques)
}

func TestBuildCoreConfig(t *testing.T) {
	cfg := BuildCoreConfig(model.ConversationConfig{Backend: "memory"})

	assert.Equal(t, 50, cfg.Session.MaxTurns)
	assert.Equal(t, 60*time.Minute, cfg.Session.TTL)
	assert.Equal(t, core.NodeAnalysis, cfg.Graph.DefaultFlow.StartNode)
	assert.Equal(t, core.NodeComplete, cfg.Graph.DefaultFlow.Edges[core.NodeTechniques][0].To)
}
