package config

import (
	_ "embed"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"gentherapist/internal/core"
	"gentherapist/pkg"
	"gentherapist/src/model"

	"gopkg.in/yaml.v3"
)

//go:embed knowledge.yaml
var defaultKnowledgeYAML []byte

// ErrNoGeneralTechniques is returned when the knowledge base has no
// fallback technique set.
var ErrNoGeneralTechniques = errors.New("knowledge base has no general technique set")

// Knowledge represents the structure of knowledge.yaml. It is immutable after
// loading; accessors hand out copies.
type Knowledge struct {
	intents           []pkg.IntentProfile
	validations       pkg.ResponseTemplateSet
	copingSuggestions pkg.CopingSuggestionSet
	topics            []pkg.TopicFragment
	encouragement     string
	stopWords         []string
	crisis            pkg.CrisisConfig
	techniques        map[string]pkg.TechniqueSet
}

type knowledgeFile struct {
	Intents           []pkg.IntentProfile         `yaml:"intents"`
	Validations       pkg.ResponseTemplateSet     `yaml:"validations"`
	CopingSuggestions pkg.CopingSuggestionSet     `yaml:"coping_suggestions"`
	Topics            []pkg.TopicFragment         `yaml:"topics"`
	Encouragement     string                      `yaml:"encouragement"`
	StopWords         []string                    `yaml:"stop_words"`
	Crisis            pkg.CrisisConfig            `yaml:"crisis"`
	Techniques        map[string]pkg.TechniqueSet `yaml:"techniques"`
}

var defaultKnowledge = sync.OnceValues(func() (*Knowledge, error) {
	return ParseKnowledge(defaultKnowledgeYAML)
})

// DefaultKnowledge returns the knowledge base compiled into the binary.
func DefaultKnowledge() (*Knowledge, error) {
	return defaultKnowledge()
}

// LoadKnowledge loads the knowledge base from filepath, or the embedded
// default when filepath is empty.
func LoadKnowledge(filepath string) (*Knowledge, error) {
	if filepath == "" {
		return DefaultKnowledge()
	}

	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("error reading knowledge file: %w", err)
	}

	return ParseKnowledge(data)
}

// ParseKnowledge decodes and validates a knowledge document.
func ParseKnowledge(data []byte) (*Knowledge, error) {
	var file knowledgeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("error parsing knowledge YAML: %w", err)
	}

	if err := file.validate(); err != nil {
		return nil, fmt.Errorf("invalid knowledge base: %w", err)
	}

	return &Knowledge{
		intents:           cloneIntents(file.Intents),
		validations:       cloneTable(file.Validations),
		copingSuggestions: cloneTable(file.CopingSuggestions),
		topics:            cloneTopics(file.Topics),
		encouragement:     strings.TrimSpace(file.Encouragement),
		stopWords:         slices.Clone(file.StopWords),
		crisis:            pkg.CrisisConfig{Keywords: slices.Clone(file.Crisis.Keywords), Response: file.Crisis.Response},
		techniques:        cloneTechniques(file.Techniques),
	}, nil
}

func (f *knowledgeFile) validate() error {
	if len(f.Intents) == 0 {
		return errors.New("no intents declared")
	}

	seen := make(map[string]bool, len(f.Intents))
	for i, intent := range f.Intents {
		if intent.Name == "" {
			return fmt.Errorf("intent %d has no name", i)
		}
		if intent.Name == pkg.IntentGeneral {
			return fmt.Errorf("intent %q is reserved for the fallback", pkg.IntentGeneral)
		}
		if seen[intent.Name] {
			return fmt.Errorf("intent %q declared twice", intent.Name)
		}
		seen[intent.Name] = true

		if len(intent.Keywords) == 0 {
			return fmt.Errorf("intent %q has no keywords", intent.Name)
		}
		if slices.Contains(intent.Keywords, "") {
			return fmt.Errorf("intent %q has an empty keyword", intent.Name)
		}
	}

	for _, name := range CannedIntents {
		for _, intent := range f.Intents {
			if intent.Name == name && len(intent.Responses) == 0 {
				return fmt.Errorf("intent %q needs at least one response", name)
			}
		}
	}

	if len(f.Validations[pkg.IntentGeneral]) == 0 {
		return errors.New("no general validation phrases")
	}

	if len(f.Crisis.Keywords) == 0 || slices.Contains(f.Crisis.Keywords, "") {
		return errors.New("crisis keywords must be non-empty")
	}
	if strings.TrimSpace(f.Crisis.Response) == "" {
		return errors.New("crisis response is empty")
	}

	for i, topic := range f.Topics {
		if len(topic.Keywords) == 0 || topic.Text == "" {
			return fmt.Errorf("topic %d needs keywords and text", i)
		}
	}

	general, ok := f.Techniques[pkg.IntentGeneral]
	if !ok || len(general.Exercises) == 0 {
		return ErrNoGeneralTechniques
	}

	return nil
}

// CannedIntents are answered with a fixed response instead of a composed one.
var CannedIntents = []string{pkg.IntentGreeting, pkg.IntentGratitude, pkg.IntentGoodbye}

// Intents returns the intent profiles in matching order.
func (k *Knowledge) Intents() []pkg.IntentProfile { return cloneIntents(k.intents) }

// Validations returns the validation phrases keyed by category.
func (k *Knowledge) Validations() pkg.ResponseTemplateSet { return cloneTable(k.validations) }

// CopingSuggestions returns coping suggestions keyed by intent.
func (k *Knowledge) CopingSuggestions() pkg.CopingSuggestionSet {
	return cloneTable(k.copingSuggestions)
}

// Topics returns the topic rules in evaluation order.
func (k *Knowledge) Topics() []pkg.TopicFragment { return cloneTopics(k.topics) }

func (k *Knowledge) Encouragement() string { return k.encouragement }

func (k *Knowledge) StopWords() []string { return slices.Clone(k.stopWords) }

// Crisis returns the crisis trigger phrases and resource message.
func (k *Knowledge) Crisis() pkg.CrisisConfig {
	return pkg.CrisisConfig{Keywords: slices.Clone(k.crisis.Keywords), Response: k.crisis.Response}
}

// Techniques returns the technique catalog keyed by intent.
func (k *Knowledge) Techniques() map[string]pkg.TechniqueSet { return cloneTechniques(k.techniques) }

// UncoveredIntents lists intents that carry questions or coping suggestions
// but have no technique set of their own and fall back to general.
func (k *Knowledge) UncoveredIntents() []string {
	var uncovered []string
	for _, intent := range k.intents {
		_, hasCoping := k.copingSuggestions[intent.Name]
		if len(intent.Questions) == 0 && !hasCoping {
			continue
		}
		if _, ok := k.techniques[intent.Name]; !ok {
			uncovered = append(uncovered, intent.Name)
		}
	}
	return uncovered
}

// BuildCoreConfig creates core.Config with the default chat flow
func BuildCoreConfig(conv model.ConversationConfig) core.Config {
	ttl := conv.TTL
	if ttl <= 0 {
		ttl = 60 * time.Minute
	}
	maxTurns := conv.MaxTurns
	if maxTurns <= 0 {
		maxTurns = 50
	}

	return core.Config{
		Session: core.SessionConfig{
			Backend:  conv.Backend,
			RedisURL: conv.RedisURL,
			TTL:      ttl,
			MaxTurns: maxTurns,
		},
		Graph: core.GraphConfig{
			DefaultFlow: core.GraphFlow{
				StartNode: core.NodeAnalysis,
				Edges: map[string][]core.GraphEdge{
					core.NodeAnalysis: {
						{To: core.NodeRouting, Priority: 1},
					},
					core.NodeRouting: {
						{To: core.NodeResponse, Priority: 1},
					},
					core.NodeResponse: {
						{To: core.NodeTechniques, Priority: 1},
					},
					core.NodeTechniques: {
						{To: core.NodeComplete, Priority: 1},
					},
				},
			},
		},
	}
}

func cloneIntents(in []pkg.IntentProfile) []pkg.IntentProfile {
	out := make([]pkg.IntentProfile, len(in))
	for i, intent := range in {
		out[i] = pkg.IntentProfile{
			Name:      intent.Name,
			Keywords:  slices.Clone(intent.Keywords),
			Questions: slices.Clone(intent.Questions),
			Responses: slices.Clone(intent.Responses),
		}
	}
	return out
}

func cloneTable[M ~map[string][]string](in M) M {
	out := make(M, len(in))
	for k, v := range in {
		out[k] = slices.Clone(v)
	}
	return out
}

func cloneTopics(in []pkg.TopicFragment) []pkg.TopicFragment {
	out := make([]pkg.TopicFragment, len(in))
	for i, topic := range in {
		out[i] = pkg.TopicFragment{Keywords: slices.Clone(topic.Keywords), Text: topic.Text}
	}
	return out
}

func cloneTechniques(in map[string]pkg.TechniqueSet) map[string]pkg.TechniqueSet {
	out := maps.Clone(in)
	for k, set := range out {
		out[k] = pkg.TechniqueSet{Title: set.Title, Exercises: slices.Clone(set.Exercises)}
	}
	return out
}
