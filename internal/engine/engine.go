// Package engine classifies chat messages and composes replies from the
// knowledge base templates.
package engine

import (
	"slices"

	"gentherapist/internal/config"
	"gentherapist/internal/sentiment"
	"gentherapist/pkg"
	"gentherapist/src/logger"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	positiveThreshold = 0.1
	negativeThreshold = -0.1
)

// Engine is immutable after New and safe for concurrent use as long as the
// injected Rand is.
type Engine struct {
	intents       []pkg.IntentProfile
	profiles      map[string]pkg.IntentProfile
	canned        map[string]bool
	validations   pkg.ResponseTemplateSet
	coping        pkg.CopingSuggestionSet
	topics        []pkg.TopicFragment
	encouragement string
	stopWords     map[string]struct{}
	crisis        pkg.CrisisConfig

	scorer sentiment.Scorer
	rng    Rand
	log    zerolog.Logger
}

// Option customises an Engine.
type Option func(*Engine)

// WithRand replaces the random source used to pick template fragments.
func WithRand(r Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// WithScorer replaces the sentiment scorer.
func WithScorer(s sentiment.Scorer) Option {
	return func(e *Engine) { e.scorer = s }
}

// New builds an engine from the knowledge base. Keywords are normalised to
// lower case once here so matching only lowers the message.
func New(k *config.Knowledge, opts ...Option) *Engine {
	e := &Engine{
		profiles:      make(map[string]pkg.IntentProfile),
		canned:        make(map[string]bool),
		validations:   k.Validations(),
		coping:        k.CopingSuggestions(),
		topics:        k.Topics(),
		encouragement: k.Encouragement(),
		stopWords:     make(map[string]struct{}),
		crisis:        k.Crisis(),
		scorer:        sentiment.NewVaderScorer(),
		rng:           globalRand{},
		log:           logger.Component("engine"),
	}

	for _, intent := range k.Intents() {
		intent.Keywords = lowerAll(intent.Keywords)
		e.intents = append(e.intents, intent)
		e.profiles[intent.Name] = intent
	}
	for _, name := range config.CannedIntents {
		e.canned[name] = true
	}
	for i := range e.topics {
		e.topics[i].Keywords = lowerAll(e.topics[i].Keywords)
	}
	for _, w := range k.StopWords() {
		e.stopWords[lower(w)] = struct{}{}
	}
	e.crisis.Keywords = lowerAll(e.crisis.Keywords)

	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Analyze runs every classifier over text in one pass.
func (e *Engine) Analyze(text string) pkg.Analysis {
	return pkg.Analysis{
		Intent:    e.DetectIntent(text),
		Sentiment: e.AnalyzeSentiment(text),
		IsCrisis:  e.DetectCrisis(text),
		Keywords:  e.ExtractKeywords(text),
	}
}

// IntentNames lists the declared intents in matching order.
func (e *Engine) IntentNames() []string {
	names := make([]string, 0, len(e.intents))
	for _, intent := range e.intents {
		names = append(names, intent.Name)
	}
	return names
}

func lower(s string) string {
	// Casers carry state and are not safe to share between goroutines.
	return cases.Lower(language.Und).String(s)
}

func lowerAll(in []string) []string {
	out := slices.Clone(in)
	for i := range out {
		out[i] = lower(out[i])
	}
	return out
}
