// Package sentiment scores the polarity of short English messages.
package sentiment

import (
	"sync"

	"github.com/jonreiter/govader"
)

// Scorer returns a polarity in [-1, 1] for a piece of text.
type Scorer interface {
	Polarity(text string) (float64, error)
}

// ScorerFunc adapts a plain function to the Scorer interface.
type ScorerFunc func(text string) (float64, error)

func (f ScorerFunc) Polarity(text string) (float64, error) { return f(text) }

// The analyzer parses its lexicon on construction and is read-only afterwards.
var sharedAnalyzer = sync.OnceValue(govader.NewSentimentIntensityAnalyzer)

// VaderScorer scores text with the VADER lexicon and rules.
type VaderScorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewVaderScorer returns a scorer backed by the process-wide VADER analyzer.
func NewVaderScorer() *VaderScorer {
	return &VaderScorer{analyzer: sharedAnalyzer()}
}

// Polarity implements Scorer with VADER's normalised compound score.
func (s *VaderScorer) Polarity(text string) (float64, error) {
	return s.analyzer.PolarityScores(text).Compound, nil
}
