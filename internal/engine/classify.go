package engine

import (
	"fmt"
	"strings"

	"gentherapist/pkg"
)

// AnalyzeSentiment maps the scorer polarity to a label. Scorer errors and
// panics are logged and read as neutral.
func (e *Engine) AnalyzeSentiment(text string) (label pkg.Sentiment) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Warn().Str("panic", fmt.Sprint(r)).Msg("Sentiment scorer panicked, using neutral")
			label = pkg.SentimentNeutral
		}
	}()

	score, err := e.scorer.Polarity(text)
	if err != nil {
		e.log.Warn().Err(err).Msg("Sentiment scoring failed, using neutral")
		return pkg.SentimentNeutral
	}

	switch {
	case score > positiveThreshold:
		return pkg.SentimentPositive
	case score < negativeThreshold:
		return pkg.SentimentNegative
	default:
		return pkg.SentimentNeutral
	}
}

// DetectIntent returns the first declared intent with a keyword contained in
// the lower-cased text. Matching is by substring, so "hi" also matches
// "this".
func (e *Engine) DetectIntent(text string) string {
	lowered := lower(text)
	for _, intent := range e.intents {
		if containsAny(lowered, intent.Keywords) {
			return intent.Name
		}
	}
	return pkg.IntentGeneral
}

// DetectCrisis reports whether the text contains any crisis phrase.
func (e *Engine) DetectCrisis(text string) bool {
	return containsAny(lower(text), e.crisis.Keywords)
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
