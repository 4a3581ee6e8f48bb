package engine

import (
	"slices"
	"strings"

	"gentherapist/pkg"
)

// GenerateResponse composes the reply for one user message. history is
// accepted for callers that keep it but does not influence the reply.
func (e *Engine) GenerateResponse(text string, history []pkg.ConversationTurn) string {
	if e.DetectCrisis(text) {
		e.log.Warn().Int("history_turns", len(history)).Msg("Crisis language detected")
		return e.crisis.Response
	}

	intent := e.DetectIntent(text)
	if e.canned[intent] {
		return e.pick(e.profiles[intent].Responses)
	}

	label := e.AnalyzeSentiment(text)
	keywords := e.ExtractKeywords(text)

	parts := []string{e.pick(e.validationsFor(intent))}

	if topic, ok := e.matchTopic(keywords); ok {
		parts = append(parts, topic)
	}

	if suggestions := e.coping[intent]; len(suggestions) > 0 {
		parts = append(parts, e.pick(suggestions))
	} else if questions := e.profiles[intent].Questions; len(questions) > 0 {
		parts = append(parts, e.pick(questions))
	}

	reply := strings.Join(parts, " ")
	if label == pkg.SentimentPositive && e.encouragement != "" {
		reply += " " + e.encouragement
	}

	e.log.Debug().
		Str("intent", intent).
		Str("sentiment", string(label)).
		Strs("keywords", keywords).
		Int("fragments", len(parts)).
		Msg("Composed reply")

	return reply
}

// Only these intents get their own validation phrases; every other intent,
// including ones added by a knowledge override, is validated generically.
var validatedIntents = []string{pkg.IntentAnxiety, pkg.IntentDepression, pkg.IntentStress}

func (e *Engine) validationsFor(intent string) []string {
	if slices.Contains(validatedIntents, intent) {
		if phrases := e.validations[intent]; len(phrases) > 0 {
			return phrases
		}
	}
	return e.validations[pkg.IntentGeneral]
}

// matchTopic returns the text of the first topic sharing a word with keywords.
func (e *Engine) matchTopic(keywords []string) (string, bool) {
	for _, topic := range e.topics {
		for _, kw := range topic.Keywords {
			if slices.Contains(keywords, kw) {
				return topic.Text, true
			}
		}
	}
	return "", false
}
