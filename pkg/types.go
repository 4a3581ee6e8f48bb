package pkg

// Core types shared by the engine, the technique catalog and the chat layer.

// Sentiment is the polarity label of a message
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Role identifies who authored a conversation turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Well-known intent names
const (
	IntentAnxiety    = "anxiety"
	IntentDepression = "depression"
	IntentStress     = "stress"
	IntentGreeting   = "greeting"
	IntentGratitude  = "gratitude"
	IntentGoodbye    = "goodbye"
	IntentGeneral    = "general"
)

// IntentProfile describes one intent: the keywords that trigger it and
// either follow-up questions or canned responses.
type IntentProfile struct {
	Name      string   `yaml:"name" json:"name"`
	Keywords  []string `yaml:"keywords" json:"keywords"`
	Questions []string `yaml:"questions,omitempty" json:"questions,omitempty"`
	Responses []string `yaml:"responses,omitempty" json:"responses,omitempty"`
}

// ResponseTemplateSet maps a template category (e.g. "anxiety", "general")
// to its candidate phrases.
type ResponseTemplateSet map[string][]string

// CopingSuggestionSet maps an intent name to its coping suggestions.
type CopingSuggestionSet map[string][]string

// TopicFragment is appended when any of its keywords was extracted from the message
type TopicFragment struct {
	Keywords []string `yaml:"keywords" json:"keywords"`
	Text     string   `yaml:"text" json:"text"`
}

// ConversationTurn represents a message in conversation history
type ConversationTurn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Sentiment Sentiment `json:"sentiment"`
}

// TechniqueExercise is a single coping exercise shown next to a reply
type TechniqueExercise struct {
	Name         string `yaml:"name" json:"name"`
	Icon         string `yaml:"icon" json:"icon"`
	Description  string `yaml:"description" json:"description"`
	Instructions string `yaml:"instructions" json:"instructions"`
}

// TechniqueSet groups the exercises suggested for one intent
type TechniqueSet struct {
	Title     string              `yaml:"title" json:"title"`
	Exercises []TechniqueExercise `yaml:"exercises" json:"exercises"`
}

// CrisisConfig holds the crisis trigger phrases and the fixed resource message
type CrisisConfig struct {
	Keywords []string `yaml:"keywords" json:"keywords"`
	Response string   `yaml:"response" json:"response"`
}

// Analysis is the classification of one message
type Analysis struct {
	Intent    string    `json:"intent"`
	Sentiment Sentiment `json:"sentiment"`
	IsCrisis  bool      `json:"is_crisis"`
	Keywords  []string  `json:"keywords"`
}

// ChatResult is what the chat layer returns for one user message
type ChatResult struct {
	Reply      string       `json:"reply"`
	Sentiment  Sentiment    `json:"sentiment"`
	Intent     string       `json:"intent"`
	IsCrisis   bool         `json:"is_crisis"`
	Techniques TechniqueSet `json:"techniques"`
}
