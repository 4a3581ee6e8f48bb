package model

import "time"

// ----------------------------------------------------
// ================ Config ================

// LogConfig controls the global zerolog logger
type LogConfig struct {
	Level      string `envconfig:"LOG_LEVEL" default:"info"`
	Format     string `envconfig:"LOG_FORMAT" default:"json"`     // json, console
	Output     string `envconfig:"LOG_OUTPUT" default:"stdout"`   // stdout, stderr, file
	FilePath   string `envconfig:"LOG_FILE_PATH" default:"logs/gentherapist.log"`
	TimeFormat string `envconfig:"LOG_TIME_FORMAT" default:"rfc3339"` // rfc3339, unix, iso8601
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr            string        `envconfig:"SERVER_ADDR" default:":8080"`
	Mode            string        `envconfig:"GIN_MODE" default:"release"`
	AllowedOrigins  []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://127.0.0.1:3000"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
	CookieSecure    bool          `envconfig:"SESSION_COOKIE_SECURE" default:"false"`
}

// ConversationConfig selects and tunes the session history store
type ConversationConfig struct {
	Backend  string        `envconfig:"SESSION_BACKEND" default:"memory"` // memory, redis
	RedisURL string        `envconfig:"REDIS_URL"`
	TTL      time.Duration `envconfig:"SESSION_TTL" default:"60m"`
	MaxTurns int           `envconfig:"SESSION_MAX_TURNS" default:"50"`
}

// KnowledgeConfig points at an optional knowledge base override
type KnowledgeConfig struct {
	File string `envconfig:"GENTHERAPIST_KNOWLEDGE_FILE"`
}
