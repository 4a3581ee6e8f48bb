package main

import (
	"context"
	"fmt"
	"os"

	"gentherapist/internal/config"
	"gentherapist/internal/core"
	"gentherapist/internal/engine"
	"gentherapist/internal/nodes"
	"gentherapist/internal/services"
	"gentherapist/internal/storage"
	"gentherapist/src"
	"gentherapist/src/logger"

	"github.com/spf13/cobra"
)

var (
	knowledgeFile string
	logLevel      string

	appConfig *src.Config
)

var rootCmd = &cobra.Command{
	Use:   "gentherapist",
	Short: "GenTherapist - offline CBT wellness companion",
	Long: `GenTherapist is a rule-based mental wellness chatbot.

It classifies each message into an intent, composes an empathetic reply from
templates and suggests CBT techniques. Everything runs locally; no AI
service is contacted.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := src.LoadConfig()
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.LogConfig.Level = logLevel
		}
		if knowledgeFile != "" {
			cfg.KnowledgeConfig.File = knowledgeFile
		}

		if err := logger.InitLogger(cfg.LogConfig); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		appConfig = cfg
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&knowledgeFile, "knowledge", "", "Knowledge base YAML overriding the built-in one (or set GENTHERAPIST_KNOWLEDGE_FILE)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (or set LOG_LEVEL)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(techniquesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// application holds the wired components shared by the commands
type application struct {
	knowledge *config.Knowledge
	catalog   *services.TechniqueService
	sessions  storage.SessionManager
	chat      *core.ChatService
}

func loadKnowledge(cfg *src.Config) (*config.Knowledge, error) {
	k, err := config.LoadKnowledge(cfg.KnowledgeConfig.File)
	if err != nil {
		return nil, err
	}
	for _, intent := range k.UncoveredIntents() {
		logger.Warn().Str("intent", intent).Msg("Intent has no technique set, general techniques will be used")
	}
	return k, nil
}

// buildApplication wires knowledge, engine, catalog, session store and chat flow
func buildApplication(ctx context.Context, cfg *src.Config, opts ...engine.Option) (*application, error) {
	k, err := loadKnowledge(cfg)
	if err != nil {
		return nil, err
	}

	coreCfg := config.BuildCoreConfig(cfg.ConversationConfig)

	var sessions storage.SessionManager
	switch coreCfg.Session.Backend {
	case "redis":
		sessions, err = storage.NewRedisSessionManager(ctx, coreCfg.Session.RedisURL, coreCfg.Session.TTL, coreCfg.Session.MaxTurns)
		if err != nil {
			return nil, err
		}
	default:
		sessions = storage.NewMemorySessionManager(coreCfg.Session.TTL, coreCfg.Session.MaxTurns)
	}

	catalog := services.NewTechniqueService(k)
	processor, err := nodes.NewChatProcessor(coreCfg, engine.New(k, opts...), catalog, sessions)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("session_backend", coreCfg.Session.Backend).
		Int("intents", len(k.Intents())).
		Int("technique_sets", len(catalog.Intents())).
		Msg("Application initialized")

	return &application{
		knowledge: k,
		catalog:   catalog,
		sessions:  sessions,
		chat:      core.NewChatService(processor, sessions),
	}, nil
}

// Close releases the session backend
func (a *application) Close() error {
	if closer, ok := a.sessions.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
