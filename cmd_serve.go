package main

import (
	"os"
	"os/signal"
	"syscall"

	apphttp "gentherapist/internal/http"
	httpH "gentherapist/internal/http/handlers"
	"gentherapist/src/logger"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the chat HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := appConfig
		if serveAddr != "" {
			cfg.ServerConfig.Addr = serveAddr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app, err := buildApplication(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := app.Close(); err != nil {
				logger.Warn().Err(err).Msg("Failed to close session store")
			}
		}()

		gin.SetMode(cfg.ServerConfig.Mode)
		server := apphttp.NewServer(cfg.ServerConfig.Addr, apphttp.RouterConfig{
			ChatHandler:      httpH.NewChatHandler(app.chat),
			TechniqueHandler: httpH.NewTechniqueHandler(app.catalog),
			HealthHandler:    httpH.NewHealthHandler(app.chat),
			AllowedOrigins:   cfg.ServerConfig.AllowedOrigins,
			CookieSecure:     cfg.ServerConfig.CookieSecure,
		})

		return server.Run(ctx, cfg.ServerConfig.ShutdownTimeout)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (or set SERVER_ADDR)")
}
