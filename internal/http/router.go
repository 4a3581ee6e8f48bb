package http

import (
	httpH "gentherapist/internal/http/handlers"
	httpMW "gentherapist/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	ChatHandler      *httpH.ChatHandler
	TechniqueHandler *httpH.TechniqueHandler
	HealthHandler    *httpH.HealthHandler

	AllowedOrigins []string
	CookieSecure   bool
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(httpMW.CORS(cfg.AllowedOrigins))
	}
	r.Use(httpMW.Session(cfg.CookieSecure))
	r.Use(httpMW.RequestLogger())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		if cfg.ChatHandler != nil {
			api.POST("/send-message", cfg.ChatHandler.SendMessage)
			api.POST("/clear-conversation", cfg.ChatHandler.ClearConversation)
			api.GET("/conversation", cfg.ChatHandler.GetConversation)
		}

		if cfg.TechniqueHandler != nil {
			api.GET("/techniques", cfg.TechniqueHandler.ListTechniques)
			api.GET("/techniques/:intent", cfg.TechniqueHandler.GetTechniques)
		}
	}

	return r
}
