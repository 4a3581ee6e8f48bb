package handlers

import (
	"context"
	"strings"

	"gentherapist/internal/http/response"
	"gentherapist/internal/services"
	"gentherapist/pkg"

	"github.com/gin-gonic/gin"
)

// TechniqueCatalog is the read side of the technique service
type TechniqueCatalog interface {
	GetTechniquesByIntent(intent string) pkg.TechniqueSet
	Intents() []string
	SearchTechniques(ctx context.Context, query string) []services.TechniqueMatch
}

type TechniqueHandler struct {
	catalog TechniqueCatalog
}

func NewTechniqueHandler(catalog TechniqueCatalog) *TechniqueHandler {
	return &TechniqueHandler{catalog: catalog}
}

// ListTechniques handles GET /api/techniques. With ?q= it searches exercises,
// otherwise it lists the intents that have their own technique set.
func (h *TechniqueHandler) ListTechniques(c *gin.Context) {
	if q, ok := c.GetQuery("q"); ok {
		results := h.catalog.SearchTechniques(c.Request.Context(), q)
		if results == nil {
			results = []services.TechniqueMatch{}
		}
		response.RespondOK(c, gin.H{"results": results})
		return
	}
	response.RespondOK(c, gin.H{"intents": h.catalog.Intents()})
}

// GetTechniques handles GET /api/techniques/:intent; unknown intents get the
// general set.
func (h *TechniqueHandler) GetTechniques(c *gin.Context) {
	intent := strings.ToLower(c.Param("intent"))
	response.RespondOK(c, gin.H{
		"intent":     intent,
		"techniques": h.catalog.GetTechniquesByIntent(intent),
	})
}
