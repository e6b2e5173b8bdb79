package handlers

import (
	"net/http"

	"go-ticket-pos/internal/ai"
	"go-ticket-pos/internal/database"
	"go-ticket-pos/internal/middleware"
	"go-ticket-pos/internal/models"

	"github.com/gin-gonic/gin"
)

type AskRequest struct {
	Message string `json:"message" binding:"required,notblank,max=2000"`
}

func AskAI(c *gin.Context) {
	var req AskRequest
	if !bindJSON(c, &req) {
		return
	}

	if appConfig.GeminiAPIKey == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server missing Gemini API key"})
		return
	}

	agent := ai.NewAgent(database.DB, middleware.TenantID(c))
	agent.OnPriceChange = func(ch ai.PriceChange) {
		before := ch.Rate
		before.Price = ch.OldPrice
		recordAudit(c, rateResource, models.AuditUpdate, ch.Rate.ID, before, ch.Rate)
	}

	reply, err := agent.Ask(c.Request.Context(), appConfig.GeminiAPIKey, req.Message)
	if err != nil {
		requestLogger(c).Error("Assistant failed: ", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "The assistant is unavailable right now"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reply": reply})
}
