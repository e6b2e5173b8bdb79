package handlers

import (
	"net/http"

	"go-ticket-pos/internal/middleware"
	"go-ticket-pos/internal/models"
	"go-ticket-pos/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
)

func GetTicket(c *gin.Context) {
	ticket, err := cashierService().FindTicket(c.Request.Context(), middleware.TenantID(c), c.Param("code"))
	if err != nil {
		posError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// GetTicketQR renders the ticket code as a PNG QR image (?size= in pixels, default 256).
func GetTicketQR(c *gin.Context) {
	ticket, err := cashierService().FindTicket(c.Request.Context(), middleware.TenantID(c), c.Param("code"))
	if err != nil {
		posError(c, err)
		return
	}

	size := utils.ParseInt(c.Query("size"), 256)
	if size < 64 || size > 1024 {
		size = 256
	}
	png, err := qrcode.Encode(ticket.Code, qrcode.Medium, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render QR code"})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// RedeemTicket admits the ticket at the gate.
func RedeemTicket(c *gin.Context) {
	ticket, err := cashierService().RedeemTicket(c.Request.Context(), actorOf(c), c.Param("code"))
	if err != nil {
		posError(c, err)
		return
	}

	recordAudit(c, ticketResource, models.AuditRedeem, ticket.ID, nil, ticket)
	c.JSON(http.StatusOK, ticket)
}
