// Package agent is the HTTP face of the local printer agent: it accepts receipt jobs and pole
// display text from the back office and drives the attached devices.
package agent

import (
	"net/http"
	"sync"
	"time"

	"go-ticket-pos/internal/config"
	"go-ticket-pos/internal/logger"
	"go-ticket-pos/internal/printing"
	"go-ticket-pos/internal/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Shower is anything that can show two lines to the customer.
type Shower interface {
	Show(line1, line2 string) error
}

// Server wires the configured printer and display to HTTP handlers.
type Server struct {
	cfg     *config.AgentConfig
	printer printing.Printer
	display Shower
	log     logger.Logger

	// one job at a time reaches the device
	mu sync.Mutex
}

type DisplayRequest struct {
	Line1 string `json:"line1" binding:"max=40"`
	Line2 string `json:"line2" binding:"max=40"`
}

// NewServer creates the agent. display may be nil when no pole display is attached.
func NewServer(cfg *config.AgentConfig, printer printing.Printer, display Shower, log logger.Logger) *Server {
	return &Server{cfg: cfg, printer: printer, display: display, log: log}
}

// Router returns the agent's routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	corsCfg := cors.Config{
		AllowOrigins:  s.cfg.CORSOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "online"}) })
	r.GET("/status", s.status)
	r.POST("/print", s.print)
	r.POST("/display", s.show)
	return r
}

func (s *Server) status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"device_id":     utils.DeviceID(),
		"printer_mode":  s.cfg.PrinterMode,
		"display":       s.display != nil,
		"receipt_width": s.cfg.ReceiptWidth,
	})
}

func (s *Server) print(c *gin.Context) {
	var job printing.Job
	if err := c.ShouldBindJSON(&job); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid print job: " + err.Error()})
		return
	}

	s.mu.Lock()
	err := s.printer.Print(c.Request.Context(), printing.Encode(job))
	s.mu.Unlock()
	if err != nil {
		s.log.Error("Print failed: ", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Printer error: " + err.Error()})
		return
	}

	s.log.Info("Printed receipt with ", len(job.Tickets), " ticket(s)")
	c.JSON(http.StatusOK, gin.H{"message": "Printed", "tickets": len(job.Tickets)})
}

func (s *Server) show(c *gin.Context) {
	var req DisplayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid display request: " + err.Error()})
		return
	}
	if s.display == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "No pole display configured"})
		return
	}

	s.mu.Lock()
	err := s.display.Show(req.Line1, req.Line2)
	s.mu.Unlock()
	if err != nil {
		s.log.Error("Display failed: ", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Display error: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Displayed"})
}
