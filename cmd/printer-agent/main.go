// Command printer-agent runs next to the till and drives the receipt printer and pole display.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-ticket-pos/internal/agent"
	"go-ticket-pos/internal/config"
	"go-ticket-pos/internal/logger"
	"go-ticket-pos/internal/printing"
)

func main() {
	cfg, err := config.LoadAgent()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}
	if err := logger.InitLogger(&cfg.Logger); err != nil {
		log.Fatal("Failed to initialize logger: ", err)
	}
	appLog := logger.MustGetLogger()

	printer, err := printing.NewPrinter(cfg)
	if err != nil {
		appLog.Fatal("Printer setup failed: ", err)
	}

	var display agent.Shower
	if cfg.DisplayDevice != "" {
		display = printing.NewDisplay(cfg.DisplayDevice, cfg.DisplayBaud)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           agent.NewServer(cfg, printer, display, appLog).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLog.Info("Printer agent listening on ", cfg.Addr, " (", cfg.PrinterMode, " printer)")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal("Agent failed to start: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLog.Error("Forced shutdown: ", err)
	}
}
