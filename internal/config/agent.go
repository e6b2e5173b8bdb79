package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Printer modes supported by the printer agent
const (
	PrinterModeCommand = "command"
	PrinterModeNetwork = "network"
	PrinterModeFile    = "file"
)

// AgentConfig configures the local printer/display agent.
type AgentConfig struct {
	Addr          string `validate:"required"`
	PrinterMode   string `validate:"required,oneof=command network file"`
	PrinterName   string `validate:"required_if=PrinterMode command"`
	PrinterAddr   string `validate:"required_if=PrinterMode network"`
	PrinterFile   string `validate:"required_if=PrinterMode file"`
	DisplayDevice string
	DisplayBaud   int `validate:"oneof=2400 4800 9600 19200 38400 57600 115200"`
	ReceiptWidth  int `validate:"gte=24,lte=64"`
	CORSOrigins   []string

	Logger LoggerSettings `validate:"-"`
}

// Validate checks the agent config.
func (c *AgentConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("validation failed for AgentConfig: %w", err)
	}
	return c.Logger.Validate()
}

// LoadAgent reads and validates the printer agent configuration.
func LoadAgent() (*AgentConfig, error) {
	return AgentFromViper(NewViper())
}

// AgentFromViper builds the agent configuration from a populated viper instance.
func AgentFromViper(v *viper.Viper) (*AgentConfig, error) {
	cfg := &AgentConfig{
		Addr:          v.GetString("agent_addr"),
		PrinterMode:   strings.ToLower(v.GetString("printer_mode")),
		PrinterName:   v.GetString("printer_name"),
		PrinterAddr:   v.GetString("printer_addr"),
		PrinterFile:   v.GetString("printer_file"),
		DisplayDevice: v.GetString("display_device"),
		DisplayBaud:   v.GetInt("display_baud"),
		ReceiptWidth:  v.GetInt("receipt_width"),
		CORSOrigins:   splitList(v.GetString("cors_origins")),
		Logger: LoggerSettings{
			LogLevel:   strings.ToLower(v.GetString("log_level")),
			LogType:    strings.ToLower(v.GetString("log_type")),
			FilePath:   v.GetString("log_file"),
			MaxSize:    v.GetInt("log_max_size"),
			MaxBackups: v.GetInt("log_max_backups"),
			MaxAge:     v.GetInt("log_max_age"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
