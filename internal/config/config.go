package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Database driver names
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Log level constants
const (
	LogLevelDebug   = "debug"
	LogLevelInfo    = "info"
	LogLevelWarning = "warning"
	LogLevelError   = "error"
)

// Log type constants
const (
	LogTypeConsole = "console"
	LogTypeFile    = "file"
)

// DatabaseSettings tells the database package which driver to open and how hard to retry.
type DatabaseSettings struct {
	Driver     string `validate:"required,oneof=mysql sqlite"`
	DSN        string `validate:"required"`
	MaxRetries int    `validate:"gte=1,lte=30"`
	Debug      bool
}

// Validate checks the database settings.
func (s *DatabaseSettings) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		return fmt.Errorf("validation failed for DatabaseSettings: %w", err)
	}
	return nil
}

// LoggerSettings holds configuration settings for logging, including log level, type and file path
type LoggerSettings struct {
	LogLevel   string `validate:"required,oneof=info debug error warning"`
	LogType    string `validate:"required,oneof=console file"`
	FilePath   string
	MaxSize    int
	MaxBackups int
	MaxAge     int
}

// Validate checks that all fields in LoggerSettings are valid
func (s *LoggerSettings) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		return fmt.Errorf("validation failed for LoggerSettings: %w", err)
	}

	if s.LogType == LogTypeFile {
		if s.FilePath == "" {
			return fmt.Errorf("file path is required for file logger")
		}
		if s.MaxSize < 1 || s.MaxSize > 100 {
			return fmt.Errorf("max size must be between 1 and 100 MB")
		}
		if s.MaxBackups < 1 || s.MaxBackups > 10 {
			return fmt.Errorf("max backups must be between 1 and 10")
		}
		if s.MaxAge < 1 || s.MaxAge > 365 {
			return fmt.Errorf("max age must be between 1 and 365 days")
		}
	}

	return nil
}

// AuthSettings configures token signing.
type AuthSettings struct {
	JWTSecret string        `validate:"required,min=16"`
	TokenTTL  time.Duration `validate:"gt=0"`
}

// Config is everything the API server reads from the environment.
type Config struct {
	Env               string `validate:"required,oneof=dev test prod"`
	HTTPAddr          string `validate:"required"`
	BaseURL           string `validate:"required,url"`
	CORSOrigins       []string
	UploadDir         string `validate:"required"`
	WebDir            string
	AllowRegistration bool
	GeminiAPIKey      string
	LicenseEnforced   bool
	LicenseSecret     string `validate:"required_if=LicenseEnforced true"`
	PrinterAgentURL   string `validate:"omitempty,url"`

	Database DatabaseSettings `validate:"-"`
	Logger   LoggerSettings   `validate:"-"`
	Auth     AuthSettings     `validate:"-"`
}

// Validate checks the server config and each nested settings block.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("validation failed for Config: %w", err)
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Logger.Validate(); err != nil {
		return err
	}
	if err := validator.New().Struct(&c.Auth); err != nil {
		return fmt.Errorf("validation failed for AuthSettings: %w", err)
	}
	return nil
}

// IsProduction reports whether the server runs with production defaults.
func (c *Config) IsProduction() bool {
	return c.Env == "prod"
}

// NewViper returns a viper instance with every known key defaulted and bound to the environment.
// A .env file in the working directory is loaded first when present.
func NewViper() *viper.Viper {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found")
	}

	v := viper.New()
	v.SetDefault("app_env", "dev")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("base_url", "http://localhost:8080")
	v.SetDefault("cors_origins", "http://localhost:5173")
	v.SetDefault("upload_dir", "./uploads")
	v.SetDefault("web_dir", "./web")
	v.SetDefault("allow_registration", false)
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("license_enforced", false)
	v.SetDefault("license_secret", "")
	v.SetDefault("printer_agent_url", "")

	v.SetDefault("db_driver", DriverMySQL)
	v.SetDefault("db_dsn", "")
	v.SetDefault("db_max_retries", 5)

	v.SetDefault("jwt_secret", "")
	v.SetDefault("jwt_ttl", 24*time.Hour)

	v.SetDefault("log_level", LogLevelInfo)
	v.SetDefault("log_type", LogTypeConsole)
	v.SetDefault("log_file", "./logs/server.log")
	v.SetDefault("log_max_size", 10)
	v.SetDefault("log_max_backups", 3)
	v.SetDefault("log_max_age", 28)

	v.SetDefault("agent_addr", ":8181")
	v.SetDefault("printer_mode", PrinterModeFile)
	v.SetDefault("printer_name", "receipt")
	v.SetDefault("printer_addr", "127.0.0.1:9100")
	v.SetDefault("printer_file", "./logs/printer.out")
	v.SetDefault("display_device", "")
	v.SetDefault("display_baud", 9600)
	v.SetDefault("receipt_width", 42)

	v.AutomaticEnv()
	return v
}

// Load reads and validates the server configuration.
func Load() (*Config, error) {
	return FromViper(NewViper())
}

// FromViper builds the server configuration from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Env:               strings.ToLower(v.GetString("app_env")),
		HTTPAddr:          v.GetString("http_addr"),
		BaseURL:           strings.TrimRight(v.GetString("base_url"), "/"),
		CORSOrigins:       splitList(v.GetString("cors_origins")),
		UploadDir:         v.GetString("upload_dir"),
		WebDir:            v.GetString("web_dir"),
		AllowRegistration: v.GetBool("allow_registration"),
		GeminiAPIKey:      v.GetString("gemini_api_key"),
		LicenseEnforced:   v.GetBool("license_enforced"),
		LicenseSecret:     v.GetString("license_secret"),
		PrinterAgentURL:   strings.TrimRight(v.GetString("printer_agent_url"), "/"),
		Database: DatabaseSettings{
			Driver:     strings.ToLower(v.GetString("db_driver")),
			DSN:        v.GetString("db_dsn"),
			MaxRetries: v.GetInt("db_max_retries"),
		},
		Logger: LoggerSettings{
			LogLevel:   strings.ToLower(v.GetString("log_level")),
			LogType:    strings.ToLower(v.GetString("log_type")),
			FilePath:   v.GetString("log_file"),
			MaxSize:    v.GetInt("log_max_size"),
			MaxBackups: v.GetInt("log_max_backups"),
			MaxAge:     v.GetInt("log_max_age"),
		},
		Auth: AuthSettings{
			JWTSecret: v.GetString("jwt_secret"),
			TokenTTL:  v.GetDuration("jwt_ttl"),
		},
	}
	cfg.Database.Debug = !cfg.IsProduction()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
