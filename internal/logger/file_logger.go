package logger

import (
	"log/slog"

	"go-ticket-pos/internal/config"

	"github.com/natefinch/lumberjack"
)

// NewFileLogger writes JSON records with their source location to a rotating file.
// Rotated files are named in local time and gzipped.
func NewFileLogger(s *config.LoggerSettings) Logger {
	writer := &lumberjack.Logger{
		Filename:   s.FilePath,
		MaxSize:    s.MaxSize,
		MaxBackups: s.MaxBackups,
		MaxAge:     s.MaxAge,
		LocalTime:  true,
		Compress:   true,
	}

	handler := slog.NewJSONHandler(writer, &slog.HandlerOptions{
		Level:     parseLevel(s.LogLevel),
		AddSource: true,
	})
	return &slogLogger{logger: slog.New(handler)}
}
