package logger

import (
	"os"
	"time"

	log "github.com/sirupsen/logrus"
)

// Config controls log output shape.
type Config struct {
	Format string `json:"format"` // "json" or "text"
	Level  string `json:"level"`
}

// New builds the application logger. The instance is passed into components
// at construction; nothing in this codebase logs through a package global.
func New(cfg Config) *log.Logger {
	logger := log.New()
	logger.Out = os.Stdout

	if cfg.Format == "text" {
		logger.Formatter = &log.TextFormatter{FullTimestamp: true}
	} else {
		logger.Formatter = &log.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		}
	}

	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		level = log.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}
