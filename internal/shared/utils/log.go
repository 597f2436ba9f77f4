package utils

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm/logger"
)

// InitLogger sets the global zerolog logger. pretty selects the console
// writer used in development; production logs JSON lines.
func InitLogger(level string, pretty bool) {
	zerolog.TimeFieldFormat = time.RFC3339

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
		return
	}
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// GormLogLevel maps LOG_LEVEL onto the gorm logger
func GormLogLevel(level string) logger.LogLevel {
	switch level {
	case "trace", "debug":
		return logger.Info
	case "info", "warn":
		return logger.Warn
	case "disabled":
		return logger.Silent
	default:
		return logger.Error
	}
}
