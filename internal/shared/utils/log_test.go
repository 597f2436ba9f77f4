package utils

import (
	"testing"

	"github.com/rs/zerolog"
	"gorm.io/gorm/logger"
)

func TestInitLogger_Level(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	InitLogger("debug", false)
	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Errorf("level = %s, want debug", zerolog.GlobalLevel())
	}
	InitLogger("nonsense", true)
	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Errorf("level = %s, want info fallback", zerolog.GlobalLevel())
	}
}

func TestGormLogLevel(t *testing.T) {
	tests := map[string]logger.LogLevel{
		"debug":    logger.Info,
		"info":     logger.Warn,
		"error":    logger.Error,
		"disabled": logger.Silent,
	}
	for in, want := range tests {
		if got := GormLogLevel(in); got != want {
			t.Errorf("GormLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
