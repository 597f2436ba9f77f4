package main

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"

	"github.com/wisemantransports-ux/retail-assist-sub005/internal/shared/config"
	"github.com/wisemantransports-ux/retail-assist-sub005/internal/shared/utils"
)

func main() {
	var module string
	var command string

	flag.StringVar(&module, "module", "automation", "Module to migrate")
	flag.StringVar(&command, "cmd", "up", "Migration command (up, down, version, force)")
	flag.Parse()

	// Load config
	cfg := config.LoadConfig()
	utils.InitLogger(cfg.LogLevel, !cfg.IsProduction())

	if strings.HasPrefix(cfg.DatabaseURL, "sqlite://") {
		log.Fatal().Msg("❌ SQL migrations target Postgres; sqlite databases are created with AutoMigrate on startup")
	}

	// Migration path
	migrationPath := fmt.Sprintf("file://migrations/%s", module)

	log.Info().Str("module", module).Str("path", migrationPath).Str("database", maskDatabaseURL(cfg.DatabaseURL)).
		Msg("🔄 Running migrations")

	// Create migrate instance
	m, err := migrate.New(migrationPath, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to create migrate instance")
	}
	defer m.Close()

	// Execute command
	switch command {
	case "up":
		log.Info().Msg("⬆️  Running UP migrations...")
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal().Err(err).Msg("❌ Migration UP failed")
		}
		log.Info().Msg("✅ Migrations UP completed!")

	case "down":
		log.Info().Msg("⬇️  Running DOWN migrations...")
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal().Err(err).Msg("❌ Migration DOWN failed")
		}
		log.Info().Msg("✅ Migrations DOWN completed!")

	case "version":
		version, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			log.Fatal().Err(err).Msg("❌ Failed to get version")
		}
		log.Info().Uint("version", version).Bool("dirty", dirty).Msg("📌 Current version")

	case "force":
		if len(flag.Args()) < 1 {
			log.Fatal().Msg("❌ Please provide version number for force command")
		}
		var forceVersion int
		fmt.Sscanf(flag.Arg(0), "%d", &forceVersion)
		if err := m.Force(forceVersion); err != nil {
			log.Fatal().Err(err).Msg("❌ Force failed")
		}
		log.Info().Int("version", forceVersion).Msg("✅ Forced version")

	default:
		log.Fatal().Str("cmd", command).Msg("❌ Unknown command (use: up, down, version, force)")
	}
}

// maskDatabaseURL hides password in database URL for logging
func maskDatabaseURL(url string) string {
	if len(url) < 20 {
		return "***"
	}
	return url[:20] + "***" + url[len(url)-10:]
}
