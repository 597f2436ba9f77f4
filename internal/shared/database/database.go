package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	_ "modernc.org/sqlite"
)

// SQLitePrefix selects the embedded driver, e.g. "sqlite://automation.db"
const SQLitePrefix = "sqlite://"

// DB wraps both GORM and sql.DB
type DB struct {
	*sql.DB
	GORM *gorm.DB
}

// Options tunes the connection
type Options struct {
	LogLevel     logger.LogLevel
	MaxOpenConns int
	MaxIdleConns int
}

// NewDB opens connStr. Postgres URLs use the pgx-backed gorm driver; a
// "sqlite://" prefix opens a file through the pure-Go sqlite driver.
func NewDB(connStr string, opts Options) (*DB, error) {
	if connStr == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}
	if opts.LogLevel == 0 {
		opts.LogLevel = logger.Warn
	}
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = 25
	}
	if opts.MaxIdleConns <= 0 {
		opts.MaxIdleConns = 5
	}

	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(opts.LogLevel)}

	var (
		gormDB *gorm.DB
		err    error
		driver string
	)
	if path, ok := strings.CutPrefix(connStr, SQLitePrefix); ok {
		driver = "sqlite"
		gormDB, err = gorm.Open(sqlite.New(sqlite.Config{
			DriverName: "sqlite",
			DSN:        sqliteDSN(path),
		}), gormCfg)
		// sqlite serialises writers; one connection avoids "database is locked"
		opts.MaxOpenConns = 1
		opts.MaxIdleConns = 1
	} else {
		driver = "postgres"
		gormDB, err = gorm.Open(postgres.Open(connStr), gormCfg)
	}
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log.Info().Str("driver", driver).Msg("✅ Database connected (GORM)!")
	return &DB{DB: sqlDB, GORM: gormDB}, nil
}

func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// AutoMigrate creates or updates the tables of the given models
func (db *DB) AutoMigrate(models ...interface{}) error {
	return db.GORM.AutoMigrate(models...)
}

// IsSQLite reports whether the connection uses the embedded driver
func (db *DB) IsSQLite() bool {
	return db.GORM.Dialector.Name() == "sqlite"
}

func (db *DB) Close() error {
	log.Info().Msg("🔌 Closing database connection...")
	return db.DB.Close()
}
