package database

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	Driver   string
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	MaxConns int
	LogSQL   bool
}

// Dialector picks the gorm dialector for cfg.Driver. URL, when set, is used verbatim as the DSN.
func Dialector(cfg Config) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", "postgres", "postgresql":
		dsn := cfg.URL
		if dsn == "" {
			dsn = fmt.Sprintf(
				"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
				valueOrDefault(cfg.Host, "localhost"),
				valueOrDefault(cfg.User, "postgres"),
				cfg.Password,
				valueOrDefault(cfg.Name, "talib"),
				valueOrDefault(cfg.Port, "5432"),
			)
		}
		return postgres.Open(dsn), nil

	case "mysql", "mariadb":
		dsn := cfg.URL
		if dsn == "" {
			// clientFoundRows makes RowsAffected count matched rows, as on postgres and sqlite.
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC&clientFoundRows=true",
				valueOrDefault(cfg.User, "root"),
				cfg.Password,
				valueOrDefault(cfg.Host, "localhost"),
				valueOrDefault(cfg.Port, "3306"),
				valueOrDefault(cfg.Name, "talib"),
			)
		}
		return mysql.Open(dsn), nil

	case "sqlite":
		return sqlite.Open(valueOrDefault(cfg.URL, valueOrDefault(cfg.Name, "talib.db"))), nil

	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

func Connect(cfg Config) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	logMode := logger.Warn
	if cfg.LogSQL {
		logMode = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logMode),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql db: %w", err)
	}

	maxConns := cfg.MaxConns
	if maxConns <= 0 {
		maxConns = 20
	}
	sqlDB.SetMaxOpenConns(maxConns)
	sqlDB.SetMaxIdleConns(maxConns / 2)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

func valueOrDefault(val, fallback string) string {
	if val != "" {
		return val
	}
	return fallback
}
