// Package database opens the GORM handle backing the message store.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/go-sql-driver/mysql"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"pollchat/internal/config"
)

const pingTimeout = 5 * time.Second

// Now is the store clock. created_at is DATETIME(3), so keep millisecond precision.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// DSN builds the MySQL/TiDB data source name for cfg
func DSN(cfg config.Config) string {
	mc := mysql.NewConfig()
	mc.User = cfg.DBUser
	mc.Passwd = cfg.DBPassword
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.DBHost, cfg.DBPort)
	mc.DBName = cfg.DBName
	mc.ParseTime = true
	mc.Loc = time.UTC
	if cfg.DBSSL {
		mc.TLSConfig = "true"
	}
	return mc.FormatDSN()
}

// Init initializes the database connection and checks it is reachable
func Init(cfg config.Config, logger *slog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(gormmysql.Open(DSN(cfg)), gormConfig(Now))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := Ping(ctx, db); err != nil {
		_ = Close(db)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Database connection established",
		"host", cfg.DBHost, "port", cfg.DBPort, "name", cfg.DBName, "tls", cfg.DBSSL)
	return db, nil
}

// OpenSQLite opens a file-backed SQLite database, used for local runs and tests.
// clock may be nil, in which case Now is used.
func OpenSQLite(path string, clock func() time.Time) (*gorm.DB, error) {
	if clock == nil {
		clock = Now
	}
	db, err := gorm.Open(sqlite.Open(path), gormConfig(clock))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}
	return db, nil
}

// Ping checks the engine is reachable
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connection pool
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func gormConfig(clock func() time.Time) *gorm.Config {
	return &gorm.Config{
		NowFunc: clock,
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
	}
}
