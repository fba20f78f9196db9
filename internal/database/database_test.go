package database

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"

	"pollchat/internal/config"
)

func TestMain(m *testing.M) {
	// プロジェクトルートの.envを読み込み
	_ = godotenv.Load("../../.env")
	os.Exit(m.Run())
}

func TestDSN(t *testing.T) {
	req := require.New(t)

	dsn := DSN(config.Config{
		DBHost:     "db.example.com",
		DBPort:     "4000",
		DBUser:     "chat",
		DBPassword: "p@ss",
		DBName:     "chat",
	})

	parsed, err := mysql.ParseDSN(dsn)
	req.NoError(err)
	req.Equal("chat", parsed.User)
	req.Equal("p@ss", parsed.Passwd)
	req.Equal("db.example.com:4000", parsed.Addr)
	req.Equal("chat", parsed.DBName)
	req.True(parsed.ParseTime)
	req.Empty(parsed.TLSConfig)
}

func TestDSN_TLS(t *testing.T) {
	dsn := DSN(config.Config{DBHost: "localhost", DBPort: "3306", DBSSL: true})

	parsed, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	require.Equal(t, "true", parsed.TLSConfig)
}

func TestNow_MillisecondPrecision(t *testing.T) {
	now := Now()
	require.Equal(t, time.UTC, now.Location())
	require.Zero(t, now.Nanosecond()%int(time.Millisecond))
}

func TestOpenSQLite(t *testing.T) {
	req := require.New(t)

	db, err := OpenSQLite(filepath.Join(t.TempDir(), "chat.db"), nil)
	req.NoError(err)
	req.NoError(Ping(context.Background(), db))
	req.NoError(Close(db))
	req.Error(Ping(context.Background(), db))
}

// TestInit_MySQL 実DBへの接続テスト
func TestInit_MySQL(t *testing.T) {
	if os.Getenv("DB_HOST") == "" {
		t.Skip("Skipping: DB_HOST not set")
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	db, err := Init(cfg, slog.Default())
	if err != nil {
		t.Skipf("Skipping: could not connect to test database: %v", err)
	}
	defer Close(db)

	require.NoError(t, Ping(context.Background(), db))
}
