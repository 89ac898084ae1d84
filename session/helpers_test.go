package session

import (
	"context"
	"testing"
	"time"

	_ "github.com/kbukum/dbunit/dataset/yamlset"
	"github.com/kbukum/dbunit/logger"
)

var fixedNow = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

const (
	usersDDL     = `CREATE TABLE users (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT NOT NULL, email TEXT, created_at TEXT)`
	countriesDDL = `CREATE TABLE countries (code TEXT PRIMARY KEY, name TEXT)`
)

func memoryConfig() Config {
	var cfg Config
	cfg.Database.LogLevel = "silent"
	return cfg
}

func openSession(t *testing.T, cfg Config) *Session {
	t.Helper()
	s, err := Open(context.Background(), cfg, WithLogger(logger.NewNop()), WithClock(func() time.Time { return fixedNow }))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func openWithSchema(t *testing.T) *Session {
	t.Helper()
	s := openSession(t, memoryConfig())
	if err := s.SetUpSchema(context.Background(), Statements(usersDDL, countriesDDL)); err != nil {
		t.Fatalf("SetUpSchema: %v", err)
	}
	return s
}
