package db

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T, path string) *DB {
	t.Helper()
	database, err := New(path, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return database
}

func TestNew_CreatesDatabase(t *testing.T) {
	database := openTestDB(t, filepath.Join(t.TempDir(), "nested", "editor.db"))
	defer database.Close()

	tables := []string{"projects", "config", "_migrations"}
	for _, table := range tables {
		var name string
		err := database.Conn().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}

func TestNew_WALEnabled(t *testing.T) {
	database := openTestDB(t, filepath.Join(t.TempDir(), "editor.db"))
	defer database.Close()

	var journalMode string
	if err := database.Conn().QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("PRAGMA journal_mode error = %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("journal_mode = %s, want wal", journalMode)
	}
}

func TestNew_MigrationsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "editor.db")

	db1 := openTestDB(t, dbPath)
	db1.Close()

	db2 := openTestDB(t, dbPath)
	defer db2.Close()

	applied, err := db2.Applied(context.Background())
	if err != nil {
		t.Fatalf("Applied() error = %v", err)
	}
	want := []string{"001_init.sql", "002_projects_updated_index.sql"}
	if len(applied) != len(want) {
		t.Fatalf("applied = %v, want %v", applied, want)
	}
	for i := range want {
		if applied[i] != want[i] {
			t.Errorf("applied[%d] = %s, want %s", i, applied[i], want[i])
		}
	}
}

func TestNew_ProjectDefaults(t *testing.T) {
	database := openTestDB(t, filepath.Join(t.TempDir(), "editor.db"))
	defer database.Close()

	if _, err := database.Conn().Exec("INSERT INTO projects (id, name) VALUES ('p1', 'Demo')"); err != nil {
		t.Fatalf("insert error = %v", err)
	}

	var typ, content string
	err := database.Conn().QueryRow("SELECT type, content FROM projects WHERE id = 'p1'").Scan(&typ, &content)
	if err != nil {
		t.Fatalf("select error = %v", err)
	}
	if typ != "script" || content != "{}" {
		t.Errorf("defaults = %q, %q", typ, content)
	}
}
