package storage

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

func TestRunMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "carteira.db")

	first, err := RunMigrations(path)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first != 1 {
		t.Fatalf("schema version = %d, want 1", first)
	}

	again, err := RunMigrations(path)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if again != first {
		t.Fatalf("schema version moved from %d to %d", first, again)
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	for _, table := range []string{"users", "households", "memberships", "accounts", "payment_methods", "categories", "transactions"} {
		var name string
		if err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name); err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestRunMigrationsRefusesDirtySchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "carteira.db")
	if _, err := RunMigrations(path); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := db.Exec(`UPDATE schema_migrations SET dirty = 1`); err != nil {
		t.Fatalf("mark dirty: %v", err)
	}
	db.Close()

	if _, err := RunMigrations(path); !errors.Is(err, ErrDirtySchema) {
		t.Fatalf("expected ErrDirtySchema, got %v", err)
	}
	if _, err := NewSQLiteRepository(path); !errors.Is(err, ErrDirtySchema) {
		t.Fatalf("repository opened a dirty schema: %v", err)
	}
}

func TestSchemaVersion(t *testing.T) {
	repo := newTestRepo(t)
	if v := repo.SchemaVersion(); v != 1 {
		t.Fatalf("SchemaVersion() = %d, want 1", v)
	}
}
