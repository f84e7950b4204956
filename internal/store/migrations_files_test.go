package store

import (
	"io/fs"
	"regexp"
	"strings"
	"testing"
)

func TestMigrationsHaveUpAndDownSections(t *testing.T) {
	entries, err := fs.ReadDir(migrations, migrationsDir)
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}

	pattern := regexp.MustCompile(`^(\d{5})_[a-z0-9_]+\.sql$`)
	seen := map[string]bool{}

	for _, entry := range entries {
		name := entry.Name()
		match := pattern.FindStringSubmatch(name)
		if match == nil {
			t.Fatalf("migration %q does not follow NNNNN_name.sql", name)
		}
		if seen[match[1]] {
			t.Fatalf("duplicate migration version %s", match[1])
		}
		seen[match[1]] = true

		raw, err := fs.ReadFile(migrations, migrationsDir+"/"+name)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		text := string(raw)
		up := strings.Index(text, "-- +goose Up")
		down := strings.Index(text, "-- +goose Down")
		if up < 0 || down < 0 {
			t.Fatalf("%s must include both goose Up and Down sections", name)
		}
		if down < up {
			t.Fatalf("%s: Down section must follow Up", name)
		}
	}

	if len(seen) == 0 {
		t.Fatal("no migrations discovered")
	}
}

func TestNotesMigrationMatchesRecordShape(t *testing.T) {
	raw, err := fs.ReadFile(migrations, migrationsDir+"/00001_create_notes.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	sqlText := string(raw)

	expectedSnippets := []string{
		"id         UUID PRIMARY KEY",
		"user_id    UUID NOT NULL",
		"title      TEXT NOT NULL DEFAULT ''",
		"content    JSONB,",
		"created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()",
		"updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()",
	}
	for _, snippet := range expectedSnippets {
		if !strings.Contains(sqlText, snippet) {
			t.Fatalf("expected migration to contain %q", snippet)
		}
	}
}
