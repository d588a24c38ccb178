package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Add Orders Table":   "add_orders_table",
		"  fix--price!!col ": "fix_price_col",
		"___":                "",
	}
	for in, want := range cases {
		if got := slugify(in); got != want {
			t.Errorf("slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCreateSQLMigrationWritesValidStub(t *testing.T) {
	dir := t.TempDir()

	path, err := CreateSQLMigration(dir, "Add Test Table")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_test_table.sql") {
		t.Fatalf("unexpected filename %s", path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read stub: %v", err)
	}
	for _, marker := range []string{"-- +goose Up", "-- +goose Down"} {
		if !strings.Contains(string(raw), marker) {
			t.Fatalf("stub missing %q", marker)
		}
	}

	if err := ValidateDir(dir); err != nil {
		t.Fatalf("generated stub should validate: %v", err)
	}
}

func TestCreateSQLMigrationRejectsUnusableName(t *testing.T) {
	if _, err := CreateSQLMigration(t.TempDir(), "!!!"); err == nil {
		t.Fatal("expected error for unusable name")
	}
}

func TestValidateDirFlagsBadFilename(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "not-a-migration.sql")
	if err := os.WriteFile(bad, []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := ValidateDir(dir); err == nil {
		t.Fatal("expected filename validation error")
	}
}

func TestValidateDirFlagsMissingMarker(t *testing.T) {
	dir := t.TempDir()
	partial := filepath.Join(dir, "20240101000000_partial.sql")
	if err := os.WriteFile(partial, []byte("-- +goose Up\nSELECT 1;\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := ValidateDir(dir); err == nil {
		t.Fatal("expected missing marker error")
	}
}
