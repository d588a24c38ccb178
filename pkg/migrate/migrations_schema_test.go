package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/storefrontlab/storefront-backend/pkg/migrate"
)

func TestInitMigrationContainsSchema(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_init.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no init migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE users",
		"CONSTRAINT uq_users_email UNIQUE (email)",
		"CREATE TABLE categories",
		"CONSTRAINT uq_categories_name UNIQUE (name)",
		"CREATE TABLE products",
		"price             numeric(12,2)",
		"CHECK (quantity_in_stock >= 0)",
		"CREATE TABLE orders",
		"CREATE TABLE order_items",
		"REFERENCES orders (id) ON DELETE CASCADE",
		"CHECK (quantity > 0)",
		"DROP TABLE IF EXISTS order_items",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}
