package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// slugify folds a human name into the snake_case form migration filenames
// require: lowercase, [a-z0-9_] only, no doubled or dangling underscores.
func slugify(name string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '_'
		}
	}, strings.TrimSpace(name))
	for strings.Contains(mapped, "__") {
		mapped = strings.ReplaceAll(mapped, "__", "_")
	}
	return strings.Trim(mapped, "_")
}

// CreateSQLMigration writes an up/down stub named <version>_<slug>.sql
// under dir and returns its path. The version is the current UTC time so
// files sort in creation order.
func CreateSQLMigration(dir, name string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("migration dir required")
	}
	slug := slugify(name)
	if slug == "" {
		return "", fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}

	version := time.Now().UTC().Format("20060102150405")
	path := filepath.Join(dir, version+"_"+slug+".sql")

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return "", fmt.Errorf("migration %s already exists", path)
		}
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	stub := fmt.Sprintf(`-- +goose Up
-- +goose StatementBegin
-- apply %s
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
-- revert %s
-- +goose StatementEnd
`, slug, slug)
	if _, err := f.WriteString(stub); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
