package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var migrationFileRe = regexp.MustCompile(`^(\d{5,14})_[a-z0-9_]+\.sql$`)

// ValidateDir checks every SQL file in dir against the conventions goose
// relies on: a numeric version prefix with a snake_case slug, no version
// used twice, and both direction markers present in the body.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("migration dir required")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read %s: %w", dir, err)
	}

	byVersion := map[string]string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		match := migrationFileRe.FindStringSubmatch(name)
		if match == nil {
			return fmt.Errorf("%s: migration filenames look like <version>_<slug>.sql", name)
		}
		if earlier, dup := byVersion[match[1]]; dup {
			return fmt.Errorf("version %s used by both %s and %s", match[1], earlier, name)
		}
		byVersion[match[1]] = name

		if err := checkMarkers(filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}

func checkMarkers(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	body := string(raw)
	for _, marker := range []string{"-- +goose Up", "-- +goose Down"} {
		if !strings.Contains(body, marker) {
			return fmt.Errorf("%s: missing %q marker", filepath.Base(path), marker)
		}
	}
	return nil
}
