package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func sourceURL(path string) string {
	if strings.Contains(path, "://") {
		return path
	}
	return "file://" + path
}

// RunMigrations applies every pending up migration under path. Being already
// at the latest version is not an error.
func RunMigrations(dbURL, path string) error {
	m, err := migrate.New(sourceURL(path), dbURL)
	if err != nil {
		return fmt.Errorf("migrate: init: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate: up: %w", err)
	}
	return nil
}

// MigrationVersion reports the applied version; 0 when nothing ran yet.
func MigrationVersion(dbURL, path string) (uint, bool, error) {
	m, err := migrate.New(sourceURL(path), dbURL)
	if err != nil {
		return 0, false, fmt.Errorf("migrate: init: %w", err)
	}
	defer m.Close()

	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}
