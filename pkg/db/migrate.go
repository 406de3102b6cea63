package db

import (
	"errors"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"shopifyapi/pkg/config"
)

// Migrate applies every pending migration under migrationsPath, or rolls
// them all back when down is set. A plain directory is read as file://.
func Migrate(migrationsPath string, cfg config.Config, down bool) error {
	m, err := migrate.New(SourceURL(migrationsPath), MigrationConnString(cfg))
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	if down {
		err = m.Down()
	} else {
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func SourceURL(path string) string {
	if strings.Contains(path, "://") {
		return path
	}
	return "file://" + path
}
