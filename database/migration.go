package database

import (
	"database/sql"
	"embed"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
	"github.com/sgjt/gestao-forms/log"
)

//go:embed migrations
var schema embed.FS

func newMigrator(db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(schema, "migrations")
	if err != nil {
		return nil, errors.Wrap(err, "open migrations")
	}

	target, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "open migration target")
	}

	return migrate.NewWithInstance("iofs", src, "sqlite3", target)
}

// migrateSchema brings the schema to the latest embedded version. A schema
// left dirty by a failed migration must be repaired by hand.
func migrateSchema(db *sql.DB) error {
	m, err := newMigrator(db)
	if err != nil {
		return err
	}

	from, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return errors.Wrap(err, "read schema version")
	}
	if dirty {
		return errors.Errorf("schema version %d is dirty", from)
	}

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		log.Debugf("db.migrate: schema at version %d", from)
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "migrate schema")
	}

	to, _, _ := m.Version()
	log.WithFields(log.Fields{"from": from, "to": to}).Info("db.migrate: schema upgraded")
	return nil
}
