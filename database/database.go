package database

import (
	"database/sql"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// Open connects to the SQLite database at url and brings its schema up to
// date. url may be a plain file path or a file: URI.
func Open(url string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dsn(url))
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(2 * time.Hour)

	if err = migrateSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// dsn turns foreign keys on for every pooled connection, not only the first.
func dsn(url string) string {
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + "_foreign_keys=on&_busy_timeout=5000"
}
