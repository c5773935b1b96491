// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

/*
Package csql wraps a standard sql.DB with the few things the coffee shop needs
on top of it: a schema, and the knowledge which driver is behind it.

Queries are written with postgres placeholders ($1, $2, ...). For sqlite they
are rewritten by Rebind. Every placeholder must appear exactly once and in
ascending order, which is what Rebind relies on.
*/
package csql

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/lib/pq" // load database driver for postgres
	"github.com/sirupsen/logrus"
	"modernc.org/sqlite" // load database driver for sqlite
	sqlite3 "modernc.org/sqlite/lib"
)

// Driver names as registered with database/sql
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DB encapsulates a standard sql.DB with a schema
type DB struct {
	*sql.DB
	Schema string
	Driver string
}

// ErrNoRows is returned by Scan when QueryRow doesn't return a
// row. In such a case, QueryRow returns a placeholder *Row value that
// defers this error until a Scan.
var ErrNoRows = sql.ErrNoRows

var placeholder = regexp.MustCompile(`\$[0-9]+`)

// OpenWithSchema opens a postgres database with a schema.
// The schema gets created if it does not exist yet.
func OpenWithSchema(dataSourceName, password, schema string) (*DB, error) {
	logrus.Infoln("connecting to postgres database: ", dataSourceName)
	if len(password) > 0 {
		dataSourceName += " password=" + password
	}
	db, err := sql.Open(DriverPostgres, dataSourceName)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	if len(schema) == 0 {
		schema = "public"
	} else {
		logrus.Infoln("selected database schema:", schema)
		if _, err = db.Exec(`CREATE schema IF NOT EXISTS ` + schema + `;`); err != nil {
			db.Close()
			return nil, err
		}
	}
	return &DB{DB: db, Schema: schema, Driver: DriverPostgres}, nil
}

// OpenSQLite opens a sqlite database file. Sqlite has no schemas, tables live
// in the main database.
func OpenSQLite(path string) (*DB, error) {
	logrus.Infoln("opening sqlite database:", path)
	db, err := sql.Open(DriverSQLite, path)
	if err != nil {
		return nil, err
	}
	// sqlite serializes writers anyway, a single connection avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		db.Close()
		return nil, err
	}
	return &DB{DB: db, Driver: DriverSQLite}, nil
}

// Open opens a database for the given driver. For postgres, source is the
// connection string, for sqlite it is the file path.
func Open(driver, source, password, schema string) (*DB, error) {
	switch driver {
	case DriverPostgres:
		return OpenWithSchema(source, password, schema)
	case DriverSQLite:
		return OpenSQLite(source)
	}
	return nil, fmt.Errorf("unsupported database driver %q", driver)
}

// Table returns the qualified name of a table
func (db *DB) Table(name string) string {
	if db.Driver == DriverSQLite {
		return `"` + name + `"`
	}
	return db.Schema + `."` + name + `"`
}

// Rebind rewrites a query written with postgres placeholders for the
// driver of this database.
func (db *DB) Rebind(query string) string {
	if db.Driver != DriverSQLite {
		return query
	}
	return placeholder.ReplaceAllString(query, "?")
}

// SerialPrimaryKey returns the column type for an auto-incrementing integer
// primary key
func (db *DB) SerialPrimaryKey() string {
	if db.Driver == DriverSQLite {
		return "INTEGER PRIMARY KEY AUTOINCREMENT"
	}
	return "SERIAL PRIMARY KEY"
}

// IsUniqueViolation returns true if err was caused by a unique constraint
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			return strings.Contains(liteErr.Error(), "UNIQUE constraint")
		}
	}
	return false
}

// DropTables drops the given tables. This is the destructive half of a
// schema reset and is never called by the server itself.
func (db *DB) DropTables(names ...string) error {
	var statements []string
	for _, name := range names {
		statements = append(statements, "DROP TABLE IF EXISTS "+db.Table(name)+";")
	}
	for _, statement := range statements {
		if _, err := db.Exec(statement); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	logrus.Warnln("dropped tables:", strings.Join(names, ", "))
	return nil
}
