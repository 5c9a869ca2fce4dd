/*
Package sqlstore provides a docstore.Store on an SQL database. SQLite3
(github.com/mattn/go-sqlite3) and PostgreSQL (github.com/lib/pq) are
supported through their own Dialect.
*/
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/antoniomachine/bigml/docstore"

	// Import of postgres driver
	_ "github.com/lib/pq"
	// Import of sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
)

/*
Dialect holds the driver name and statements a database needs to keep
documents in the resources table.
*/
type Dialect struct {
	Driver string
	Create string
	Select string
	Upsert string
}

var (
	// SQLite3 is the dialect for sqlite3 database files
	SQLite3 = Dialect{
		Driver: "sqlite3",
		Create: `CREATE TABLE IF NOT EXISTS resources (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			document BLOB NOT NULL)`,
		Select: `SELECT document FROM resources WHERE id = ?`,
		Upsert: `INSERT INTO resources (id, kind, document) VALUES (?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET kind = excluded.kind, document = excluded.document`,
	}
	// Postgres is the dialect for PostgreSQL databases
	Postgres = Dialect{
		Driver: "postgres",
		Create: `CREATE TABLE IF NOT EXISTS resources (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			document BYTEA NOT NULL)`,
		Select: `SELECT document FROM resources WHERE id = $1`,
		Upsert: `INSERT INTO resources (id, kind, document) VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET kind = EXCLUDED.kind, document = EXCLUDED.document`,
	}
)

type sqlStore struct {
	db      *sql.DB
	dialect Dialect
}

/*
Open takes a dialect and a data source name for its driver and returns a
docstore.Store on that database, creating the resources table if needed,
or an error if the database cannot be opened.
*/
func Open(ctx context.Context, dialect Dialect, dsn string) (docstore.Store, error) {
	db, err := sql.Open(dialect.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %v", dialect.Driver, err)
	}
	s, err := New(ctx, db, dialect)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

/*
New takes an open database and its dialect and returns a docstore.Store
on it, creating the resources table if needed.
*/
func New(ctx context.Context, db *sql.DB, dialect Dialect) (docstore.Store, error) {
	if _, err := db.ExecContext(ctx, dialect.Create); err != nil {
		return nil, fmt.Errorf("running resources table creation statement: %v", err)
	}
	return &sqlStore{db, dialect}, nil
}

func (ss *sqlStore) Get(ctx context.Context, id string) ([]byte, error) {
	var doc []byte
	err := ss.db.QueryRowContext(ctx, ss.dialect.Select, id).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, docstore.NotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("retrieving document %q: %v", id, err)
	}
	return doc, nil
}

func (ss *sqlStore) Put(ctx context.Context, id string, doc []byte) error {
	_, err := ss.db.ExecContext(ctx, ss.dialect.Upsert, id, kindOf(id), doc)
	if err != nil {
		return fmt.Errorf("storing document %q: %v", id, err)
	}
	return nil
}

func (ss *sqlStore) Close(ctx context.Context) error {
	return ss.db.Close()
}

func kindOf(id string) string {
	if i := strings.Index(id, "/"); i >= 0 {
		return id[:i]
	}
	return ""
}
