package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"net/url"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// migration upgrades a database from version-1 to version.
type migration struct {
	version int
	name    string
	stmt    string
}

// migrations run in order against any database whose user_version is
// below their version. Append only.
var migrations = []migration{
	{
		version: 1,
		name:    "index item descriptions for part history",
		stmt:    `CREATE INDEX IF NOT EXISTS idx_bom_items_description ON bom_items(description)`,
	},
}

// latestVersion is the user_version of a fully migrated database.
func latestVersion() int {
	return migrations[len(migrations)-1].version
}

// connParams configure every connection the driver opens.
var connParams = url.Values{
	"_journal_mode": {"WAL"},
	"_synchronous":  {"NORMAL"},
	"_busy_timeout": {"5000"},
	"_foreign_keys": {"on"},
}

// Store is a SQLite database of exported BOMs.
type Store struct {
	db *sql.DB
}

// Open creates or opens the BOM database at path and brings its schema up
// to date. ":memory:" opens a private in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?"+connParams.Encode())
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	// One writer at a time; a single connection also keeps an in-memory
	// database alive for the life of the Store.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.init(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return s, nil
}

func (s *Store) init(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	current, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := s.migrate(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// migrate applies m and records its version in the same transaction.
func (s *Store) migrate(ctx context.Context, m migration) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migration %d: %w", m.version, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.stmt); err != nil {
		return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
	}
	// PRAGMA does not accept bound parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
		return fmt.Errorf("migration %d: set version: %w", m.version, err)
	}
	return tx.Commit()
}

// SchemaVersion reports the migration level recorded in the database.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

// Close closes the database. It is safe on a zero Store.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
