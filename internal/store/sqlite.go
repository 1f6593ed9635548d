package store

import (
	"database/sql"

	_ "github.com/glebarez/go-sqlite"
)

// NewSQLite opens the file-backed fallback alert store. Used when no
// Postgres instance is reachable; the rest of the system cannot tell the
// difference.
func NewSQLite(path string) (Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	return newSQLStore(db, false)
}
