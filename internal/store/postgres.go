package store

import (
	"database/sql"

	_ "github.com/lib/pq"
)

// NewPostgres opens the primary Postgres-backed alert store.
func NewPostgres(dsn string) (Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	return newSQLStore(db, true)
}
