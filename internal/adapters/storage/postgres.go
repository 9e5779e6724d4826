package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// NewPostgresStorage abre el store sobre Postgres (driver lib/pq). El schema
// es el mismo que en SQLite; los placeholders se reescriben a $N.
func NewPostgresStorage(dsn string) (*Storage, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage.NewPostgresStorage: open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewPostgresStorage: ping: %w", err)
	}
	return initStorage(db, dialectPostgres)
}
