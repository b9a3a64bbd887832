// Package db is the hand-written Postgres access layer. Every query takes a
// context and returns model types; no caching happens here, that is the
// store layer's job.
package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/garrycui/wellnest/internal/config"
)

// Queries bundles all database operations over one connection pool.
type Queries struct {
	db *sql.DB
}

// New wraps an existing connection pool.
func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

// Init opens a Postgres connection pool, verifies it, and applies the
// configured statement timeout to every session.
func Init(connStr string) (*Queries, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	cfg := config.Load()
	if cfg.DBStatementTimeout > 0 {
		timeout := fmt.Sprintf("SET statement_timeout = %d", cfg.DBStatementTimeout.Milliseconds())
		if _, err := db.Exec(timeout); err != nil {
			return nil, err
		}
	}

	return New(db), nil
}

// DB exposes the underlying pool so callers can run raw SQL when needed.
func (q *Queries) DB() *sql.DB {
	return q.db
}
