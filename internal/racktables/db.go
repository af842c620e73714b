// Package racktables reads the source inventory out of a Racktables MySQL
// database. All access goes through Repository; queries are built with
// squirrel and executed over database/sql. Optional tables that differ
// between Racktables releases are handled by the schema prober, which
// produces per-table query plans before any stage runs.
package racktables

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to the source database and verifies the connection. An
// unreachable database is a setup failure; callers abort the run.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open source database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach source database: %w", err)
	}
	return db, nil
}
