// Package database opens the MySQL pool shared by every repository.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Pool sizing for the booking workload: a near-idle baseline of
// catalog reads with a sharp burst in the minute a tatkal window
// opens, when the create endpoint and the processor sweep hit the
// pool together.
const (
	maxOpenConns    = 40
	maxIdleConns    = 10
	connMaxLifetime = 5 * time.Minute
)

// Open connects to MySQL and verifies the connection before any
// repository is constructed.  parseTime maps DATETIME columns onto
// time.Time and loc=UTC pins the session zone; the due-job query
// compares scheduled_at against a UTC instant and a drifting session
// zone would silently shift every sweep.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC&timeout=5s",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}
