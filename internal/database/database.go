// Package database centralises sqlx connection helpers and the embedded
// schema.  The driver is go-sql-driver/mysql, which also works with MariaDB
// and TiDB.
//
// Public entry points:
//
//	Open(dsn)                              – conservative pool sizes.
//	OpenWithOptions(dsn, maxOpen, maxIdle) – fine-grained control.
//	Migrate(ctx, db)                       – apply schema.sql idempotently.
//	IsDuplicate(err)                       – detect unique-key violations.
//
// Both Open helpers Ping the database before returning so callers can fail
// fast during bootstrap.  The DSN gains parseTime=true when it is missing so
// DATETIME columns scan into time.Time.
package database

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// Open returns a *sqlx.DB with 15 max open, 5 idle, and a 30-minute
// connection lifetime.
func Open(dsn string) (*sqlx.DB, error) {
	return OpenWithOptions(dsn, 15, 5)
}

// OpenWithOptions lets callers tune maxOpen and maxIdle.
func OpenWithOptions(dsn string, maxOpen, maxIdle int) (*sqlx.DB, error) {
	db, err := sqlx.Open("mysql", withParseTime(dsn))
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// IsDuplicate reports whether err is a MySQL unique-key violation.
func IsDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

func withParseTime(dsn string) string {
	if strings.Contains(dsn, "parseTime=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&parseTime=true"
	}
	return dsn + "?parseTime=true"
}
