package database

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

//go:embed schema.sql
var schemaSQL string

// Statements returns the schema split into individual statements.
func Statements() []string {
	var out []string
	for _, s := range strings.Split(schemaSQL, ";") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Migrate applies every CREATE TABLE IF NOT EXISTS statement in order.
// Statements are idempotent, so Migrate is safe on every boot.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for i, stmt := range Statements() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate statement %d: %w", i+1, err)
		}
	}
	zap.S().Infow("schema migrated", "statements", len(Statements()))
	return nil
}
