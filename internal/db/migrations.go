package db

import (
	"context"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent and valid in both dialects. Append new
// migrations at the end.
var migrations = []string{
	// Migration 1: asset listings filter and join on these.
	`CREATE INDEX IF NOT EXISTS idx_assets_item ON assets(item_id)`,
	`CREATE INDEX IF NOT EXISTS idx_assets_department ON assets(department_id)`,
	// Migration 2: user lookups by name.
	`CREATE INDEX IF NOT EXISTS idx_users_name_key ON users(name_key)`,
}

// Migrate runs the database schema migrations.
func Migrate(ctx context.Context, c *Conn) error {
	if err := EnsureSchema(ctx, c); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	for i, m := range migrations {
		if _, err := c.DB.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
