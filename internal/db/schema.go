package db

import (
	"context"
	"fmt"
)

// sqliteSchema is the full SQLite schema.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS item_types (
    id         INTEGER PRIMARY KEY,
    name       TEXT NOT NULL,
    name_key   TEXT NOT NULL UNIQUE,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS classifications (
    id         INTEGER PRIMARY KEY,
    name       TEXT NOT NULL,
    name_key   TEXT NOT NULL UNIQUE,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS departments (
    id         INTEGER PRIMARY KEY,
    name       TEXT NOT NULL,
    name_key   TEXT NOT NULL UNIQUE,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS users (
    id        INTEGER PRIMARY KEY,
    full_name TEXT NOT NULL,
    name_key  TEXT NOT NULL,
    email     TEXT NOT NULL DEFAULT '',
    is_active INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS items (
    id                     INTEGER PRIMARY KEY,
    item_name              TEXT NOT NULL,
    name_key               TEXT NOT NULL UNIQUE,
    item_type_id           INTEGER NOT NULL,
    item_classification_id INTEGER NOT NULL,
    created_at             DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at             DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS assets (
    id                     INTEGER PRIMARY KEY,
    item_id                INTEGER NOT NULL REFERENCES items(id),
    item_type_id           INTEGER NOT NULL,
    item_classification_id INTEGER NOT NULL,
    department_id          INTEGER NOT NULL,
    employee_id            INTEGER NOT NULL,
    encoder_id             INTEGER NOT NULL,
    purchase_date          DATE NOT NULL,
    total_cost             NUMERIC NOT NULL,
    quantity               INTEGER NOT NULL DEFAULT 1 CHECK (quantity > 0),
    life_span_months       INTEGER,
    condition              TEXT NOT NULL DEFAULT '',
    image_ref              TEXT NOT NULL DEFAULT '',
    created_at             DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at             DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// postgresSchema mirrors sqliteSchema with Postgres types.
const postgresSchema = `
CREATE TABLE IF NOT EXISTS item_types (
    id         BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    name       TEXT NOT NULL,
    name_key   TEXT NOT NULL UNIQUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS classifications (
    id         BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    name       TEXT NOT NULL,
    name_key   TEXT NOT NULL UNIQUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS departments (
    id         BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    name       TEXT NOT NULL,
    name_key   TEXT NOT NULL UNIQUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS users (
    id        BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    full_name TEXT NOT NULL,
    name_key  TEXT NOT NULL,
    email     TEXT NOT NULL DEFAULT '',
    is_active BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS items (
    id                     BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    item_name              TEXT NOT NULL,
    name_key               TEXT NOT NULL UNIQUE,
    item_type_id           BIGINT NOT NULL,
    item_classification_id BIGINT NOT NULL,
    created_at             TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at             TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS assets (
    id                     BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    item_id                BIGINT NOT NULL REFERENCES items(id),
    item_type_id           BIGINT NOT NULL,
    item_classification_id BIGINT NOT NULL,
    department_id          BIGINT NOT NULL,
    employee_id            BIGINT NOT NULL,
    encoder_id             BIGINT NOT NULL,
    purchase_date          DATE NOT NULL,
    total_cost             NUMERIC(14, 2) NOT NULL,
    quantity               INTEGER NOT NULL DEFAULT 1 CHECK (quantity > 0),
    life_span_months       INTEGER,
    condition              TEXT NOT NULL DEFAULT '',
    image_ref              TEXT NOT NULL DEFAULT '',
    created_at             TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at             TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(ctx context.Context, c *Conn) error {
	schema := sqliteSchema
	if c.Dialect == Postgres {
		schema = postgresSchema
	}
	if _, err := c.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
