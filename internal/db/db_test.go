package db

import (
	"context"
	"testing"
)

func TestRebind(t *testing.T) {
	tests := []struct {
		dialect  Dialect
		input    string
		expected string
	}{
		{SQLite, "SELECT * FROM items WHERE id = ?", "SELECT * FROM items WHERE id = ?"},
		{Postgres, "SELECT * FROM items WHERE id = ?", "SELECT * FROM items WHERE id = $1"},
		{Postgres, "UPDATE items SET item_name = ?, name_key = ? WHERE id = ?", "UPDATE items SET item_name = $1, name_key = $2 WHERE id = $3"},
		{Postgres, "SELECT '?' FROM t WHERE a = ?", "SELECT '?' FROM t WHERE a = $1"},
	}

	for _, tt := range tests {
		c := &Conn{Dialect: tt.dialect}
		if got := c.Rebind(tt.input); got != tt.expected {
			t.Errorf("Rebind(%q) [%s] = %q, want %q", tt.input, tt.dialect, got, tt.expected)
		}
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	conn := NewTestDB(t)
	if err := Migrate(context.Background(), conn); err != nil {
		t.Fatalf("second migrate: %v", err)
	}

	id, err := conn.Insert(context.Background(),
		`INSERT INTO item_types (name, name_key) VALUES (?, ?)`, "Electronics", "electronics")
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if id != 1 {
		t.Errorf("first id = %d, want 1", id)
	}

	if _, err := conn.Insert(context.Background(),
		`INSERT INTO item_types (name, name_key) VALUES (?, ?)`, "ELECTRONICS", "electronics"); err == nil {
		t.Error("expected unique violation on name_key")
	}
}
