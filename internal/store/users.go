package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/db"
	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/model"
)

// UpsertUser writes a user mirrored from the upstream directory. Users are
// never created by the engine itself.
func UpsertUser(ctx context.Context, conn *db.Conn, u *model.User) error {
	_, err := conn.ExecContext(ctx,
		`INSERT INTO users (id, full_name, name_key, email, is_active) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET full_name = excluded.full_name, name_key = excluded.name_key,
		     email = excluded.email, is_active = excluded.is_active`,
		u.ID, u.FullName, model.NameKey(u.FullName), u.Email, u.IsActive,
	)
	if err != nil {
		return fmt.Errorf("upserting user: %w", err)
	}
	return nil
}

// GetUser returns a user by ID.
func GetUser(ctx context.Context, conn *db.Conn, id int64) (*model.User, error) {
	u := &model.User{}
	err := conn.QueryRowContext(ctx,
		`SELECT id, full_name, email, is_active FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.FullName, &u.Email, &u.IsActive)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// FindUser returns the lowest-numbered active user with the given full
// name, ignoring case and spacing.
func FindUser(ctx context.Context, conn *db.Conn, name string) (*model.User, error) {
	u := &model.User{}
	err := conn.QueryRowContext(ctx,
		`SELECT id, full_name, email, is_active FROM users
		 WHERE name_key = ? ORDER BY is_active DESC, id LIMIT 1`, model.NameKey(name),
	).Scan(&u.ID, &u.FullName, &u.Email, &u.IsActive)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding user: %w", err)
	}
	return u, nil
}

// ListUsers returns all users ordered by full name.
func ListUsers(ctx context.Context, conn *db.Conn) ([]model.User, error) {
	rows, err := conn.QueryContext(ctx,
		`SELECT id, full_name, email, is_active FROM users ORDER BY name_key, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.FullName, &u.Email, &u.IsActive); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
