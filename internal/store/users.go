package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/docdesk/internal/apperr"
	"github.com/starford/docdesk/internal/models"
)

// InsertUser creates a user and returns its id.
func (db *DB) InsertUser(ctx context.Context, u models.User) (int64, error) {
	role := u.Role
	if role == "" {
		role = "user"
	}
	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO users (username, email, first_name, last_name, role)
		VALUES (?, ?, ?, ?, ?)
	`, u.Username, u.Email, u.FirstName, u.LastName, role)
	if err != nil {
		return 0, fmt.Errorf("store: insert user: %w", err)
	}
	return res.LastInsertId()
}

// User returns a user by id.
func (db *DB) User(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, username, email, first_name, last_name, role FROM users WHERE id = ?
	`, id).Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: user %d: %w", id, err)
	}
	return &u, nil
}

// Users returns every user ordered by username.
func (db *DB) Users(ctx context.Context) ([]models.User, error) {
	return db.queryUsers(ctx, `SELECT id, username, email, first_name, last_name, role FROM users ORDER BY username`)
}

// SearchUsers matches username, email, first or last name against q,
// excluding the caller, at most limit rows.
func (db *DB) SearchUsers(ctx context.Context, q string, excludeID int64, limit int) ([]models.User, error) {
	if limit <= 0 {
		limit = 10
	}
	p := like(q)
	return db.queryUsers(ctx, `
		SELECT id, username, email, first_name, last_name, role FROM users
		WHERE id != ?
		  AND (username LIKE ? ESCAPE '\' OR email LIKE ? ESCAPE '\'
		       OR first_name LIKE ? ESCAPE '\' OR last_name LIKE ? ESCAPE '\')
		ORDER BY username
		LIMIT ?
	`, excludeID, p, p, p, p, limit)
}

func (db *DB) queryUsers(ctx context.Context, query string, args ...any) ([]models.User, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: users: %w", err)
	}
	defer rows.Close()

	out := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.Role); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
