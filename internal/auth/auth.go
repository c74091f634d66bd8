// Package auth is the access gate: a persistent allow-list of user ids,
// unlocked once per user with the shared access password.
package auth

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"strings"
	"time"

	"postbot/pkg/logx"
)

// User is an authorized operator.
type User struct {
	ID           int64
	Username     string
	FirstName    string
	AuthorizedAt time.Time
}

type Gate struct {
	db       *sql.DB
	password string
	log      logx.Logger
}

func NewGate(db *sql.DB, password string, log logx.Logger) *Gate {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Gate{db: db, password: password, log: log}
}

// IsAuthorized reports whether the user id is on the allow-list.
func (g *Gate) IsAuthorized(ctx context.Context, userID int64) (bool, error) {
	var id int64
	err := g.db.QueryRowContext(ctx, `SELECT user_id FROM authorized_users WHERE user_id = ?`, userID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CheckPassword compares a password attempt in constant time.
func (g *Gate) CheckPassword(attempt string) bool {
	a := []byte(strings.TrimSpace(attempt))
	b := []byte(g.password)
	return subtle.ConstantTimeCompare(a, b) == 1
}

// Authorize adds (or refreshes) a user on the allow-list.
func (g *Gate) Authorize(ctx context.Context, u User) error {
	_, err := g.db.ExecContext(ctx,
		`INSERT INTO authorized_users(user_id, username, first_name) VALUES(?,?,?)
		 ON CONFLICT(user_id) DO UPDATE SET username=excluded.username, first_name=excluded.first_name`,
		u.ID, nullStr(u.Username), nullStr(u.FirstName),
	)
	if err != nil {
		return err
	}
	g.log.Info("user authorized", logx.Int64("user_id", u.ID), logx.String("username", u.Username))
	return nil
}

// Revoke removes a user from the allow-list.
func (g *Gate) Revoke(ctx context.Context, userID int64) (bool, error) {
	res, err := g.db.ExecContext(ctx, `DELETE FROM authorized_users WHERE user_id = ?`, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		g.log.Info("user access revoked", logx.Int64("user_id", userID))
	}
	return n > 0, nil
}

// List returns all authorized users, oldest first.
func (g *Gate) List(ctx context.Context) ([]User, error) {
	rows, err := g.db.QueryContext(ctx,
		`SELECT user_id, username, first_name, authorized_at FROM authorized_users ORDER BY authorized_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var (
			u         User
			username  sql.NullString
			firstName sql.NullString
			at        string
		)
		if err := rows.Scan(&u.ID, &username, &firstName, &at); err != nil {
			return nil, err
		}
		u.Username = username.String
		u.FirstName = firstName.String
		if t, err := time.Parse(time.RFC3339, at); err == nil {
			u.AuthorizedAt = t
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func nullStr(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}
