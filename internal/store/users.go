package store

import (
	"context"
	"fmt"
	"time"
)

// User is a local account record.
type User struct {
	UID          string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}

// CreateUser inserts a new account. Emails are unique case-insensitively.
// Returns ErrDuplicate (wrapped) if the uid or email is taken.
func (s *Store) CreateUser(ctx context.Context, u User) (User, error) {
	u.CreatedAt = s.clock.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (uid, email, password_hash, created_at)
		VALUES (?, ?, ?, ?)
	`, u.UID, u.Email, u.PasswordHash, u.CreatedAt.UnixNano())
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, fmt.Errorf("create user %s: %w", u.Email, ErrDuplicate)
		}
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// UserByEmail looks up an account by email, ignoring case.
// Returns sql.ErrNoRows (wrapped) if not found.
func (s *Store) UserByEmail(ctx context.Context, email string) (User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT uid, email, password_hash, created_at FROM users WHERE email = ?
	`, email))
}

// UserByUID looks up an account by uid.
// Returns sql.ErrNoRows (wrapped) if not found.
func (s *Store) UserByUID(ctx context.Context, uid string) (User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT uid, email, password_hash, created_at FROM users WHERE uid = ?
	`, uid))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanUser(row rowScanner) (User, error) {
	var (
		u       User
		created int64
	)
	if err := row.Scan(&u.UID, &u.Email, &u.PasswordHash, &created); err != nil {
		return User{}, fmt.Errorf("read user: %w", err)
	}
	u.CreatedAt = time.Unix(0, created).UTC()
	return u, nil
}
