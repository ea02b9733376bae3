package store

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

type User struct {
	ID           int64
	Email        string
	PasswordHash string
	IsActive     bool
	CreatedAt    int64
}

type UserStore struct {
	db *DB
}

func NewUserStore(database *DB) *UserStore {
	return &UserStore{db: database}
}

func (s *UserStore) Create(ctx context.Context, email string, passwordHash string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return User{}, ErrValidation
	}

	if _, err := s.GetByEmail(ctx, email); err == nil {
		return User{}, ErrEmailTaken
	} else if err != ErrUserNotFound {
		return User{}, err
	}

	now := time.Now().Unix()
	res, err := s.db.Conn().ExecContext(ctx,
		`INSERT INTO users (email, password_hash, is_active, created_at) VALUES (?, ?, 1, ?)`,
		email, passwordHash, now)
	if err != nil {
		return User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return User{}, err
	}
	return User{ID: id, Email: email, PasswordHash: passwordHash, IsActive: true, CreatedAt: now}, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return s.getOne(ctx, `SELECT id, email, password_hash, is_active, created_at FROM users WHERE email = ?`, email)
}

func (s *UserStore) GetByID(ctx context.Context, id int64) (User, error) {
	return s.getOne(ctx, `SELECT id, email, password_hash, is_active, created_at FROM users WHERE id = ?`, id)
}

func (s *UserStore) SetActive(ctx context.Context, id int64, active bool) error {
	res, err := s.db.Conn().ExecContext(ctx, `UPDATE users SET is_active = ? WHERE id = ?`, boolToInt(active), id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *UserStore) getOne(ctx context.Context, query string, arg interface{}) (User, error) {
	var (
		u      User
		active int
	)
	err := s.db.Conn().QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Email, &u.PasswordHash, &active, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	u.IsActive = active != 0
	return u, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
