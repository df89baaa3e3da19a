package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"shopfloor/pkg/platform/sentinel"
)

// Postgres persists users in PostgreSQL. Email uniqueness is backed by a
// unique index.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) GetByID(ctx context.Context, id int64) (*User, error) {
	return s.queryOne(ctx,
		`SELECT id, name, email, role, password_hash, created_at FROM users WHERE id = $1`, id)
}

func (s *Postgres) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.queryOne(ctx,
		`SELECT id, name, email, role, password_hash, created_at FROM users WHERE email = $1`, email)
}

func (s *Postgres) Create(ctx context.Context, u *User) (*User, error) {
	out := *u
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO users (name, email, role, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		u.Name, u.Email, u.Role, u.PasswordHash, u.CreatedAt,
	).Scan(&out.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, sentinel.ErrConflict
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &out, nil
}

func (s *Postgres) queryOne(ctx context.Context, query string, args ...any) (*User, error) {
	var u User
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&u.ID, &u.Name, &u.Email, &u.Role, &u.PasswordHash, &u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}
