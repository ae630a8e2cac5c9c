package users

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, user User) error {
	const query = `
INSERT INTO users (uid, username, email, created_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (uid) DO NOTHING`
	createdAt, err := time.Parse(time.RFC3339Nano, user.CreatedAt)
	if err != nil {
		createdAt = time.Now().UTC()
	}
	res, err := r.DB.ExecContext(ctx, query, user.UID, user.Username, user.Email, createdAt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrExists
	}
	return nil
}

func (r *PGRepo) Get(ctx context.Context, uid string) (User, error) {
	const query = `
SELECT uid, username, email, created_at
FROM users
WHERE uid = $1
LIMIT 1`
	var user User
	var createdAt time.Time
	err := r.DB.QueryRowContext(ctx, query, uid).Scan(&user.UID, &user.Username, &user.Email, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	user.CreatedAt = createdAt.UTC().Format(time.RFC3339Nano)
	return user, nil
}

var _ Repo = (*PGRepo)(nil)
