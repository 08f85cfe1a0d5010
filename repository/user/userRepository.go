package userrepo

import (
	"context"
	"database/sql"
	"time"

	"github.com/PawelKwidzinski/console-and-games-rental/model"
)

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	ByEmail(ctx context.Context, email string) (*model.User, error)
	ByID(ctx context.Context, id int64) (*model.User, error)
	Enable(ctx context.Context, id int64) error

	InsertActivationToken(ctx context.Context, t *model.ActivationToken) error
	FindActivationToken(ctx context.Context, token string) (*model.ActivationToken, error)
	MarkTokenValidated(ctx context.Context, tokenID int64, at time.Time) error
	DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Create(ctx context.Context, u *model.User) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO users(first_name, last_name, email, password_hash, enabled)
		VALUES ($1,$2,$3,$4,FALSE)
		RETURNING id, created_at`,
		u.FirstName, u.LastName, u.Email, u.PasswordHash,
	).Scan(&u.ID, &u.CreatedAt)
}

func (r *repo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	u := &model.User{}
	err := r.db.QueryRowContext(ctx, `
        SELECT id, first_name, last_name, email, password_hash, enabled, created_at
        FROM users
        WHERE lower(email) = lower($1)`,
		email,
	).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.Enabled, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.User, error) {
	u := &model.User{}
	err := r.db.QueryRowContext(ctx, `
        SELECT id, first_name, last_name, email, password_hash, enabled, created_at
        FROM users
        WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.Enabled, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *repo) Enable(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET enabled = TRUE WHERE id = $1`, id)
	return err
}

func (r *repo) InsertActivationToken(ctx context.Context, t *model.ActivationToken) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO activation_tokens(user_id, token, expires_at)
		VALUES ($1,$2,$3)
		RETURNING id, created_at`,
		t.UserID, t.Token, t.ExpiresAt,
	).Scan(&t.ID, &t.CreatedAt)
}

func (r *repo) FindActivationToken(ctx context.Context, token string) (*model.ActivationToken, error) {
	t := &model.ActivationToken{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, token, created_at, expires_at, validated_at
		FROM activation_tokens
		WHERE token = $1`,
		token,
	).Scan(&t.ID, &t.UserID, &t.Token, &t.CreatedAt, &t.ExpiresAt, &t.ValidatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *repo) MarkTokenValidated(ctx context.Context, tokenID int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE activation_tokens SET validated_at = $2 WHERE id = $1`, tokenID, at)
	return err
}

func (r *repo) DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM activation_tokens
		WHERE validated_at IS NULL
		  AND expires_at < $1`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
