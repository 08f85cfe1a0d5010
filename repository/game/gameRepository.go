// repository/game/gameRepository.go
package gamerepo

import (
	"context"
	"database/sql"

	"github.com/PawelKwidzinski/console-and-games-rental/model"
)

type Repo interface {
	Create(ctx context.Context, g *model.Game) error
	ByID(ctx context.Context, id int64) (*model.Game, error)
	UpdateShareable(ctx context.Context, id int64, shareable bool) error
	UpdateArchived(ctx context.Context, id int64, archived bool) error
	UpdateCover(ctx context.Context, id int64, cover string) error

	// ListDisplayable returns shareable, non-archived games not owned by the
	// viewer.
	ListDisplayable(ctx context.Context, viewerID int64, page, size int) ([]model.Game, int64, error)
	ListByOwner(ctx context.Context, ownerID int64, page, size int) ([]model.Game, int64, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Create(ctx context.Context, g *model.Game) error {
	const q = `
		INSERT INTO games (owner_id, title, publisher, platform, synopsis, shareable, archived)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE)
		RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, q,
		g.OwnerID, g.Title, g.Publisher, g.Platform, g.Synopsis, g.Shareable,
	).Scan(&g.ID, &g.CreatedAt)
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Game, error) {
	const q = `
		SELECT id, owner_id, title, publisher, platform, synopsis, cover, shareable, archived, created_at
		FROM games
		WHERE id = $1`
	g := &model.Game{}
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&g.ID, &g.OwnerID, &g.Title, &g.Publisher, &g.Platform, &g.Synopsis,
		&g.Cover, &g.Shareable, &g.Archived, &g.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (r *repo) UpdateShareable(ctx context.Context, id int64, shareable bool) error {
	const q = `UPDATE games SET shareable = $2 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id, shareable)
	return err
}

func (r *repo) UpdateArchived(ctx context.Context, id int64, archived bool) error {
	const q = `UPDATE games SET archived = $2 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id, archived)
	return err
}

func (r *repo) UpdateCover(ctx context.Context, id int64, cover string) error {
	const q = `UPDATE games SET cover = $2 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id, cover)
	return err
}

func (r *repo) ListDisplayable(ctx context.Context, viewerID int64, page, size int) ([]model.Game, int64, error) {
	const q = `
		SELECT id, owner_id, title, publisher, platform, synopsis, cover, shareable, archived, created_at,
		       COUNT(*) OVER() AS total
		FROM games
		WHERE shareable
		  AND NOT archived
		  AND owner_id <> $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	return r.list(ctx, q, viewerID, page, size)
}

func (r *repo) ListByOwner(ctx context.Context, ownerID int64, page, size int) ([]model.Game, int64, error) {
	const q = `
		SELECT id, owner_id, title, publisher, platform, synopsis, cover, shareable, archived, created_at,
		       COUNT(*) OVER() AS total
		FROM games
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	return r.list(ctx, q, ownerID, page, size)
}

func (r *repo) list(ctx context.Context, q string, userID int64, page, size int) ([]model.Game, int64, error) {
	rows, err := r.db.QueryContext(ctx, q, userID, size, page*size)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.Game
	var total int64
	for rows.Next() {
		var g model.Game
		if err := rows.Scan(
			&g.ID, &g.OwnerID, &g.Title, &g.Publisher, &g.Platform, &g.Synopsis,
			&g.Cover, &g.Shareable, &g.Archived, &g.CreatedAt, &total,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, g)
	}
	return out, total, rows.Err()
}
