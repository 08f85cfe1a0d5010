package feedbackrepo

import (
	"context"
	"database/sql"

	"github.com/PawelKwidzinski/console-and-games-rental/model"
)

type Repo interface {
	Insert(ctx context.Context, f *model.Feedback) (int64, error)
	ListByGame(ctx context.Context, gameID int64, page, size int) ([]model.Feedback, int64, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Insert(ctx context.Context, f *model.Feedback) (int64, error) {
	const q = `
		INSERT INTO feedbacks (game_id, user_id, note, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	var id int64
	if err := r.db.QueryRowContext(ctx, q, f.GameID, f.UserID, f.Note, f.Comment).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repo) ListByGame(ctx context.Context, gameID int64, page, size int) ([]model.Feedback, int64, error) {
	const q = `
		SELECT id, game_id, user_id, note, comment, created_at,
		       COUNT(*) OVER() AS total
		FROM feedbacks
		WHERE game_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, q, gameID, size, page*size)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.Feedback
	var total int64
	for rows.Next() {
		var f model.Feedback
		if err := rows.Scan(&f.ID, &f.GameID, &f.UserID, &f.Note, &f.Comment, &f.CreatedAt, &total); err != nil {
			return nil, 0, err
		}
		out = append(out, f)
	}
	return out, total, rows.Err()
}
