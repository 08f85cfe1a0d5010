package feedbacksvc

import (
	"context"
	"database/sql"
	"errors"

	"github.com/PawelKwidzinski/console-and-games-rental/model"
	"github.com/PawelKwidzinski/console-and-games-rental/service/lending"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrNotAllowed   = errors.New("feedback not allowed for this game")
	ErrOwnGame      = errors.New("cannot give feedback to your own game")
)

type GameStore interface {
	ByID(ctx context.Context, id int64) (*model.Game, error)
}

type Repo interface {
	Insert(ctx context.Context, f *model.Feedback) (int64, error)
	ListByGame(ctx context.Context, gameID int64, page, size int) ([]model.Feedback, int64, error)
}

type Service interface {
	Save(ctx context.Context, actingUserID int64, req model.FeedbackRequest) (int64, error)
	ListByGame(ctx context.Context, gameID, actingUserID int64, page, size int) (model.PageResponse[model.Feedback], error)
}

type service struct {
	games GameStore
	r     Repo
}

func New(games GameStore, r Repo) Service { return &service{games: games, r: r} }

func (s *service) Save(ctx context.Context, actingUserID int64, req model.FeedbackRequest) (int64, error) {
	g, err := s.games.ByID(ctx, req.GameID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrGameNotFound
		}
		return 0, err
	}
	// same gate as borrowing: archived or unshared games take no feedback
	if !lending.IsLendable(g) {
		return 0, ErrNotAllowed
	}
	if lending.IsOwner(g, actingUserID) {
		return 0, ErrOwnGame
	}

	return s.r.Insert(ctx, &model.Feedback{
		GameID:  req.GameID,
		UserID:  actingUserID,
		Note:    req.Note,
		Comment: req.Comment,
	})
}

func (s *service) ListByGame(ctx context.Context, gameID, actingUserID int64, page, size int) (model.PageResponse[model.Feedback], error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	rows, total, err := s.r.ListByGame(ctx, gameID, page, size)
	if err != nil {
		return model.PageResponse[model.Feedback]{}, err
	}
	for i := range rows {
		rows[i].OwnFeedback = rows[i].UserID == actingUserID
	}
	return model.NewPage(rows, page, size, total), nil
}
