package gamesvc

import (
	"context"
	"database/sql"
	"errors"
	"io"

	"github.com/PawelKwidzinski/console-and-games-rental/model"
)

var (
	ErrNotFound  = errors.New("game not found")
	ErrNotOwner  = errors.New("not the owner of this game")
	ErrBadInput  = errors.New("bad input")
	ErrBadUpload = errors.New("could not store the file")
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

type Repo interface {
	Create(ctx context.Context, g *model.Game) error
	ByID(ctx context.Context, id int64) (*model.Game, error)
	UpdateCover(ctx context.Context, id int64, cover string) error
	ListDisplayable(ctx context.Context, viewerID int64, page, size int) ([]model.Game, int64, error)
	ListByOwner(ctx context.Context, ownerID int64, page, size int) ([]model.Game, int64, error)
}

type LoanLister interface {
	ListBorrowedByUser(ctx context.Context, borrowerID int64, page, size int) ([]model.BorrowedGameRow, int64, error)
	ListReturnedByOwner(ctx context.Context, ownerID int64, page, size int) ([]model.BorrowedGameRow, int64, error)
}

type Storage interface {
	Save(src io.Reader, originalName string, userID int64) (string, error)
}

type Service interface {
	Create(ctx context.Context, ownerID int64, req model.GameRequest) (int64, error)
	Detail(ctx context.Context, id int64) (*model.Game, error)

	ListAll(ctx context.Context, viewerID int64, page, size int) (model.PageResponse[model.Game], error)
	ListOwned(ctx context.Context, ownerID int64, page, size int) (model.PageResponse[model.Game], error)
	ListBorrowed(ctx context.Context, userID int64, page, size int) (model.PageResponse[model.BorrowedGameRow], error)
	ListReturned(ctx context.Context, ownerID int64, page, size int) (model.PageResponse[model.BorrowedGameRow], error)

	UploadCover(ctx context.Context, gameID, actingUserID int64, originalName string, src io.Reader) (string, error)
}

type service struct {
	r     Repo
	loans LoanLister
	files Storage
}

func New(r Repo, loans LoanLister, files Storage) Service {
	return &service{r: r, loans: loans, files: files}
}

func (s *service) Create(ctx context.Context, ownerID int64, req model.GameRequest) (int64, error) {
	if req.Title == "" || req.Publisher == "" || req.Platform == "" {
		return 0, ErrBadInput
	}
	g := &model.Game{
		OwnerID:   ownerID,
		Title:     req.Title,
		Publisher: req.Publisher,
		Platform:  req.Platform,
		Synopsis:  req.Synopsis,
		Shareable: req.Shareable,
	}
	if err := s.r.Create(ctx, g); err != nil {
		return 0, err
	}
	return g.ID, nil
}

func (s *service) Detail(ctx context.Context, id int64) (*model.Game, error) {
	g, err := s.r.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return g, nil
}

func (s *service) ListAll(ctx context.Context, viewerID int64, page, size int) (model.PageResponse[model.Game], error) {
	page, size = clampPaging(page, size)
	rows, total, err := s.r.ListDisplayable(ctx, viewerID, page, size)
	if err != nil {
		return model.PageResponse[model.Game]{}, err
	}
	return model.NewPage(rows, page, size, total), nil
}

func (s *service) ListOwned(ctx context.Context, ownerID int64, page, size int) (model.PageResponse[model.Game], error) {
	page, size = clampPaging(page, size)
	rows, total, err := s.r.ListByOwner(ctx, ownerID, page, size)
	if err != nil {
		return model.PageResponse[model.Game]{}, err
	}
	return model.NewPage(rows, page, size, total), nil
}

func (s *service) ListBorrowed(ctx context.Context, userID int64, page, size int) (model.PageResponse[model.BorrowedGameRow], error) {
	page, size = clampPaging(page, size)
	rows, total, err := s.loans.ListBorrowedByUser(ctx, userID, page, size)
	if err != nil {
		return model.PageResponse[model.BorrowedGameRow]{}, err
	}
	return model.NewPage(rows, page, size, total), nil
}

func (s *service) ListReturned(ctx context.Context, ownerID int64, page, size int) (model.PageResponse[model.BorrowedGameRow], error) {
	page, size = clampPaging(page, size)
	rows, total, err := s.loans.ListReturnedByOwner(ctx, ownerID, page, size)
	if err != nil {
		return model.PageResponse[model.BorrowedGameRow]{}, err
	}
	return model.NewPage(rows, page, size, total), nil
}

func (s *service) UploadCover(ctx context.Context, gameID, actingUserID int64, originalName string, src io.Reader) (string, error) {
	g, err := s.Detail(ctx, gameID)
	if err != nil {
		return "", err
	}
	if g.OwnerID != actingUserID {
		return "", ErrNotOwner
	}
	path, err := s.files.Save(src, originalName, actingUserID)
	if err != nil {
		return "", errors.Join(ErrBadUpload, err)
	}
	if err := s.r.UpdateCover(ctx, gameID, path); err != nil {
		return "", err
	}
	return path, nil
}

func clampPaging(page, size int) (int, int) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}
