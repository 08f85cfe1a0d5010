// Package lending is the game lending lifecycle engine: it decides when a
// game may be borrowed, returned, and have its return approved, and enforces
// the authorization rules between owners and borrowers.
package lending

import (
	"context"
	"database/sql"
	"errors"

	"github.com/PawelKwidzinski/console-and-games-rental/model"
	loanrepo "github.com/PawelKwidzinski/console-and-games-rental/repository/loan"
	"github.com/PawelKwidzinski/console-and-games-rental/util/database"
)

// LoanRow = repository shape
type LoanRow = loanrepo.Row

type GameStore interface {
	ByID(ctx context.Context, id int64) (*model.Game, error)
	UpdateShareable(ctx context.Context, id int64, shareable bool) error
	UpdateArchived(ctx context.Context, id int64, archived bool) error
}

type LoanStore interface {
	FindOpenForUpdate(ctx context.Context, tx *sql.Tx, gameID, borrowerID int64) (*LoanRow, error)
	FindPendingApprovalForUpdate(ctx context.Context, tx *sql.Tx, gameID int64) (*LoanRow, error)
	Insert(ctx context.Context, tx *sql.Tx, gameID, borrowerID int64) (int64, error)
	MarkReturned(ctx context.Context, tx *sql.Tx, loanID int64) (bool, error)
	MarkReturnApproved(ctx context.Context, tx *sql.Tx, loanID int64) (bool, error)
}

type Service interface {
	// Borrow opens a loan for the acting user on a lendable game they do
	// not own. Returns the new loan id.
	Borrow(ctx context.Context, gameID, actingUserID int64) (int64, error)

	// ReturnGame moves the acting user's open loan to pending approval.
	ReturnGame(ctx context.Context, gameID, actingUserID int64) (int64, error)

	// ApproveReturn closes the pending loan on a game the acting user owns.
	ApproveReturn(ctx context.Context, gameID, actingUserID int64) (int64, error)

	// SetShareable / SetArchived flip the owner-gated visibility flags.
	// Both return the game id.
	SetShareable(ctx context.Context, gameID, actingUserID int64) (int64, error)
	SetArchived(ctx context.Context, gameID, actingUserID int64) (int64, error)
}

type service struct {
	txr   database.TxRunner
	games GameStore
	loans LoanStore
}

func New(txr database.TxRunner, games GameStore, loans LoanStore) Service {
	return &service{txr: txr, games: games, loans: loans}
}

// loadGame maps a missing row to NOT_FOUND; other storage failures pass
// through untouched.
func (s *service) loadGame(ctx context.Context, gameID int64) (*model.Game, error) {
	g, err := s.games.ByID(ctx, gameID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound, "no game found with the id %d", gameID)
		}
		return nil, mapStorageErr(err)
	}
	return g, nil
}

func (s *service) Borrow(ctx context.Context, gameID, actingUserID int64) (int64, error) {
	g, err := s.loadGame(ctx, gameID)
	if err != nil {
		return 0, err
	}
	if !IsLendable(g) {
		return 0, makeErr(ErrForbidden, "game %d is archived or not shareable", gameID)
	}
	if IsOwner(g, actingUserID) {
		return 0, makeErr(ErrForbidden, "owner cannot borrow their own game %d", gameID)
	}

	var loanID int64
	err = s.txr.WithinTx(ctx, func(tx *sql.Tx) error {
		// The existence check and the insert run in one transaction; the
		// partial unique index on open loans closes the race two
		// concurrent borrows could otherwise win together.
		_, err := s.loans.FindOpenForUpdate(ctx, tx, gameID, actingUserID)
		if err == nil {
			return makeErr(ErrConflict, "game %d is already borrowed by user %d", gameID, actingUserID)
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return mapStorageErr(err)
		}

		id, err := s.loans.Insert(ctx, tx, gameID, actingUserID)
		if err != nil {
			return mapStorageErr(err)
		}
		loanID = id
		return nil
	})
	if err != nil {
		return 0, err
	}
	return loanID, nil
}

func (s *service) ReturnGame(ctx context.Context, gameID, actingUserID int64) (int64, error) {
	g, err := s.loadGame(ctx, gameID)
	if err != nil {
		return 0, err
	}
	if !IsLendable(g) {
		return 0, makeErr(ErrForbidden, "game %d is archived or not shareable", gameID)
	}
	if IsOwner(g, actingUserID) {
		return 0, makeErr(ErrForbidden, "owner cannot return their own game %d", gameID)
	}

	var loanID int64
	err = s.txr.WithinTx(ctx, func(tx *sql.Tx) error {
		row, err := s.loans.FindOpenForUpdate(ctx, tx, gameID, actingUserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return makeErr(ErrConflict, "user %d did not borrow game %d", actingUserID, gameID)
			}
			return mapStorageErr(err)
		}

		state, err := model.LoanStateFromFlags(row.Returned, row.ReturnApproved)
		if err != nil {
			return err
		}
		if state != model.LoanBorrowed {
			return makeErr(ErrConflict, "loan %d is already returned", row.ID)
		}

		applied, err := s.loans.MarkReturned(ctx, tx, row.ID)
		if err != nil {
			return mapStorageErr(err)
		}
		if !applied {
			return makeErr(ErrConflict, "loan %d is already returned", row.ID)
		}
		loanID = row.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return loanID, nil
}

func (s *service) ApproveReturn(ctx context.Context, gameID, actingUserID int64) (int64, error) {
	g, err := s.loadGame(ctx, gameID)
	if err != nil {
		return 0, err
	}
	if !IsLendable(g) {
		return 0, makeErr(ErrForbidden, "game %d is archived or not shareable", gameID)
	}
	if !IsOwner(g, actingUserID) {
		return 0, makeErr(ErrForbidden, "only the owner of game %d may approve its return", gameID)
	}

	var loanID int64
	err = s.txr.WithinTx(ctx, func(tx *sql.Tx) error {
		row, err := s.loans.FindPendingApprovalForUpdate(ctx, tx, gameID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return makeErr(ErrConflict, "game %d is not returned yet", gameID)
			}
			return mapStorageErr(err)
		}

		applied, err := s.loans.MarkReturnApproved(ctx, tx, row.ID)
		if err != nil {
			return mapStorageErr(err)
		}
		if !applied {
			return makeErr(ErrConflict, "loan %d is not pending approval", row.ID)
		}
		loanID = row.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return loanID, nil
}

func (s *service) SetShareable(ctx context.Context, gameID, actingUserID int64) (int64, error) {
	g, err := s.loadGame(ctx, gameID)
	if err != nil {
		return 0, err
	}
	if !IsOwner(g, actingUserID) {
		return 0, makeErr(ErrForbidden, "cannot update shareable status of games you do not own")
	}
	if err := s.games.UpdateShareable(ctx, gameID, !g.Shareable); err != nil {
		return 0, mapStorageErr(err)
	}
	return gameID, nil
}

func (s *service) SetArchived(ctx context.Context, gameID, actingUserID int64) (int64, error) {
	g, err := s.loadGame(ctx, gameID)
	if err != nil {
		return 0, err
	}
	if !IsOwner(g, actingUserID) {
		return 0, makeErr(ErrForbidden, "cannot update archived status of games you do not own")
	}
	if err := s.games.UpdateArchived(ctx, gameID, !g.Archived); err != nil {
		return 0, mapStorageErr(err)
	}
	return gameID, nil
}
