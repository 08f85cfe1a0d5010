// repository/loan/loanRepository.go
package loanrepo

import (
	"context"
	"database/sql"
	"time"

	"github.com/PawelKwidzinski/console-and-games-rental/model"
)

// Row is the persisted shape of a loan: the two flags, not the derived state.
type Row struct {
	ID             int64
	GameID         int64
	BorrowerID     int64
	Returned       bool
	ReturnApproved bool
	CreatedAt      time.Time
}

type Repo interface {
	// FindOpenForUpdate locks the open loan for (game, borrower) if one
	// exists. Returns sql.ErrNoRows when there is none.
	FindOpenForUpdate(ctx context.Context, tx *sql.Tx, gameID, borrowerID int64) (*Row, error)

	// FindPendingApprovalForUpdate locks the loan awaiting approval on the
	// game, whoever the borrower is. Returns sql.ErrNoRows when none is
	// pending.
	FindPendingApprovalForUpdate(ctx context.Context, tx *sql.Tx, gameID int64) (*Row, error)

	// Insert creates a loan in its initial state. The partial unique index
	// on (game_id, borrower_id) for open loans makes a concurrent duplicate
	// borrow fail with a unique violation.
	Insert(ctx context.Context, tx *sql.Tx, gameID, borrowerID int64) (int64, error)

	// MarkReturned applies Borrowed -> PendingApproval. Reports false when
	// the row was no longer in Borrowed state.
	MarkReturned(ctx context.Context, tx *sql.Tx, loanID int64) (bool, error)

	// MarkReturnApproved applies PendingApproval -> Closed. Reports false
	// when the row was not pending approval.
	MarkReturnApproved(ctx context.Context, tx *sql.Tx, loanID int64) (bool, error)

	ListBorrowedByUser(ctx context.Context, borrowerID int64, page, size int) ([]model.BorrowedGameRow, int64, error)
	ListReturnedByOwner(ctx context.Context, ownerID int64, page, size int) ([]model.BorrowedGameRow, int64, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) FindOpenForUpdate(ctx context.Context, tx *sql.Tx, gameID, borrowerID int64) (*Row, error) {
	const q = `
		SELECT id, game_id, borrower_id, returned, return_approved, created_at
		FROM loans
		WHERE game_id = $1
		  AND borrower_id = $2
		  AND NOT return_approved
		FOR UPDATE`
	var row Row
	err := tx.QueryRowContext(ctx, q, gameID, borrowerID).Scan(
		&row.ID, &row.GameID, &row.BorrowerID, &row.Returned, &row.ReturnApproved, &row.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repo) FindPendingApprovalForUpdate(ctx context.Context, tx *sql.Tx, gameID int64) (*Row, error) {
	const q = `
		SELECT id, game_id, borrower_id, returned, return_approved, created_at
		FROM loans
		WHERE game_id = $1
		  AND returned
		  AND NOT return_approved
		ORDER BY id
		FOR UPDATE
		LIMIT 1`
	var row Row
	err := tx.QueryRowContext(ctx, q, gameID).Scan(
		&row.ID, &row.GameID, &row.BorrowerID, &row.Returned, &row.ReturnApproved, &row.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repo) Insert(ctx context.Context, tx *sql.Tx, gameID, borrowerID int64) (int64, error) {
	const q = `
		INSERT INTO loans (game_id, borrower_id, returned, return_approved)
		VALUES ($1, $2, FALSE, FALSE)
		RETURNING id`
	var id int64
	if err := tx.QueryRowContext(ctx, q, gameID, borrowerID).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repo) MarkReturned(ctx context.Context, tx *sql.Tx, loanID int64) (bool, error) {
	// Guarded: only a Borrowed row may move to PendingApproval.
	const q = `
		UPDATE loans
		SET returned = TRUE
		WHERE id = $1
		  AND NOT returned
		  AND NOT return_approved`
	res, err := tx.ExecContext(ctx, q, loanID)
	if err != nil {
		return false, err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return aff == 1, nil
}

func (r *repo) MarkReturnApproved(ctx context.Context, tx *sql.Tx, loanID int64) (bool, error) {
	const q = `
		UPDATE loans
		SET return_approved = TRUE
		WHERE id = $1
		  AND returned
		  AND NOT return_approved`
	res, err := tx.ExecContext(ctx, q, loanID)
	if err != nil {
		return false, err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return aff == 1, nil
}

func (r *repo) ListBorrowedByUser(ctx context.Context, borrowerID int64, page, size int) ([]model.BorrowedGameRow, int64, error) {
	const q = `
		SELECT l.id, g.id, g.title, g.publisher, g.platform,
		       l.returned, l.return_approved, l.created_at,
		       COUNT(*) OVER() AS total
		FROM loans l
		JOIN games g ON g.id = l.game_id
		WHERE l.borrower_id = $1
		ORDER BY l.created_at DESC, l.id DESC
		LIMIT $2 OFFSET $3`
	return r.listRows(ctx, q, borrowerID, page, size)
}

func (r *repo) ListReturnedByOwner(ctx context.Context, ownerID int64, page, size int) ([]model.BorrowedGameRow, int64, error) {
	const q = `
		SELECT l.id, g.id, g.title, g.publisher, g.platform,
		       l.returned, l.return_approved, l.created_at,
		       COUNT(*) OVER() AS total
		FROM loans l
		JOIN games g ON g.id = l.game_id
		WHERE g.owner_id = $1
		  AND l.returned
		ORDER BY l.created_at DESC, l.id DESC
		LIMIT $2 OFFSET $3`
	return r.listRows(ctx, q, ownerID, page, size)
}

func (r *repo) listRows(ctx context.Context, q string, userID int64, page, size int) ([]model.BorrowedGameRow, int64, error) {
	rows, err := r.db.QueryContext(ctx, q, userID, size, page*size)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.BorrowedGameRow
	var total int64
	for rows.Next() {
		var b model.BorrowedGameRow
		if err := rows.Scan(
			&b.LoanID, &b.GameID, &b.Title, &b.Publisher, &b.Platform,
			&b.Returned, &b.ReturnApproved, &b.BorrowedAt, &total,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}
