package lending

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PawelKwidzinski/console-and-games-rental/model"
)

// --- test doubles ---

// passthroughTx runs the unit without a database; the in-memory stores below
// ignore the nil *sql.Tx.
type passthroughTx struct{}

func (passthroughTx) WithinTx(_ context.Context, fn func(tx *sql.Tx) error) error {
	return fn(nil)
}

type gameStoreMock struct {
	byIDFn     func(ctx context.Context, id int64) (*model.Game, error)
	updShareFn func(ctx context.Context, id int64, shareable bool) error
	updArchFn  func(ctx context.Context, id int64, archived bool) error
}

func (m *gameStoreMock) ByID(ctx context.Context, id int64) (*model.Game, error) {
	return m.byIDFn(ctx, id)
}
func (m *gameStoreMock) UpdateShareable(ctx context.Context, id int64, shareable bool) error {
	if m.updShareFn == nil {
		return nil
	}
	return m.updShareFn(ctx, id, shareable)
}
func (m *gameStoreMock) UpdateArchived(ctx context.Context, id int64, archived bool) error {
	if m.updArchFn == nil {
		return nil
	}
	return m.updArchFn(ctx, id, archived)
}

// memStores is a stateful in-memory Catalog Store + Transaction Store pair,
// used to drive full borrow/return/approve sequences.
type memStores struct {
	games  map[int64]*model.Game
	loans  map[int64]*LoanRow
	nextID int64
}

func newMemStores(games ...*model.Game) *memStores {
	m := &memStores{games: map[int64]*model.Game{}, loans: map[int64]*LoanRow{}, nextID: 1}
	for _, g := range games {
		m.games[g.ID] = g
	}
	return m
}

func (m *memStores) ByID(_ context.Context, id int64) (*model.Game, error) {
	g, ok := m.games[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *g
	return &cp, nil
}

func (m *memStores) UpdateShareable(_ context.Context, id int64, shareable bool) error {
	m.games[id].Shareable = shareable
	return nil
}

func (m *memStores) UpdateArchived(_ context.Context, id int64, archived bool) error {
	m.games[id].Archived = archived
	return nil
}

func (m *memStores) FindOpenForUpdate(_ context.Context, _ *sql.Tx, gameID, borrowerID int64) (*LoanRow, error) {
	for _, l := range m.loans {
		if l.GameID == gameID && l.BorrowerID == borrowerID && !l.ReturnApproved {
			cp := *l
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memStores) FindPendingApprovalForUpdate(_ context.Context, _ *sql.Tx, gameID int64) (*LoanRow, error) {
	for _, l := range m.loans {
		if l.GameID == gameID && l.Returned && !l.ReturnApproved {
			cp := *l
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memStores) Insert(_ context.Context, _ *sql.Tx, gameID, borrowerID int64) (int64, error) {
	for _, l := range m.loans {
		if l.GameID == gameID && l.BorrowerID == borrowerID && !l.ReturnApproved {
			return 0, &pgconn.PgError{Code: pgerrcode.UniqueViolation}
		}
	}
	id := m.nextID
	m.nextID++
	m.loans[id] = &LoanRow{ID: id, GameID: gameID, BorrowerID: borrowerID}
	return id, nil
}

func (m *memStores) MarkReturned(_ context.Context, _ *sql.Tx, loanID int64) (bool, error) {
	l, ok := m.loans[loanID]
	if !ok || l.Returned || l.ReturnApproved {
		return false, nil
	}
	l.Returned = true
	return true, nil
}

func (m *memStores) MarkReturnApproved(_ context.Context, _ *sql.Tx, loanID int64) (bool, error) {
	l, ok := m.loans[loanID]
	if !ok || !l.Returned || l.ReturnApproved {
		return false, nil
	}
	l.ReturnApproved = true
	return true, nil
}

func (m *memStores) state(t *testing.T, loanID int64) model.LoanState {
	t.Helper()
	l, ok := m.loans[loanID]
	require.True(t, ok, "loan %d not found", loanID)
	s, err := model.LoanStateFromFlags(l.Returned, l.ReturnApproved)
	require.NoError(t, err)
	return s
}

func newService(m *memStores) Service {
	return New(passthroughTx{}, m, m)
}

const (
	ownerU1    = int64(1)
	borrowerU2 = int64(2)
	otherU3    = int64(3)
)

func shareableGame(id int64) *model.Game {
	return &model.Game{ID: id, OwnerID: ownerU1, Title: "Gran Turismo 7", Shareable: true}
}

// --- authorization predicates ---

func TestPredicates(t *testing.T) {
	g := &model.Game{ID: 1, OwnerID: ownerU1, Shareable: true}
	assert.True(t, IsOwner(g, ownerU1))
	assert.False(t, IsOwner(g, borrowerU2))
	assert.True(t, IsLendable(g))

	g.Archived = true
	assert.False(t, IsLendable(g))

	g.Archived = false
	g.Shareable = false
	assert.False(t, IsLendable(g))
}

// --- lendability gate (P1) ---

func TestLendabilityGate(t *testing.T) {
	testCases := []struct {
		name      string
		shareable bool
		archived  bool
	}{
		{"archived", true, true},
		{"not shareable", false, false},
		{"archived and not shareable", false, true},
	}

	type op struct {
		name string
		call func(s Service, gameID, userID int64) (int64, error)
	}
	ops := []op{
		{"borrow", func(s Service, g, u int64) (int64, error) { return s.Borrow(context.Background(), g, u) }},
		{"return", func(s Service, g, u int64) (int64, error) { return s.ReturnGame(context.Background(), g, u) }},
		{"approve", func(s Service, g, u int64) (int64, error) { return s.ApproveReturn(context.Background(), g, u) }},
	}

	for _, tc := range testCases {
		for _, o := range ops {
			t.Run(tc.name+"/"+o.name, func(t *testing.T) {
				m := newMemStores(&model.Game{ID: 1, OwnerID: ownerU1, Shareable: tc.shareable, Archived: tc.archived})
				s := newService(m)
				for _, uid := range []int64{ownerU1, borrowerU2, otherU3} {
					_, err := o.call(s, 1, uid)
					require.Error(t, err)
					assert.Equal(t, ErrForbidden, Code(err), "user %d", uid)
				}
			})
		}
	}
}

// --- no self-loan (P2) ---

func TestBorrowOwnGameForbidden(t *testing.T) {
	m := newMemStores(shareableGame(1))
	s := newService(m)

	_, err := s.Borrow(context.Background(), 1, ownerU1)
	require.Error(t, err)
	assert.Equal(t, ErrForbidden, Code(err))
	assert.Empty(t, m.loans)
}

// --- missing game ---

func TestOperationsOnMissingGame(t *testing.T) {
	s := newService(newMemStores())
	ctx := context.Background()

	for name, call := range map[string]func() (int64, error){
		"borrow":        func() (int64, error) { return s.Borrow(ctx, 99, borrowerU2) },
		"return":        func() (int64, error) { return s.ReturnGame(ctx, 99, borrowerU2) },
		"approve":       func() (int64, error) { return s.ApproveReturn(ctx, 99, ownerU1) },
		"set shareable": func() (int64, error) { return s.SetShareable(ctx, 99, ownerU1) },
		"set archived":  func() (int64, error) { return s.SetArchived(ctx, 99, ownerU1) },
	} {
		_, err := call()
		require.Error(t, err, name)
		assert.Equal(t, ErrNotFound, Code(err), name)
	}
}

// --- Scenario A: borrow, then duplicate borrow (P3) ---

func TestBorrowThenDuplicateBorrow(t *testing.T) {
	m := newMemStores(shareableGame(1))
	s := newService(m)
	ctx := context.Background()

	loanID, err := s.Borrow(ctx, 1, borrowerU2)
	require.NoError(t, err)
	assert.Equal(t, model.LoanBorrowed, m.state(t, loanID))

	_, err = s.Borrow(ctx, 1, borrowerU2)
	require.Error(t, err)
	assert.Equal(t, ErrConflict, Code(err))
}

// --- Scenario B: owner cannot return; borrower return moves to pending ---

func TestReturnFlow(t *testing.T) {
	m := newMemStores(shareableGame(1))
	s := newService(m)
	ctx := context.Background()

	loanID, err := s.Borrow(ctx, 1, borrowerU2)
	require.NoError(t, err)

	_, err = s.ReturnGame(ctx, 1, ownerU1)
	require.Error(t, err)
	assert.Equal(t, ErrForbidden, Code(err))

	returnedID, err := s.ReturnGame(ctx, 1, borrowerU2)
	require.NoError(t, err)
	assert.Equal(t, loanID, returnedID)
	assert.Equal(t, model.LoanPendingApproval, m.state(t, loanID))
}

func TestReturnWithoutBorrowConflict(t *testing.T) {
	m := newMemStores(shareableGame(1))
	s := newService(m)

	_, err := s.ReturnGame(context.Background(), 1, borrowerU2)
	require.Error(t, err)
	assert.Equal(t, ErrConflict, Code(err))
}

// Double return is rejected, not silently accepted (P4).
func TestDoubleReturnConflict(t *testing.T) {
	m := newMemStores(shareableGame(1))
	s := newService(m)
	ctx := context.Background()

	_, err := s.Borrow(ctx, 1, borrowerU2)
	require.NoError(t, err)
	_, err = s.ReturnGame(ctx, 1, borrowerU2)
	require.NoError(t, err)

	_, err = s.ReturnGame(ctx, 1, borrowerU2)
	require.Error(t, err)
	assert.Equal(t, ErrConflict, Code(err))
}

// --- Scenario C: approval is owner-only (P5), closes the loan ---

func TestApproveFlow(t *testing.T) {
	m := newMemStores(shareableGame(1))
	s := newService(m)
	ctx := context.Background()

	loanID, err := s.Borrow(ctx, 1, borrowerU2)
	require.NoError(t, err)
	_, err = s.ReturnGame(ctx, 1, borrowerU2)
	require.NoError(t, err)

	// borrower cannot approve their own return
	_, err = s.ApproveReturn(ctx, 1, borrowerU2)
	require.Error(t, err)
	assert.Equal(t, ErrForbidden, Code(err))

	// neither can an unrelated user
	_, err = s.ApproveReturn(ctx, 1, otherU3)
	require.Error(t, err)
	assert.Equal(t, ErrForbidden, Code(err))

	approvedID, err := s.ApproveReturn(ctx, 1, ownerU1)
	require.NoError(t, err)
	assert.Equal(t, loanID, approvedID)
	assert.Equal(t, model.LoanClosed, m.state(t, loanID))
}

func TestApproveWithoutReturnConflict(t *testing.T) {
	m := newMemStores(shareableGame(1))
	s := newService(m)
	ctx := context.Background()

	// nothing pending at all
	_, err := s.ApproveReturn(ctx, 1, ownerU1)
	require.Error(t, err)
	assert.Equal(t, ErrConflict, Code(err))

	// borrowed but not yet returned
	_, err = s.Borrow(ctx, 1, borrowerU2)
	require.NoError(t, err)
	_, err = s.ApproveReturn(ctx, 1, ownerU1)
	require.Error(t, err)
	assert.Equal(t, ErrConflict, Code(err))
}

func TestApproveTwiceConflict(t *testing.T) {
	m := newMemStores(shareableGame(1))
	s := newService(m)
	ctx := context.Background()

	_, err := s.Borrow(ctx, 1, borrowerU2)
	require.NoError(t, err)
	_, err = s.ReturnGame(ctx, 1, borrowerU2)
	require.NoError(t, err)
	_, err = s.ApproveReturn(ctx, 1, ownerU1)
	require.NoError(t, err)

	_, err = s.ApproveReturn(ctx, 1, ownerU1)
	require.Error(t, err)
	assert.Equal(t, ErrConflict, Code(err))
}

// After a closed loan the same pair may borrow again.
func TestReborrowAfterClose(t *testing.T) {
	m := newMemStores(shareableGame(1))
	s := newService(m)
	ctx := context.Background()

	first, err := s.Borrow(ctx, 1, borrowerU2)
	require.NoError(t, err)
	_, err = s.ReturnGame(ctx, 1, borrowerU2)
	require.NoError(t, err)
	_, err = s.ApproveReturn(ctx, 1, ownerU1)
	require.NoError(t, err)

	second, err := s.Borrow(ctx, 1, borrowerU2)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.Equal(t, model.LoanBorrowed, m.state(t, second))
}

// --- Scenario E: visibility toggles ---

func TestSetShareable(t *testing.T) {
	m := newMemStores(shareableGame(3))
	s := newService(m)
	ctx := context.Background()

	_, err := s.SetShareable(ctx, 3, borrowerU2)
	require.Error(t, err)
	assert.Equal(t, ErrForbidden, Code(err))
	assert.True(t, m.games[3].Shareable)

	id, err := s.SetShareable(ctx, 3, ownerU1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)
	assert.False(t, m.games[3].Shareable)

	// flips back
	_, err = s.SetShareable(ctx, 3, ownerU1)
	require.NoError(t, err)
	assert.True(t, m.games[3].Shareable)
}

func TestSetArchived(t *testing.T) {
	m := newMemStores(shareableGame(4))
	s := newService(m)
	ctx := context.Background()

	_, err := s.SetArchived(ctx, 4, otherU3)
	require.Error(t, err)
	assert.Equal(t, ErrForbidden, Code(err))

	_, err = s.SetArchived(ctx, 4, ownerU1)
	require.NoError(t, err)
	assert.True(t, m.games[4].Archived)

	// archived games are no longer lendable
	_, err = s.Borrow(ctx, 4, borrowerU2)
	require.Error(t, err)
	assert.Equal(t, ErrForbidden, Code(err))
}

// --- storage error taxonomy ---

// A duplicate borrow losing the check-then-insert race still surfaces as
// CONFLICT through the unique violation.
func TestBorrowUniqueViolationIsConflict(t *testing.T) {
	games := &gameStoreMock{
		byIDFn: func(_ context.Context, id int64) (*model.Game, error) {
			return shareableGame(id), nil
		},
	}
	loans := &loanStoreMock{
		findOpenFn: func(context.Context, *sql.Tx, int64, int64) (*LoanRow, error) {
			return nil, sql.ErrNoRows
		},
		insertFn: func(context.Context, *sql.Tx, int64, int64) (int64, error) {
			return 0, &pgconn.PgError{Code: pgerrcode.UniqueViolation}
		},
	}
	s := New(passthroughTx{}, games, loans)

	_, err := s.Borrow(context.Background(), 1, borrowerU2)
	require.Error(t, err)
	assert.Equal(t, ErrConflict, Code(err))
}

func TestLockContentionIsUnavailable(t *testing.T) {
	games := &gameStoreMock{
		byIDFn: func(_ context.Context, id int64) (*model.Game, error) {
			return shareableGame(id), nil
		},
	}
	loans := &loanStoreMock{
		findOpenFn: func(context.Context, *sql.Tx, int64, int64) (*LoanRow, error) {
			return nil, &pgconn.PgError{Code: pgerrcode.LockNotAvailable}
		},
	}
	s := New(passthroughTx{}, games, loans)

	_, err := s.Borrow(context.Background(), 1, borrowerU2)
	require.Error(t, err)
	assert.Equal(t, ErrUnavailable, Code(err))
}

// A racer that loses the guarded update gets CONFLICT, never a silent
// overwrite.
func TestLostUpdateRaceIsConflict(t *testing.T) {
	games := &gameStoreMock{
		byIDFn: func(_ context.Context, id int64) (*model.Game, error) {
			return shareableGame(id), nil
		},
	}
	loans := &loanStoreMock{
		findOpenFn: func(context.Context, *sql.Tx, int64, int64) (*LoanRow, error) {
			return &LoanRow{ID: 10, GameID: 1, BorrowerID: borrowerU2}, nil
		},
		markReturnedFn: func(context.Context, *sql.Tx, int64) (bool, error) {
			return false, nil
		},
	}
	s := New(passthroughTx{}, games, loans)

	_, err := s.ReturnGame(context.Background(), 1, borrowerU2)
	require.Error(t, err)
	assert.Equal(t, ErrConflict, Code(err))
}

func TestUnknownStorageErrorPassesThrough(t *testing.T) {
	boom := errors.New("db down")
	games := &gameStoreMock{
		byIDFn: func(context.Context, int64) (*model.Game, error) { return nil, boom },
	}
	s := New(passthroughTx{}, games, &loanStoreMock{})

	_, err := s.Borrow(context.Background(), 1, borrowerU2)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, ErrCode(""), Code(err))
}

// loanStoreMock with function fields, nil fields fail the test if reached.
type loanStoreMock struct {
	findOpenFn     func(ctx context.Context, tx *sql.Tx, gameID, borrowerID int64) (*LoanRow, error)
	findPendingFn  func(ctx context.Context, tx *sql.Tx, gameID int64) (*LoanRow, error)
	insertFn       func(ctx context.Context, tx *sql.Tx, gameID, borrowerID int64) (int64, error)
	markReturnedFn func(ctx context.Context, tx *sql.Tx, loanID int64) (bool, error)
	markApprovedFn func(ctx context.Context, tx *sql.Tx, loanID int64) (bool, error)
}

func (m *loanStoreMock) FindOpenForUpdate(ctx context.Context, tx *sql.Tx, gameID, borrowerID int64) (*LoanRow, error) {
	return m.findOpenFn(ctx, tx, gameID, borrowerID)
}
func (m *loanStoreMock) FindPendingApprovalForUpdate(ctx context.Context, tx *sql.Tx, gameID int64) (*LoanRow, error) {
	return m.findPendingFn(ctx, tx, gameID)
}
func (m *loanStoreMock) Insert(ctx context.Context, tx *sql.Tx, gameID, borrowerID int64) (int64, error) {
	return m.insertFn(ctx, tx, gameID, borrowerID)
}
func (m *loanStoreMock) MarkReturned(ctx context.Context, tx *sql.Tx, loanID int64) (bool, error) {
	return m.markReturnedFn(ctx, tx, loanID)
}
func (m *loanStoreMock) MarkReturnApproved(ctx context.Context, tx *sql.Tx, loanID int64) (bool, error) {
	return m.markApprovedFn(ctx, tx, loanID)
}
