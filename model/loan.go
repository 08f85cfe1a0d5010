// model/loan.go
package model

import "fmt"

// LoanState is the derived lifecycle state of a loan. Transitions only move
// forward: Borrowed -> PendingApproval -> Closed.
type LoanState string

const (
	LoanBorrowed        LoanState = "BORROWED"
	LoanPendingApproval LoanState = "PENDING_APPROVAL"
	LoanClosed          LoanState = "CLOSED"
)

// LoanStateFromFlags maps the two persisted flags to a LoanState.
// {returned=false, returnApproved=true} has no legal meaning and is rejected
// instead of being silently tolerated.
func LoanStateFromFlags(returned, returnApproved bool) (LoanState, error) {
	switch {
	case !returned && !returnApproved:
		return LoanBorrowed, nil
	case returned && !returnApproved:
		return LoanPendingApproval, nil
	case returned && returnApproved:
		return LoanClosed, nil
	default:
		return "", fmt.Errorf("illegal loan flags: returned=%v return_approved=%v", returned, returnApproved)
	}
}

// Open reports whether the loan still blocks a new borrow of the same game
// by the same user.
func (s LoanState) Open() bool {
	return s == LoanBorrowed || s == LoanPendingApproval
}
