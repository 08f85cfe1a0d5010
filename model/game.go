// model/game.go
package model

import "time"

type Game struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	Title     string    `json:"title"`
	Publisher string    `json:"publisher"`
	Platform  string    `json:"platform"`
	Synopsis  string    `json:"synopsis,omitempty"`
	Cover     *string   `json:"cover,omitempty"`
	Shareable bool      `json:"shareable"`
	Archived  bool      `json:"archived"`
	CreatedAt time.Time `json:"created_at"`
}

// Lendable reports whether the game is eligible for borrowing.
func (g *Game) Lendable() bool { return !g.Archived && g.Shareable }

// GameRequest is the create-game payload.
// swagger:model GameRequest
type GameRequest struct {
	Title     string `json:"title" validate:"required"`
	Publisher string `json:"publisher" validate:"required"`
	Platform  string `json:"platform" validate:"required"`
	Synopsis  string `json:"synopsis"`
	Shareable bool   `json:"shareable"`
}

// BorrowedGameRow is the loan-joined view used by the borrowed/returned lists.
type BorrowedGameRow struct {
	LoanID         int64     `json:"loan_id"`
	GameID         int64     `json:"game_id"`
	Title          string    `json:"title"`
	Publisher      string    `json:"publisher"`
	Platform       string    `json:"platform"`
	Returned       bool      `json:"returned"`
	ReturnApproved bool      `json:"return_approved"`
	BorrowedAt     time.Time `json:"borrowed_at"`
}
