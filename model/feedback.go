package model

import "time"

type Feedback struct {
	ID        int64     `json:"id"`
	GameID    int64     `json:"game_id"`
	UserID    int64     `json:"-"`
	Note      float64   `json:"note"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	// OwnFeedback is computed per request against the acting user.
	OwnFeedback bool `json:"own_feedback"`
}

// FeedbackRequest is the post-feedback payload.
// swagger:model FeedbackRequest
type FeedbackRequest struct {
	GameID  int64   `json:"game_id" validate:"required,gt=0"`
	Note    float64 `json:"note" validate:"gte=0,lte=5"`
	Comment string  `json:"comment" validate:"required"`
}
