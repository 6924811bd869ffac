package domain

import (
	"context"
	"time"
)

// FeedbackMaxLength caps the feedback text column.
const FeedbackMaxLength = 2000

// Feedback is a free-text suggestion left by a visitor, optionally tied to a
// shared event page.
type Feedback struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Source    string    `json:"source"`
	UserAgent string    `json:"userAgent,omitempty"`
	ShareCode string    `json:"shareCode,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// FeedbackRepository defines the interface for feedback storage.
type FeedbackRepository interface {
	Create(ctx context.Context, fb *Feedback) error
	ListRecent(ctx context.Context, params PaginationParams) ([]*Feedback, int, error)
}

// FeedbackService defines the business logic for visitor feedback.
type FeedbackService interface {
	Submit(ctx context.Context, fb *Feedback) error
	ListRecent(ctx context.Context, params PaginationParams) ([]*Feedback, int, error)
}
