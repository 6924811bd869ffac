package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"quickagenda/internal/domain"
)

type feedbackService struct {
	feedbackRepo   domain.FeedbackRepository
	contextTimeout time.Duration
}

// NewFeedbackService wires the visitor feedback logic.
func NewFeedbackService(feedbackRepo domain.FeedbackRepository, timeout time.Duration) domain.FeedbackService {
	return &feedbackService{
		feedbackRepo:   feedbackRepo,
		contextTimeout: timeout,
	}
}

func (s *feedbackService) Submit(ctx context.Context, fb *domain.Feedback) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	fb.Text = strings.TrimSpace(fb.Text)
	if fb.Text == "" {
		return fmt.Errorf("%w: feedback text is required", domain.ErrInvalidInput)
	}
	if utf8.RuneCountInString(fb.Text) > domain.FeedbackMaxLength {
		return fmt.Errorf("%w: feedback text exceeds %d characters", domain.ErrInvalidInput, domain.FeedbackMaxLength)
	}

	if err := s.feedbackRepo.Create(ctx, fb); err != nil {
		return fmt.Errorf("create feedback: %w", err)
	}
	return nil
}

func (s *feedbackService) ListRecent(ctx context.Context, params domain.PaginationParams) ([]*domain.Feedback, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	list, total, err := s.feedbackRepo.ListRecent(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list feedback: %w", err)
	}
	if list == nil {
		list = []*domain.Feedback{}
	}
	return list, total, nil
}
