package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"quickagenda/internal/domain"
)

type formService struct {
	eventRepo      domain.EventRepository
	formRepo       domain.FormRepository
	responseRepo   domain.FormResponseRepository
	contextTimeout time.Duration
}

// NewFormService wires the form authoring and guest submission logic.
func NewFormService(eventRepo domain.EventRepository, formRepo domain.FormRepository, responseRepo domain.FormResponseRepository, timeout time.Duration) domain.FormService {
	return &formService{
		eventRepo:      eventRepo,
		formRepo:       formRepo,
		responseRepo:   responseRepo,
		contextTimeout: timeout,
	}
}

func (s *formService) GetAdminForm(ctx context.Context, shareCode string) (*domain.FormSchema, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByShareCode(ctx, shareCode)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}

	schema, err := s.formRepo.GetByEventID(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("get form: %w", err)
	}
	return schema, nil
}

func (s *formService) UpsertForm(ctx context.Context, shareCode string, schema *domain.FormSchema) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if schema == nil {
		return fmt.Errorf("%w: form schema is required", domain.ErrInvalidInput)
	}
	if errs := schema.Validate(); len(errs) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(errs, "; "))
	}

	event, err := s.eventRepo.GetByShareCode(ctx, shareCode)
	if err != nil {
		return fmt.Errorf("get event: %w", err)
	}

	schema.EventID = event.ID
	if err := s.formRepo.Upsert(ctx, schema); err != nil {
		return fmt.Errorf("upsert form: %w", err)
	}
	return nil
}

// openForm fetches the event's schema and checks the guest-facing gate: the
// form exists, is active, and the current time sits inside the open/close
// window. A gate failure is reported with outside, not an error, so callers
// can choose between 404 and 403 semantics.
func (s *formService) openForm(ctx context.Context, shareCode string) (schema *domain.FormSchema, outside bool, err error) {
	event, err := s.eventRepo.GetByShareCode(ctx, shareCode)
	if err != nil {
		return nil, false, fmt.Errorf("get event: %w", err)
	}

	schema, err = s.formRepo.GetByEventID(ctx, event.ID)
	if err != nil {
		return nil, false, fmt.Errorf("get form: %w", err)
	}
	if schema == nil {
		return nil, false, domain.ErrNotFound
	}

	now := time.Now()
	if !schema.Active {
		return schema, true, nil
	}
	if schema.OpenAt != nil && now.Before(*schema.OpenAt) {
		return schema, true, nil
	}
	if schema.CloseAt != nil && now.After(*schema.CloseAt) {
		return schema, true, nil
	}
	return schema, false, nil
}

func (s *formService) GetPublicForm(ctx context.Context, shareCode, email string) (*domain.FormSchema, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !domain.ValidEmail(email) {
		return nil, fmt.Errorf("%w: a valid email is required", domain.ErrInvalidInput)
	}

	schema, outside, err := s.openForm(ctx, shareCode)
	if err != nil {
		return nil, err
	}
	if outside {
		// Guests never learn whether a closed form exists.
		return nil, domain.ErrNotFound
	}
	return schema, nil
}

func (s *formService) Submit(ctx context.Context, shareCode, email string, answers domain.Answers) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !domain.ValidEmail(email) {
		return fmt.Errorf("%w: a valid email is required", domain.ErrInvalidInput)
	}

	schema, outside, err := s.openForm(ctx, shareCode)
	if err != nil {
		return err
	}
	if outside {
		return fmt.Errorf("%w: form is not accepting responses", domain.ErrForbidden)
	}

	if fieldErrs := domain.ValidateAnswers(schema.Fields, answers); len(fieldErrs) > 0 {
		return &domain.AnswerValidationError{Fields: fieldErrs}
	}

	if err := s.responseRepo.Upsert(ctx, schema.ID, strings.ToLower(strings.TrimSpace(email)), answers); err != nil {
		return fmt.Errorf("upsert response: %w", err)
	}
	return nil
}

func (s *formService) ListResponses(ctx context.Context, shareCode string) ([]*domain.FormResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByShareCode(ctx, shareCode)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}

	schema, err := s.formRepo.GetByEventID(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("get form: %w", err)
	}
	if schema == nil {
		return []*domain.FormResponse{}, nil
	}

	responses, err := s.responseRepo.ListByFormID(ctx, schema.ID)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	if responses == nil {
		responses = []*domain.FormResponse{}
	}
	return responses, nil
}
