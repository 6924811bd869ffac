package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"quickagenda/internal/domain"
)

type formResponseRepository struct {
	DB *sql.DB
}

func NewFormResponseRepository(db *sql.DB) domain.FormResponseRepository {
	return &formResponseRepository{
		DB: db,
	}
}

// Upsert stores a guest's answers, replacing any earlier submission for the
// same form and email. Answers travel as a JSON text column.
func (r *formResponseRepository) Upsert(ctx context.Context, formID int64, email string, answers domain.Answers) error {
	data, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	query := `
		INSERT INTO form_responses (form_id, email, answers_json, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (form_id, email)
		DO UPDATE SET answers_json = EXCLUDED.answers_json, updated_at = NOW()
	`
	_, err = r.DB.ExecContext(ctx, query, formID, email, string(data))
	return err
}

func (r *formResponseRepository) ListByFormID(ctx context.Context, formID int64) ([]*domain.FormResponse, error) {
	query := `
		SELECT id, form_id, email, answers_json, created_at, updated_at
		FROM form_responses
		WHERE form_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, formID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	responses := make([]*domain.FormResponse, 0)
	for rows.Next() {
		resp := &domain.FormResponse{}
		var answersJSON string
		if err := rows.Scan(&resp.ID, &resp.FormID, &resp.Email, &answersJSON, &resp.CreatedAt, &resp.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(answersJSON), &resp.Answers); err != nil {
			return nil, fmt.Errorf("decode answers for response %d: %w", resp.ID, err)
		}
		responses = append(responses, resp)
	}
	return responses, rows.Err()
}

func (r *formResponseRepository) CountByFormID(ctx context.Context, formID int64) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM form_responses WHERE form_id = $1`, formID).Scan(&count)
	return count, err
}
