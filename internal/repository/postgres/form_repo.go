package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"quickagenda/internal/domain"
)

// uniqueViolation is the Postgres error code raised when an insert hits a
// unique constraint.
const uniqueViolation = "23505"

type formRepository struct {
	DB *sql.DB
}

func NewFormRepository(db *sql.DB) domain.FormRepository {
	return &formRepository{
		DB: db,
	}
}

func (r *formRepository) GetByEventID(ctx context.Context, eventID int64) (*domain.FormSchema, error) {
	query := `
		SELECT id, event_id, title, active, open_at, close_at
		FROM forms
		WHERE event_id = $1
	`
	f := &domain.FormSchema{}
	var openAt, closeAt sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, eventID).Scan(
		&f.ID, &f.EventID, &f.Title, &f.Active, &openAt, &closeAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if openAt.Valid {
		f.OpenAt = &openAt.Time
	}
	if closeAt.Valid {
		f.CloseAt = &closeAt.Time
	}

	fields, err := r.listFields(ctx, f.ID)
	if err != nil {
		return nil, err
	}
	f.Fields = fields
	return f, nil
}

func (r *formRepository) listFields(ctx context.Context, formID int64) ([]domain.FormField, error) {
	query := `
		SELECT id, field_type, label, required, order_index, options_json, config_json
		FROM form_fields
		WHERE form_id = $1
		ORDER BY order_index, id
	`
	rows, err := r.DB.QueryContext(ctx, query, formID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	fields := make([]domain.FormField, 0)
	for rows.Next() {
		var f domain.FormField
		var fieldType string
		var optionsJSON, configJSON sql.NullString
		if err := rows.Scan(&f.ID, &fieldType, &f.Label, &f.Required, &f.OrderIndex, &optionsJSON, &configJSON); err != nil {
			return nil, err
		}
		f.Type = domain.FieldType(fieldType)
		if optionsJSON.Valid && optionsJSON.String != "" {
			if err := json.Unmarshal([]byte(optionsJSON.String), &f.Options); err != nil {
				return nil, fmt.Errorf("decode options for field %d: %w", f.ID, err)
			}
		}
		if configJSON.Valid && configJSON.String != "" {
			cfg := &domain.NumberConfig{}
			if err := json.Unmarshal([]byte(configJSON.String), cfg); err != nil {
				return nil, fmt.Errorf("decode config for field %d: %w", f.ID, err)
			}
			f.Config = cfg
		}
		fields = append(fields, f)
	}
	return fields, rows.Err()
}

// Upsert writes the schema and replaces its field rows in one transaction.
// Field options and number bounds are stored as JSON text columns.
func (r *formRepository) Upsert(ctx context.Context, schema *domain.FormSchema) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var formID int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM forms WHERE event_id = $1`, schema.EventID).Scan(&formID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		insert := `
			INSERT INTO forms (event_id, title, active, open_at, close_at, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
			RETURNING id
		`
		err = tx.QueryRowContext(ctx, insert,
			schema.EventID, schema.Title, schema.Active, schema.OpenAt, schema.CloseAt,
		).Scan(&formID)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
				return domain.ErrConflict
			}
			return err
		}
	case err != nil:
		return err
	default:
		update := `
			UPDATE forms
			SET title = $1, active = $2, open_at = $3, close_at = $4, updated_at = NOW()
			WHERE id = $5
		`
		if _, err := tx.ExecContext(ctx, update, schema.Title, schema.Active, schema.OpenAt, schema.CloseAt, formID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM form_fields WHERE form_id = $1`, formID); err != nil {
			return err
		}
	}

	insertField := `
		INSERT INTO form_fields (form_id, field_type, label, required, order_index, options_json, config_json)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	for i := range schema.Fields {
		f := &schema.Fields[i]
		var optionsJSON, configJSON sql.NullString
		if len(f.Options) > 0 {
			data, err := json.Marshal(f.Options)
			if err != nil {
				return fmt.Errorf("encode options for %q: %w", f.Label, err)
			}
			optionsJSON = sql.NullString{String: string(data), Valid: true}
		}
		if f.Config != nil {
			data, err := json.Marshal(f.Config)
			if err != nil {
				return fmt.Errorf("encode config for %q: %w", f.Label, err)
			}
			configJSON = sql.NullString{String: string(data), Valid: true}
		}
		err := tx.QueryRowContext(ctx, insertField,
			formID, string(f.Type), f.Label, f.Required, f.OrderIndex, optionsJSON, configJSON,
		).Scan(&f.ID)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	schema.ID = formID
	return nil
}
