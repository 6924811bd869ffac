package domain

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// FieldType is the closed set of guest-form field types.
type FieldType string

const (
	FieldShortText    FieldType = "short_text"
	FieldLongText     FieldType = "long_text"
	FieldNumber       FieldType = "number"
	FieldDate         FieldType = "date"
	FieldYesNo        FieldType = "yes_no"
	FieldSingleSelect FieldType = "single_select"
	FieldMultiSelect  FieldType = "multi_select"
)

// ParseFieldType validates a wire string against the closed type set.
func ParseFieldType(s string) (FieldType, bool) {
	switch FieldType(s) {
	case FieldShortText, FieldLongText, FieldNumber, FieldDate, FieldYesNo, FieldSingleSelect, FieldMultiSelect:
		return FieldType(s), true
	}
	return "", false
}

// IsSelect reports whether the type carries an option list.
func (t FieldType) IsSelect() bool {
	return t == FieldSingleSelect || t == FieldMultiSelect
}

// NumberConfig bounds a number field. Either bound may be unset.
type NumberConfig struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// FormField is one entry in a guest-form schema. Options and Config are
// structured data; their serialized text forms exist only at the storage
// boundary.
type FormField struct {
	ID         int64         `json:"id"`
	Type       FieldType     `json:"type"`
	Label      string        `json:"label"`
	Required   bool          `json:"required"`
	OrderIndex int           `json:"orderIndex"`
	Options    []string      `json:"options,omitempty"`
	Config     *NumberConfig `json:"config,omitempty"`
}

// FormSchema is the single guest-response form attached to an event.
type FormSchema struct {
	ID      int64       `json:"id"`
	EventID int64       `json:"-"`
	Title   string      `json:"title"`
	Active  bool        `json:"active"`
	OpenAt  *time.Time  `json:"openAt"`
	CloseAt *time.Time  `json:"closeAt"`
	Fields  []FormField `json:"fields"`
}

// AddField appends a field of the given type with builder defaults: empty
// label, not required, order index at the end, and a type-appropriate empty
// payload (option list for selects, bound pair for number). Returns the new
// field's index.
func (s *FormSchema) AddField(t FieldType) int {
	f := FormField{
		Type:       t,
		OrderIndex: len(s.Fields),
	}
	switch {
	case t.IsSelect():
		f.Options = []string{}
	case t == FieldNumber:
		f.Config = &NumberConfig{}
	}
	s.Fields = append(s.Fields, f)
	return len(s.Fields) - 1
}

// AddOption appends value to the field's option list. Duplicates are not
// appended twice. Returns false for an out-of-range index or a non-select
// field.
func (s *FormSchema) AddOption(fieldIndex int, value string) bool {
	if fieldIndex < 0 || fieldIndex >= len(s.Fields) {
		return false
	}
	f := &s.Fields[fieldIndex]
	if !f.Type.IsSelect() {
		return false
	}
	for _, opt := range f.Options {
		if opt == value {
			return false
		}
	}
	f.Options = append(f.Options, value)
	return true
}

// RemoveOption deletes value from the field's option list, preserving order.
func (s *FormSchema) RemoveOption(fieldIndex int, value string) bool {
	if fieldIndex < 0 || fieldIndex >= len(s.Fields) {
		return false
	}
	f := &s.Fields[fieldIndex]
	for i, opt := range f.Options {
		if opt == value {
			f.Options = append(f.Options[:i], f.Options[i+1:]...)
			return true
		}
	}
	return false
}

// SetBounds updates a number field's min/max pair.
func (s *FormSchema) SetBounds(fieldIndex int, min, max *float64) bool {
	if fieldIndex < 0 || fieldIndex >= len(s.Fields) {
		return false
	}
	f := &s.Fields[fieldIndex]
	if f.Type != FieldNumber {
		return false
	}
	f.Config = &NumberConfig{Min: min, Max: max}
	return true
}

// RemoveField deletes the field at fieldIndex and renumbers the order indexes
// of the fields after it.
func (s *FormSchema) RemoveField(fieldIndex int) bool {
	if fieldIndex < 0 || fieldIndex >= len(s.Fields) {
		return false
	}
	s.Fields = append(s.Fields[:fieldIndex], s.Fields[fieldIndex+1:]...)
	for i := range s.Fields {
		s.Fields[i].OrderIndex = i
	}
	return true
}

// Reorder moves the field at fieldIndex to newIndex and renumbers all order
// indexes.
func (s *FormSchema) Reorder(fieldIndex, newIndex int) bool {
	if fieldIndex < 0 || fieldIndex >= len(s.Fields) || newIndex < 0 || newIndex >= len(s.Fields) {
		return false
	}
	f := s.Fields[fieldIndex]
	rest := append(s.Fields[:fieldIndex:fieldIndex], s.Fields[fieldIndex+1:]...)
	s.Fields = append(rest[:newIndex:newIndex], append([]FormField{f}, rest[newIndex:]...)...)
	for i := range s.Fields {
		s.Fields[i].OrderIndex = i
	}
	return true
}

// Validate runs the schema-authoring rules: non-empty title, non-empty labels,
// at least one option per select field, and min <= max when a number field has
// both bounds. Returns one message per violation; empty means valid.
func (s *FormSchema) Validate() []string {
	var errs []string
	if strings.TrimSpace(s.Title) == "" {
		errs = append(errs, "title is required")
	}
	for i, f := range s.Fields {
		if _, ok := ParseFieldType(string(f.Type)); !ok {
			errs = append(errs, fmt.Sprintf("field %d: unknown type %q", i+1, f.Type))
			continue
		}
		if strings.TrimSpace(f.Label) == "" {
			errs = append(errs, fmt.Sprintf("field %d: label is required", i+1))
		}
		if f.Type.IsSelect() && len(f.Options) == 0 {
			errs = append(errs, fmt.Sprintf("field %d: at least one option is required", i+1))
		}
		if f.Type == FieldNumber && f.Config != nil && f.Config.Min != nil && f.Config.Max != nil && *f.Config.Min > *f.Config.Max {
			errs = append(errs, fmt.Sprintf("field %d: min must not exceed max", i+1))
		}
	}
	return errs
}

// Answers maps a field id (as its decimal string, matching the JSON wire form)
// to the guest's value. The value shape depends on the field type: string for
// text, date, and single select; float64 for number; bool for yes/no; a list
// of strings for multi select.
type Answers map[string]any

// AnswerValidationError carries the per-field errors from a failed submission.
type AnswerValidationError struct {
	Fields map[string]string
}

func (e *AnswerValidationError) Error() string {
	return fmt.Sprintf("%d invalid answer(s)", len(e.Fields))
}

// ValidateAnswers checks a guest's answers against the schema fields. Errors
// are keyed by field id; an empty map means the submission may proceed. The
// pass is re-run in full on every call, never incrementally.
func ValidateAnswers(fields []FormField, answers Answers) map[string]string {
	errs := make(map[string]string)
	for _, f := range fields {
		key := fmt.Sprintf("%d", f.ID)
		val, present := answers[key]

		switch f.Type {
		case FieldShortText, FieldLongText, FieldDate, FieldSingleSelect:
			s, ok := val.(string)
			if f.Required && (!present || !ok || strings.TrimSpace(s) == "") {
				errs[key] = "this field is required"
			}
		case FieldNumber:
			n, ok := toNumber(val)
			if !present || val == nil {
				if f.Required {
					errs[key] = "this field is required"
				}
				continue
			}
			if !ok {
				errs[key] = "must be a number"
				continue
			}
			if f.Config != nil {
				if f.Config.Min != nil && n < *f.Config.Min {
					errs[key] = fmt.Sprintf("must be at least %g", *f.Config.Min)
				}
				if f.Config.Max != nil && n > *f.Config.Max {
					errs[key] = fmt.Sprintf("must be at most %g", *f.Config.Max)
				}
			}
		case FieldYesNo:
			if _, ok := val.(bool); f.Required && !ok {
				errs[key] = "this field is required"
			}
		case FieldMultiSelect:
			list := toStringList(val)
			if f.Required && len(list) == 0 {
				errs[key] = "select at least one option"
			}
		}
	}
	return errs
}

func toNumber(val any) (float64, bool) {
	switch n := val.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func toStringList(val any) []string {
	switch l := val.(type) {
	case []string:
		return l
	case []any:
		out := make([]string, 0, len(l))
		for _, v := range l {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// emailRegex matches a simple email format (local@domain with at least one dot in domain).
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidEmail reports whether s has the local@domain.tld shape guests must
// present to load or submit a form.
func ValidEmail(s string) bool {
	return emailRegex.MatchString(strings.TrimSpace(s))
}

// FormResponse is one guest's submitted answer set. A guest resubmitting with
// the same email replaces their prior answers.
type FormResponse struct {
	ID        int64     `json:"-"`
	FormID    int64     `json:"-"`
	Email     string    `json:"email"`
	Answers   Answers   `json:"answers"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}

// FormRepository defines the interface for form schema storage. At most one
// schema exists per event; Upsert surfaces a second concurrent insert as
// ErrConflict.
type FormRepository interface {
	GetByEventID(ctx context.Context, eventID int64) (*FormSchema, error)
	Upsert(ctx context.Context, schema *FormSchema) error
}

// FormResponseRepository defines the interface for submitted answer storage.
type FormResponseRepository interface {
	Upsert(ctx context.Context, formID int64, email string, answers Answers) error
	ListByFormID(ctx context.Context, formID int64) ([]*FormResponse, error)
	CountByFormID(ctx context.Context, formID int64) (int, error)
}

// FormService defines the business logic for form authoring and guest
// submission.
type FormService interface {
	// GetAdminForm returns the event's schema, or nil when none has been
	// saved yet.
	GetAdminForm(ctx context.Context, shareCode string) (*FormSchema, error)
	// UpsertForm validates the schema and saves it. An invalid schema is
	// rejected before any storage call. A one-form-per-event violation is
	// ErrConflict.
	UpsertForm(ctx context.Context, shareCode string, schema *FormSchema) error
	// GetPublicForm returns the guest-visible schema. The form must be active
	// and inside its open/close window, and email must be syntactically valid.
	GetPublicForm(ctx context.Context, shareCode, email string) (*FormSchema, error)
	// Submit validates the answers and stores them keyed by email.
	Submit(ctx context.Context, shareCode, email string, answers Answers) error
	ListResponses(ctx context.Context, shareCode string) ([]*FormResponse, error)
}
