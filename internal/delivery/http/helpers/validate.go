package helpers

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Validator is implemented by request DTOs that carry their own validation
// rules. A nil or empty slice means the value is acceptable.
type Validator interface {
	Validate() []string
}

// DecodeAndValidate fills dest from the JSON request body, rejecting unknown
// fields, then runs dest's Validate when it has one. Failures are written as
// a 400 with all messages joined; the caller must stop when false is
// returned.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, dest any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return false
	}
	v, ok := dest.(Validator)
	if !ok {
		return true
	}
	if msgs := v.Validate(); len(msgs) > 0 {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, strings.Join(msgs, "; "))
		return false
	}
	return true
}
