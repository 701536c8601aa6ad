package api

import "fmt"

// ValidationError is the collaborator's 422 response: a banner message
// plus per-field messages for inline display. No optimistic record has
// been committed when one of these arrives from a form-based edit, so
// grid state is unaffected.
type ValidationError struct {
	Message string
	Fields  map[string][]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (%d invalid fields)", e.Message, len(e.Fields))
}

// FieldMessages returns the messages for one field.
func (e *ValidationError) FieldMessages(field string) []string {
	return e.Fields[field]
}

// AuthorizationError is the collaborator's 403 response. The UI gates
// mutating gestures by role already, so seeing one of these usually
// means the roles drifted; it surfaces as a toast either way.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string {
	if e.Message == "" {
		return "not authorized"
	}
	return e.Message
}

// NetworkError wraps a failed or timed-out request. For optimistic
// creates the caller rolls back the shadow record; for move and resize
// it discards the pending preview.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// StatusError covers any other non-2xx response.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server returned %d", e.StatusCode)
}
