package docstore

import (
	"fmt"
	"strings"
)

// SuccessMessage replaces the diagnostic of every valid response carrying the success marker.
const SuccessMessage = "SUCCESS"

// successMarker is the phrase every successful diagnostic starts with.
const successMarker = "valid response"

// Response is the outcome of a mutation. The contract is batch-level: Valid
// is true only when the HTTP call succeeded and the engine accepted every
// item; a single failed bulk item makes the whole response invalid.
type Response struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

// NewResponse normalizes a diagnostic: valid responses whose text contains
// the success marker get SuccessMessage, anything else keeps the diagnostic verbatim.
func NewResponse(valid bool, diagnostic string) Response {
	r := Response{Valid: valid, Message: diagnostic}
	if valid && strings.Contains(strings.ToLower(diagnostic), successMarker) {
		r.Message = SuccessMessage
	}
	return r
}

// Err returns nil for a valid response and an error wrapping ErrOperationRejected otherwise.
func (r Response) Err() error {
	if r.Valid {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrOperationRejected, r.Message)
}

// combine joins two sub-operation responses: valid only if both are, with
// both messages labelled.
func combine(firstLabel string, first Response, secondLabel string, second Response) Response {
	return Response{
		Valid:   first.Valid && second.Valid,
		Message: fmt.Sprintf("%s: %s | %s: %s", firstLabel, first.Message, secondLabel, second.Message),
	}
}
