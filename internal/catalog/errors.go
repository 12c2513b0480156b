package catalog

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// ErrUnauthorized is returned when a protected resource rejects the
// bearer token. Callers treat it as fatal to the current session.
var ErrUnauthorized = errors.New("unauthorized")

// APIError is an application-level rejection: the request completed but
// the service answered non-2xx with a structured error body.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("request rejected (status %d): %s", e.Status, e.Detail)
}

// errorBody matches the error payloads the service emits. Most
// endpoints use "detail", older ones use "message".
type errorBody struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

// apiError builds an APIError from a non-2xx response, preferring the
// server-supplied message and falling back to a generic one.
func apiError(resp *resty.Response) *APIError {
	var body errorBody
	_ = json.Unmarshal(resp.Body(), &body)

	detail := body.Detail
	if detail == "" {
		detail = body.Message
	}
	if detail == "" {
		detail = "the catalog service rejected the request"
	}

	return &APIError{Status: resp.StatusCode(), Detail: detail}
}
