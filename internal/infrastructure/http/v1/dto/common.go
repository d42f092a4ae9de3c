// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"strings"

	"retailops/internal/core/apperror"
	"retailops/internal/core/id"
)

// IDResponse for create operations.
type IDResponse struct {
	ID string `json:"id"`
}

// ErrorResponse is the body rendered for every failed request.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// parseRequiredID parses a mandatory UUID field.
func parseRequiredID(field, value string) (id.ID, error) {
	v, err := id.Parse(strings.TrimSpace(value))
	if err != nil {
		return id.Nil(), apperror.NewValidation("invalid " + field).WithDetail("field", field)
	}
	return v, nil
}

// parseOptionalID parses a UUID field that may be empty.
func parseOptionalID(field, value string) (*id.ID, error) {
	v, err := id.ParseOptional(strings.TrimSpace(value))
	if err != nil {
		return nil, apperror.NewValidation("invalid " + field).WithDetail("field", field)
	}
	return v, nil
}
