package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
)

func TestToDomainError(t *testing.T) {
	if ToDomainError(nil) != nil {
		t.Error("nil error should map to nil")
	}

	validation := NewValidationError("bad input", map[string]any{"field": "required"})
	mapped := ToDomainError(validation)
	if mapped.Code != "VALIDATION_FAILED" || mapped.HTTPStatus != http.StatusBadRequest {
		t.Errorf("mapped = %+v", mapped)
	}

	// Wrapped domain errors unwrap to themselves.
	wrapped := fmt.Errorf("while handling request: %w", NewForbidden("Insufficient permissions"))
	if got := ToDomainError(wrapped); got.Code != "FORBIDDEN" || got.HTTPStatus != http.StatusForbidden {
		t.Errorf("wrapped mapped = %+v", got)
	}

	if got := ToDomainError(pgx.ErrNoRows); got.Code != "NOT_FOUND" || got.HTTPStatus != http.StatusNotFound {
		t.Errorf("pgx.ErrNoRows mapped = %+v", got)
	}

	if got := ToDomainError(errors.New("boom")); got.Code != "INTERNAL_ERROR" || got.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("unknown mapped = %+v", got)
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(NewNotFound("ticket", nil)) {
		t.Error("NewNotFound should satisfy IsNotFound")
	}
	if !IsNotFound(pgx.ErrNoRows) {
		t.Error("pgx.ErrNoRows should satisfy IsNotFound")
	}
	if IsNotFound(NewForbidden("nope")) {
		t.Error("FORBIDDEN must not satisfy IsNotFound")
	}
	if IsNotFound(nil) {
		t.Error("nil must not satisfy IsNotFound")
	}
}
