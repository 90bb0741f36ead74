package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusCodes(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("reason", "must not be empty"), http.StatusBadRequest},
		{NotFound("triage record", "abc"), http.StatusNotFound},
		{Conflict("triage record", "abc"), http.StatusConflict},
		{Infrastructure("query triage_record", errors.New("connection refused")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := StatusCode(tc.err); got != tc.want {
			t.Errorf("StatusCode(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestMatchersSeeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("create triage record: %w", Validation("chief_complaint", "required"))
	if !IsValidation(err) {
		t.Error("expected wrapped ValidationError to match")
	}
	if IsNotFound(err) || IsConflict(err) {
		t.Error("wrapped ValidationError matched the wrong type")
	}
}

func TestInfrastructureNilPassthrough(t *testing.T) {
	if Infrastructure("op", nil) != nil {
		t.Error("Infrastructure(nil) should be nil")
	}
}

func TestInfrastructureUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := Infrastructure("scan row", inner)
	if !errors.Is(err, inner) {
		t.Error("expected errors.Is to reach the wrapped cause")
	}
}
