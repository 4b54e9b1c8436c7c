package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", Validation("limit must be positive, got %d", -1), http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("bind: %w", Validation("bad")), http.StatusBadRequest},
		{"not found", NotFound("User"), http.StatusNotFound},
		{"conflict", fmt.Errorf("insert: %w", ErrConflict), http.StatusConflict},
		{"unavailable", ErrUnavailable, http.StatusServiceUnavailable},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Status(tc.err))
		})
	}
}

func TestNotFoundMessage(t *testing.T) {
	err := NotFound("Test session")
	assert.Equal(t, "Test session not found", err.Error())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, fmt.Errorf("load: %w", err), ErrNotFound)
}
