package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/phrazzld/tasktrack/internal/domain"
	"github.com/phrazzld/tasktrack/internal/service"
	"github.com/phrazzld/tasktrack/internal/service/auth"
	"github.com/phrazzld/tasktrack/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized, MsgUnauthenticated},
		{"not owned", service.ErrTaskNotOwned, http.StatusForbidden, MsgUnauthorised},
		{
			"wrapped not found",
			service.NewTaskServiceError("get_task", "task not found", store.ErrTaskNotFound),
			http.StatusNotFound, MsgTaskNotFound,
		},
		{
			"validation",
			domain.NewValidationError("title", domain.MsgTitleRequired, domain.ErrTaskTitleEmpty),
			http.StatusUnprocessableEntity, domain.MsgTitleRequired,
		},
		{"invalid entity", fmt.Errorf("%w: bad", store.ErrInvalidEntity), http.StatusUnprocessableEntity, "Invalid task data"},
		{"malformed body", wrapMalformed(errors.New("unexpected EOF")), http.StatusBadRequest, MsgInvalidRequest},
		{"unknown", errors.New("pq: relation tasks does not exist"), http.StatusInternalServerError, MsgUnexpectedFailure},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, MapErrorToStatusCode(tc.err))
			assert.Equal(t, tc.message, GetSafeErrorMessage(tc.err))
		})
	}
}

func TestGetSafeErrorMessageNil(t *testing.T) {
	assert.Equal(t, MsgUnexpectedFailure, GetSafeErrorMessage(nil))
}
