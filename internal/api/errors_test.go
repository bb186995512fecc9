package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mlowery/tasktrack-api/internal/domain"
	"github.com/mlowery/tasktrack-api/internal/service"
	"github.com/mlowery/tasktrack-api/internal/service/auth"
	"github.com/mlowery/tasktrack-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"task not found", store.ErrTaskNotFound, http.StatusNotFound},
		{"tag not found", store.ErrTagNotFound, http.StatusNotFound},
		{"user not found", store.ErrUserNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("lookup: %w", store.ErrTaskNotFound), http.StatusNotFound},
		{"deleted task edit", service.ErrTaskDeleted, http.StatusConflict},
		{"completed task edit", service.ErrTaskCompleted, http.StatusConflict},
		{"already completed", service.ErrTaskAlreadyCompleted, http.StatusConflict},
		{"already deleted", service.ErrTaskAlreadyDeleted, http.StatusConflict},
		{"completing deleted", service.ErrDeletedTaskCompletion, http.StatusConflict},
		{"email exists", store.ErrEmailExists, http.StatusConflict},
		{"empty tag ids", service.ErrNoTagIDs, http.StatusBadRequest},
		{"unknown tags", service.ErrUnknownTags, http.StatusBadRequest},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"domain validation", domain.ErrTaskTitleEmpty, http.StatusBadRequest},
		{"invalid credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"wrong token type", auth.ErrWrongTokenType, http.StatusUnauthorized},
		{"unknown error", errors.New("something broke"), http.StatusInternalServerError},
		{"wrapped service error", service.NewServiceError("update task", store.ErrTaskNotFound), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "An unexpected error occurred"},
		{"task not found", store.ErrTaskNotFound, "Task not found"},
		{"deleted task edit", service.ErrTaskDeleted, "deleted tasks cannot be edited"},
		{"completed task edit", service.ErrTaskCompleted, "completed tasks cannot be edited"},
		{"already completed", service.ErrTaskAlreadyCompleted, "task is already completed"},
		{"already deleted", service.ErrTaskAlreadyDeleted, "task is already deleted"},
		{"completing deleted", service.ErrDeletedTaskCompletion, "deleted tasks cannot be completed"},
		{"empty tag ids", service.ErrNoTagIDs, "tag_ids cannot be empty"},
		{"unknown tags", service.ErrUnknownTags, "one or more tags do not exist"},
		{"email exists", store.ErrEmailExists, "Email already exists"},
		{"title too long", domain.ErrTaskTitleTooLong, "task title cannot exceed 255 characters"},
		{"invalid credentials", auth.ErrInvalidCredentials, "Invalid email or password"},
		{"internal details hidden", errors.New("pq: connection refused on 10.0.0.5"), "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetSafeErrorMessage(tt.err))
		})
	}
}
