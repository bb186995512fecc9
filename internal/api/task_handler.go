package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mlowery/tasktrack-api/internal/api/shared"
	"github.com/mlowery/tasktrack-api/internal/domain"
	"github.com/mlowery/tasktrack-api/internal/service"
	"github.com/mlowery/tasktrack-api/internal/store"
)

// dateOnlyFormat is accepted for due date query parameters alongside
// RFC 3339 timestamps.
const dateOnlyFormat = "2006-01-02"

// TaskHandler handles task endpoints: CRUD, lifecycle transitions, tag
// association, listing and statistics.
type TaskHandler struct {
	taskService  *service.TaskService
	statsService *service.StatsService
	logger       *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *service.TaskService, statsService *service.StatsService, log *slog.Logger) *TaskHandler {
	if log == nil {
		log = slog.Default()
	}
	return &TaskHandler{
		taskService:  taskService,
		statsService: statsService,
		logger:       log.With(slog.String("component", "task_handler")),
	}
}

// respondServiceError translates an internal error into a sanitized
// HTTP error response.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
}

// taskIDParam parses the {id} route parameter.
func taskIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// Create handles POST /api/tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	status := domain.TaskStatusPending
	if req.Status != nil {
		status = domain.TaskStatus(*req.Status)
	}

	task, err := h.taskService.Create(r.Context(), service.CreateTaskInput{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		DueDate:     req.DueDate,
		TagIDs:      req.TagIDs,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, NewTaskResponse(task))
}

// Get handles GET /api/tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := taskIDParam(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	task, err := h.taskService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// List handles GET /api/tasks.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseTaskFilter(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.taskService.List(r.Context(), filter)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskPageResponse(page))
}

// Update handles PATCH /api/tasks/{id}.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	id, ok := taskIDParam(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	patch := service.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
	}
	if req.Status != nil {
		status := domain.TaskStatus(*req.Status)
		patch.Status = &status
	}

	task, err := h.taskService.Update(r.Context(), id, userID, patch)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// Complete handles POST /api/tasks/{id}/complete.
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	id, ok := taskIDParam(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	task, err := h.taskService.Complete(r.Context(), id, userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// Delete handles DELETE /api/tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := taskIDParam(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	if err := h.taskService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Restore handles POST /api/tasks/{id}/restore.
func (h *TaskHandler) Restore(w http.ResponseWriter, r *http.Request) {
	id, ok := taskIDParam(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	task, err := h.taskService.Restore(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// AttachTags handles POST /api/tasks/{id}/tags/attach.
func (h *TaskHandler) AttachTags(w http.ResponseWriter, r *http.Request) {
	h.changeTags(w, r, h.taskService.AttachTags)
}

// DetachTags handles POST /api/tasks/{id}/tags/detach.
func (h *TaskHandler) DetachTags(w http.ResponseWriter, r *http.Request) {
	h.changeTags(w, r, h.taskService.DetachTags)
}

func (h *TaskHandler) changeTags(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, taskID, actorID int64, tagIDs []int64) (*domain.Task, error),
) {
	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	id, ok := taskIDParam(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	var req TagIDsRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	task, err := op(r.Context(), id, userID, req.TagIDs)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// Statistics handles GET /api/tasks/statistics/by-user.
func (h *TaskHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	rows, err := h.statsService.TaskCountByUser(r.Context(), limit)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewUserTaskCountResponses(rows))
}

// parseTaskFilter reads the listing query parameters into a TaskFilter.
// Sort, page and page size abuse is handled later by Normalize; only
// outright unparseable values are rejected here.
func parseTaskFilter(r *http.Request) (store.TaskFilter, error) {
	q := r.URL.Query()
	var filter store.TaskFilter

	if raw := q.Get("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 1 {
			return filter, errInvalidParam("user_id")
		}
		filter.UserID = &id
	}
	if raw := q.Get("status"); raw != "" {
		val, err := strconv.Atoi(raw)
		if err != nil {
			return filter, errInvalidParam("status")
		}
		status := domain.TaskStatus(val)
		if !status.Valid() {
			return filter, errInvalidParam("status")
		}
		filter.Status = &status
	}

	filter.Keyword = q.Get("keyword")

	if raw := q.Get("due_from"); raw != "" {
		t, err := parseDateParam(raw)
		if err != nil {
			return filter, errInvalidParam("due_from")
		}
		filter.DueFrom = &t
	}
	if raw := q.Get("due_to"); raw != "" {
		t, err := parseDateParam(raw)
		if err != nil {
			return filter, errInvalidParam("due_to")
		}
		filter.DueTo = &t
	}

	filter.Visibility = store.VisibilityFromFlags(boolParam(q.Get("only_deleted")), boolParam(q.Get("with_deleted")))

	filter.SortBy = q.Get("sort_by")
	filter.SortDirection = q.Get("sort_direction")
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.PerPage, _ = strconv.Atoi(q.Get("per_page"))

	return filter, nil
}

// parseDateParam accepts a date or a full RFC 3339 timestamp.
func parseDateParam(raw string) (time.Time, error) {
	if t, err := time.Parse(dateOnlyFormat, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

// boolParam treats "1" and "true" as true, anything else as false.
func boolParam(raw string) bool {
	return raw == "1" || raw == "true"
}

type paramError string

func (e paramError) Error() string { return "Invalid " + string(e) + " parameter" }

func errInvalidParam(name string) error { return paramError(name) }
