package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mlowery/tasktrack-api/internal/api/shared"
	"github.com/mlowery/tasktrack-api/internal/service"
	"github.com/mlowery/tasktrack-api/internal/store"
)

// TagHandler handles tag endpoints.
type TagHandler struct {
	tagService *service.TagService
	logger     *slog.Logger
}

// NewTagHandler creates a new TagHandler.
func NewTagHandler(tagService *service.TagService, log *slog.Logger) *TagHandler {
	if log == nil {
		log = slog.Default()
	}
	return &TagHandler{
		tagService: tagService,
		logger:     log.With(slog.String("component", "tag_handler")),
	}
}

// Create handles POST /api/tags.
func (h *TagHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateTagRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	tag, err := h.tagService.Create(r.Context(), service.CreateTagInput{
		UserID: userID,
		Name:   req.Name,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, NewTagResponse(tag))
}

// Get handles GET /api/tags/{id}.
func (h *TagHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid tag ID")
		return
	}

	tag, err := h.tagService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTagResponse(tag))
}

// List handles GET /api/tags.
func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter store.TagFilter

	if raw := q.Get("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 1 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid user_id parameter")
			return
		}
		filter.UserID = &id
	}
	filter.Keyword = q.Get("keyword")
	filter.SortBy = q.Get("sort_by")
	filter.SortDirection = q.Get("sort_direction")

	tags, err := h.tagService.List(r.Context(), filter)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTagResponses(tags))
}

// Update handles PATCH /api/tags/{id}.
func (h *TagHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid tag ID")
		return
	}

	var req UpdateTagRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	tag, err := h.tagService.Update(r.Context(), id, userID, service.TagPatch{Name: &req.Name})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTagResponse(tag))
}

// Delete handles DELETE /api/tags/{id}.
func (h *TagHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid tag ID")
		return
	}

	if err := h.tagService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
