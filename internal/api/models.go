package api

import (
	"time"

	"github.com/mlowery/tasktrack-api/internal/domain"
	"github.com/mlowery/tasktrack-api/internal/store"
)

// Request payloads

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Name     string `json:"name"     validate:"required,max=255"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// CreateTaskRequest defines the payload for creating a task. Status is
// numeric on the wire (0 pending, 1 in_progress, 2 completed) and
// defaults to pending when omitted.
type CreateTaskRequest struct {
	Title       string     `json:"title"       validate:"required,max=255"`
	Description *string    `json:"description" validate:"omitempty"`
	Status      *int       `json:"status"      validate:"omitempty,oneof=0 1 2"`
	DueDate     *time.Time `json:"due_date"    validate:"omitempty"`
	TagIDs      []int64    `json:"tag_ids"     validate:"omitempty,dive,gt=0"`
}

// UpdateTaskRequest defines the payload for a partial task update.
// Absent fields are left unchanged.
type UpdateTaskRequest struct {
	Title       *string    `json:"title"       validate:"omitempty,min=1,max=255"`
	Description *string    `json:"description" validate:"omitempty"`
	Status      *int       `json:"status"      validate:"omitempty,oneof=0 1 2"`
	DueDate     *time.Time `json:"due_date"    validate:"omitempty"`
}

// TagIDsRequest defines the payload for attaching or detaching tags.
type TagIDsRequest struct {
	TagIDs []int64 `json:"tag_ids" validate:"required,min=1,dive,gt=0"`
}

// CreateTagRequest defines the payload for creating a tag.
type CreateTagRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// UpdateTagRequest defines the payload for renaming a tag.
type UpdateTagRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// Response payloads

// UserResponse is the public view of a user. Password material never
// appears here.
type UserResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUserResponse builds a UserResponse from a domain user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// AuthResponse is returned by register, login and refresh.
type AuthResponse struct {
	User         *UserResponse `json:"user,omitempty"`
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
}

// TagResponse is the public view of a tag.
type TagResponse struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	UpdatedBy *int64    `json:"updated_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTagResponse builds a TagResponse from a domain tag.
func NewTagResponse(tag *domain.Tag) TagResponse {
	return TagResponse{
		ID:        tag.ID,
		UserID:    tag.UserID,
		Name:      tag.Name,
		UpdatedBy: tag.UpdatedBy,
		CreatedAt: tag.CreatedAt,
		UpdatedAt: tag.UpdatedAt,
	}
}

// NewTagResponses converts a tag list, keeping [] over null.
func NewTagResponses(tags []*domain.Tag) []TagResponse {
	out := make([]TagResponse, 0, len(tags))
	for _, tag := range tags {
		out = append(out, NewTagResponse(tag))
	}
	return out
}

// TaskResponse is the public view of a task. Status is rendered as its
// string form; the numeric value is accepted only on input.
type TaskResponse struct {
	ID          int64         `json:"id"`
	UserID      int64         `json:"user_id"`
	Title       string        `json:"title"`
	Description *string       `json:"description"`
	Status      string        `json:"status"`
	DueDate     *time.Time    `json:"due_date"`
	CompletedAt *time.Time    `json:"completed_at"`
	UpdatedBy   *int64        `json:"updated_by"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	DeletedAt   *time.Time    `json:"deleted_at,omitempty"`
	Tags        []TagResponse `json:"tags"`
}

// NewTaskResponse builds a TaskResponse from a domain task.
func NewTaskResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		UserID:      task.UserID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status.String(),
		DueDate:     task.DueDate,
		CompletedAt: task.CompletedAt,
		UpdatedBy:   task.UpdatedBy,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
		DeletedAt:   task.DeletedAt,
		Tags:        NewTagResponses(task.Tags),
	}
}

// TaskPageResponse is one page of tasks with pagination metadata.
type TaskPageResponse struct {
	Data        []TaskResponse `json:"data"`
	Total       int64          `json:"total"`
	CurrentPage int            `json:"current_page"`
	PerPage     int            `json:"per_page"`
	LastPage    int            `json:"last_page"`
}

// NewTaskPageResponse builds a TaskPageResponse from a store page.
func NewTaskPageResponse(page *store.TaskPage) TaskPageResponse {
	data := make([]TaskResponse, 0, len(page.Tasks))
	for _, task := range page.Tasks {
		data = append(data, NewTaskResponse(task))
	}
	return TaskPageResponse{
		Data:        data,
		Total:       page.Total,
		CurrentPage: page.Page,
		PerPage:     page.PerPage,
		LastPage:    page.LastPage,
	}
}

// UserTaskCountResponse is one row of the per-user task statistics.
type UserTaskCountResponse struct {
	User        UserResponse   `json:"user"`
	TaskCount   int64          `json:"task_count"`
	RecentTasks []TaskResponse `json:"recent_tasks"`
}

// NewUserTaskCountResponses converts the aggregation rows.
func NewUserTaskCountResponses(rows []store.UserTaskCount) []UserTaskCountResponse {
	out := make([]UserTaskCountResponse, 0, len(rows))
	for _, row := range rows {
		recent := make([]TaskResponse, 0, len(row.RecentTasks))
		for _, task := range row.RecentTasks {
			recent = append(recent, NewTaskResponse(task))
		}
		out = append(out, UserTaskCountResponse{
			User:        NewUserResponse(&row.User),
			TaskCount:   row.Count,
			RecentTasks: recent,
		})
	}
	return out
}
