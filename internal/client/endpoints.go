package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/phrazzld/taskflow-api/internal/domain"
)

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// Pagination describes the page returned by ListTasks.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// TaskList is one page of tasks.
type TaskList struct {
	Tasks      []domain.Task `json:"tasks"`
	Pagination Pagination    `json:"pagination"`
}

// ListQuery selects tasks on the server. Zero values are omitted so the
// server defaults apply.
type ListQuery struct {
	Status   string
	Priority string
	Search   string
	Page     int
	Limit    int
}

func (q ListQuery) values() url.Values {
	v := url.Values{}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.Priority != "" {
		v.Set("priority", q.Priority)
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

// NewTask is the body of CreateTask. Empty Status and Priority select the
// server defaults. DueDate is RFC 3339 or YYYY-MM-DD.
type NewTask struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Status      string  `json:"status,omitempty"`
	Priority    string  `json:"priority,omitempty"`
	DueDate     *string `json:"dueDate,omitempty"`
}

// TaskUpdate is a partial update. Nil fields are not sent; ClearDueDate sends
// an explicit null and wins over DueDate.
type TaskUpdate struct {
	Title        *string
	Description  *string
	Status       *string
	Priority     *string
	DueDate      *string
	ClearDueDate bool
}

// MarshalJSON encodes only the fields present in the update.
func (u TaskUpdate) MarshalJSON() ([]byte, error) {
	body := make(map[string]any, 5)
	if u.Title != nil {
		body["title"] = *u.Title
	}
	if u.Description != nil {
		body["description"] = *u.Description
	}
	if u.Status != nil {
		body["status"] = *u.Status
	}
	if u.Priority != nil {
		body["priority"] = *u.Priority
	}
	switch {
	case u.ClearDueDate:
		body["dueDate"] = nil
	case u.DueDate != nil:
		body["dueDate"] = *u.DueDate
	}
	return json.Marshal(body)
}

// Register creates an account and returns its session token.
func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	var out AuthResult
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", nil, body, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var out AuthResult
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, body, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

type userEnvelope struct {
	User domain.User `json:"user"`
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var out userEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, nil, &out, true); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// UpdateProfile changes the authenticated user's name and email.
func (c *Client) UpdateProfile(ctx context.Context, name, email string) (*domain.User, error) {
	var out userEnvelope
	body := map[string]string{"name": name, "email": email}
	if err := c.do(ctx, http.MethodPut, "/api/auth/profile", nil, body, &out, true); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// ListTasks returns one page of the caller's tasks, newest first.
func (c *Client) ListTasks(ctx context.Context, q ListQuery) (*TaskList, error) {
	var out TaskList
	if err := c.do(ctx, http.MethodGet, "/api/tasks", q.values(), nil, &out, true); err != nil {
		return nil, err
	}
	if out.Tasks == nil {
		out.Tasks = []domain.Task{}
	}
	return &out, nil
}

// Stats returns counts of the caller's tasks by status and priority.
func (c *Client) Stats(ctx context.Context) (*domain.TaskStats, error) {
	var out domain.TaskStats
	if err := c.do(ctx, http.MethodGet, "/api/tasks/stats", nil, nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

type taskEnvelope struct {
	Task domain.Task `json:"task"`
}

// CreateTask creates a task and returns the stored document.
func (c *Client) CreateTask(ctx context.Context, task NewTask) (*domain.Task, error) {
	var out taskEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/tasks", nil, task, &out, true); err != nil {
		return nil, err
	}
	return &out.Task, nil
}

// GetTask fetches one task.
func (c *Client) GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var out taskEnvelope
	if err := c.do(ctx, http.MethodGet, taskPath(id), nil, nil, &out, true); err != nil {
		return nil, err
	}
	return &out.Task, nil
}

// UpdateTask applies a partial update and returns the stored document.
func (c *Client) UpdateTask(ctx context.Context, id uuid.UUID, update TaskUpdate) (*domain.Task, error) {
	var out taskEnvelope
	if err := c.do(ctx, http.MethodPut, taskPath(id), nil, update, &out, true); err != nil {
		return nil, err
	}
	return &out.Task, nil
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, taskPath(id), nil, nil, nil, true)
}

// Health reports whether the server and its store are up.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil, false)
}

func taskPath(id uuid.UUID) string {
	return "/api/tasks/" + id.String()
}
