package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

// Credentials are submitted to obtain a token.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Registration creates a backend account.
type Registration struct {
	Username string `json:"username" validate:"required,max=150"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Password string `json:"password" validate:"required"`
}

// Task is a backend task item.
type Task struct {
	ID          int64  `json:"id,omitempty"`
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// loginResponse accepts both token-auth ("token") and JWT ("access") replies.
type loginResponse struct {
	Token  string `json:"token"`
	Access string `json:"access"`
}

// Login exchanges credentials for a token and stores it in the session.
func (c *Client) Login(ctx context.Context, creds Credentials) error {
	if err := c.validate.Struct(creds); err != nil {
		return fmt.Errorf("invalid credentials: %w", err)
	}

	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/login/", creds, &resp); err != nil {
		return err
	}

	token := resp.Token
	if token == "" {
		token = resp.Access
	}
	if token == "" {
		return errors.New("login response carried no token")
	}

	return c.session.SignIn(ctx, token)
}

// Register creates an account. It does not sign in.
func (c *Client) Register(ctx context.Context, reg Registration) error {
	if err := c.validate.Struct(reg); err != nil {
		return fmt.Errorf("invalid registration: %w", err)
	}
	return c.do(ctx, http.MethodPost, "/register/", reg, nil)
}

// Logout discards the stored token.
func (c *Client) Logout(ctx context.Context) error {
	return c.session.SignOut(ctx)
}

// ListTasks returns the signed-in user's tasks.
func (c *Client) ListTasks(ctx context.Context) ([]Task, error) {
	var tasks []Task
	if err := c.do(ctx, http.MethodGet, "/tasks/", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetTask fetches one task.
func (c *Client) GetTask(ctx context.Context, id int64) (Task, error) {
	var task Task
	if err := c.do(ctx, http.MethodGet, taskPath(id), nil, &task); err != nil {
		return Task{}, err
	}
	return task, nil
}

// CreateTask creates a task and returns the stored copy.
func (c *Client) CreateTask(ctx context.Context, task Task) (Task, error) {
	if err := c.validate.Struct(task); err != nil {
		return Task{}, fmt.Errorf("invalid task: %w", err)
	}
	task.ID = 0

	var created Task
	if err := c.do(ctx, http.MethodPost, "/tasks/", task, &created); err != nil {
		return Task{}, err
	}
	return created, nil
}

// UpdateTask replaces a task and returns the stored copy.
func (c *Client) UpdateTask(ctx context.Context, task Task) (Task, error) {
	if task.ID <= 0 {
		return Task{}, errors.New("invalid task: missing id")
	}
	if err := c.validate.Struct(task); err != nil {
		return Task{}, fmt.Errorf("invalid task: %w", err)
	}

	var updated Task
	if err := c.do(ctx, http.MethodPut, taskPath(task.ID), task, &updated); err != nil {
		return Task{}, err
	}
	return updated, nil
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, taskPath(id), nil, nil)
}

func taskPath(id int64) string {
	return "/tasks/" + strconv.FormatInt(id, 10) + "/"
}
