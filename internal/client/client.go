// Package client is a Go client for the task API that remembers the signed-in user between runs.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	authdto "task_backend/internal/feature/auth/transport/http/dto"
	taskdto "task_backend/internal/feature/tasks/transport/http/dto"
)

// ErrNotSignedIn is returned by calls that need a token when none is stored.
var ErrNotSignedIn = errors.New("not signed in")

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

// Task filters applied on the client side, like the dashboard tabs.
const (
	FilterAll       = "all"
	FilterActive    = "active"
	FilterCompleted = "completed"
)

// Client calls the API on behalf of one user.
type Client struct {
	baseURL string
	http    *http.Client
	store   SessionStore
}

// New returns a Client for baseURL (for example http://localhost:5000/api).
func New(baseURL string, httpClient *http.Client, store SessionStore) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		store:   store,
	}
}

// Session returns the stored session.
func (c *Client) Session() (Session, error) {
	return c.store.Load()
}

// Register creates an account and stores its token and user.
func (c *Client) Register(ctx context.Context, name, email, password string) (*User, error) {
	return c.signIn(ctx, "/auth/register", authdto.RegisterReq{Name: name, Email: email, Password: password})
}

// Login stores the token and user on success.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	return c.signIn(ctx, "/auth/login", authdto.LoginReq{Email: email, Password: password})
}

func (c *Client) signIn(ctx context.Context, path string, body any) (*User, error) {
	var res authdto.AuthRes
	if err := c.do(ctx, http.MethodPost, path, "", body, &res); err != nil {
		return nil, err
	}
	user := &User{ID: res.User.ID, Name: res.User.Name, Email: res.User.Email}
	if err := c.store.Save(Session{Token: res.Token, User: user}); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return user, nil
}

// Logout forgets the token and the cached user. Tokens are stateless, so the server is not called.
func (c *Client) Logout() error {
	return c.store.Clear()
}

func (c *Client) Profile(ctx context.Context) (*authdto.ProfileRes, error) {
	var res authdto.ProfileRes
	if err := c.authed(ctx, http.MethodGet, "/user/profile", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// UpdateProfile renames the user and refreshes the cached user.
func (c *Client) UpdateProfile(ctx context.Context, name string) (*authdto.ProfileRes, error) {
	var res authdto.ProfileRes
	if err := c.authed(ctx, http.MethodPut, "/user/profile", authdto.UpdateProfileReq{Name: name}, &res); err != nil {
		return nil, err
	}
	if s, err := c.store.Load(); err == nil && s.Authenticated() {
		s.User = &User{ID: res.ID, Name: res.Name, Email: res.Email}
		if err := c.store.Save(s); err != nil {
			slog.Warn("failed to refresh cached user", "error", err)
		}
	}
	return &res, nil
}

// ListTasks fetches the user's tasks matching search and then applies filter locally.
func (c *Client) ListTasks(ctx context.Context, search, filter string) ([]taskdto.TaskRes, error) {
	path := "/tasks"
	if search != "" {
		path += "?search=" + url.QueryEscape(search)
	}
	var res []taskdto.TaskRes
	if err := c.authed(ctx, http.MethodGet, path, nil, &res); err != nil {
		return nil, err
	}
	return FilterTasks(res, filter), nil
}

// FilterTasks keeps tasks matching filter. Unknown filters keep everything.
func FilterTasks(tasks []taskdto.TaskRes, filter string) []taskdto.TaskRes {
	if filter != FilterActive && filter != FilterCompleted {
		return tasks
	}
	want := filter == FilterCompleted
	out := make([]taskdto.TaskRes, 0, len(tasks))
	for _, t := range tasks {
		if t.Completed == want {
			out = append(out, t)
		}
	}
	return out
}

func (c *Client) CreateTask(ctx context.Context, title, description string) (*taskdto.TaskRes, error) {
	var res taskdto.TaskRes
	if err := c.authed(ctx, http.MethodPost, "/tasks", taskdto.CreateTaskReq{Title: title, Description: description}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// UpdateTask sends only the non-nil fields of patch.
func (c *Client) UpdateTask(ctx context.Context, id string, patch taskdto.UpdateTaskReq) (*taskdto.TaskRes, error) {
	var res taskdto.TaskRes
	if err := c.authed(ctx, http.MethodPut, "/tasks/"+url.PathEscape(id), updateBody(patch), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.authed(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil)
}

// updateBody drops nil fields so the server sees them as absent rather than null.
func updateBody(p taskdto.UpdateTaskReq) map[string]any {
	body := map[string]any{}
	if p.Title != nil {
		body["title"] = *p.Title
	}
	if p.Description != nil {
		body["description"] = *p.Description
	}
	if p.Completed != nil {
		body["completed"] = *p.Completed
	}
	return body
}

// authed sends a request with the stored token.
// A 401 means the token is gone or expired, so the stored session is dropped.
func (c *Client) authed(ctx context.Context, method, path string, body, out any) error {
	s, err := c.store.Load()
	if err != nil {
		return err
	}
	if !s.Authenticated() {
		return ErrNotSignedIn
	}
	err = c.do(ctx, method, path, s.Token, body, out)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
		if cerr := c.store.Clear(); cerr != nil {
			slog.Warn("failed to clear session", "error", cerr)
		}
	}
	return err
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return decodeError(res)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func decodeError(res *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(res.Body, 64<<10)).Decode(&body); err != nil || body.Error == "" {
		body.Error = http.StatusText(res.StatusCode)
	}
	return &APIError{Status: res.StatusCode, Message: body.Error}
}
