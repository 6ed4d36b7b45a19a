// Package client talks to the docdesk JSON API: it polls the notification
// badge and runs user searches where only the latest query may answer.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/starford/docdesk/internal/models"
)

// User is a user search hit.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// StatusError is a non-2xx response.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("client: status %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("client: status %d", e.Code)
}

// Client wraps the JSON endpoints.
type Client struct {
	base string
	hc   *http.Client
}

// New creates a client for baseURL. A nil hc uses a client with a 10 s
// timeout.
func New(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), hc: hc}
}

func (c *Client) do(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(body, &e)
		return &StatusError{Code: resp.StatusCode, Message: e.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("client: decode %s: %w", path, err)
	}
	return nil
}

// UnreadCount returns the notification badge count.
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/notifications/count", &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// Recent returns the newest unread notifications.
func (c *Client) Recent(ctx context.Context) ([]models.Notification, error) {
	var out struct {
		Notifications []models.Notification `json:"notifications"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/notifications/recent", &out); err != nil {
		return nil, err
	}
	return out.Notifications, nil
}

// MarkRead marks one notification as read.
func (c *Client) MarkRead(ctx context.Context, id int64) error {
	var out struct {
		Success bool `json:"success"`
	}
	if err := c.do(ctx, http.MethodPost, "/notifications/mark_read/"+strconv.FormatInt(id, 10), &out); err != nil {
		return err
	}
	if !out.Success {
		return errors.New("client: mark read not acknowledged")
	}
	return nil
}

// SearchUsers queries the user search endpoint.
func (c *Client) SearchUsers(ctx context.Context, q string) ([]User, error) {
	var out []User
	if err := c.do(ctx, http.MethodGet, "/api/users/search?q="+url.QueryEscape(q), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Preview returns a document's preview HTML.
func (c *Client) Preview(ctx context.Context, id int64) (string, error) {
	var out struct {
		HTML  string `json:"preview_html"`
		Error string `json:"error"`
	}
	err := c.do(ctx, http.MethodGet, "/api/documents/preview/"+strconv.FormatInt(id, 10), &out)
	if err != nil {
		return "", err
	}
	if out.Error != "" {
		return "", errors.New(out.Error)
	}
	return out.HTML, nil
}
