// Package client implements the polling chat view and the admin view on top
// of the HTTP message API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pollchat/internal/model"
)

const requestTimeout = 10 * time.Second

// StatusError is returned for non-2xx responses
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Message)
}

// API talks to the message endpoints of one server
type API struct {
	baseURL string
	origin  string
	http    *http.Client
}

// NewAPI returns an API client. httpClient may be nil.
func NewAPI(baseURL string, httpClient *http.Client) *API {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	baseURL = strings.TrimRight(baseURL, "/")
	return &API{baseURL: baseURL, origin: baseURL, http: httpClient}
}

// WithOrigin overrides the Origin sent on the WebSocket handshake
func (a *API) WithOrigin(origin string) *API {
	if origin != "" {
		a.origin = origin
	}
	return a
}

// List fetches the current message list, newest first
func (a *API) List(ctx context.Context) ([]model.Message, error) {
	var msgs []model.Message
	if err := a.do(ctx, http.MethodGet, "/messages", nil, &msgs); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	if msgs == nil {
		msgs = []model.Message{}
	}
	return msgs, nil
}

// Post submits a new message
func (a *API) Post(ctx context.Context, name, content string) error {
	payload, err := json.Marshal(map[string]string{"name": name, "content": content})
	if err != nil {
		return err
	}
	if err := a.do(ctx, http.MethodPost, "/messages", payload, nil); err != nil {
		return fmt.Errorf("post message: %w", err)
	}
	return nil
}

// Delete removes a message by id
func (a *API) Delete(ctx context.Context, id string) error {
	if err := a.do(ctx, http.MethodDelete, "/messages/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("delete message %s: %w", id, err)
	}
	return nil
}

// WatchURL is the WebSocket change feed address
func (a *API) WatchURL() string {
	u := a.baseURL
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + "/ws"
}

// Origin is sent on the WebSocket handshake
func (a *API) Origin() string {
	return a.origin
}

func (a *API) do(ctx context.Context, method, path string, payload []byte, out any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&errResp)
		return &StatusError{Code: resp.StatusCode, Message: errResp.Error}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
