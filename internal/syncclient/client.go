// Package syncclient talks to the sync server: it pushes the local
// pending queue and pulls the ledger changes recorded since the last
// watermark.
package syncclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/profpocket/pocket-api/internal/models"
)

// Client is a thin JSON client for the sync server endpoints.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New builds a client for the given server base URL. token may be empty
// for the auth endpoints.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Register creates an account and returns the issued token.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (string, error) {
	var res models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &res); err != nil {
		return "", err
	}
	return res.Token, nil
}

// Login authenticates and returns the issued token.
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (string, error) {
	var res models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, &res); err != nil {
		return "", err
	}
	return res.Token, nil
}

// Push sends the pending queue, oldest first, and returns the queue keys
// the server accepted.
func (c *Client) Push(ctx context.Context, changes []models.SyncChange) ([]string, error) {
	req := models.PushRequest{Changes: make([]models.PushChange, 0, len(changes))}
	for _, change := range changes {
		req.Changes = append(req.Changes, models.PushChange{
			ClientID:  change.ID,
			Entity:    change.Entity,
			EntityID:  change.EntityID,
			Op:        change.Op,
			Payload:   change.Payload,
			UpdatedAt: change.UpdatedAt,
		})
	}

	var res models.PushResponse
	if err := c.do(ctx, http.MethodPost, "/sync/push", req, &res); err != nil {
		return nil, err
	}
	return res.AcceptedIDs, nil
}

// Pull fetches every ledger change strictly newer than since.
func (c *Client) Pull(ctx context.Context, since int64) (*models.PullResponse, error) {
	var res models.PullResponse
	path := fmt.Sprintf("/sync/pull?since=%d", since)
	if err := c.do(ctx, http.MethodGet, path, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, dest interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if dest == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

// decodeError surfaces the server's error envelope when present.
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Message != "" {
		return fmt.Errorf("server: %s (%s)", envelope.Error.Message, envelope.Error.Code)
	}
	return fmt.Errorf("server: unexpected status %d", resp.StatusCode)
}
