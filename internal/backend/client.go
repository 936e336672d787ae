// Package backend is the HTTP client for the Sublymus platform server.
// The console consumes exactly three endpoints from it: the monitoring
// snapshot, the single-service action and the group action. Every request
// carries: Authorization: Bearer <api_token>
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sublymus/sublyadmin/internal/fleet"
)

// Client talks to one platform server. It is safe for concurrent use.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a client for the given base URL (e.g. https://server.sublymus.com).
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchSnapshot retrieves the current fleet snapshot. Both historical
// response shapes (bare service list, or {services, host}) decode into
// the same Snapshot.
func (c *Client) FetchSnapshot(ctx context.Context) (fleet.Snapshot, error) {
	var snap fleet.Snapshot
	if err := c.getJSON(ctx, "/admin/monitoring", &snap); err != nil {
		return fleet.Snapshot{}, fmt.Errorf("fetch snapshot: %w", err)
	}
	return snap, nil
}

// PerformAction submits a single-service control command. The command is
// assumed valid; only success/failure is reported back.
func (c *Client) PerformAction(ctx context.Context, cmd fleet.Command) error {
	if err := c.postJSON(ctx, "/admin/monitoring/action", cmd, nil); err != nil {
		return fmt.Errorf("action %s %s: %w", cmd.Action, cmd.ID, err)
	}
	return nil
}

// PerformGroupAction submits a control command for every service of a
// kind (or all of them); the backend handles the fan-out.
func (c *Client) PerformGroupAction(ctx context.Context, kind fleet.Kind, action fleet.Action) error {
	body := struct {
		Type   fleet.Kind   `json:"type"`
		Action fleet.Action `json:"action"`
	}{Type: kind, Action: action}
	if err := c.postJSON(ctx, "/admin/monitoring/group-action", body, nil); err != nil {
		return fmt.Errorf("group action %s %s: %w", action, kind, err)
	}
	return nil
}

// errEnvelope is the platform's error response body.
type errEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(res.Body)
		var env errEnvelope
		if json.Unmarshal(body, &env) == nil && env.Message != "" {
			return fmt.Errorf("server rejected request: %s: %s", res.Status, env.Message)
		}
		return fmt.Errorf("server rejected request: %s", res.Status)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}
